package statusapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleStatusReturnsStoredSnapshot(t *testing.T) {
	store := NewStore("run-xyz")
	store.Set(Snapshot{Phase: "AIRDROP", DropCount: 3})
	srv := New(":0", store, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.buildHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	var got Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Phase != "AIRDROP" || got.DropCount != 3 || got.RunID != "run-xyz" {
		t.Errorf("unexpected snapshot: %+v", got)
	}
}

func TestHandleStatusRejectsNonGet(t *testing.T) {
	store := NewStore("run-xyz")
	srv := New(":0", store, nil)

	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	rec := httptest.NewRecorder()
	srv.buildHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status code = %d, want 405", rec.Code)
	}
}
