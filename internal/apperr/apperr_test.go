package apperr

import (
	"fmt"
	"testing"
)

func TestCodeString_KnownAndUnknown(t *testing.T) {
	if got := UploadTimeout.String(); got != "UploadTimeout" {
		t.Errorf("String() = %q, want UploadTimeout", got)
	}
	if got := Code(999).String(); got != "Code(999)" {
		t.Errorf("String() = %q, want Code(999)", got)
	}
}

func TestCodeOf_UnwrapsWrappedError(t *testing.T) {
	base := New(WaypointTimeout, "seq %d not reached", 5)
	wrapped := fmt.Errorf("flight manager: %w", base)

	code, ok := CodeOf(wrapped)
	if !ok {
		t.Fatal("CodeOf() ok = false, want true")
	}
	if code != WaypointTimeout {
		t.Errorf("CodeOf() = %v, want WaypointTimeout", code)
	}

	if _, ok := CodeOf(fmt.Errorf("plain error")); ok {
		t.Error("CodeOf() ok = true for a plain error, want false")
	}
}

func TestError_MessageFormat(t *testing.T) {
	err := New(BadSequence, "seq %d out of range", 12)
	if got, want := err.Error(), "BadSequence: seq 12 out of range"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
