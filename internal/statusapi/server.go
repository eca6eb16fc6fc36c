package statusapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/UnmannedAerialSystems/PSUUAS-monorepo-2025/internal/middleware"
)

// Server is the optional read-only status surface. It is built the way
// the teacher's internal/server.Server wraps a mux in its middleware
// stack and serves over h2c, minus the Connect-RPC service registration
// this repository has no generated stubs for.
type Server struct {
	addr   string
	store  *Store
	logger *slog.Logger
	mux    *http.ServeMux
}

// New builds a Server that will answer GET /status from store when
// started. CORS is wide open (*) since this is a read-only status feed
// meant for a ground-station laptop on the same field network, not a
// multi-tenant service.
func New(addr string, store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	s := &Server{addr: addr, store: store, logger: logger, mux: mux}
	mux.HandleFunc("/status", s.handleStatus)
	return s
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.store.Get()); err != nil {
		s.logger.Error(err.Error(), "component", "statusapi")
	}
}

// buildHandler wraps the mux in the teacher's middleware stack, adapted
// to log through the caller's slog.Logger via a minimal stdlib adapter
// since middleware.Recovery was written against *log.Logger.
func (s *Server) buildHandler() http.Handler {
	stdLogger := slog.NewLogLogger(s.logger.Handler(), slog.LevelError)
	handler := http.Handler(s.mux)
	handler = middleware.CORS([]string{"*"})(handler)
	handler = middleware.Recovery(stdLogger)(handler)
	return h2c.NewHandler(handler, &http2.Server{})
}

// Run starts the HTTP server and blocks until it errors or the listener
// closes. Intended to run on its own goroutine alongside the
// state-machine driver, per SPEC_FULL.md A4: it never blocks or
// influences transitions.
func (s *Server) Run() error {
	s.logger.Info("status surface listening", "component", "statusapi", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.buildHandler())
}
