// Package status exposes a read-only HTTP overview of loaded books, meant
// for operating the bot rather than for end users.
package status

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ovcharenko/daily-reader/internal/service"
)

type Overviewer interface {
	Overview() []service.ThreadStatus
}

type Server struct {
	addr string
	svc  Overviewer
}

func NewServer(addr string, svc Overviewer) *Server {
	return &Server{addr: addr, svc: svc}
}

func (s *Server) Run() error {
	return http.ListenAndServe(s.addr, s.Handler())
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/status", s.handleStatus)
	r.Get("/healthz", s.handleHealthz)
	return r
}

type statusResponse struct {
	Threads []service.ThreadStatus `json:"threads"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	threads := s.svc.Overview()
	if threads == nil {
		threads = []service.ThreadStatus{}
	}
	respondJSON(w, statusResponse{Threads: threads})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
