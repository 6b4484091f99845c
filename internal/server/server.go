// Package server exposes the Event Grid webhook endpoint that drives the
// reconciler.
package server

import (
	"log/slog"
	"net/http"

	"github.com/DrSkyle/cloudstamp/pkg/engine"
)

type Server struct {
	engine *engine.Engine
	logger *slog.Logger
	mux    *http.ServeMux
}

func New(eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: eng,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/events", s.handleEvents)
	s.mux.HandleFunc("/healthz", s.handleHealth)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}
