// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package server provides the HTTP API over the indexing and query
// pipeline. Collection selection is carried per conversation session,
// never in process-wide state, so concurrent clients cannot observe
// each other's selections.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/ragdex/agent"
	"github.com/poiesic/ragdex/core"
	"github.com/poiesic/ragdex/retrieval"
)

// Pipeline is the subset of pipeline operations the HTTP API exposes.
type Pipeline interface {
	NewSession() *retrieval.Session
	IndexSource(ctx context.Context, source string, forceRecreate bool) ([]string, error)
	EnsureSource(ctx context.Context, source string) (string, error)
	Ask(ctx context.Context, session *retrieval.Session, query string, stream agent.StreamFunc) (string, error)
	ListSources() map[string]*core.SourceMapping
	DeleteSource(ctx context.Context, source string) (bool, error)
}

// Server is the HTTP server for the ragdex API.
type Server struct {
	pipeline Pipeline
	addr     string
	logger   *slog.Logger
	server   *http.Server

	mu       sync.Mutex
	sessions map[string]*retrieval.Session
}

// NewServer creates a server around a pipeline.
func NewServer(pipeline Pipeline, addr string) *Server {
	return &Server{
		pipeline: pipeline,
		addr:     addr,
		logger:   slog.Default().With("component", "server"),
		sessions: make(map[string]*retrieval.Session),
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Post("/api/v1/index", s.handleIndex)
	r.Post("/api/v1/query", s.handleQuery)
	r.Get("/api/v1/sources", s.handleListSources)
	r.Delete("/api/v1/sources", s.handleDeleteSource)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// session returns the session registered under id, or a fresh one when id
// is empty or unknown. Unknown ids get a new session rather than an error
// so clients survive a server restart.
func (s *Server) session(id string) *retrieval.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if session, ok := s.sessions[id]; ok {
			return session
		}
	}
	session := retrieval.NewSession()
	s.sessions[session.ID()] = session
	return session
}
