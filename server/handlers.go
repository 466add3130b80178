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


package server

import (
	"encoding/json"
	"net/http"

	"github.com/poiesic/ragdex/core"
)

type indexRequest struct {
	Source string `json:"source"`
	Force  bool   `json:"force"`
}

type queryRequest struct {
	Query     string `json:"query"`
	Source    string `json:"source,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Source == "" {
		s.respondError(w, http.StatusBadRequest, "source is required")
		return
	}

	s.logger.Debug("index request", "source", req.Source, "force", req.Force)
	ids, err := s.pipeline.IndexSource(r.Context(), req.Source, req.Force)
	if err != nil {
		s.logger.Error("indexing failed", "source", req.Source, "err", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{
		"source": req.Source,
		"chunks": len(ids),
		"status": "indexed",
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}

	session := s.session(req.SessionID)
	if req.Source != "" {
		collection, err := s.pipeline.EnsureSource(r.Context(), req.Source)
		if err != nil {
			s.logger.Error("source selection failed", "source", req.Source, "err", err)
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		session.SetActive(collection)
	}

	s.logger.Debug("query request", "session", session.ID(), "query", req.Query)
	answer, err := s.pipeline.Ask(r.Context(), session, req.Query, nil)
	if err != nil {
		s.logger.Error("query failed", "session", session.ID(), "err", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"answer":     answer,
		"session_id": session.ID(),
	}
	if collection, ok := session.Active(); ok {
		resp["collection"] = collection
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	type sourceEntry struct {
		Source string `json:"source"`
		*core.SourceMapping
	}

	mappings := s.pipeline.ListSources()
	sources := make([]sourceEntry, 0, len(mappings))
	for key, mapping := range mappings {
		sources = append(sources, sourceEntry{Source: key, SourceMapping: mapping})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		var body struct {
			Source string `json:"source"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Source != "" {
			source = body.Source
		}
	}
	if source == "" {
		s.respondError(w, http.StatusBadRequest, "source is required (query or body)")
		return
	}

	s.logger.Debug("delete source request", "source", source)
	existed, err := s.pipeline.DeleteSource(r.Context(), source)
	if err != nil {
		s.logger.Error("deletion failed", "source", source, "err", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !existed {
		s.respondError(w, http.StatusNotFound, "source not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"source": source, "status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
