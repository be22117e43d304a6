package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/necta-results/internal/results"
	"github.com/jonathan/necta-results/internal/types"
)

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "database": "disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

// handleSchools returns the roster for an exam year
func (s *Server) handleSchools(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseExamIdentity(r.PathValue("year"), r.PathValue("exam_type"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	roster, err := s.service.Roster(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, roster)
}

// handleSearchSchools ranks roster entries against the q parameter
func (s *Server) handleSearchSchools(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseExamIdentity(r.PathValue("year"), r.PathValue("exam_type"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, &types.ValidationError{Field: "q", Message: "search query is required"})
		return
	}

	limit := results.DefaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			s.writeError(w, &types.ValidationError{Field: "limit", Value: raw, Message: "must be a positive integer"})
			return
		}
	}

	matches, err := s.service.SearchSchools(r.Context(), id, query, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, matches)
}

// handleResults returns the result set for one school
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseSchoolIdentity(r.PathValue("year"), r.PathValue("exam_type"), r.PathValue("school_number"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resultSet, err := s.service.Students(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resultSet)
}

// handleCandidate returns one student row. The examination number keeps its
// slash, so the route captures the remaining path.
func (s *Server) handleCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseExamIdentity(r.PathValue("year"), r.PathValue("exam_type"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	student, err := s.service.Candidate(r.Context(), id, r.PathValue("examination_number"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, student)
}

// TokenRequest is the body of POST /token
type TokenRequest struct {
	Password string `json:"password"`
}

// TokenResponse carries a signed admin token
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleToken exchanges the admin password for a bearer token
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.jwtService == nil || s.admin == nil || !s.admin.Enabled() {
		s.writeError(w, &ErrUnavailable{Feature: "admin authentication"})
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		s.writeError(w, &types.ValidationError{Field: "body", Message: "invalid JSON body"})
		return
	}
	if req.Password == "" {
		s.writeError(w, &types.ValidationError{Field: "password", Message: "password is required"})
		return
	}

	if !s.admin.Verify(req.Password) {
		s.writeError(w, &ErrInvalidCredentials{})
		return
	}

	token, expiresAt, err := s.jwtService.GenerateToken(RoleAdmin, RoleAdmin)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: expiresAt})
}

// handleInvalidateCache drops one cached page
func (s *Server) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeError(w, &ErrUnavailable{Feature: "page cache"})
		return
	}

	pageURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if pageURL == "" {
		s.writeError(w, &types.ValidationError{Field: "url", Message: "url query parameter is required"})
		return
	}

	deleted, err := s.cache.InvalidateCache(r.Context(), pageURL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"url": pageURL, "deleted": deleted})
}
