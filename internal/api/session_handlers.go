package api

import (
	"net/http"

	"encoding/json/v2"

	"github.com/pagepace/pagepace-server/internal/http/response"
)

// startSessionRequest is the request body for starting a session.
type startSessionRequest struct {
	BookID    string `json:"book_id" validate:"required"`
	StartPage int    `json:"start_page" validate:"gte=0,lte=50000"`
}

// finalizeSessionRequest is the request body for finalizing a session.
type finalizeSessionRequest struct {
	EndPage int `json:"end_page"`
}

// handleStartSession starts a reading session and its timer.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req startSessionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	active, err := s.services.Session.Start(ctx, userID, req.BookID, req.StartPage)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, active, s.logger)
}

// handleGetActiveSession returns the in-progress session with elapsed time
// recomputed against the current clock.
func (s *Server) handleGetActiveSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	active, err := s.services.Session.Active(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, active, s.logger)
}

// handlePauseSession stops the active session's clock.
func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	active, err := s.services.Session.Pause(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, active, s.logger)
}

// handleResumeSession restarts a paused session's clock.
func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	active, err := s.services.Session.Resume(ctx, userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, active, s.logger)
}

// handleFinalizeSession ends the active session at the given page.
func (s *Server) handleFinalizeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	var req finalizeSessionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	session, err := s.services.Session.Finalize(ctx, userID, req.EndPage)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, session, s.logger)
}

// handleAbandonSession discards the active session without recording it.
func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	if err := s.services.Session.Abandon(ctx, userID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
