// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/content"
	"github.com/danielhkuo/partyplanner/i18n"
	"github.com/danielhkuo/partyplanner/middleware"
	"github.com/danielhkuo/partyplanner/models"
	"github.com/danielhkuo/partyplanner/phase"
	"github.com/danielhkuo/partyplanner/session"
)

type FeedbackHandler struct {
	sessions *session.Registry
	loc      *i18n.Localizer
}

func NewFeedbackHandler(sessions *session.Registry, loc *i18n.Localizer) *FeedbackHandler {
	return &FeedbackHandler{sessions: sessions, loc: loc}
}

func feedbackMessages(failure string) middleware.Messages {
	return middleware.Messages{
		apperr.CodeValidation:       "feedback.messages.required",
		apperr.CodePhaseGated:       "feedback.messages.notOpen",
		apperr.CodeStoreUnavailable: failure,
	}
}

// ListFeedback handles GET /feedback
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	view, err := s.List(r.Context())
	if err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, nil)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FeedbackListResponse{
		Open:     view.Phase >= phase.FeedbackOpen,
		Feedback: convert(view.Feedback, s.Status(), toFeedback),
		Stale:    isStale(view, "feedback"),
	})
}

// CreateFeedback handles POST /feedback
func (h *FeedbackHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	p, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	var req models.CreateFeedbackRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	rec, err := s.CreateFeedback(r.Context(), content.Feedback{
		Name:    p.ResolveName(r.Context(), req.Name),
		Message: req.Message,
	})
	if err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, feedbackMessages("feedback.messages.submitError"))
		return
	}

	slog.Info("feedback created", "feedback_id", rec.ID, "user_id", s.UserID())
	middleware.JSONResponse(w, http.StatusCreated, toFeedback(rec, s.Status()))
}

// UpdateFeedback handles PATCH /feedback/{id}
func (h *FeedbackHandler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	var req models.UpdateFeedbackRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := r.PathValue("id")
	rec, err := s.UpdateFeedback(r.Context(), id, req.Message)
	if err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, feedbackMessages("feedback.messages.updateError"))
		return
	}

	slog.Info("feedback updated", "feedback_id", id, "user_id", s.UserID())
	middleware.JSONResponse(w, http.StatusOK, toFeedback(rec, s.Status()))
}

// DeleteFeedback handles DELETE /feedback/{id}
func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := s.DeleteFeedback(r.Context(), id); err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, feedbackMessages("feedback.messages.deleteError"))
		return
	}

	slog.Info("feedback deleted", "feedback_id", id, "user_id", s.UserID())
	w.WriteHeader(http.StatusNoContent)
}

// React handles POST /feedback/{id}/reactions
func (h *FeedbackHandler) React(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	var req models.ReactRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := r.PathValue("id")
	count, err := s.React(r.Context(), id, req.Emoji)
	if err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, middleware.Messages{
			apperr.CodeValidation: "feedback.messages.reactionUnsupported",
			apperr.CodePhaseGated: "feedback.messages.notOpen",
		})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ReactResponse{
		FeedbackID: id,
		Emoji:      req.Emoji,
		Count:      count,
	})
}
