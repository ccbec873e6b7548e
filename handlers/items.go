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
	"github.com/danielhkuo/partyplanner/session"
)

type ItemHandler struct {
	sessions *session.Registry
	loc      *i18n.Localizer
}

func NewItemHandler(sessions *session.Registry, loc *i18n.Localizer) *ItemHandler {
	return &ItemHandler{sessions: sessions, loc: loc}
}

// ListItems handles GET /items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	view, err := s.List(r.Context())
	if err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, nil)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ItemsResponse{
		Items: convert(view.Items, s.Status(), toItem),
		Stale: isStale(view, "items"),
	})
}

// CreateItem handles POST /items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	p, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	var req models.CreateItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// A blank name falls back to the one remembered from earlier forms
	name := p.ResolveName(r.Context(), req.Name)

	rec, err := s.CreateItem(r.Context(), content.Item{
		Name:     name,
		Item:     req.Item,
		Category: req.Category,
		Notes:    req.Notes,
	})
	if err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, middleware.Messages{
			apperr.CodeStoreUnavailable: "messages.error.addItem",
		})
		return
	}

	slog.Info("item created", "item_id", rec.ID, "user_id", s.UserID(), "category", rec.Payload.Category)

	middleware.JSONResponse(w, http.StatusCreated, toItem(rec, s.Status()))
}

// DeleteItem handles DELETE /items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := s.DeleteItem(r.Context(), id); err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, middleware.Messages{
			apperr.CodeStoreUnavailable: "messages.error.deleteItem",
		})
		return
	}

	slog.Info("item deleted", "item_id", id, "user_id", s.UserID())
	w.WriteHeader(http.StatusNoContent)
}
