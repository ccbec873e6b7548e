// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/danielhkuo/partyplanner/content"
	"github.com/danielhkuo/partyplanner/i18n"
	"github.com/danielhkuo/partyplanner/identity"
	"github.com/danielhkuo/partyplanner/middleware"
	"github.com/danielhkuo/partyplanner/models"
	"github.com/danielhkuo/partyplanner/session"
)

// currentSession resolves the caller's identity and session. It writes
// the error response itself and returns ok=false when there is none.
func currentSession(w http.ResponseWriter, r *http.Request, sessions *session.Registry, loc *i18n.Localizer) (*identity.Provider, *session.Session, bool) {
	p := identity.FromContext(r.Context())
	if p == nil {
		slog.Error("request without identity", "path", r.URL.Path)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "identity unavailable")
		return nil, nil, false
	}
	s := sessions.Get(identity.ClientID(r.Context()), p.UserID(r.Context()))
	if s == nil {
		middleware.AppErrorResponse(w, r, loc, session.ErrClosed, nil)
		return nil, nil, false
	}
	return p, s, true
}

func canModify(ownerUserID string, st session.Status) bool {
	return ownerUserID == st.UserID || st.Privileged
}

func toItem(rec content.Record[content.Item], st session.Status) models.Item {
	return models.Item{
		ID:        rec.ID,
		Name:      rec.Payload.Name,
		Item:      rec.Payload.Item,
		Category:  rec.Payload.Category,
		Notes:     rec.Payload.Notes,
		CreatedAt: rec.CreatedAt,
		CanDelete: canModify(rec.OwnerUserID, st),
	}
}

func toPhoto(rec content.Record[content.Photo], st session.Status) models.Photo {
	return models.Photo{
		ID:           rec.ID,
		URL:          rec.Payload.URL,
		UploaderName: rec.Payload.UploaderName,
		CreatedAt:    rec.CreatedAt,
		CanDelete:    canModify(rec.OwnerUserID, st),
	}
}

func toFeedback(rec content.Record[content.Feedback], st session.Status) models.Feedback {
	reactions := rec.Payload.Reactions
	if reactions == nil {
		reactions = map[string]int64{}
	}
	return models.Feedback{
		ID:         rec.ID,
		Name:       rec.Payload.Name,
		Message:    rec.Payload.Message,
		Reactions:  reactions,
		CreatedAt:  rec.CreatedAt,
		LastEdited: rec.Payload.LastEdited,
		CanEdit:    canModify(rec.OwnerUserID, st),
	}
}

func convert[P, W any](recs []content.Record[P], st session.Status, fn func(content.Record[P], session.Status) W) []W {
	out := make([]W, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fn(rec, st))
	}
	return out
}

func isStale(v session.View, section string) bool {
	return slices.Contains(v.Stale, section)
}
