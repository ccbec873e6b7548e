// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/content"
	"github.com/danielhkuo/partyplanner/i18n"
	"github.com/danielhkuo/partyplanner/middleware"
	"github.com/danielhkuo/partyplanner/models"
	"github.com/danielhkuo/partyplanner/phase"
	"github.com/danielhkuo/partyplanner/reaction"
	"github.com/danielhkuo/partyplanner/session"
)

type SessionHandler struct {
	sessions *session.Registry
	loc      *i18n.Localizer
	clock    clockwork.Clock
}

func NewSessionHandler(sessions *session.Registry, loc *i18n.Localizer, clock clockwork.Clock) *SessionHandler {
	return &SessionHandler{sessions: sessions, loc: loc, clock: clock}
}

func expiresAt(st session.Status) *time.Time {
	if !st.Privileged {
		return nil
	}
	t := st.PrivilegeExpiresAt
	return &t
}

// countdown renders the time until the party, or the started notice.
func (h *SessionHandler) countdown(lang string, st session.Status) string {
	if st.Phase != phase.Upcoming {
		return h.loc.Lookup(lang, "countdown.started")
	}
	rel := humanize.RelTime(st.EventStart, h.clock.Now(), "ago", "from now")
	return fmt.Sprintf(h.loc.Lookup(lang, "countdown.startsIn"), rel)
}

// GetState handles GET /state
func (h *SessionHandler) GetState(w http.ResponseWriter, r *http.Request) {
	p, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	st := s.Status()
	lang := i18n.Negotiate(r)
	name, _ := p.DisplayName(r.Context())

	middleware.JSONResponse(w, http.StatusOK, models.StateResponse{
		UserID:             st.UserID,
		DisplayName:        name,
		Phase:              st.Phase.String(),
		EventStart:         st.EventStart,
		Countdown:          h.countdown(lang, st),
		Privileged:         st.Privileged,
		PrivilegeExpiresAt: expiresAt(st),
		Language:           lang,
		Categories:         content.Categories,
		Reactions:          reaction.Allowed,
	})
}

// SetName handles PUT /me/name
func (h *SessionHandler) SetName(w http.ResponseWriter, r *http.Request) {
	p, _, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	var req models.SetNameRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.AppErrorResponse(w, r, h.loc, apperr.Validation("name is required"), middleware.Messages{
			apperr.CodeValidation: "photoUpload.messages.nameRequired",
		})
		return
	}
	p.SetDisplayName(r.Context(), name)

	middleware.JSONResponse(w, http.StatusOK, models.SetNameResponse{DisplayName: name})
}

// Tap handles POST /privilege/tap
func (h *SessionHandler) Tap(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	active, err := s.Tap(r.Context())
	if err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, nil)
		return
	}

	resp := models.TapResponse{Privileged: active}
	if active {
		resp.ExpiresAt = expiresAt(s.Status())
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Events handles GET /events as a server-sent event stream. Each session
// event is written as "event: <type>" with the JSON event as data.
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	events, unsubscribe := s.Notifier().Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		slog.Warn("event stream cannot flush", "error", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Error("failed to encode event", "type", ev.Type, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
