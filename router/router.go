// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/partyplanner/handlers"
	"github.com/danielhkuo/partyplanner/i18n"
	"github.com/danielhkuo/partyplanner/identity"
	"github.com/danielhkuo/partyplanner/middleware"
	"github.com/danielhkuo/partyplanner/session"
)

// Deps are the process-wide services the routes are built on.
type Deps struct {
	Sessions  *session.Registry
	Localizer *i18n.Localizer
	Clock     clockwork.Clock
	// Devices keeps identities of X-Device-UUID clients.
	Devices identity.Namespacer
	// Blobs serves stored photos under /blobs/; nil when the blob store
	// hands out its own URLs.
	Blobs http.Handler
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	itemHandler := handlers.NewItemHandler(deps.Sessions, deps.Localizer)
	photoHandler := handlers.NewPhotoHandler(deps.Sessions, deps.Localizer)
	feedbackHandler := handlers.NewFeedbackHandler(deps.Sessions, deps.Localizer)
	sessionHandler := handlers.NewSessionHandler(deps.Sessions, deps.Localizer, deps.Clock)

	// withIdentity logs the request and attaches the caller's identity
	withIdentity := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithIdentity(deps.Devices, deps.Clock, h).ServeHTTP)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Client state
	mux.HandleFunc("GET /state", withIdentity(sessionHandler.GetState))
	mux.HandleFunc("PUT /me/name", withIdentity(sessionHandler.SetName))
	mux.HandleFunc("POST /privilege/tap", withIdentity(sessionHandler.Tap))
	mux.HandleFunc("GET /events", withIdentity(sessionHandler.Events))

	// Bring-list
	mux.HandleFunc("GET /items", withIdentity(itemHandler.ListItems))
	mux.HandleFunc("POST /items", withIdentity(itemHandler.CreateItem))
	mux.HandleFunc("DELETE /items/{id}", withIdentity(itemHandler.DeleteItem))

	// Photos
	mux.HandleFunc("GET /photos", withIdentity(photoHandler.ListPhotos))
	mux.HandleFunc("POST /photos", withIdentity(photoHandler.UploadPhotos))
	mux.HandleFunc("DELETE /photos/{id}", withIdentity(photoHandler.DeletePhoto))

	// Feedback
	mux.HandleFunc("GET /feedback", withIdentity(feedbackHandler.ListFeedback))
	mux.HandleFunc("POST /feedback", withIdentity(feedbackHandler.CreateFeedback))
	mux.HandleFunc("PATCH /feedback/{id}", withIdentity(feedbackHandler.UpdateFeedback))
	mux.HandleFunc("DELETE /feedback/{id}", withIdentity(feedbackHandler.DeleteFeedback))
	mux.HandleFunc("POST /feedback/{id}/reactions", withIdentity(feedbackHandler.React))

	if deps.Blobs != nil {
		mux.Handle("GET /blobs/", deps.Blobs)
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("partyplanner API v1"))
	})

	return mux
}
