// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the partyplanner API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Deps{
		Sessions:  registry,
		Localizer: loc,
		Clock:     clock,
		Devices:   devices,
		Blobs:     blobs.Handler(),
	})

# Endpoints

Health:

	GET /health
	GET /

Client state:

	GET  /state         - Identity, phase, countdown, privilege
	PUT  /me/name       - Remember display name
	POST /privilege/tap - One tap of the privilege gesture
	GET  /events        - Server-sent events (privilege-changed, reload, phase-changed)

Bring-list (open until the party starts):

	GET    /items
	POST   /items
	DELETE /items/{id}

Photos (open once the party starts):

	GET    /photos
	POST   /photos      - multipart: files, uploader_name
	DELETE /photos/{id}

Feedback (open three hours after the start):

	GET    /feedback
	POST   /feedback
	PATCH  /feedback/{id}
	DELETE /feedback/{id}
	POST   /feedback/{id}/reactions

Stored photos:

	GET /blobs/...

# Identity

Every route except health, root and blobs runs behind
middleware.WithIdentity, so handlers find the caller's identity.Provider
in the request context.
*/
package router
