// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the partyplanner API.

# Handler Types

Each handler is a struct holding the session registry and the localizer:

  - ItemHandler: bring-list (list, create, delete)
  - PhotoHandler: photo gallery (list, multipart upload, delete)
  - FeedbackHandler: feedback (list, create, edit, delete, react)
  - SessionHandler: state, display name, privilege taps, event stream

Handlers are created via constructor functions:

	itemHandler := handlers.NewItemHandler(registry, loc)

# Sessions

Every handler resolves the caller's identity.Provider from the request
context (see middleware.WithIdentity) and turns the request into an intent
on that user's session. The session applies ownership, privilege and phase
rules; handlers only translate to and from the wire types in models.

# Errors

Failures are apperr errors. middleware.AppErrorResponse maps them to a
status and a localized message; handlers pick the catalogue key that fits
the operation, e.g. "messages.error.addItem" when an item cannot be saved.

# Event Stream

GET /events keeps the connection open and writes each session event as

	event: privilege-changed
	data: {"type":"privilege-changed","privileged":false,"phase":"upcoming"}

Clients re-list every section on "reload".
*/
package handlers
