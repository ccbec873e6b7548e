// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the partyplanner API server.

partyplanner coordinates one party: guests sign up for what they bring
before it starts, share photos once it has started, and leave feedback
with reactions three hours in. Guests are pseudonymous; anything a guest
added can be removed by that guest, or by anyone who opened the
privilege window with the 8-tap gesture.

# Starting the Server

	EVENT_START=2025-06-21T18:00:00+03:00 DATABASE_URL=file:party.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --event-start 2025-06-21T18:00:00Z

A .env file in the working directory is read first.

# Configuration

Required settings:

  - EVENT_START (--event-start): party start, RFC 3339
  - DATABASE_URL (-d): unless DATABASE_TYPE is memory

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres, mongo or memory
  - MONGO_DATABASE, REDIS_URL, BLOB_DIR, PUBLIC_BASE_URL
  - BACKEND_TIMEOUT, SESSION_IDLE_TIMEOUT

# Architecture

  - handlers, router, middleware, models: HTTP surface
  - session: per-client intent queue, notifier and registry
  - content, upload, reaction: ownership-gated records, photo uploads, reaction tallies
  - identity, privilege, phase: who the caller is, the gesture window, the event phase
  - docstore, blobstore, db: document and blob persistence
  - i18n: localized messages
  - apperr, auth, cliparse: error codes, id generation, configuration

See package documentation for each component.
*/
package main
