// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and wire types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateItemRequest: name, item, category, notes
  - CreateFeedbackRequest: name, message
  - UpdateFeedbackRequest: message
  - SetNameRequest: name
  - ReactRequest: emoji

# Response Types

Types for JSON responses:

  - StateResponse: user_id, phase, countdown, privilege flags
  - TapResponse: privileged, expires_at
  - ItemsResponse, PhotosResponse, FeedbackListResponse: section lists
  - UploadResponse: per-file upload results
  - ReactResponse: the count shown after a click
  - ErrorResponse: error, code, message

# Wire Types

Item, Photo and Feedback are content records as the current user sees
them: can_delete and can_edit already account for ownership and privilege.
Owner user ids never leave the server.

# Constants

Phase values:

	PhaseUpcoming     = "upcoming"
	PhaseStarted      = "started"
	PhaseFeedbackOpen = "feedback_open"
*/
package models
