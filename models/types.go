// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Phase names as they appear on the wire
const (
	PhaseUpcoming     = "upcoming"
	PhaseStarted      = "started"
	PhaseFeedbackOpen = "feedback_open"
)

// Request types

type CreateItemRequest struct {
	Name     string `json:"name"`
	Item     string `json:"item"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

type CreateFeedbackRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type UpdateFeedbackRequest struct {
	Message string `json:"message"`
}

type SetNameRequest struct {
	Name string `json:"name"`
}

type ReactRequest struct {
	Emoji string `json:"emoji"`
}

// Response types

type StateResponse struct {
	UserID             string     `json:"user_id"`
	DisplayName        string     `json:"display_name,omitempty"`
	Phase              string     `json:"phase"`
	EventStart         time.Time  `json:"event_start"`
	Countdown          string     `json:"countdown"`
	Privileged         bool       `json:"privileged"`
	PrivilegeExpiresAt *time.Time `json:"privilege_expires_at,omitempty"`
	Language           string     `json:"language"`
	Categories         []string   `json:"categories"`
	Reactions          []string   `json:"reactions"`
}

type TapResponse struct {
	Privileged bool       `json:"privileged"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type SetNameResponse struct {
	DisplayName string `json:"display_name"`
}

type ReactResponse struct {
	FeedbackID string `json:"feedback_id"`
	Emoji      string `json:"emoji"`
	Count      int64  `json:"count"`
}

// Open is false for sections the party has not reached yet. Stale is set
// when the list could not be refreshed and the last known one is shown.

type ItemsResponse struct {
	Items []Item `json:"items"`
	Stale bool   `json:"stale,omitempty"`
}

type PhotosResponse struct {
	Open   bool    `json:"open"`
	Photos []Photo `json:"photos"`
	Stale  bool    `json:"stale,omitempty"`
}

type FeedbackListResponse struct {
	Open     bool       `json:"open"`
	Feedback []Feedback `json:"feedback"`
	Stale    bool       `json:"stale,omitempty"`
}

type UploadResult struct {
	FileName string `json:"file_name"`
	Photo    *Photo `json:"photo,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

type UploadResponse struct {
	Uploaded int            `json:"uploaded"`
	Failed   int            `json:"failed"`
	Results  []UploadResult `json:"results"`
}

// Domain types

type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Item      string    `json:"item"`
	Category  string    `json:"category"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	CanDelete bool      `json:"can_delete"`
}

type Photo struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	UploaderName string    `json:"uploader_name"`
	CreatedAt    time.Time `json:"created_at"`
	CanDelete    bool      `json:"can_delete"`
}

type Feedback struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Message    string           `json:"message"`
	Reactions  map[string]int64 `json:"reactions"`
	CreatedAt  time.Time        `json:"created_at"`
	LastEdited *time.Time       `json:"last_edited,omitempty"`
	CanEdit    bool             `json:"can_edit"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
