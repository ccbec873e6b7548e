// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"github.com/danielhkuo/partyplanner/content"
	"github.com/danielhkuo/partyplanner/upload"
)

// Intent is a user action sent from the rendering surface into a session.
type Intent interface {
	intentName() string
}

type (
	ListAll    struct{}
	CreateItem struct{ Item content.Item }
	DeleteItem struct{ ID string }

	UploadPhotos struct {
		Files        []upload.File
		UploaderName string
	}
	DeletePhoto struct{ ID string }

	CreateFeedback struct{ Feedback content.Feedback }
	UpdateFeedback struct{ ID, Message string }
	DeleteFeedback struct{ ID string }
	React          struct{ FeedbackID, Emoji string }

	Tap struct{}

	// reloadAll is queued by privilege expiry.
	reloadAll struct{}
)

func (ListAll) intentName() string        { return "list_all" }
func (CreateItem) intentName() string     { return "create_item" }
func (DeleteItem) intentName() string     { return "delete_item" }
func (UploadPhotos) intentName() string   { return "upload_photos" }
func (DeletePhoto) intentName() string    { return "delete_photo" }
func (CreateFeedback) intentName() string { return "create_feedback" }
func (UpdateFeedback) intentName() string { return "update_feedback" }
func (DeleteFeedback) intentName() string { return "delete_feedback" }
func (React) intentName() string          { return "react" }
func (Tap) intentName() string            { return "tap" }
func (reloadAll) intentName() string      { return "reload_all" }
