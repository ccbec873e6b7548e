// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package content

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/blobstore"
	"github.com/danielhkuo/partyplanner/docstore"
)

const (
	ItemsCollection    = "partyItems"
	PhotosCollection   = "partyPhotos"
	FeedbackCollection = "partyFeedback"

	// ReactionsField holds the emoji -> count tally of a feedback record.
	ReactionsField = "reactions"
)

// Categories is the fixed set of bring-list sections.
var Categories = []string{"beverages", "savory", "sweets", "other"}

// Item is a bring-list entry.
type Item struct {
	Name     string `json:"name"`
	Item     string `json:"item"`
	Category string `json:"category"`
	Notes    string `json:"notes,omitempty"`
}

// Photo points at an uploaded blob.
type Photo struct {
	URL          string `json:"url"`
	Path         string `json:"filename"`
	UploaderName string `json:"uploaderName"`
}

// Feedback is a message left after the event, with open reactions.
type Feedback struct {
	Name       string           `json:"name"`
	Message    string           `json:"message"`
	Reactions  map[string]int64 `json:"reactions"`
	LastEdited *time.Time       `json:"lastEdited,omitempty"`
}

func ItemKind() Kind[Item] {
	return Kind[Item]{
		Name:       "item",
		Collection: ItemsCollection,
		Prepare: func(it Item) (Item, error) {
			it.Name = strings.TrimSpace(it.Name)
			it.Item = strings.TrimSpace(it.Item)
			it.Notes = strings.TrimSpace(it.Notes)
			it.Category = strings.TrimSpace(it.Category)
			if it.Name == "" || it.Item == "" {
				return it, apperr.Validation("name and item are required")
			}
			if it.Category == "" {
				it.Category = "other"
			}
			if !slices.Contains(Categories, it.Category) {
				return it, apperr.Validation("unknown category: " + it.Category)
			}
			return it, nil
		},
		ToDoc: func(it Item) docstore.Document {
			return docstore.Document{
				"name":     it.Name,
				"item":     it.Item,
				"category": it.Category,
				"notes":    it.Notes,
			}
		},
		FromDoc: func(d docstore.Document) Item {
			return Item{
				Name:     stringField(d, "name"),
				Item:     stringField(d, "item"),
				Category: stringField(d, "category"),
				Notes:    stringField(d, "notes"),
			}
		},
	}
}

// PhotoKind deletes the blob behind a photo record when the record goes.
func PhotoKind(blobs blobstore.Store) Kind[Photo] {
	return Kind[Photo]{
		Name:       "photo",
		Collection: PhotosCollection,
		Prepare: func(p Photo) (Photo, error) {
			p.UploaderName = strings.TrimSpace(p.UploaderName)
			if p.UploaderName == "" {
				return p, apperr.Validation("uploader name is required")
			}
			if p.URL == "" || p.Path == "" {
				return p, apperr.Validation("photo has no blob")
			}
			return p, nil
		},
		ToDoc: func(p Photo) docstore.Document {
			return docstore.Document{
				"url":          p.URL,
				"filename":     p.Path,
				"uploaderName": p.UploaderName,
			}
		},
		FromDoc: func(d docstore.Document) Photo {
			return Photo{
				URL:          stringField(d, "url"),
				Path:         stringField(d, "filename"),
				UploaderName: stringField(d, "uploaderName"),
			}
		},
		Cascade: func(ctx context.Context, p Photo) error {
			return blobs.Delete(ctx, p.Path)
		},
	}
}

// FeedbackKind allows editing the message only.
func FeedbackKind() Kind[Feedback] {
	return Kind[Feedback]{
		Name:       "feedback",
		Collection: FeedbackCollection,
		Prepare: func(f Feedback) (Feedback, error) {
			f.Name = strings.TrimSpace(f.Name)
			f.Message = strings.TrimSpace(f.Message)
			if f.Name == "" || f.Message == "" {
				return f, apperr.Validation("name and message are required")
			}
			if f.Reactions == nil {
				f.Reactions = map[string]int64{}
			}
			return f, nil
		},
		ToDoc: func(f Feedback) docstore.Document {
			reactions := docstore.Document{}
			for emoji, n := range f.Reactions {
				reactions[emoji] = n
			}
			doc := docstore.Document{
				"name":         f.Name,
				"message":      f.Message,
				ReactionsField: reactions,
			}
			if f.LastEdited != nil {
				doc["lastEdited"] = *f.LastEdited
			}
			return doc
		},
		FromDoc: func(d docstore.Document) Feedback {
			f := Feedback{
				Name:      stringField(d, "name"),
				Message:   stringField(d, "message"),
				Reactions: map[string]int64{},
			}
			if raw, ok := d[ReactionsField].(docstore.Document); ok {
				for emoji, v := range raw {
					f.Reactions[emoji] = intValue(v)
				}
			} else if raw, ok := d[ReactionsField].(map[string]any); ok {
				for emoji, v := range raw {
					f.Reactions[emoji] = intValue(v)
				}
			}
			if edited := timeField(d, "lastEdited"); !edited.IsZero() {
				f.LastEdited = &edited
			}
			return f
		},
		Edit: func(current, edit Feedback, now time.Time) Feedback {
			current.Message = edit.Message
			current.LastEdited = &now
			return current
		},
		EditPatch: func(f Feedback) docstore.Document {
			return docstore.Document{
				"message":    f.Message,
				"lastEdited": *f.LastEdited,
			}
		},
	}
}
