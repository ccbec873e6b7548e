// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"

	"github.com/danielhkuo/partyplanner/content"
	"github.com/danielhkuo/partyplanner/upload"
)

func call[T any](ctx context.Context, s *Session, in Intent) (T, error) {
	v, err := s.Dispatch(ctx, in)
	if err != nil {
		var zero T
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

func (s *Session) List(ctx context.Context) (View, error) {
	return call[View](ctx, s, ListAll{})
}

// Tap reports whether the privilege window is open after the tap.
func (s *Session) Tap(ctx context.Context) (bool, error) {
	return call[bool](ctx, s, Tap{})
}

func (s *Session) CreateItem(ctx context.Context, it content.Item) (content.Record[content.Item], error) {
	return call[content.Record[content.Item]](ctx, s, CreateItem{Item: it})
}

func (s *Session) DeleteItem(ctx context.Context, id string) error {
	_, err := s.Dispatch(ctx, DeleteItem{ID: id})
	return err
}

func (s *Session) UploadPhotos(ctx context.Context, files []upload.File, uploaderName string) ([]upload.Result, error) {
	return call[[]upload.Result](ctx, s, UploadPhotos{Files: files, UploaderName: uploaderName})
}

func (s *Session) DeletePhoto(ctx context.Context, id string) error {
	_, err := s.Dispatch(ctx, DeletePhoto{ID: id})
	return err
}

func (s *Session) CreateFeedback(ctx context.Context, f content.Feedback) (content.Record[content.Feedback], error) {
	return call[content.Record[content.Feedback]](ctx, s, CreateFeedback{Feedback: f})
}

func (s *Session) UpdateFeedback(ctx context.Context, id, message string) (content.Record[content.Feedback], error) {
	return call[content.Record[content.Feedback]](ctx, s, UpdateFeedback{ID: id, Message: message})
}

func (s *Session) DeleteFeedback(ctx context.Context, id string) error {
	_, err := s.Dispatch(ctx, DeleteFeedback{ID: id})
	return err
}

// React returns the locally displayed count after the click.
func (s *Session) React(ctx context.Context, feedbackID, emoji string) (int64, error) {
	return call[int64](ctx, s, React{FeedbackID: feedbackID, Emoji: emoji})
}
