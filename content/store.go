// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package content

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/docstore"
)

const (
	fieldOwner     = "ownerUserId"
	fieldCreatedAt = "createdAt"

	DefaultTimeout = 10 * time.Second
)

// Actor is who performs a mutation and whether the privilege window was
// open at the moment of the call.
type Actor struct {
	UserID     string
	Privileged bool
}

// Record is one stored piece of content. OwnerUserID is written once at
// creation and never changes.
type Record[P any] struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"ownerUserId"`
	CreatedAt   time.Time `json:"createdAt"`
	Payload     P         `json:"payload"`
}

// Kind describes one content collection.
type Kind[P any] struct {
	Name       string
	Collection string

	// Prepare trims and validates a payload before it is stored.
	Prepare func(P) (P, error)
	ToDoc   func(P) docstore.Document
	FromDoc func(docstore.Document) P

	// Edit merges an edit into the current payload and stamps the edit
	// time. EditPatch selects the fields an edit persists. A nil Edit makes
	// the kind immutable.
	Edit      func(current, edit P, now time.Time) P
	EditPatch func(P) docstore.Document

	// Cascade cleans up after a successful delete. Its error is logged and
	// never fails the delete.
	Cascade func(ctx context.Context, p P) error
}

// Store is an ownership-gated view over one collection with a local cache.
type Store[P any] struct {
	kind    Kind[P]
	docs    docstore.Store
	clock   clockwork.Clock
	timeout time.Duration
	cache   Cache[P]
}

func NewStore[P any](kind Kind[P], docs docstore.Store, clock clockwork.Clock, timeout time.Duration) *Store[P] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store[P]{kind: kind, docs: docs, clock: clock, timeout: timeout}
}

func (s *Store[P]) Kind() Kind[P] { return s.kind }

// Cached returns the last reconciled list without touching the backend.
func (s *Store[P]) Cached() []Record[P] { return s.cache.Snapshot() }

func (s *Store[P]) Find(id string) (Record[P], bool) { return s.cache.Find(id) }

// Bump patches a cached payload locally. Used for optimistic counters that
// the backend updates on its own.
func (s *Store[P]) Bump(id string, fn func(P) P) (Record[P], bool) {
	return s.cache.Patch(id, fn)
}

// List reloads the whole collection, newest first, and replaces the cache.
// On failure the previous cache is kept.
func (s *Store[P]) List(ctx context.Context) ([]Record[P], error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	docs, err := s.docs.Query(ctx, s.kind.Collection, fieldCreatedAt, docstore.Desc)
	if err != nil {
		slog.Warn("content list failed", "kind", s.kind.Name, "error", err)
		return s.cache.Snapshot(), apperr.StoreUnavailable("failed to load "+s.kind.Name, err)
	}

	records := make([]Record[P], 0, len(docs))
	for _, d := range docs {
		records = append(records, s.fromDoc(d))
	}
	s.cache.Replace(records)
	return records, nil
}

// Reload is List without the result, for hosts that only need the cache
// refreshed.
func (s *Store[P]) Reload(ctx context.Context) error {
	_, err := s.List(ctx)
	return err
}

// Create stamps owner and creation time, persists, and prepends to the
// cache.
func (s *Store[P]) Create(ctx context.Context, payload P, actor Actor) (Record[P], error) {
	prepared, err := s.kind.Prepare(payload)
	if err != nil {
		return Record[P]{}, err
	}
	if actor.UserID == "" {
		return Record[P]{}, apperr.Unauthorized("no acting identity")
	}

	rec := Record[P]{
		OwnerUserID: actor.UserID,
		CreatedAt:   s.clock.Now().UTC(),
		Payload:     prepared,
	}

	doc := s.kind.ToDoc(prepared)
	doc[fieldOwner] = rec.OwnerUserID
	doc[fieldCreatedAt] = rec.CreatedAt

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	id, err := s.docs.Create(ctx, s.kind.Collection, doc)
	if err != nil {
		return Record[P]{}, apperr.StoreUnavailable("failed to save "+s.kind.Name, err)
	}
	rec.ID = id

	s.cache.Prepend(rec)
	slog.Info("content created", "kind", s.kind.Name, "id", id, "owner", actor.UserID)
	return rec, nil
}

func authorize[P any](rec Record[P], actor Actor) error {
	if rec.OwnerUserID == actor.UserID || actor.Privileged {
		return nil
	}
	return apperr.Unauthorized("only the owner can change this")
}

// Delete removes a cached record if the actor owns it or is privileged.
func (s *Store[P]) Delete(ctx context.Context, id string, actor Actor) error {
	rec, ok := s.cache.Find(id)
	if !ok {
		return apperr.NotFound(s.kind.Name + " not found")
	}
	if err := authorize(rec, actor); err != nil {
		slog.Info("content delete denied", "kind", s.kind.Name, "id", id, "actor", actor.UserID)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.docs.Delete(ctx, s.kind.Collection, id); err != nil {
		return apperr.StoreUnavailable("failed to delete "+s.kind.Name, err)
	}

	if s.kind.Cascade != nil {
		if err := s.kind.Cascade(ctx, rec.Payload); err != nil {
			slog.Warn("content cascade failed", "kind", s.kind.Name, "id", id, "error", err)
		}
	}

	s.cache.Remove(id)
	slog.Info("content deleted", "kind", s.kind.Name, "id", id, "actor", actor.UserID, "privileged", actor.Privileged)
	return nil
}

// Update merges edit into a cached record under the same rule as Delete
// and stamps the edit time.
func (s *Store[P]) Update(ctx context.Context, id string, edit P, actor Actor) (Record[P], error) {
	if s.kind.Edit == nil {
		return Record[P]{}, apperr.Validation(s.kind.Name + " cannot be edited")
	}

	rec, ok := s.cache.Find(id)
	if !ok {
		return Record[P]{}, apperr.NotFound(s.kind.Name + " not found")
	}
	if err := authorize(rec, actor); err != nil {
		return Record[P]{}, err
	}

	merged, err := s.kind.Prepare(s.kind.Edit(rec.Payload, edit, s.clock.Now().UTC()))
	if err != nil {
		return Record[P]{}, err
	}
	patch := s.kind.EditPatch(merged)
	delete(patch, fieldOwner)
	delete(patch, fieldCreatedAt)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.docs.Update(ctx, s.kind.Collection, id, patch); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			s.cache.Remove(id)
			return Record[P]{}, apperr.NotFound(s.kind.Name + " not found")
		}
		return Record[P]{}, apperr.StoreUnavailable("failed to update "+s.kind.Name, err)
	}

	updated, _ := s.cache.Patch(id, func(P) P { return merged })
	slog.Info("content updated", "kind", s.kind.Name, "id", id, "actor", actor.UserID)
	return updated, nil
}

func (s *Store[P]) fromDoc(d docstore.Record) Record[P] {
	return Record[P]{
		ID:          d.ID,
		OwnerUserID: stringField(d.Data, fieldOwner),
		CreatedAt:   timeField(d.Data, fieldCreatedAt),
		Payload:     s.kind.FromDoc(d.Data),
	}
}
