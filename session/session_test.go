// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/blobstore"
	"github.com/danielhkuo/partyplanner/content"
	"github.com/danielhkuo/partyplanner/docstore"
	"github.com/danielhkuo/partyplanner/identity"
	"github.com/danielhkuo/partyplanner/phase"
	"github.com/danielhkuo/partyplanner/privilege"
	"github.com/danielhkuo/partyplanner/upload"
)

var eventStart = time.Date(2025, 12, 31, 18, 0, 0, 0, time.UTC)

const (
	userA = "user_1735000000000_aaaaaaaaa"
	userB = "user_1735000000000_bbbbbbbbb"
)

// skewClock lets a test roll wall time backwards.
type skewClock struct {
	*clockwork.FakeClock
	back atomic.Int64
}

func (c *skewClock) Now() time.Time {
	return c.FakeClock.Now().Add(-time.Duration(c.back.Load()))
}

type harness struct {
	clock    *skewClock
	docs     *docstore.MemoryStore
	blobs    *blobstore.FSStore
	registry *Registry
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	h := &harness{
		clock: &skewClock{FakeClock: clockwork.NewFakeClockAt(now)},
		docs:  docstore.NewMemoryStore(),
		blobs: blobstore.NewMemoryStore("http://party.local"),
	}
	h.registry = NewRegistry(Config{
		EventStart:   eventStart,
		Docs:         h.docs,
		Blobs:        h.blobs,
		Clock:        h.clock,
		Timeout:      5 * time.Second,
		PollInterval: time.Minute,
	})
	t.Cleanup(h.registry.Close)
	return h
}

// open returns the session of userID's single client instance.
func (h *harness) open(userID string) *Session {
	return h.registry.Get("client-"+userID, userID)
}

func (h *harness) tapToActivate(t *testing.T, s *Session) {
	t.Helper()
	ctx := context.Background()
	var active bool
	for i := 0; i < privilege.RequiredTaps; i++ {
		if i > 0 {
			h.clock.Advance(100 * time.Millisecond)
		}
		var err error
		active, err = s.Tap(ctx)
		require.NoError(t, err)
	}
	require.True(t, active)
}

func waitFor(t *testing.T, events <-chan Event, typ string) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event stream closed")
			if ev.Type == typ {
				return ev
			}
		case <-timeout:
			t.Fatalf("no %s event", typ)
		}
	}
}

func TestScenario_PrivilegeOverridesOwnership(t *testing.T) {
	h := newHarness(t, eventStart.Add(-24*time.Hour))
	ctx := context.Background()
	a, b := h.open(userA), h.open(userB)

	rec, err := a.CreateItem(ctx, content.Item{Name: "Al", Item: "Chips"})
	require.NoError(t, err)

	view, err := b.List(ctx)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	err = b.DeleteItem(ctx, rec.ID)
	assert.True(t, apperr.Has(err, apperr.CodeUnauthorized), "got %v", err)

	h.tapToActivate(t, b)
	assert.True(t, b.Status().Privileged)

	require.NoError(t, b.DeleteItem(ctx, rec.ID))

	view, err = a.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestPrivilegeExpiryForcesReload(t *testing.T) {
	h := newHarness(t, eventStart.Add(-24*time.Hour))
	ctx := context.Background()
	a, b := h.open(userA), h.open(userB)

	events, unsubscribe := b.Notifier().Subscribe()
	defer unsubscribe()

	h.tapToActivate(t, b)
	ev := waitFor(t, events, EventPrivilegeChanged)
	assert.True(t, ev.Privileged)

	// Someone adds an item while b is privileged
	rec, err := a.CreateItem(ctx, content.Item{Name: "Al", Item: "Chips"})
	require.NoError(t, err)

	h.clock.Advance(privilege.Duration + time.Second)

	ev = waitFor(t, events, EventPrivilegeChanged)
	assert.False(t, ev.Privileged)
	waitFor(t, events, EventReload)
	assert.False(t, b.Status().Privileged)

	// The reload picked up the new item, and ownership applies again
	err = b.DeleteItem(ctx, rec.ID)
	assert.True(t, apperr.Has(err, apperr.CodeUnauthorized), "got %v", err)
}

func TestItemsFreezeAtStartAndStayFrozen(t *testing.T) {
	h := newHarness(t, eventStart.Add(-time.Second))
	ctx := context.Background()
	s := h.open(userA)

	assert.Equal(t, phase.Upcoming, s.Status().Phase)
	rec, err := s.CreateItem(ctx, content.Item{Name: "Al", Item: "Chips"})
	require.NoError(t, err)

	h.clock.Advance(time.Second)
	assert.Equal(t, phase.Started, s.Status().Phase)

	_, err = s.CreateItem(ctx, content.Item{Name: "Al", Item: "Salsa"})
	assert.True(t, apperr.Has(err, apperr.CodePhaseGated), "got %v", err)

	// Clock rolls back an hour: still frozen
	h.clock.back.Store(int64(time.Hour))
	_, err = s.CreateItem(ctx, content.Item{Name: "Al", Item: "Salsa"})
	assert.True(t, apperr.Has(err, apperr.CodePhaseGated), "got %v", err)
	assert.Equal(t, phase.Started, s.Status().Phase)

	// Owners cannot remove items once the list is frozen, privilege can
	err = s.DeleteItem(ctx, rec.ID)
	assert.True(t, apperr.Has(err, apperr.CodePhaseGated), "got %v", err)

	h.tapToActivate(t, s)
	assert.NoError(t, s.DeleteItem(ctx, rec.ID))
}

func TestSectionsOpenWithPhase(t *testing.T) {
	h := newHarness(t, eventStart.Add(-time.Hour))
	ctx := context.Background()
	s := h.open(userA)
	pic := smallPNG(t)

	_, err := s.UploadPhotos(ctx, []upload.File{{Name: "a.png", Data: pic}}, "Al")
	assert.True(t, apperr.Has(err, apperr.CodePhaseGated))

	view, err := s.List(ctx)
	require.NoError(t, err)
	assert.Nil(t, view.Photos)
	assert.Nil(t, view.Feedback)

	h.clock.Advance(time.Hour)

	results, err := s.UploadPhotos(ctx, []upload.File{{Name: "a.png", Data: pic}}, "Al")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	_, err = s.CreateFeedback(ctx, content.Feedback{Name: "Al", Message: "great"})
	assert.True(t, apperr.Has(err, apperr.CodePhaseGated))

	h.clock.Advance(phase.FeedbackDelay)

	fb, err := s.CreateFeedback(ctx, content.Feedback{Name: "Al", Message: "great"})
	require.NoError(t, err)

	n, err := s.React(ctx, fb.ID, "👍")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	edited, err := s.UpdateFeedback(ctx, fb.ID, "amazing")
	require.NoError(t, err)
	assert.Equal(t, "amazing", edited.Payload.Message)

	view, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, phase.FeedbackOpen, view.Phase)
	assert.Len(t, view.Photos, 1)
	require.Len(t, view.Feedback, 1)
	assert.EqualValues(t, 1, view.Feedback[0].Payload.Reactions["👍"])

	require.NoError(t, s.DeletePhoto(ctx, results[0].Record.ID))
	require.NoError(t, s.DeleteFeedback(ctx, fb.ID))
}

func TestStaleDeleteRefreshesCache(t *testing.T) {
	h := newHarness(t, eventStart.Add(-time.Hour))
	ctx := context.Background()
	a, b := h.open(userA), h.open(userB)

	rec, err := a.CreateItem(ctx, content.Item{Name: "Al", Item: "Chips"})
	require.NoError(t, err)

	// b never listed, so its cache does not know the item yet
	err = b.DeleteItem(ctx, rec.ID)
	assert.True(t, apperr.Has(err, apperr.CodeNotFound), "got %v", err)

	// The NotFound reloaded b's items; now the ownership check applies
	err = b.DeleteItem(ctx, rec.ID)
	assert.True(t, apperr.Has(err, apperr.CodeUnauthorized), "got %v", err)
}

// noisePNG does not compress, so its encoded size tracks its pixel count.
func noisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(7))
	rng.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func smallPNG(t *testing.T) []byte {
	return noisePNG(t, 4, 4)
}

func TestScenario_LargePhotoUsesPersistedName(t *testing.T) {
	h := newHarness(t, eventStart.Add(time.Hour))
	ctx := context.Background()

	provider := identity.NewProvider(identity.NewMemoryKV(h.clock), h.clock)
	provider.ResolveName(ctx, "Al")
	provider.ResolveName(ctx, "Alice")

	s := h.open(provider.UserID(ctx))

	data := noisePNG(t, 2400, 1000)
	require.Greater(t, len(data), 6<<20)

	results, err := s.UploadPhotos(ctx, []upload.File{{Name: "photo.jpg", Data: data}}, provider.ResolveName(ctx, ""))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	rec := results[0].Record
	stored, _ := provider.DisplayName(ctx)
	assert.Equal(t, stored, rec.Payload.UploaderName)
	assert.Equal(t, "Alice", rec.Payload.UploaderName)

	blob, err := h.blobs.Open(rec.Payload.Path)
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(blob))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, 1920)
	assert.LessOrEqual(t, cfg.Height, 1080)
}

func TestCloseStopsTimers(t *testing.T) {
	h := newHarness(t, eventStart.Add(-time.Hour))
	s := h.open(userA)

	events, _ := s.Notifier().Subscribe()
	h.tapToActivate(t, s)
	waitFor(t, events, EventPrivilegeChanged)

	s.Close()
	h.clock.Advance(2 * privilege.Duration)

	for ev := range events {
		assert.NotEqual(t, EventReload, ev.Type, "no reload after close")
	}

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
