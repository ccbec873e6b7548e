// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 12, 31, 18, 0, 0, 0, time.UTC)

func TestCurrent(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Phase
	}{
		{"one second before start", start.Add(-time.Second), Upcoming},
		{"exactly at start", start, Started},
		{"one hour in", start.Add(time.Hour), Started},
		{"just before feedback", start.Add(FeedbackDelay - time.Nanosecond), Started},
		{"exactly at feedback", start.Add(FeedbackDelay), FeedbackOpen},
		{"next day", start.Add(24 * time.Hour), FeedbackOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Current(tt.now, start))
			assert.Equal(t, tt.want != Upcoming, IsFrozen(tt.now, start))
		})
	}
}

func TestPhase_JSON(t *testing.T) {
	out, err := json.Marshal(map[string]Phase{"phase": FeedbackOpen})
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"feedback_open"}`, string(out))
}

func TestLatch_NeverMovesBackwards(t *testing.T) {
	l := NewLatch(start)

	assert.Equal(t, Upcoming, l.Observe(start.Add(-time.Minute)))
	assert.Equal(t, Started, l.Observe(start))

	// Clock rolled back
	assert.Equal(t, Started, l.Observe(start.Add(-time.Hour)))
	assert.True(t, l.Reached(Started))
	assert.False(t, l.Reached(FeedbackOpen))

	assert.Equal(t, FeedbackOpen, l.Observe(start.Add(FeedbackDelay)))
	assert.Equal(t, FeedbackOpen, l.Observe(start.Add(-24*time.Hour)))
	assert.Equal(t, FeedbackOpen, l.Phase())
}

func TestPoller_ReportsTransitions(t *testing.T) {
	clock := clockwork.NewFakeClockAt(start.Add(-2 * time.Second))
	latch := NewLatch(start)

	changes := make(chan Phase, 4)
	poller := NewPoller(clock, latch, time.Second, func(p Phase) { changes <- p })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	clock.Advance(time.Second)
	select {
	case p := <-changes:
		t.Fatalf("unexpected transition to %s", p)
	case <-time.After(50 * time.Millisecond):
	}

	clock.Advance(time.Second)
	select {
	case p := <-changes:
		assert.Equal(t, Started, p)
	case <-time.After(2 * time.Second):
		t.Fatal("expected transition to started")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
