// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package privilege

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	RequiredTaps = 8
	TapGap       = 500 * time.Millisecond
	Duration     = 60 * time.Second
)

// Options carries the window's notification hooks. Both run outside the
// window's lock and may call back into it.
type Options struct {
	// OnChange fires whenever the active flag flips.
	OnChange func(active bool)
	// OnExpire fires after an expiry; the host must do a full reload of
	// every gated view, not just re-render.
	OnExpire func()
}

// Window is a time-boxed, client-local override of ownership checks.
// It never survives a restart.
type Window struct {
	clock clockwork.Clock
	opts  Options

	mu         sync.Mutex
	taps       int
	lastTap    time.Time
	active     bool
	expiresAt  time.Time
	timer      clockwork.Timer
	generation uint64
	closed     bool
}

func NewWindow(clock clockwork.Clock, opts Options) *Window {
	return &Window{clock: clock, opts: opts}
}

// Tap records one occurrence of the trigger gesture and reports whether
// the window is active afterwards. A gap over TapGap restarts the count.
// Reaching RequiredTaps activates the window or, when it is already active,
// restarts its timer; taps keep counting, so continued rapid tapping keeps
// extending it.
func (w *Window) Tap() bool {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return false
	}

	now := w.clock.Now()
	if !w.lastTap.IsZero() && now.Sub(w.lastTap) > TapGap {
		w.taps = 0
	}
	w.taps++
	w.lastTap = now

	if w.taps < RequiredTaps {
		active := w.active
		w.mu.Unlock()
		return active
	}

	wasActive := w.active
	w.activateLocked(now)
	w.mu.Unlock()

	if !wasActive {
		slog.Info("privilege window opened", "expires_at", now.Add(Duration))
		w.notifyChange(true)
	}
	return true
}

func (w *Window) activateLocked(now time.Time) {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.generation++
	gen := w.generation
	w.active = true
	w.expiresAt = now.Add(Duration)
	w.timer = w.clock.AfterFunc(Duration, func() { w.expire(gen) })
}

func (w *Window) expire(gen uint64) {
	w.mu.Lock()
	// A restarted timer supersedes this one
	if gen != w.generation || !w.active || w.closed {
		w.mu.Unlock()
		return
	}
	w.active = false
	w.expiresAt = time.Time{}
	w.timer = nil
	w.taps = 0
	w.mu.Unlock()

	slog.Info("privilege window expired")
	w.notifyChange(false)
	if w.opts.OnExpire != nil {
		w.opts.OnExpire()
	}
}

func (w *Window) notifyChange(active bool) {
	if w.opts.OnChange != nil {
		w.opts.OnChange(active)
	}
}

// IsActive must be consulted at the moment of each mutation; the state can
// lapse between rendering a list and acting on it.
func (w *Window) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// ExpiresAt is zero when the window is inactive.
func (w *Window) ExpiresAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expiresAt
}

// Close cancels the expiry timer without firing notifications.
func (w *Window) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.active = false
	w.generation++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
