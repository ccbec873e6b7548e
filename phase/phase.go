// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package phase

import (
	"fmt"
	"sync"
	"time"
)

// Phase is the lifecycle stage of the event. Values are ordered.
type Phase int

const (
	Upcoming Phase = iota
	Started
	FeedbackOpen
)

// FeedbackDelay is how long after the start feedback opens.
const FeedbackDelay = 3 * time.Hour

func (p Phase) String() string {
	switch p {
	case Upcoming:
		return "upcoming"
	case Started:
		return "started"
	case FeedbackOpen:
		return "feedback_open"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Current derives the phase from two instants. Boundaries are inclusive:
// now == eventStart is already Started.
func Current(now, eventStart time.Time) Phase {
	switch {
	case !now.Before(eventStart.Add(FeedbackDelay)):
		return FeedbackOpen
	case !now.Before(eventStart):
		return Started
	default:
		return Upcoming
	}
}

// IsFrozen reports whether the bring-list no longer accepts submissions.
func IsFrozen(now, eventStart time.Time) bool {
	return Current(now, eventStart) != Upcoming
}

// Latch remembers the furthest phase a session has observed, so a clock
// rolling backwards never reopens a frozen section.
type Latch struct {
	eventStart time.Time

	mu       sync.Mutex
	furthest Phase
}

func NewLatch(eventStart time.Time) *Latch {
	return &Latch{eventStart: eventStart}
}

// Observe folds now into the latch and returns the latched phase.
func (l *Latch) Observe(now time.Time) Phase {
	p := Current(now, l.eventStart)

	l.mu.Lock()
	defer l.mu.Unlock()
	if p > l.furthest {
		l.furthest = p
	}
	return l.furthest
}

// Phase returns the latched phase without observing a new instant.
func (l *Latch) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.furthest
}

func (l *Latch) EventStart() time.Time {
	return l.eventStart
}

// Reached reports whether the latched phase is at least min.
func (l *Latch) Reached(min Phase) bool {
	return l.Phase() >= min
}
