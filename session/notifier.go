// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"log/slog"
	"sync"

	"github.com/danielhkuo/partyplanner/phase"
)

const (
	EventPrivilegeChanged = "privilege-changed"
	EventReload           = "reload"
	EventPhaseChanged     = "phase-changed"
)

// Event is pushed to every subscriber of a session.
type Event struct {
	Type       string      `json:"type"`
	Privileged bool        `json:"privileged"`
	Phase      phase.Phase `json:"phase"`
}

// Notifier fans events out to subscribers. A subscriber that falls behind
// loses events rather than blocking the session.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Event)}
}

// Subscribe returns an event channel and the function that ends the
// subscription and closes it.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan Event, 16)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if _, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(ch)
			}
		})
	}
}

func (n *Notifier) Publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id, ch := range n.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("dropping session event", "type", ev.Type, "subscriber", id)
		}
	}
}

// Subscribers reports how many subscriptions are open.
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// closeAll ends every subscription.
func (n *Notifier) closeAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
