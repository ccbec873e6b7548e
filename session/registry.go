// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Registry holds one session per running client instance. Several
// instances of one user each get their own privilege window and upload
// set; ownership still follows the user id.
type Registry struct {
	cfg Config

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewRegistry(cfg Config) *Registry {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Registry{cfg: cfg, sessions: make(map[string]*Session)}
}

// Get returns the session of client instance clientID acting as userID,
// starting one if needed. A session whose user id no longer matches is
// replaced. It returns nil after Close.
func (r *Registry) Get(clientID, userID string) *Session {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	var replaced *Session
	if s, ok := r.sessions[clientID]; ok {
		if s.userID == userID {
			r.mu.Unlock()
			s.touch()
			return s
		}
		replaced = s
	}
	s := New(userID, r.cfg)
	r.sessions[clientID] = s
	r.mu.Unlock()

	if replaced != nil {
		slog.Info("client identity changed, session replaced", "client_id", clientID, "user_id", userID)
		replaced.Close()
	}
	return s
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Prune closes sessions idle for longer than idle that have no open
// subscriptions, and returns how many it closed.
func (r *Registry) Prune(idle time.Duration) int {
	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.IdleFor() > idle && s.notifier.Subscribers() == 0 {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		slog.Info("pruned idle sessions", "count", len(stale))
	}
	return len(stale)
}

// RunPruner prunes every interval until ctx is cancelled.
func (r *Registry) RunPruner(ctx context.Context, interval, idle time.Duration) {
	ticker := r.cfg.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.Prune(idle)
		}
	}
}

// Close closes every session. Get returns nil afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()
}
