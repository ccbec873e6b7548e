// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/partyplanner/auth"
)

const (
	UserIDKey      = "partyplanner_user"
	DisplayNameKey = "partyplanner_user_name"

	// TTL is how long a client keeps its identity before a new one is issued.
	TTL = 30 * 24 * time.Hour
)

// KV is the persistence capability the provider stores identity in.
// Get reports ok=false for absent or expired keys.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Namespacer hands out per-client views of a shared KV.
type Namespacer interface {
	Namespace(ns string) KV
}

// Provider is the client-held pseudonymous identity. Nothing it stores is
// verified; the display name is never used for authorization.
type Provider struct {
	kv    KV
	clock clockwork.Clock

	mu     sync.Mutex
	userID string
}

func NewProvider(kv KV, clock clockwork.Clock) *Provider {
	return &Provider{kv: kv, clock: clock}
}

// UserID returns the persisted id, creating and persisting one when absent.
// It never fails: persistence errors are logged and the fresh id is still
// returned for the lifetime of this provider.
func (p *Provider) UserID(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.userID != "" {
		return p.userID
	}

	stored, ok, err := p.kv.Get(ctx, UserIDKey)
	if err != nil {
		slog.Warn("identity lookup failed", "error", err)
	}
	if ok && auth.IsUserID(stored) {
		p.userID = stored
		return stored
	}

	id := p.newUserID()
	if err := p.kv.Set(ctx, UserIDKey, id, TTL); err != nil {
		slog.Warn("identity persist failed", "error", err, "user_id", id)
	}
	slog.Info("identity issued", "user_id", id)
	p.userID = id
	return id
}

func (p *Provider) newUserID() string {
	now := p.clock.Now()
	id, err := auth.GenerateUserID(now)
	if err == nil {
		return id
	}
	slog.Warn("user id generation failed, using uuid suffix", "error", err)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return "user_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}

// SetDisplayName persists name alongside the id.
func (p *Provider) SetDisplayName(ctx context.Context, name string) {
	p.UserID(ctx)
	if err := p.kv.Set(ctx, DisplayNameKey, name, TTL); err != nil {
		slog.Warn("display name persist failed", "error", err)
	}
}

// DisplayName returns the stored name, ok=false when none was ever set.
func (p *Provider) DisplayName(ctx context.Context) (string, bool) {
	name, ok, err := p.kv.Get(ctx, DisplayNameKey)
	if err != nil {
		slog.Warn("display name lookup failed", "error", err)
		return "", false
	}
	return name, ok
}

// ResolveName persists a non-blank name and returns it trimmed. A blank
// name falls back to whatever was stored last, or "" if nothing was.
func (p *Provider) ResolveName(ctx context.Context, name string) string {
	name = strings.TrimSpace(name)
	if name != "" {
		p.SetDisplayName(ctx, name)
		return name
	}
	stored, _ := p.DisplayName(ctx)
	return stored
}

type (
	ctxKey      struct{}
	clientIDKey struct{}
)

// WithProvider attaches p to ctx.
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the provider attached by WithProvider, or nil.
func FromContext(ctx context.Context) *Provider {
	p, _ := ctx.Value(ctxKey{}).(*Provider)
	return p
}

// WithClientID attaches the id of one running client instance (a tab or an
// app launch) to ctx. Unlike the user id it never outlives the client.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientID returns the id attached by WithClientID, or "".
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
