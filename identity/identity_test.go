// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/partyplanner/auth"
)

func TestProvider_UserIDCreatedOnceAndPersisted(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	kv := NewMemoryKV(clock)

	first := NewProvider(kv, clock).UserID(ctx)
	require.True(t, auth.IsUserID(first), "unexpected id shape %q", first)

	// A second provider over the same storage sees the same identity
	second := NewProvider(kv, clock).UserID(ctx)
	assert.Equal(t, first, second)
}

func TestProvider_UserIDReissuedAfterExpiry(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	kv := NewMemoryKV(clock)

	first := NewProvider(kv, clock).UserID(ctx)

	clock.Advance(TTL - time.Minute)
	assert.Equal(t, first, NewProvider(kv, clock).UserID(ctx))

	clock.Advance(2 * time.Minute)
	assert.NotEqual(t, first, NewProvider(kv, clock).UserID(ctx))
}

func TestProvider_IgnoresMalformedStoredID(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	kv := NewMemoryKV(clock)
	require.NoError(t, kv.Set(ctx, UserIDKey, "admin", TTL))

	id := NewProvider(kv, clock).UserID(ctx)
	assert.NotEqual(t, "admin", id)
	assert.True(t, auth.IsUserID(id))
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store down")
}

func (failingKV) Set(context.Context, string, string, time.Duration) error {
	return errors.New("store down")
}

func TestProvider_NeverFails(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(failingKV{}, clockwork.NewFakeClock())

	id := p.UserID(ctx)
	assert.True(t, auth.IsUserID(id))
	// Stable for the lifetime of the provider even though nothing persisted
	assert.Equal(t, id, p.UserID(ctx))

	p.SetDisplayName(ctx, "Al")
	_, ok := p.DisplayName(ctx)
	assert.False(t, ok)
}

func TestProvider_ResolveName(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	p := NewProvider(NewMemoryKV(clock), clock)

	assert.Equal(t, "", p.ResolveName(ctx, "   "))
	assert.Equal(t, "Al", p.ResolveName(ctx, "  Al "))
	assert.Equal(t, "Al", p.ResolveName(ctx, ""))
	assert.Equal(t, "Peggy", p.ResolveName(ctx, "Peggy"))

	name, ok := p.DisplayName(ctx)
	require.True(t, ok)
	assert.Equal(t, "Peggy", name)
}

func TestCookieKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()

	// First request: no cookies, identity gets issued
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/state", nil)
	p := NewProvider(NewCookieKV(w, r, clock), clock)
	id := p.UserID(ctx)
	p.SetDisplayName(ctx, "Al Bundy; Jr.")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, int(TTL.Seconds()), c.MaxAge)
	}

	// Second request carries the cookies back
	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/state", nil)
	for _, c := range cookies {
		r2.AddCookie(c)
	}
	p2 := NewProvider(NewCookieKV(w2, r2, clock), clock)
	assert.Equal(t, id, p2.UserID(ctx))
	name, ok := p2.DisplayName(ctx)
	require.True(t, ok)
	assert.Equal(t, "Al Bundy; Jr.", name)

	// Nothing new was issued
	assert.Empty(t, w2.Result().Cookies())
}

func TestRedisKV_NamespacesAndTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisKV(client)
	clock := clockwork.NewFakeClock()

	phone := NewProvider(store.Namespace("device-a"), clock)
	tablet := NewProvider(store.Namespace("device-b"), clock)

	phoneID := phone.UserID(ctx)
	assert.NotEqual(t, phoneID, tablet.UserID(ctx))
	assert.True(t, mr.Exists("identity:device-a:"+UserIDKey))

	// Same device, new provider: same identity
	assert.Equal(t, phoneID, NewProvider(store.Namespace("device-a"), clock).UserID(ctx))

	mr.FastForward(TTL + time.Second)
	assert.NotEqual(t, phoneID, NewProvider(store.Namespace("device-a"), clock).UserID(ctx))
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	clock := clockwork.NewFakeClock()
	p := NewProvider(NewMemoryKV(clock), clock)
	ctx := WithProvider(context.Background(), p)
	assert.Same(t, p, FromContext(ctx))
}
