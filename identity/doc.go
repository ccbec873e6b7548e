// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity implements the client-held pseudonymous identity.

A Provider wraps a KV capability. The id is created lazily on the first
UserID call and persisted for 30 days; the display name is stored next to it
and may change freely.

	p := identity.NewProvider(identity.NewCookieKV(w, r, clock), clock)
	userID := p.UserID(ctx)
	name := p.ResolveName(ctx, req.Name)

# Storage

  - CookieKV: browser clients, one instance per request
  - RedisKV: native clients keyed by X-Device-UUID, TTL enforced by Redis
  - MemoryKV: tests, and device clients when no Redis is configured

RedisKV and MemoryKV are shared stores; Namespace returns a per-device view.
*/
package identity
