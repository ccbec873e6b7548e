// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// CookieKV reads identity from request cookies and writes it back as
// Set-Cookie headers. One CookieKV lives for one request.
type CookieKV struct {
	w     http.ResponseWriter
	r     *http.Request
	clock clockwork.Clock

	mu      sync.Mutex
	written map[string]string
}

func NewCookieKV(w http.ResponseWriter, r *http.Request, clock clockwork.Clock) *CookieKV {
	return &CookieKV{w: w, r: r, clock: clock, written: make(map[string]string)}
}

func (c *CookieKV) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Values set earlier in this request win over the incoming cookie
	if v, ok := c.written[key]; ok {
		return v, true, nil
	}

	cookie, err := c.r.Cookie(key)
	if err == http.ErrNoCookie {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	v, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", false, nil
	}
	return v, true, nil
}

func (c *CookieKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.written[key] = value
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		Expires:  c.clock.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
