// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/partyplanner/identity"
)

const (
	// DeviceHeader identifies native clients that cannot keep cookies.
	DeviceHeader = "X-Device-UUID"

	// ClientSessionHeader names one running client instance. Clients mint
	// it per page load or app launch; the server echoes the one it used.
	ClientSessionHeader = "X-Client-Session"

	clientCookie = "partyplanner_client"
)

// WithIdentity attaches an identity.Provider and a client instance id to
// every request. Requests with a valid X-Device-UUID keep their identity
// in devices under that id; everything else uses cookies. The user id is
// resolved before the handler runs so a new cookie is set ahead of the
// response body.
func WithIdentity(devices identity.Namespacer, clock clockwork.Clock, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var kv identity.KV
		if id, err := uuid.Parse(r.Header.Get(DeviceHeader)); err == nil && devices != nil {
			kv = devices.Namespace("device:" + id.String())
		} else {
			kv = identity.NewCookieKV(w, r, clock)
		}

		p := identity.NewProvider(kv, clock)
		p.UserID(r.Context())

		ctx := identity.WithProvider(r.Context(), p)
		ctx = identity.WithClientID(ctx, clientInstanceID(w, r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientInstanceID prefers the X-Client-Session header, then the browser
// session cookie, and mints a new id otherwise. The cookie carries no
// expiry so it ends with the browser session.
func clientInstanceID(w http.ResponseWriter, r *http.Request) string {
	if id, err := uuid.Parse(r.Header.Get(ClientSessionHeader)); err == nil {
		w.Header().Set(ClientSessionHeader, id.String())
		return id.String()
	}
	if c, err := r.Cookie(clientCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			w.Header().Set(ClientSessionHeader, id.String())
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(ClientSessionHeader, id)
	return id
}
