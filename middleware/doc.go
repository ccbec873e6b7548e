// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, client IP) and completion (duration_ms).

# Identity

WithIdentity attaches an identity.Provider to the request context:

	handler := middleware.WithIdentity(devices, clock, mux)
	p := identity.FromContext(r.Context())

Requests carrying a valid X-Device-UUID keep their identity in the shared
device KV (Redis in production); browsers keep it in cookies.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, PATCH, DELETE, OPTIONS with headers
Content-Type, Accept-Language, X-Device-UUID.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Write an apperr error with its status and a localized message:

	middleware.AppErrorResponse(w, r, loc, err, middleware.Messages{
		apperr.CodeStoreUnavailable: "messages.error.addItem",
	})

Status mapping: Validation 400, Unauthorized 403, NotFound 404,
DuplicateUpload and PhaseGated 409, StoreUnavailable 503, anything else 500.

Parse JSON request bodies:

	var req models.CreateItemRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
