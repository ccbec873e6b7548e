// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/i18n"
	"github.com/danielhkuo/partyplanner/models"
	"github.com/danielhkuo/partyplanner/session"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		code   apperr.Code
		status int
	}{
		{apperr.CodeValidation, http.StatusBadRequest},
		{apperr.CodeUnauthorized, http.StatusForbidden},
		{apperr.CodeNotFound, http.StatusNotFound},
		{apperr.CodeDuplicateUpload, http.StatusConflict},
		{apperr.CodePhaseGated, http.StatusConflict},
		{apperr.CodeStoreUnavailable, http.StatusServiceUnavailable},
		{apperr.CodeUnknown, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(string(tc.code), func(t *testing.T) {
			if got := StatusFor(tc.code); got != tc.status {
				t.Errorf("Expected %d, got %d", tc.status, got)
			}
		})
	}
}

func TestAppErrorResponse(t *testing.T) {
	loc, err := i18n.New()
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name      string
		lang      string
		err       error
		overrides Messages
		status    int
		code      string
		message   string
	}{
		{
			name:    "unauthorized in english",
			lang:    "en",
			err:     apperr.Unauthorized("not yours"),
			status:  http.StatusForbidden,
			code:    "UNAUTHORIZED",
			message: "You can only change things you added yourself.",
		},
		{
			name:      "override in finnish",
			lang:      "fi",
			err:       apperr.Validation("message required"),
			overrides: Messages{apperr.CodeValidation: "feedback.messages.required"},
			status:    http.StatusBadRequest,
			code:      "VALIDATION",
			message:   "Kirjoita nimesi ja viesti.",
		},
		{
			name:    "closed session",
			lang:    "en",
			err:     session.ErrClosed,
			status:  http.StatusServiceUnavailable,
			code:    "STORE_UNAVAILABLE",
			message: "Something went wrong. Please try again.",
		},
		{
			name:    "plain error",
			lang:    "en",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			code:    "UNKNOWN",
			message: "Something went wrong. Please try again.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/items?lang="+tc.lang, nil)
			w := httptest.NewRecorder()

			AppErrorResponse(w, req, loc, tc.err, tc.overrides)

			if w.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, w.Code)
			}
			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Code != tc.code {
				t.Errorf("Expected code %s, got %s", tc.code, resp.Code)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message %q, got %q", tc.message, resp.Message)
			}
		})
	}
}
