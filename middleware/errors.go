// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/i18n"
	"github.com/danielhkuo/partyplanner/models"
	"github.com/danielhkuo/partyplanner/session"
)

// Messages overrides the catalogue key shown for an error code.
type Messages map[apperr.Code]string

var defaultMessages = Messages{
	apperr.CodeValidation:       "messages.error.invalid",
	apperr.CodeUnauthorized:     "messages.error.unauthorized",
	apperr.CodeNotFound:         "messages.error.notFound",
	apperr.CodeDuplicateUpload:  "photoUpload.messages.alreadyUploading",
	apperr.CodePhaseGated:       "messages.error.frozen",
	apperr.CodeStoreUnavailable: "messages.error.unavailable",
	apperr.CodeUnknown:          "messages.error.unavailable",
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeDuplicateUpload, apperr.CodePhaseGated:
		return http.StatusConflict
	case apperr.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeFor classifies err. A closed session is reported as unavailable.
func CodeFor(err error) apperr.Code {
	if errors.Is(err, session.ErrClosed) {
		return apperr.CodeStoreUnavailable
	}
	return apperr.CodeOf(err)
}

// LocalizedMessage returns the text for err in the request's language.
func LocalizedMessage(r *http.Request, loc *i18n.Localizer, err error, overrides Messages) string {
	code := CodeFor(err)
	key, ok := overrides[code]
	if !ok {
		key = defaultMessages[code]
	}
	return loc.Lookup(i18n.Negotiate(r), key)
}

// AppErrorResponse writes err as a localized JSON error with its code.
func AppErrorResponse(w http.ResponseWriter, r *http.Request, loc *i18n.Localizer, err error, overrides Messages) {
	code := CodeFor(err)
	status := StatusFor(code)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "code", code, "error", err)
	}
	JSONResponse(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Code:    string(code),
		Message: LocalizedMessage(r, loc, err, overrides),
	})
}
