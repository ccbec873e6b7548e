// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apperr defines the error taxonomy shared by the core packages.

# Codes

	CodeValidation       blank required field, nothing sent to the backend
	CodeUnauthorized     ownership check failed and no privilege is active
	CodeNotFound         stale cache entry, caller should re-list
	CodeDuplicateUpload  a file with the same name is already in flight
	CodeStoreUnavailable transient backend failure, prior state preserved
	CodePhaseGated       the event phase does not expose the section

# Usage

	if apperr.Has(err, apperr.CodeUnauthorized) {
		...
	}

Errors wrap their cause, so errors.Is against backend sentinels still works.
*/
package apperr
