// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeValidation       Code = "VALIDATION"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeDuplicateUpload  Code = "DUPLICATE_UPLOAD"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodePhaseGated       Code = "PHASE_GATED"
)
