// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	userIDPrefix = "user_"
	suffixLen    = 9
	base36Chars  = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateUserID creates a pseudonymous participant id of the form
// user_<unix millis>_<9 base36 chars>.
// The timestamp keeps ids roughly ordered by first visit.
func GenerateUserID(now time.Time) (string, error) {
	suffix, err := randomBase36(suffixLen)
	if err != nil {
		return "", fmt.Errorf("failed to generate user ID: %w", err)
	}
	return userIDPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix, nil
}

// IsUserID reports whether s has the shape produced by GenerateUserID.
// Used to reject garbage cookies before they become record owners.
func IsUserID(s string) bool {
	rest, ok := strings.CutPrefix(s, userIDPrefix)
	if !ok {
		return false
	}
	millis, suffix, ok := strings.Cut(rest, "_")
	if !ok || millis == "" || len(suffix) != suffixLen {
		return false
	}
	if _, err := strconv.ParseInt(millis, 10, 64); err != nil {
		return false
	}
	for _, c := range suffix {
		if !strings.ContainsRune(base36Chars, c) {
			return false
		}
	}
	return true
}

func randomBase36(n int) (string, error) {
	limit := big.NewInt(int64(len(base36Chars)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = base36Chars[idx.Int64()]
	}
	return string(out), nil
}
