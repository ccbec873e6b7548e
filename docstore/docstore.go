// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrNotFound is returned by Get, Update and Increment for absent ids.
var ErrNotFound = errors.New("document not found")

// Document is an opaque key/value record. Values are strings, int64,
// float64, bool, time.Time or nested Documents.
type Document map[string]any

// Record is a document together with its store-assigned id.
type Record struct {
	ID   string
	Data Document
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Store is the backing document store.
type Store interface {
	// Query returns every document of a collection ordered by a field.
	Query(ctx context.Context, collection, orderBy string, dir Direction) ([]Record, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	// Create persists data under a fresh id.
	Create(ctx context.Context, collection string, data Document) (string, error)
	// Update shallow-merges patch into the stored document.
	Update(ctx context.Context, collection, id string, patch Document) error
	// Delete removes a document; deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Increment adds delta to the numeric value at a dotted field path,
	// atomically on the server side.
	Increment(ctx context.Context, collection, id, fieldPath string, delta int64) error
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateField(name string) error {
	if !fieldPattern.MatchString(name) {
		return fmt.Errorf("invalid field name %q", name)
	}
	return nil
}

// splitPath splits "reactions.👍" into its segments. Segments after the
// first may hold any non-empty text without dots.
func splitPath(path string) ([]string, error) {
	parts := strings.Split(path, ".")
	if err := validateField(parts[0]); err != nil {
		return nil, err
	}
	for _, p := range parts[1:] {
		if p == "" || strings.ContainsAny(p, "$") {
			return nil, fmt.Errorf("invalid field path %q", path)
		}
	}
	return parts, nil
}

// addAt adds delta to the number at path inside doc, creating intermediate
// documents as needed.
func addAt(doc Document, path []string, delta int64) {
	cur := doc
	for _, key := range path[:len(path)-1] {
		next, ok := asDocument(cur[key])
		if !ok {
			next = Document{}
		}
		cur[key] = next
		cur = next
	}
	last := path[len(path)-1]
	cur[last] = toInt64(cur[last]) + delta
}

func asDocument(v any) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return Document(m), true
	default:
		return nil, false
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// clone deep-copies nested documents so callers never share maps with
// the store.
func clone(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if nested, ok := asDocument(v); ok {
			out[k] = clone(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// compareValues orders the scalar types a Document may hold. Absent values
// sort first.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case int64, int, int32, float64:
		af, bf := toFloat(a), toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func toFloat(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return float64(toInt64(v))
}
