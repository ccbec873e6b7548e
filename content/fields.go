// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package content

import (
	"encoding/json"
	"time"

	"github.com/danielhkuo/partyplanner/docstore"
)

func stringField(d docstore.Document, key string) string {
	s, _ := d[key].(string)
	return s
}

// timeField accepts native instants and the RFC 3339 strings older
// documents were written with.
func timeField(d docstore.Document, key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

func intValue(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
