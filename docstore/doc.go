// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package docstore is the backing document store: opaque key/value documents
grouped in collections, queried whole and ordered by one field.

# Implementations

  - MemoryStore: maps behind a mutex
  - SQLStore: JSON text in the document table, counters in the counter table
    (sqlite or postgres, schema from package db)
  - MongoStore: one Mongo collection per collection name

# Atomic increments

Increment never reads the value into Go. SQLStore upserts the counter row
with value = counter.value + excluded.value and folds counters into the
document on read; MongoStore issues $inc.

# Errors

Get, Update and Increment return ErrNotFound for absent ids. Delete is
idempotent. Driver failures are wrapped with github.com/pkg/errors.
*/
package docstore
