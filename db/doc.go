// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the SQL database and creates its schema.

# Connecting

Open accepts "sqlite" (modernc.org/sqlite, pure Go) or "postgres" (lib/pq):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - document: (collection, id) -> JSON text of one content record
  - counter: (collection, id, field) -> BIGINT, updated with an upsert so
    concurrent increments add inside the database

# Relationships

	document 1──* counter   (same collection and id)

Counters are removed together with their document by docstore.SQLStore.

# Indexes

  - counter.(collection, id)
*/
package db
