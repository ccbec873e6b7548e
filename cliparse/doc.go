// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadEnv reads an optional .env file, then ParseFlags returns a Config:

	if err := cliparse.LoadEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite, postgres, mongo or memory (default: sqlite)
  - DatabaseURL: connection string (required unless memory)
  - MongoDatabase: database name for mongo (default: partyplanner)
  - RedisURL: Redis for device identities (optional, memory otherwise)
  - BlobDir: photo directory (default: data/blobs)
  - PublicBaseURL: prefix for photo URLs (default: relative)
  - EventStart: party start, RFC 3339 (required)
  - BackendTimeout: bound on each backend call (default: 10s)
  - SessionIdleTimeout: idle sessions are dropped after this (default: 2h)

# CLI Flags

	-p                Server port
	-t                Database type
	-d                Database URL
	--mongo-db        Mongo database name
	--redis           Redis URL
	--blobs           Blob directory
	--public-url      Public base URL
	--event-start     Party start time
	--backend-timeout Backend call timeout
	--idle-timeout    Session idle timeout

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p
	DATABASE_TYPE        → -t
	DATABASE_URL         → -d
	MONGO_DATABASE       → --mongo-db
	REDIS_URL            → --redis
	BLOB_DIR             → --blobs
	PUBLIC_BASE_URL      → --public-url
	EVENT_START          → --event-start
	BACKEND_TIMEOUT      → --backend-timeout
	SESSION_IDLE_TIMEOUT → --idle-timeout

CLI flags take precedence over environment variables, and variables already
in the environment take precedence over the .env file.
*/
package cliparse
