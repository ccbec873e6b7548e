// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/partyplanner/blobstore"
	"github.com/danielhkuo/partyplanner/cliparse"
	"github.com/danielhkuo/partyplanner/db"
	"github.com/danielhkuo/partyplanner/docstore"
	"github.com/danielhkuo/partyplanner/i18n"
	"github.com/danielhkuo/partyplanner/identity"
	"github.com/danielhkuo/partyplanner/middleware"
	"github.com/danielhkuo/partyplanner/router"
	"github.com/danielhkuo/partyplanner/session"
)

const (
	pruneInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := cliparse.LoadEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server closed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}

func run(ctx context.Context, cfg cliparse.Config) error {
	clock := clockwork.NewRealClock()

	docs, closeDocs, err := openDocStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDocs()

	devices, closeDevices, err := openDeviceKV(ctx, cfg, clock)
	if err != nil {
		return err
	}
	defer closeDevices()

	blobs, err := blobstore.NewFSStore(cfg.BlobDir, cfg.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	loc, err := i18n.New()
	if err != nil {
		return fmt.Errorf("catalogues: %w", err)
	}

	registry := session.NewRegistry(session.Config{
		EventStart: cfg.EventStart,
		Docs:       docs,
		Blobs:      blobs,
		Clock:      clock,
		Timeout:    cfg.BackendTimeout,
	})

	mux := router.NewRouter(router.Deps{
		Sessions:  registry,
		Localizer: loc,
		Clock:     clock,
		Devices:   devices,
		Blobs:     blobs.Handler(),
	})
	server := &http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port, "event_start", cfg.EventStart, "database", cfg.DatabaseType)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		registry.RunPruner(ctx, pruneInterval, cfg.SessionIdleTimeout)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		// Closing sessions ends open event streams so Shutdown can drain
		registry.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openDocStore(ctx context.Context, cfg cliparse.Config) (docstore.Store, func(), error) {
	switch cfg.DatabaseType {
	case cliparse.DatabaseMemory:
		slog.Warn("Using in-memory document store, content is lost on restart")
		return docstore.NewMemoryStore(), func() {}, nil

	case cliparse.DatabaseMongo:
		store, disconnect, err := docstore.ConnectMongo(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo: %w", err)
		}
		slog.Info("Connected to mongo", "database", cfg.MongoDatabase)
		return store, func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := disconnect(dctx); err != nil {
				slog.Warn("mongo disconnect failed", "error", err)
			}
		}, nil

	default:
		conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.CreateSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		slog.Info("Database schema ready", "type", cfg.DatabaseType)

		dialect := docstore.DialectSQLite
		if cfg.DatabaseType == cliparse.DatabasePostgres {
			dialect = docstore.DialectPostgres
		}
		return docstore.NewSQLStore(conn, dialect), func() { conn.Close() }, nil
	}
}

func openDeviceKV(ctx context.Context, cfg cliparse.Config, clock clockwork.Clock) (identity.Namespacer, func(), error) {
	if cfg.RedisURL == "" {
		return identity.NewMemoryKV(clock), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	slog.Info("Connected to redis", "addr", opts.Addr)
	return identity.NewRedisKV(client), func() { client.Close() }, nil
}
