// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/partyplanner/blobstore"
	"github.com/danielhkuo/partyplanner/cliparse"
	"github.com/danielhkuo/partyplanner/db"
	"github.com/danielhkuo/partyplanner/docstore"
	"github.com/danielhkuo/partyplanner/i18n"
	"github.com/danielhkuo/partyplanner/identity"
	"github.com/danielhkuo/partyplanner/middleware"
	"github.com/danielhkuo/partyplanner/session"
)

// TestDBURL is an in-memory SQLite database; the single connection keeps
// it alive for the whole test.
const TestDBURL = "file::memory:"

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.DatabaseSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseType:       cliparse.DatabaseSQLite,
		DatabaseURL:        TestDBURL,
		BlobDir:            "unused",
		EventStart:         time.Date(2025, 6, 21, 18, 0, 0, 0, time.UTC),
		BackendTimeout:     time.Second,
		SessionIdleTimeout: time.Hour,
	}
}

// Env is a complete in-process backend on a fake clock.
type Env struct {
	DB        *sql.DB
	Docs      docstore.Store
	Blobs     *blobstore.FSStore
	Clock     *clockwork.FakeClock
	Devices   *identity.MemoryKV
	Registry  *session.Registry
	Localizer *i18n.Localizer
}

// NewEnv builds an Env whose party starts startOffset from the fake
// clock's now: positive for upcoming, negative once started.
func NewEnv(t *testing.T, startOffset time.Duration) *Env {
	t.Helper()

	conn := SetupTestDB(t)
	cfg := GetTestConfig()
	clock := clockwork.NewFakeClockAt(cfg.EventStart.Add(-startOffset))

	loc, err := i18n.New()
	if err != nil {
		t.Fatalf("Failed to load catalogues: %v", err)
	}

	env := &Env{
		DB:        conn,
		Docs:      docstore.NewSQLStore(conn, docstore.DialectSQLite),
		Blobs:     blobstore.NewMemoryStore(""),
		Clock:     clock,
		Devices:   identity.NewMemoryKV(clock),
		Localizer: loc,
	}
	env.Registry = session.NewRegistry(session.Config{
		EventStart: cfg.EventStart,
		Docs:       env.Docs,
		Blobs:      env.Blobs,
		Clock:      clock,
		Timeout:    cfg.BackendTimeout,
	})
	t.Cleanup(env.Registry.Close)
	return env
}

// Serve routes req to h registered under pattern, with identity attached
// the way the router does it.
func (e *Env) Serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)

	w := httptest.NewRecorder()
	middleware.WithIdentity(e.Devices, e.Clock, mux).ServeHTTP(w, req)
	return w
}

// NewDevice returns headers for a fresh device identity running one
// client instance.
func NewDevice() map[string]string {
	return map[string]string{
		middleware.DeviceHeader:        uuid.NewString(),
		middleware.ClientSessionHeader: uuid.NewString(),
	}
}

// Relaunch returns device's headers with a new client instance, as after
// an app restart or page reload.
func Relaunch(device map[string]string) map[string]string {
	next := make(map[string]string, len(device))
	for k, v := range device {
		next[k] = v
	}
	next[middleware.ClientSessionHeader] = uuid.NewString()
	return next
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
