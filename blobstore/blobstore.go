// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

var ErrNotFound = errors.New("blob not found")

// Store is the backing blob store.
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
	// URL resolves a durable fetch URL for a stored blob.
	URL(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
}

// FSStore keeps blobs in an afero filesystem and serves them under
// baseURL + "/blobs/".
type FSStore struct {
	fs      afero.Fs
	baseURL string
}

// NewFSStore stores blobs beneath dir on disk.
func NewFSStore(dir, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}
	return &FSStore{
		fs:      afero.NewBasePathFs(afero.NewOsFs(), dir),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// NewMemoryStore keeps blobs in memory.
func NewMemoryStore(baseURL string) *FSStore {
	return &FSStore{fs: afero.NewMemMapFs(), baseURL: strings.TrimSuffix(baseURL, "/")}
}

// cleanPath rejects empty paths and any ".." segment. Dots inside a
// segment, as in "party...png", are ordinary file name characters.
func cleanPath(p string) (string, error) {
	if p == "" || slices.Contains(strings.Split(p, "/"), "..") {
		return "", fmt.Errorf("invalid blob path %q", p)
	}
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return "", fmt.Errorf("invalid blob path %q", p)
	}
	return cleaned, nil
}

func (s *FSStore) Put(ctx context.Context, p string, data []byte) error {
	name, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create blob dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, name, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

func (s *FSStore) URL(ctx context.Context, p string) (string, error) {
	name, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	exists, err := afero.Exists(s.fs, name)
	if err != nil {
		return "", fmt.Errorf("failed to stat blob: %w", err)
	}
	if !exists {
		return "", ErrNotFound
	}

	segments := strings.Split(strings.TrimPrefix(name, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/blobs/" + strings.Join(segments, "/"), nil
}

func (s *FSStore) Delete(ctx context.Context, p string) error {
	name, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// Open returns the stored bytes.
func (s *FSStore) Open(p string) ([]byte, error) {
	name, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Handler serves stored blobs. Mount it at "/blobs/".
func (s *FSStore) Handler() http.Handler {
	return http.StripPrefix("/blobs", http.FileServer(afero.NewHttpFs(s.fs)))
}
