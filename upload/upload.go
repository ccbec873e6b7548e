// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upload

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/blobstore"
	"github.com/danielhkuo/partyplanner/content"
)

const (
	// TranscodeThreshold is the largest file stored unmodified.
	TranscodeThreshold = 5 << 20

	PathPrefix = "party-photos/"
)

// File is one photo handed in by the client. Name identifies it for
// in-flight tracking.
type File struct {
	Name string
	Data []byte
}

// Result reports one file of a batch.
type Result struct {
	Name   string
	Record content.Record[content.Photo]
	Err    error
}

// Coordinator turns photo files into blobs plus photo records. It belongs
// to one session: the in-flight set is per session.
type Coordinator struct {
	blobs   blobstore.Store
	photos  *content.Store[content.Photo]
	timeout time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCoordinator(blobs blobstore.Store, photos *content.Store[content.Photo], timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = content.DefaultTimeout
	}
	return &Coordinator{
		blobs:    blobs,
		photos:   photos,
		timeout:  timeout,
		inFlight: make(map[string]struct{}),
	}
}

func (c *Coordinator) claim(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[name]; busy {
		return false
	}
	c.inFlight[name] = struct{}{}
	return true
}

func (c *Coordinator) release(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, name)
}

// InFlight reports whether a file name is currently uploading.
func (c *Coordinator) InFlight(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inFlight[name]
	return busy
}

// Submit uploads one file and creates its photo record. A second Submit for
// a name already in flight fails with DuplicateUpload without touching the
// backend.
func (c *Coordinator) Submit(ctx context.Context, f File, actor content.Actor, uploaderName string) (content.Record[content.Photo], error) {
	var none content.Record[content.Photo]

	uploaderName = strings.TrimSpace(uploaderName)
	if uploaderName == "" {
		return none, apperr.Validation("uploader name is required")
	}
	if strings.TrimSpace(f.Name) == "" || len(f.Data) == 0 {
		return none, apperr.Validation("file is empty")
	}

	if !c.claim(f.Name) {
		slog.Info("upload rejected as duplicate", "file", f.Name)
		return none, apperr.DuplicateUpload(f.Name)
	}
	defer c.release(f.Name)

	if ct := http.DetectContentType(f.Data); !strings.HasPrefix(ct, "image/") {
		return none, apperr.Validation("not an image: " + f.Name)
	}

	data, storedName := f.Data, f.Name
	if len(data) > TranscodeThreshold {
		shrunk, err := Transcode(data)
		if err != nil {
			return none, apperr.Wrap(apperr.CodeValidation, "could not process image "+f.Name, err)
		}
		slog.Info("photo transcoded", "file", f.Name,
			"from", humanize.IBytes(uint64(len(data))), "to", humanize.IBytes(uint64(len(shrunk))))
		data, storedName = shrunk, jpegName(f.Name)
	}

	blobPath, err := newBlobPath(storedName)
	if err != nil {
		return none, apperr.StoreUnavailable("failed to name blob", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.blobs.Put(ctx, blobPath, data); err != nil {
		return none, apperr.StoreUnavailable("failed to upload "+f.Name, err)
	}
	url, err := c.blobs.URL(ctx, blobPath)
	if err != nil {
		c.discard(blobPath)
		return none, apperr.StoreUnavailable("failed to resolve "+f.Name, err)
	}

	rec, err := c.photos.Create(ctx, content.Photo{
		URL:          url,
		Path:         blobPath,
		UploaderName: uploaderName,
	}, actor)
	if err != nil {
		c.discard(blobPath)
		return none, err
	}

	slog.Info("photo uploaded", "file", f.Name, "path", blobPath, "size", humanize.IBytes(uint64(len(data))))
	return rec, nil
}

// discard removes a blob whose record could not be written.
func (c *Coordinator) discard(blobPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.blobs.Delete(ctx, blobPath); err != nil {
		slog.Warn("orphaned blob", "path", blobPath, "error", err)
	}
}

// SubmitBatch uploads every file in parallel and waits for all of them.
// Failures are reported per file and never cancel siblings.
func (c *Coordinator) SubmitBatch(ctx context.Context, files []File, actor content.Actor, uploaderName string) []Result {
	results := make([]Result, len(files))

	var g errgroup.Group
	for i, f := range files {
		g.Go(func() error {
			rec, err := c.Submit(ctx, f, actor, uploaderName)
			results[i] = Result{Name: f.Name, Record: rec, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// newBlobPath prefixes the base name with a time-ordered UUID.
func newBlobPath(name string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == ".." || base == "/" {
		base = "photo"
	}
	return PathPrefix + id.String() + "-" + base, nil
}

// jpegName swaps the extension of a transcoded file for .jpg.
func jpegName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
}
