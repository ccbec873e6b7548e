// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/partyplanner/blobstore"
	"github.com/danielhkuo/partyplanner/models"
	"github.com/danielhkuo/partyplanner/testutil"
)

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, uploader string, files map[string][]byte, headers map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if uploader != "" {
		mw.WriteField("uploader_name", uploader)
	}
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestUploadPhotos(t *testing.T) {
	env := testutil.NewEnv(t, -time.Minute)
	h := NewPhotoHandler(env.Registry, env.Localizer)
	alice := testutil.NewDevice()

	w := env.Serve("POST /photos", h.UploadPhotos, uploadRequest(t, "Alice", map[string][]byte{"cake.png": smallPNG(t)}, alice))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.UploadResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Uploaded != 1 || resp.Failed != 0 {
		t.Fatalf("Expected one upload, got %+v", resp)
	}
	photo := resp.Results[0].Photo
	if photo == nil {
		t.Fatal("Expected a photo in the result")
	}
	if !strings.HasPrefix(photo.URL, "/blobs/party-photos/") {
		t.Errorf("Unexpected photo URL %q", photo.URL)
	}
	if photo.UploaderName != "Alice" || !photo.CanDelete {
		t.Errorf("Unexpected photo %+v", photo)
	}

	// Listed for everyone
	w = env.Serve("GET /photos", h.ListPhotos, testutil.MakeRequest("GET", "/photos", nil, testutil.NewDevice()))
	var list models.PhotosResponse
	testutil.AssertJSON(t, w, &list)
	if !list.Open || len(list.Photos) != 1 {
		t.Errorf("Expected one open photo, got %+v", list)
	}
}

func TestUploadPhotos_PartialFailure(t *testing.T) {
	env := testutil.NewEnv(t, -time.Minute)
	h := NewPhotoHandler(env.Registry, env.Localizer)

	files := map[string][]byte{
		"cake.png":  smallPNG(t),
		"notes.txt": []byte("definitely not an image"),
	}
	w := env.Serve("POST /photos", h.UploadPhotos, uploadRequest(t, "Alice", files, testutil.NewDevice()))
	testutil.AssertStatus(t, w, http.StatusMultiStatus)

	var resp models.UploadResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Uploaded != 1 || resp.Failed != 1 {
		t.Fatalf("Expected one success and one failure, got %+v", resp)
	}
	for _, res := range resp.Results {
		if res.FileName == "notes.txt" && res.Code != "VALIDATION" {
			t.Errorf("Expected VALIDATION for the text file, got %s", res.Code)
		}
	}
}

func TestUploadPhotos_Rejections(t *testing.T) {
	env := testutil.NewEnv(t, -time.Minute)
	h := NewPhotoHandler(env.Registry, env.Localizer)

	t.Run("name required", func(t *testing.T) {
		req := uploadRequest(t, "", map[string][]byte{"cake.png": smallPNG(t)}, testutil.NewDevice())
		w := env.Serve("POST /photos", h.UploadPhotos, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)

		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Message != "Please enter your name." {
			t.Errorf("Unexpected message %q", resp.Message)
		}
	})

	t.Run("no files", func(t *testing.T) {
		req := uploadRequest(t, "Alice", nil, testutil.NewDevice())
		w := env.Serve("POST /photos", h.UploadPhotos, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("only invalid files", func(t *testing.T) {
		req := uploadRequest(t, "Alice", map[string][]byte{"a.txt": []byte("hello")}, testutil.NewDevice())
		w := env.Serve("POST /photos", h.UploadPhotos, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestUploadPhotos_BodyTooLarge(t *testing.T) {
	env := testutil.NewEnv(t, -time.Minute)
	h := NewPhotoHandler(env.Registry, env.Localizer)
	h.maxBytes = 4 << 10

	big := append(smallPNG(t), bytes.Repeat([]byte{0}, 16<<10)...)
	req := uploadRequest(t, "Alice", map[string][]byte{"huge.png": big}, testutil.NewDevice())
	w := env.Serve("POST /photos", h.UploadPhotos, req)
	testutil.AssertStatus(t, w, http.StatusRequestEntityTooLarge)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "These photos are too large to upload at once." {
		t.Errorf("Unexpected message %q", resp.Message)
	}

	w = env.Serve("GET /photos", h.ListPhotos, testutil.MakeRequest("GET", "/photos", nil, testutil.NewDevice()))
	var list models.PhotosResponse
	testutil.AssertJSON(t, w, &list)
	if len(list.Photos) != 0 {
		t.Errorf("Expected nothing stored, got %d photos", len(list.Photos))
	}
}

func TestUploadPhotos_BeforeStart(t *testing.T) {
	env := testutil.NewEnv(t, time.Hour)
	h := NewPhotoHandler(env.Registry, env.Localizer)

	w := env.Serve("POST /photos", h.UploadPhotos, uploadRequest(t, "Alice", map[string][]byte{"cake.png": smallPNG(t)}, testutil.NewDevice()))
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = env.Serve("GET /photos", h.ListPhotos, testutil.MakeRequest("GET", "/photos", nil, testutil.NewDevice()))
	var list models.PhotosResponse
	testutil.AssertJSON(t, w, &list)
	if list.Open || len(list.Photos) != 0 {
		t.Errorf("Expected a closed photo section, got %+v", list)
	}
}

func TestDeletePhoto_RemovesBlob(t *testing.T) {
	env := testutil.NewEnv(t, -time.Minute)
	h := NewPhotoHandler(env.Registry, env.Localizer)
	alice, bob := testutil.NewDevice(), testutil.NewDevice()

	w := env.Serve("POST /photos", h.UploadPhotos, uploadRequest(t, "Alice", map[string][]byte{"cake.png": smallPNG(t)}, alice))
	var resp models.UploadResponse
	testutil.AssertJSON(t, w, &resp)
	photo := resp.Results[0].Photo
	if photo == nil {
		t.Fatalf("Upload failed: %+v", resp)
	}
	blobPath := strings.TrimPrefix(photo.URL, "/blobs/")

	// Bob has to list before he can act on the photo
	env.Serve("GET /photos", h.ListPhotos, testutil.MakeRequest("GET", "/photos", nil, bob))
	w = env.Serve("DELETE /photos/{id}", h.DeletePhoto, testutil.MakeRequest("DELETE", "/photos/"+photo.ID, nil, bob))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = env.Serve("DELETE /photos/{id}", h.DeletePhoto, testutil.MakeRequest("DELETE", "/photos/"+photo.ID, nil, alice))
	testutil.AssertStatus(t, w, http.StatusNoContent)

	if _, err := env.Blobs.Open(blobPath); !errors.Is(err, blobstore.ErrNotFound) {
		t.Errorf("Expected blob to be deleted, got %v", err)
	}
}
