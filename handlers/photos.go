// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/partyplanner/apperr"
	"github.com/danielhkuo/partyplanner/i18n"
	"github.com/danielhkuo/partyplanner/middleware"
	"github.com/danielhkuo/partyplanner/models"
	"github.com/danielhkuo/partyplanner/phase"
	"github.com/danielhkuo/partyplanner/session"
	"github.com/danielhkuo/partyplanner/upload"
)

const (
	// MaxUploadMemory is how much of a multipart upload is held in memory
	// before spilling to temporary files.
	MaxUploadMemory = 32 << 20

	// MaxUploadBytes caps the whole request body of one upload batch.
	MaxUploadBytes = 256 << 20
)

var photoMessages = middleware.Messages{
	apperr.CodeValidation:       "photoUpload.messages.invalidFile",
	apperr.CodeStoreUnavailable: "photoUpload.messages.uploadFailed",
	apperr.CodePhaseGated:       "photoUpload.messages.notOpen",
}

type PhotoHandler struct {
	sessions *session.Registry
	loc      *i18n.Localizer
	maxBytes int64
}

func NewPhotoHandler(sessions *session.Registry, loc *i18n.Localizer) *PhotoHandler {
	return &PhotoHandler{sessions: sessions, loc: loc, maxBytes: MaxUploadBytes}
}

// ListPhotos handles GET /photos
func (h *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	view, err := s.List(r.Context())
	if err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, nil)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PhotosResponse{
		Open:   view.Phase >= phase.Started,
		Photos: convert(view.Photos, s.Status(), toPhoto),
		Stale:  isStale(view, "photos"),
	})
}

// UploadPhotos handles POST /photos (multipart: files, uploader_name)
func (h *PhotoHandler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	p, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	lang := i18n.Negotiate(r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(MaxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.Warn("upload batch too large", "limit", humanize.IBytes(uint64(tooLarge.Limit)))
			middleware.JSONResponse(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Error:   http.StatusText(http.StatusRequestEntityTooLarge),
				Code:    string(apperr.CodeValidation),
				Message: h.loc.Lookup(lang, "photoUpload.messages.tooLarge"),
			})
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	name := p.ResolveName(r.Context(), r.FormValue("uploader_name"))
	if name == "" {
		middleware.JSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Code:    string(apperr.CodeValidation),
			Message: h.loc.Lookup(lang, "photoUpload.messages.nameRequired"),
		})
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		middleware.JSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Code:    string(apperr.CodeValidation),
			Message: h.loc.Lookup(lang, "photoUpload.messages.invalidFile"),
		})
		return
	}

	files := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			slog.Error("failed to open uploaded file", "file", fh.Filename, "error", err)
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid file")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Error("failed to read uploaded file", "file", fh.Filename, "error", err)
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid file")
			return
		}
		files = append(files, upload.File{Name: fh.Filename, Data: data})
	}

	results, err := s.UploadPhotos(r.Context(), files, name)
	if err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, photoMessages)
		return
	}

	st := s.Status()
	resp := models.UploadResponse{Results: make([]models.UploadResult, 0, len(results))}
	var firstErr error
	for _, res := range results {
		out := models.UploadResult{FileName: res.Name}
		if res.Err != nil {
			resp.Failed++
			if firstErr == nil {
				firstErr = res.Err
			}
			out.Code = string(middleware.CodeFor(res.Err))
			out.Message = middleware.LocalizedMessage(r, h.loc, res.Err, photoMessages)
		} else {
			resp.Uploaded++
			photo := toPhoto(res.Record, st)
			out.Photo = &photo
		}
		resp.Results = append(resp.Results, out)
	}

	slog.Info("photos uploaded", "user_id", s.UserID(), "uploaded", resp.Uploaded, "failed", resp.Failed)

	status := http.StatusCreated
	switch {
	case resp.Uploaded == 0:
		status = middleware.StatusFor(middleware.CodeFor(firstErr))
	case resp.Failed > 0:
		status = http.StatusMultiStatus
	}
	middleware.JSONResponse(w, status, resp)
}

// DeletePhoto handles DELETE /photos/{id}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	_, s, ok := currentSession(w, r, h.sessions, h.loc)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := s.DeletePhoto(r.Context(), id); err != nil {
		middleware.AppErrorResponse(w, r, h.loc, err, middleware.Messages{
			apperr.CodeStoreUnavailable: "photoUpload.messages.deleteFailed",
			apperr.CodePhaseGated:       "photoUpload.messages.notOpen",
		})
		return
	}

	slog.Info("photo deleted", "photo_id", id, "user_id", s.UserID())
	w.WriteHeader(http.StatusNoContent)
}
