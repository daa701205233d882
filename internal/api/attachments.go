package api

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/storage"
)

const maxUploadBytes = 50 << 20 // 50 MB

// AttachmentHandler serves and accepts attachment files.
type AttachmentHandler struct {
	store storage.Provider
}

// NewAttachmentHandler creates a handler over the blob store.
func NewAttachmentHandler(store storage.Provider) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

// List handles GET /api/attachments.
func (h *AttachmentHandler) List(w http.ResponseWriter, r *http.Request) {
	blobs, err := h.store.List(ownerID(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("internal", "failed to list attachments"))
		return
	}
	if blobs == nil {
		blobs = []storage.Blob{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"attachments": blobs})
}

// ServeFile handles GET /api/attachments/{filename}.
func (h *AttachmentHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.store.Path(ownerID(r), chi.URLParam(r, "filename"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Delete handles DELETE /api/attachments/{filename}.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.store.Delete(ownerID(r), chi.URLParam(r, "filename"))
	if errors.Is(err, os.ErrNotExist) {
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "not found"))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Upload handles POST /api/attachments (multipart/form-data, field "file").
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("internal", "failed to read upload"))
		return
	}
	if err := h.store.Write(ownerID(r), header.Filename, data); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"filename": header.Filename,
		"size":     len(data),
		"url":      "/api/attachments/" + header.Filename,
	})
}
