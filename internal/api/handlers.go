package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/notes"
	"github.com/starford/laguz/internal/store"
)

const maxBodyBytes = 1 << 20 // 1 MB of note JSON is plenty

// Handler holds API route handlers.
type Handler struct {
	svc *notes.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *notes.Service) *Handler {
	return &Handler{svc: svc}
}

func noteResponse(n *models.Note) NoteResponse {
	return NoteResponse{Note: n, Checksum: checksum.Sum([]byte(n.Content))}
}

func noteResponses(ns []*models.Note) []NoteResponse {
	out := make([]NoteResponse, len(ns))
	for i, n := range ns {
		out[i] = noteResponse(n)
	}
	return out
}

// writeError maps the apperr taxonomy onto HTTP statuses. The kind field
// lets clients branch without parsing messages.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "not found"))
	case errors.Is(err, apperr.ErrDuplicateTitle):
		writeJSON(w, http.StatusConflict, errorBody("duplicate_title", "title already exists"))
	case errors.Is(err, apperr.ErrUnresolvedLink):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("unresolved_link", err.Error()))
	case errors.Is(err, apperr.ErrChecksumMismatch):
		writeJSON(w, http.StatusPreconditionFailed, errorBody("checksum_mismatch", "checksum mismatch"))
	case errors.Is(err, apperr.ErrTxConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict", "write conflict, retry"))
	case errors.Is(err, apperr.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("store_unavailable", "storage unavailable"))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal", "internal error"))
	}
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}

	n, err := h.svc.Create(r.Context(), notes.CreateParams{
		OwnerID:      ownerID(r),
		Title:        req.Title,
		Kind:         models.Kind(req.Kind),
		Content:      req.Content,
		DiaryDate:    req.DiaryDate,
		MoodScore:    req.MoodScore,
		MoodFeelings: req.MoodFeelings,
		MoodFactors:  req.MoodFactors,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, noteResponse(n))
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Get(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, noteResponse(n))
}

// GetNoteByTitle handles GET /api/notes/by-title?title=.
func (h *Handler) GetNoteByTitle(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "query parameter 'title' is required"))
		return
	}
	n, err := h.svc.GetByTitle(r.Context(), ownerID(r), title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, noteResponse(n))
}

// ListNotes handles GET /api/notes?kind=&limit=&all=. With all=true the
// full collection is returned ordered by title; otherwise the most
// recently updated notes, optionally filtered by kind.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("all") == "true" {
		ns, err := h.svc.ListAll(r.Context(), ownerID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, NoteListResponse{Notes: noteResponses(ns)})
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	kind := models.Kind(q.Get("kind"))
	if kind != "" && !kind.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "unknown kind"))
		return
	}
	ns, err := h.svc.ListLatest(r.Context(), ownerID(r), kind, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: noteResponses(ns)})
}

// DiariesByMonth handles GET /api/diary?month=YYYY-MM.
func (h *Handler) DiariesByMonth(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	ref, err := time.Parse("2006-01", month)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "query parameter 'month' must be YYYY-MM"))
		return
	}
	ns, err := h.svc.DiariesByMonth(r.Context(), ownerID(r), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: noteResponses(ns)})
}

// Backlinks handles GET /api/notes/{id}/backlinks.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	ns, err := h.svc.Backlinks(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Backlinks: noteResponses(ns)})
}

// UpdateNote handles PUT /api/notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	patch := notes.Patch{
		Title:        req.Title,
		Content:      req.Content,
		DiaryDate:    req.DiaryDate,
		MoodScore:    req.MoodScore,
		MoodFeelings: req.MoodFeelings,
		MoodFactors:  req.MoodFactors,
		IfMatch:      ifMatch,
	}
	if req.Kind != nil {
		k := models.Kind(*req.Kind)
		patch.Kind = &k
	}

	n, err := h.svc.Update(r.Context(), ownerID(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, noteResponse(n))
}

// DeleteNote handles DELETE /api/notes/{id}. Deleting a missing note is
// not an error; the response reports deleted=false.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Delete(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
}

// BulkDelete handles POST /api/notes/bulk-delete.
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
		return
	}
	results := h.svc.DeleteBatch(r.Context(), ownerID(r), req.IDs)
	writeJSON(w, http.StatusOK, BulkDeleteResponse{Results: results})
}

// Search handles GET /api/search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), ownerID(r), q, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if hits == nil {
		hits = []store.SearchHit{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}

// Autocomplete handles GET /api/autocomplete?q=&limit=.
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	titles, err := h.svc.Autocomplete(r.Context(), ownerID(r), q, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if titles == nil {
		titles = []string{}
	}
	writeJSON(w, http.StatusOK, AutocompleteResponse{Titles: titles})
}
