package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/notes"
	"github.com/starford/laguz/internal/sse"
	"github.com/starford/laguz/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced; the owner
// header is always required. broker and blobs may be nil when the SSE
// stream or attachments are not wired (tests).
func NewRouter(svc *notes.Service, authEnabled bool, token string, broker *sse.Broker, blobs storage.Provider) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))
	r.Use(OwnerMiddleware)

	// Notes CRUD and lookups.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Post("/notes/bulk-delete", h.BulkDelete)
	r.Get("/notes/by-title", h.GetNoteByTitle)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Get("/notes/{id}/backlinks", h.Backlinks)

	// Diary calendar view.
	r.Get("/diary", h.DiariesByMonth)

	// Search and autocomplete.
	r.Get("/search", h.Search)
	r.Get("/autocomplete", h.Autocomplete)

	// Attachments.
	if blobs != nil {
		ah := NewAttachmentHandler(blobs)
		r.Get("/attachments", ah.List)
		r.Post("/attachments", ah.Upload)
		r.Get("/attachments/{filename}", ah.ServeFile)
		r.Delete("/attachments/{filename}", ah.Delete)
	}

	// SSE stream of notes.changed events for the requesting owner.
	if broker != nil {
		r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
			broker.Stream(w, r, ownerID(r))
		})
	}

	return r
}
