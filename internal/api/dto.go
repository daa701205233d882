package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/notes"
	"github.com/starford/laguz/internal/store"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title        string     `json:"title"`
	Kind         string     `json:"kind"`
	Content      string     `json:"content"`
	DiaryDate    *time.Time `json:"diary_date,omitempty"`
	MoodScore    *int       `json:"mood_score,omitempty"`
	MoodFeelings []string   `json:"mood_feelings,omitempty"`
	MoodFactors  []string   `json:"mood_factors,omitempty"`
}

// Validate validates the create request.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.Kind, validation.In(string(models.KindNote), string(models.KindDiary))),
		validation.Field(&r.MoodScore, validation.Min(0), validation.Max(10)),
	)
}

// UpdateNoteRequest is the request body for updating a note. Absent
// fields are left unchanged.
type UpdateNoteRequest struct {
	Title        *string    `json:"title,omitempty"`
	Kind         *string    `json:"kind,omitempty"`
	Content      *string    `json:"content,omitempty"`
	DiaryDate    *time.Time `json:"diary_date,omitempty"`
	MoodScore    *int       `json:"mood_score,omitempty"`
	MoodFeelings []string   `json:"mood_feelings,omitempty"`
	MoodFactors  []string   `json:"mood_factors,omitempty"`
}

// Validate validates the update request.
func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 256)),
		validation.Field(&r.Kind, validation.In(string(models.KindNote), string(models.KindDiary))),
		validation.Field(&r.MoodScore, validation.Min(0), validation.Max(10)),
	)
}

// BulkDeleteRequest is the request body for batch deletion.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// Validate validates the bulk delete request.
func (r BulkDeleteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required, validation.Length(1, 100)),
	)
}

// NoteResponse wraps a note with its content checksum for If-Match use.
type NoteResponse struct {
	*models.Note
	Checksum string `json:"checksum"`
}

// DeleteResponse reports a single delete outcome.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// BulkDeleteResponse reports per-id outcomes.
type BulkDeleteResponse struct {
	Results []notes.DeleteResult `json:"results"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteResponse `json:"notes"`
}

// BacklinksResponse wraps a backlink query result.
type BacklinksResponse struct {
	Backlinks []NoteResponse `json:"backlinks"`
}

// SearchResponse wraps keyword search results.
type SearchResponse struct {
	Results []store.SearchHit `json:"results"`
}

// AutocompleteResponse wraps title autocomplete results.
type AutocompleteResponse struct {
	Titles []string `json:"titles"`
}
