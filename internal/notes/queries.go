package notes

import (
	"context"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/store"
)

// Read-side operations. These run outside the coordinator's transactions
// and are scoped to the requesting owner.

// Get returns the owner's note by id.
func (s *Service) Get(ctx context.Context, ownerID, noteID string) (*models.Note, error) {
	n, err := s.db.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n.OwnerID != ownerID {
		return nil, apperr.ErrNotFound
	}
	return n, nil
}

// GetByTitle returns the owner's note with the exact title.
func (s *Service) GetByTitle(ctx context.Context, ownerID, title string) (*models.Note, error) {
	return s.db.FindByOwnerAndTitle(ctx, ownerID, title)
}

// Backlinks returns every note of the owner linking to noteID. The
// target must exist and belong to the owner.
func (s *Service) Backlinks(ctx context.Context, ownerID, noteID string) ([]*models.Note, error) {
	if _, err := s.Get(ctx, ownerID, noteID); err != nil {
		return nil, err
	}
	return s.db.FindLinking(ctx, ownerID, noteID)
}

// ListLatest returns the owner's most recently updated notes, optionally
// filtered by kind.
func (s *Service) ListLatest(ctx context.Context, ownerID string, kind models.Kind, limit int) ([]*models.Note, error) {
	return s.db.ListLatest(ctx, ownerID, kind, limit)
}

// ListAll returns every note of the owner, ordered by title, without
// the recency cap of ListLatest.
func (s *Service) ListAll(ctx context.Context, ownerID string) ([]*models.Note, error) {
	return s.db.ListByOwner(ctx, ownerID)
}

// DiariesByMonth returns the owner's diary entries for the calendar
// month containing ref.
func (s *Service) DiariesByMonth(ctx context.Context, ownerID string, ref time.Time) ([]*models.Note, error) {
	return s.db.DiariesByMonth(ctx, ownerID, ref)
}

// Search performs an owner-scoped keyword search.
func (s *Service) Search(ctx context.Context, ownerID, keyword string, limit int) ([]store.SearchHit, error) {
	return s.db.SearchByKeyword(ctx, ownerID, keyword, limit)
}

// Autocomplete returns the owner's titles starting with prefix.
func (s *Service) Autocomplete(ctx context.Context, ownerID, prefix string, limit int) ([]string, error) {
	return s.db.AutocompleteByPrefix(ctx, ownerID, prefix, limit)
}
