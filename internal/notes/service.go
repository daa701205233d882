// Package notes implements the consistency coordinator: every create,
// update, and delete keeps forward links, backlinks, and marker text in
// sync across all affected notes within a single store transaction.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/store"
)

// txAttempts bounds the retry loop for conflict-aborted transactions.
const txAttempts = 3

// Notifier receives a change event after every successful mutation.
type Notifier interface {
	NotesChanged(ownerID string)
}

type noopNotifier struct{}

func (noopNotifier) NotesChanged(string) {}

// Service coordinates note mutations against the store.
type Service struct {
	db       *store.DB
	notifier Notifier
}

// NewService creates a coordinator. notifier may be nil.
func NewService(db *store.DB, notifier Notifier) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{db: db, notifier: notifier}
}

// CreateParams are the caller-supplied fields for a new note.
type CreateParams struct {
	OwnerID      string
	Title        string
	Kind         models.Kind
	Content      string
	DiaryDate    *time.Time
	MoodScore    *int
	MoodFeelings []string
	MoodFactors  []string
}

// Patch carries the optional fields of an update; nil means "leave
// unchanged". IfMatch, when set, must equal the checksum of the stored
// content or the update is rejected.
type Patch struct {
	Title        *string
	Kind         *models.Kind
	Content      *string
	DiaryDate    *time.Time
	MoodScore    *int
	MoodFeelings []string
	MoodFactors  []string
	IfMatch      string
}

// Create resolves the content's markers and inserts the note. It fails
// with UnresolvedLink when a marker references a missing title and with
// DuplicateTitle on an (owner, title) collision; in both cases nothing
// is persisted.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Note, error) {
	if p.Title == "" {
		return nil, fmt.Errorf("notes: title is required")
	}
	if p.Kind == "" {
		p.Kind = models.KindNote
	}
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("notes: unknown kind %q", p.Kind)
	}

	now := time.Now().UTC()
	n := &models.Note{
		ID:           uuid.NewString(),
		OwnerID:      p.OwnerID,
		Title:        p.Title,
		Kind:         p.Kind,
		Content:      p.Content,
		DiaryDate:    p.DiaryDate,
		MoodScore:    p.MoodScore,
		MoodFeelings: p.MoodFeelings,
		MoodFactors:  p.MoodFactors,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.withRetry(ctx, func(tx *store.Tx) error {
		links, err := resolveLinks(tx, p.OwnerID, p.Content)
		if err != nil {
			return err
		}
		n.ForwardLinks = links
		return tx.InsertNote(n)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.NotesChanged(p.OwnerID)
	return n, nil
}

// Update applies patch to the owner's note. A content change recomputes
// the forward-link set from the new content; a title change additionally
// rewrites every [[old]] marker to [[new]] in all backlinking notes.
// All effects commit as one transaction or not at all.
func (s *Service) Update(ctx context.Context, ownerID, noteID string, patch Patch) (*models.Note, error) {
	var updated *models.Note
	err := s.withRetry(ctx, func(tx *store.Tx) error {
		n, err := tx.GetNote(noteID)
		if err != nil {
			return err
		}
		if n.OwnerID != ownerID {
			return apperr.ErrNotFound
		}
		if patch.IfMatch != "" && patch.IfMatch != checksum.Sum([]byte(n.Content)) {
			return apperr.ErrChecksumMismatch
		}

		now := time.Now().UTC()

		if patch.Content != nil && *patch.Content != n.Content {
			links, err := resolveLinks(tx, ownerID, *patch.Content)
			if err != nil {
				return err
			}
			n.Content = *patch.Content
			n.ForwardLinks = links
		}

		if patch.Title != nil && *patch.Title != n.Title {
			newTitle := *patch.Title
			if newTitle == "" {
				return fmt.Errorf("notes: title cannot be empty")
			}
			linking, err := tx.FindLinking(ownerID, n.ID)
			if err != nil {
				return err
			}
			for _, b := range linking {
				if b.ID == n.ID {
					continue // self-links rewritten with the note itself
				}
				b.Content = renameMarker(b.Content, n.Title, newTitle)
				b.UpdatedAt = now
				if err := tx.UpdateNote(b); err != nil {
					return err
				}
			}
			n.Content = renameMarker(n.Content, n.Title, newTitle)
			n.Title = newTitle
		}

		if patch.Kind != nil {
			if !patch.Kind.Valid() {
				return fmt.Errorf("notes: unknown kind %q", *patch.Kind)
			}
			n.Kind = *patch.Kind
		}
		if patch.DiaryDate != nil {
			n.DiaryDate = patch.DiaryDate
		}
		if patch.MoodScore != nil {
			n.MoodScore = patch.MoodScore
		}
		if patch.MoodFeelings != nil {
			n.MoodFeelings = patch.MoodFeelings
		}
		if patch.MoodFactors != nil {
			n.MoodFactors = patch.MoodFactors
		}

		n.UpdatedAt = now
		if err := tx.UpdateNote(n); err != nil {
			return err
		}
		updated = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.NotesChanged(ownerID)
	return updated, nil
}

// Delete removes the owner's note and cleans up every backlink: the id
// is dropped from each referencing note's forward links and its [[T]]
// markers collapse to bare text, all in one transaction. Deleting a
// missing or foreign note reports (false, nil) rather than an error, so
// repeated deletes stay idempotent.
func (s *Service) Delete(ctx context.Context, ownerID, noteID string) (bool, error) {
	deleted, err := s.deleteOne(ctx, ownerID, noteID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.notifier.NotesChanged(ownerID)
	}
	return deleted, nil
}

// DeleteResult is the per-id outcome of a batch delete.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// DeleteBatch deletes each id in its own transaction; one failure does
// not roll back the others. A single change notification fires after the
// whole batch.
func (s *Service) DeleteBatch(ctx context.Context, ownerID string, ids []string) []DeleteResult {
	results := make([]DeleteResult, 0, len(ids))
	for _, id := range ids {
		ok, err := s.deleteOne(ctx, ownerID, id)
		if err != nil {
			slog.Error("batch delete item failed",
				slog.String("note_id", id), slog.String("error", err.Error()))
			ok = false
		}
		results = append(results, DeleteResult{ID: id, Deleted: ok})
	}
	s.notifier.NotesChanged(ownerID)
	return results
}

func (s *Service) deleteOne(ctx context.Context, ownerID, noteID string) (bool, error) {
	var deleted bool
	err := s.withRetry(ctx, func(tx *store.Tx) error {
		deleted = false
		n, err := tx.GetNote(noteID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if n.OwnerID != ownerID {
			return nil
		}

		linking, err := tx.FindLinking(ownerID, noteID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, b := range linking {
			if b.ID == noteID {
				continue // the note's own rows vanish with it
			}
			b.ForwardLinks = removeID(b.ForwardLinks, noteID)
			b.Content = stripMarker(b.Content, n.Title)
			b.UpdatedAt = now
			if err := tx.UpdateNote(b); err != nil {
				return err
			}
		}
		if err := tx.DeleteNote(noteID); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// withRetry reruns fn when the store aborts on a write conflict, up to
// txAttempts times. Caller-input errors pass straight through.
func (s *Service) withRetry(ctx context.Context, fn func(tx *store.Tx) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 25 * time.Millisecond)
		}
		err = s.db.WithTx(ctx, fn)
		if !errors.Is(err, apperr.ErrTxConflict) {
			return err
		}
	}
	return err
}
