package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/starford/laguz/internal/models"
)

// Read-side queries running outside any explicit transaction. Mutations
// go through WithTx; these serve the list/lookup endpoints.

// GetNote returns a note by id.
func (db *DB) GetNote(ctx context.Context, id string) (*models.Note, error) {
	return db.view(ctx).GetNote(id)
}

// FindByOwnerAndTitle returns an owner's note by exact title.
func (db *DB) FindByOwnerAndTitle(ctx context.Context, ownerID, title string) (*models.Note, error) {
	return db.view(ctx).FindByOwnerAndTitle(ownerID, title)
}

// FindLinking returns every note of ownerID linking to targetID.
func (db *DB) FindLinking(ctx context.Context, ownerID, targetID string) ([]*models.Note, error) {
	return db.view(ctx).FindLinking(ownerID, targetID)
}

// ListLatest returns the owner's most recently updated notes, optionally
// filtered by kind. limit <= 0 falls back to 20.
func (db *DB) ListLatest(ctx context.Context, ownerID string, kind models.Kind, limit int) ([]*models.Note, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + noteColumns + ` FROM notes WHERE owner_id = ?`
	args := []any{ownerID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list latest: %w", mapErr(err))
	}
	return db.withLinks(ctx, rows)
}

// ListByOwner returns all of an owner's notes ordered by title.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]*models.Note, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE owner_id = ? ORDER BY title`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: list by owner: %w", mapErr(err))
	}
	return db.withLinks(ctx, rows)
}

// DiariesByMonth returns the owner's diary entries whose diary_date falls
// in the calendar month containing ref.
func (db *DB) DiariesByMonth(ctx context.Context, ownerID string, ref time.Time) ([]*models.Note, error) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE owner_id = ? AND kind = ? AND diary_date >= ? AND diary_date < ?
		ORDER BY diary_date
	`, ownerID, string(models.KindDiary), first, next)
	if err != nil {
		return nil, fmt.Errorf("store: diaries by month: %w", mapErr(err))
	}
	return db.withLinks(ctx, rows)
}

// AutocompleteByPrefix returns up to limit titles of the owner starting
// with prefix, in lexicographic order.
func (db *DB) AutocompleteByPrefix(ctx context.Context, ownerID, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT title FROM notes
		WHERE owner_id = ? AND title LIKE ? ESCAPE '\'
		ORDER BY title LIMIT ?
	`, ownerID, escapeLike(prefix)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("store: autocomplete: %w", mapErr(err))
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		out = append(out, title)
	}
	return out, rows.Err()
}

func (db *DB) withLinks(ctx context.Context, rows *sql.Rows) ([]*models.Note, error) {
	notes, err := collectNotes(rows)
	if err != nil {
		return nil, err
	}
	t := db.view(ctx)
	for _, n := range notes {
		if n.ForwardLinks, err = t.loadLinks(n.ID); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
