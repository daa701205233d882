package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
)

// Tx exposes the note-store operations available inside a transaction
// scope (or, via the DB read helpers, against the plain connection).
type Tx struct {
	ctx context.Context
	q   querier
}

const noteColumns = `id, owner_id, title, kind, content, diary_date, mood_score,
	mood_feelings, mood_factors, created_at, updated_at`

// GetNote returns the note with the given id, including its ordered
// forward links. Missing notes yield apperr.ErrNotFound.
func (t *Tx) GetNote(id string) (*models.Note, error) {
	row := t.q.QueryRowContext(t.ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		return nil, err
	}
	if n.ForwardLinks, err = t.loadLinks(n.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// FindByOwnerAndTitle resolves a title within an owner's scope.
func (t *Tx) FindByOwnerAndTitle(ownerID, title string) (*models.Note, error) {
	row := t.q.QueryRowContext(t.ctx,
		`SELECT `+noteColumns+` FROM notes WHERE owner_id = ? AND title = ?`, ownerID, title)
	n, err := scanNote(row)
	if err != nil {
		return nil, err
	}
	if n.ForwardLinks, err = t.loadLinks(n.ID); err != nil {
		return nil, err
	}
	return n, nil
}

// FindLinking returns every note of ownerID whose forward-link set
// contains targetID. Ordering is deterministic (by id) but otherwise
// unspecified.
func (t *Tx) FindLinking(ownerID, targetID string) ([]*models.Note, error) {
	rows, err := t.q.QueryContext(t.ctx, `
		SELECT `+noteColumns+`
		FROM notes
		JOIN note_links ON note_links.source = notes.id
		WHERE notes.owner_id = ? AND note_links.target = ?
		ORDER BY notes.id
	`, ownerID, targetID)
	if err != nil {
		return nil, fmt.Errorf("store: find linking: %w", mapErr(err))
	}
	notes, err := collectNotes(rows)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		if n.ForwardLinks, err = t.loadLinks(n.ID); err != nil {
			return nil, err
		}
	}
	return notes, nil
}

// InsertNote persists a new note together with its forward links.
// A (owner, title) collision yields apperr.ErrDuplicateTitle.
func (t *Tx) InsertNote(n *models.Note) error {
	feelings, factors := marshalMood(n)
	_, err := t.q.ExecContext(t.ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.OwnerID, n.Title, string(n.Kind), n.Content, n.DiaryDate, n.MoodScore,
		feelings, factors, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: insert note: %w", mapErr(err))
	}
	if err := t.writeLinks(n.ID, n.ForwardLinks); err != nil {
		return err
	}
	return ftsUpsert(t, n)
}

// UpdateNote rewrites all mutable fields and replaces the forward-link
// rows of the note identified by n.ID.
func (t *Tx) UpdateNote(n *models.Note) error {
	feelings, factors := marshalMood(n)
	res, err := t.q.ExecContext(t.ctx, `
		UPDATE notes
		SET title = ?, kind = ?, content = ?, diary_date = ?, mood_score = ?,
		    mood_feelings = ?, mood_factors = ?, updated_at = ?
		WHERE id = ?
	`, n.Title, string(n.Kind), n.Content, n.DiaryDate, n.MoodScore,
		feelings, factors, n.UpdatedAt, n.ID)
	if err != nil {
		return fmt.Errorf("store: update note: %w", mapErr(err))
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	if _, err := t.q.ExecContext(t.ctx, `DELETE FROM note_links WHERE source = ?`, n.ID); err != nil {
		return fmt.Errorf("store: clear links: %w", mapErr(err))
	}
	if err := t.writeLinks(n.ID, n.ForwardLinks); err != nil {
		return err
	}
	return ftsUpsert(t, n)
}

// DeleteNote removes the note and its outgoing link rows. Incoming link
// rows are the coordinator's responsibility (it rewrites the referencing
// notes in the same transaction).
func (t *Tx) DeleteNote(id string) error {
	if _, err := t.q.ExecContext(t.ctx, `DELETE FROM note_links WHERE source = ?`, id); err != nil {
		return fmt.Errorf("store: delete links: %w", mapErr(err))
	}
	if _, err := t.q.ExecContext(t.ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete note: %w", mapErr(err))
	}
	return ftsDelete(t, id)
}

func (t *Tx) writeLinks(source string, targets []string) error {
	for i, target := range targets {
		_, err := t.q.ExecContext(t.ctx,
			`INSERT OR IGNORE INTO note_links (source, target, position) VALUES (?, ?, ?)`,
			source, target, i)
		if err != nil {
			return fmt.Errorf("store: insert link: %w", mapErr(err))
		}
	}
	return nil
}

func (t *Tx) loadLinks(source string) ([]string, error) {
	rows, err := t.q.QueryContext(t.ctx,
		`SELECT target FROM note_links WHERE source = ? ORDER BY position`, source)
	if err != nil {
		return nil, fmt.Errorf("store: load links: %w", mapErr(err))
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, err
		}
		out = append(out, target)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	var (
		n         models.Note
		kind      string
		diaryDate sql.NullTime
		moodScore sql.NullInt64
		feelings  string
		factors   string
	)
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &kind, &n.Content,
		&diaryDate, &moodScore, &feelings, &factors, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan note: %w", mapErr(err))
	}
	n.Kind = models.Kind(kind)
	if diaryDate.Valid {
		d := diaryDate.Time
		n.DiaryDate = &d
	}
	if moodScore.Valid {
		s := int(moodScore.Int64)
		n.MoodScore = &s
	}
	_ = json.Unmarshal([]byte(feelings), &n.MoodFeelings)
	_ = json.Unmarshal([]byte(factors), &n.MoodFactors)
	return &n, nil
}

func collectNotes(rows *sql.Rows) ([]*models.Note, error) {
	defer rows.Close()
	var out []*models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func marshalMood(n *models.Note) (feelings, factors string) {
	fe, _ := json.Marshal(emptyIfNil(n.MoodFeelings))
	fa, _ := json.Marshal(emptyIfNil(n.MoodFactors))
	return string(fe), string(fa)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
