//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/laguz/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			id UNINDEXED,
			owner_id UNINDEXED,
			title,
			content,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(t *Tx, n *models.Note) error {
	_, _ = t.q.ExecContext(t.ctx, `DELETE FROM notes_fts WHERE id = ?`, n.ID)
	_, err := t.q.ExecContext(t.ctx,
		`INSERT INTO notes_fts (id, owner_id, title, content) VALUES (?, ?, ?, ?)`,
		n.ID, n.OwnerID, n.Title, n.Content)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", mapErr(err))
	}
	return nil
}

func ftsDelete(t *Tx, id string) error {
	_, _ = t.q.ExecContext(t.ctx, `DELETE FROM notes_fts WHERE id = ?`, id)
	return nil
}

// SearchByKeyword performs an owner-scoped FTS5 search over titles and
// content, ranked by relevance.
func (db *DB) SearchByKeyword(ctx context.Context, ownerID, keyword string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id,
		       title,
		       snippet(notes_fts, 3, '<b>', '</b>', '...', 64)
		FROM notes_fts
		WHERE notes_fts MATCH ? AND owner_id = ?
		ORDER BY rank
		LIMIT ?
	`, keyword, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", mapErr(err))
	}
	defer rows.Close()

	var out []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.ID, &h.Title, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
