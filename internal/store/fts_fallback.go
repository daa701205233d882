//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/laguz/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; keyword search uses a LIKE fallback over the
	// notes table.
	return nil
}

func ftsUpsert(_ *Tx, _ *models.Note) error { return nil }

func ftsDelete(_ *Tx, _ string) error { return nil }

// SearchByKeyword performs a LIKE-based owner-scoped search (fallback
// when FTS5 is not compiled in).
func (db *DB) SearchByKeyword(ctx context.Context, ownerID, keyword string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + escapeLike(keyword) + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, substr(content, 1, 200)
		FROM notes
		WHERE owner_id = ? AND (title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')
		ORDER BY updated_at DESC
		LIMIT ?
	`, ownerID, like, like, limit)
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
