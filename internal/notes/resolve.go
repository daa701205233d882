package notes

import (
	"errors"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/parser"
	"github.com/starford/laguz/internal/store"
)

// resolveLinks extracts the [[Title]] markers from content and resolves
// them to note ids under ownerID, inside the caller's transaction. Any
// title with no live note fails the whole resolution with an
// UnresolvedLinkError; partial results are never returned. The output is
// deduplicated by id in first-occurrence order.
//
// The title→id cache is scoped to this single call, so resolution stays
// free of cross-request state.
func resolveLinks(tx *store.Tx, ownerID, content string) ([]string, error) {
	titles := parser.ExtractTitles(content)
	if len(titles) == 0 {
		return nil, nil
	}

	cache := make(map[string]string, len(titles))
	seen := make(map[string]struct{}, len(titles))
	var out []string
	for _, title := range titles {
		id, ok := cache[title]
		if !ok {
			n, err := tx.FindByOwnerAndTitle(ownerID, title)
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, &apperr.UnresolvedLinkError{Title: title}
			}
			if err != nil {
				return nil, err
			}
			id = n.ID
			cache[title] = id
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
