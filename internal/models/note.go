// Package models defines the domain types for Laguz.
package models

import "time"

// Kind classifies a note. Diaries are dated entries with mood metadata;
// plain notes are free-form. Linking behaves identically for both.
type Kind string

// Note kinds.
const (
	KindNote  Kind = "note"
	KindDiary Kind = "diary"
)

// Valid reports whether k is a known note kind.
func (k Kind) Valid() bool {
	return k == KindNote || k == KindDiary
}

// Note is a titled, owned, linkable text record. Titles are unique per
// owner. ForwardLinks is derived from the [[Title]] markers in Content
// and is only ever written by the consistency coordinator.
type Note struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Title        string     `json:"title"`
	Kind         Kind       `json:"kind"`
	Content      string     `json:"content"`
	ForwardLinks []string   `json:"forward_links"`
	DiaryDate    *time.Time `json:"diary_date,omitempty"`
	MoodScore    *int       `json:"mood_score,omitempty"`
	MoodFeelings []string   `json:"mood_feelings,omitempty"`
	MoodFactors  []string   `json:"mood_factors,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LinksTo reports whether the note's forward-link set contains id.
func (n *Note) LinksTo(id string) bool {
	for _, l := range n.ForwardLinks {
		if l == id {
			return true
		}
	}
	return false
}
