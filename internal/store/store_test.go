package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "laguz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newNote(id, owner, title, content string, links ...string) *models.Note {
	now := time.Now().UTC()
	return &models.Note{
		ID:           id,
		OwnerID:      owner,
		Title:        title,
		Kind:         models.KindNote,
		Content:      content,
		ForwardLinks: links,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func insert(t *testing.T, db *DB, n *models.Note) {
	t.Helper()
	if err := db.WithTx(context.Background(), func(tx *Tx) error {
		return tx.InsertNote(n)
	}); err != nil {
		t.Fatalf("InsertNote(%s): %v", n.Title, err)
	}
}

func TestInsertAndGet(t *testing.T) {
	db := testDB(t)
	insert(t, db, newNote("n1", "alice", "Coffee", "beans", "n2"))

	got, err := db.GetNote(context.Background(), "n1")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Title != "Coffee" || got.OwnerID != "alice" {
		t.Errorf("note = %+v", got)
	}
	if len(got.ForwardLinks) != 1 || got.ForwardLinks[0] != "n2" {
		t.Errorf("forward links = %v, want [n2]", got.ForwardLinks)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetNote(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDuplicateTitleSameOwner(t *testing.T) {
	db := testDB(t)
	insert(t, db, newNote("n1", "alice", "Coffee", ""))

	err := db.WithTx(context.Background(), func(tx *Tx) error {
		return tx.InsertNote(newNote("n2", "alice", "Coffee", ""))
	})
	if !errors.Is(err, apperr.ErrDuplicateTitle) {
		t.Errorf("err = %v, want ErrDuplicateTitle", err)
	}
}

func TestDuplicateTitleDifferentOwnerOK(t *testing.T) {
	db := testDB(t)
	insert(t, db, newNote("n1", "alice", "Coffee", ""))
	insert(t, db, newNote("n2", "bob", "Coffee", ""))
}

func TestFindByOwnerAndTitle_ScopedToOwner(t *testing.T) {
	db := testDB(t)
	insert(t, db, newNote("n1", "alice", "Coffee", ""))

	if _, err := db.FindByOwnerAndTitle(context.Background(), "bob", "Coffee"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cross-owner lookup err = %v, want ErrNotFound", err)
	}
	n, err := db.FindByOwnerAndTitle(context.Background(), "alice", "Coffee")
	if err != nil || n.ID != "n1" {
		t.Errorf("lookup = %v, %v", n, err)
	}
}

func TestFindLinking(t *testing.T) {
	db := testDB(t)
	insert(t, db, newNote("target", "alice", "Target", ""))
	insert(t, db, newNote("a", "alice", "A", "[[Target]]", "target"))
	insert(t, db, newNote("b", "alice", "B", "[[Target]]", "target"))
	// Same link under another owner must not appear.
	insert(t, db, newNote("c", "bob", "C", "", "target"))

	linking, err := db.FindLinking(context.Background(), "alice", "target")
	if err != nil {
		t.Fatalf("FindLinking: %v", err)
	}
	if len(linking) != 2 {
		t.Fatalf("len = %d, want 2", len(linking))
	}
	if linking[0].ID != "a" || linking[1].ID != "b" {
		t.Errorf("linking ids = %s, %s", linking[0].ID, linking[1].ID)
	}
}

func TestUpdateNoteReplacesLinks(t *testing.T) {
	db := testDB(t)
	insert(t, db, newNote("n1", "alice", "Coffee", "", "x", "y"))

	n, _ := db.GetNote(context.Background(), "n1")
	n.ForwardLinks = []string{"z"}
	n.Content = "[[Z]]"
	if err := db.WithTx(context.Background(), func(tx *Tx) error {
		return tx.UpdateNote(n)
	}); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	got, _ := db.GetNote(context.Background(), "n1")
	if len(got.ForwardLinks) != 1 || got.ForwardLinks[0] != "z" {
		t.Errorf("forward links = %v, want [z]", got.ForwardLinks)
	}
}

func TestLinkOrderPreserved(t *testing.T) {
	db := testDB(t)
	insert(t, db, newNote("n1", "alice", "Coffee", "", "c", "a", "b"))

	got, _ := db.GetNote(context.Background(), "n1")
	want := []string{"c", "a", "b"}
	for i, id := range want {
		if got.ForwardLinks[i] != id {
			t.Fatalf("forward links = %v, want %v", got.ForwardLinks, want)
		}
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	insert(t, db, newNote("n1", "alice", "Coffee", "", "x"))

	if err := db.WithTx(context.Background(), func(tx *Tx) error {
		return tx.DeleteNote("n1")
	}); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if _, err := db.GetNote(context.Background(), "n1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if linking, _ := db.FindLinking(context.Background(), "alice", "x"); len(linking) != 0 {
		t.Errorf("outgoing links survived delete: %v", linking)
	}
}

func TestRollbackOnError(t *testing.T) {
	db := testDB(t)
	boom := errors.New("boom")

	err := db.WithTx(context.Background(), func(tx *Tx) error {
		if err := tx.InsertNote(newNote("n1", "alice", "Coffee", "")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := db.GetNote(context.Background(), "n1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("insert survived rollback: err = %v", err)
	}
}

func TestListLatest_KindFilterAndLimit(t *testing.T) {
	db := testDB(t)
	base := time.Now().UTC()
	for i, title := range []string{"One", "Two", "Three"} {
		n := newNote(title, "alice", title, "")
		n.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		insert(t, db, n)
	}
	d := newNote("d1", "alice", "Entry", "")
	d.Kind = models.KindDiary
	d.UpdatedAt = base.Add(time.Hour)
	insert(t, db, d)

	notes, err := db.ListLatest(context.Background(), "alice", models.KindNote, 2)
	if err != nil {
		t.Fatalf("ListLatest: %v", err)
	}
	if len(notes) != 2 || notes[0].Title != "Three" || notes[1].Title != "Two" {
		t.Errorf("latest = %v", titles(notes))
	}

	diaries, _ := db.ListLatest(context.Background(), "alice", models.KindDiary, 10)
	if len(diaries) != 1 || diaries[0].ID != "d1" {
		t.Errorf("diaries = %v", titles(diaries))
	}
}

func TestDiariesByMonth(t *testing.T) {
	db := testDB(t)
	jan := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 2, 0, 0, 0, 0, time.UTC)

	d1 := newNote("d1", "alice", "Mid January", "")
	d1.Kind = models.KindDiary
	d1.DiaryDate = &jan
	insert(t, db, d1)

	d2 := newNote("d2", "alice", "Early February", "")
	d2.Kind = models.KindDiary
	d2.DiaryDate = &feb
	insert(t, db, d2)

	got, err := db.DiariesByMonth(context.Background(), "alice", jan)
	if err != nil {
		t.Fatalf("DiariesByMonth: %v", err)
	}
	if len(got) != 1 || got[0].ID != "d1" {
		t.Errorf("january diaries = %v", titles(got))
	}
}

func TestAutocompleteByPrefix(t *testing.T) {
	db := testDB(t)
	for _, title := range []string{"Coffee", "Coffee beans", "Tea"} {
		insert(t, db, newNote(title, "alice", title, ""))
	}
	insert(t, db, newNote("x", "bob", "Coffee mug", ""))

	got, err := db.AutocompleteByPrefix(context.Background(), "alice", "Cof", 10)
	if err != nil {
		t.Fatalf("AutocompleteByPrefix: %v", err)
	}
	if len(got) != 2 || got[0] != "Coffee" || got[1] != "Coffee beans" {
		t.Errorf("autocomplete = %v", got)
	}
}

func TestSearchByKeyword_OwnerScoped(t *testing.T) {
	db := testDB(t)
	insert(t, db, newNote("n1", "alice", "Coffee", "notes about arabica roasting"))
	insert(t, db, newNote("n2", "bob", "Coffee", "arabica as well"))

	hits, err := db.SearchByKeyword(context.Background(), "alice", "arabica", 10)
	if err != nil {
		t.Fatalf("SearchByKeyword: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "n1" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestMoodFieldsRoundTrip(t *testing.T) {
	db := testDB(t)
	score := 7
	date := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	n := newNote("d1", "alice", "March third", "long day")
	n.Kind = models.KindDiary
	n.DiaryDate = &date
	n.MoodScore = &score
	n.MoodFeelings = []string{"calm", "tired"}
	n.MoodFactors = []string{"work"}
	insert(t, db, n)

	got, err := db.GetNote(context.Background(), "d1")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.MoodScore == nil || *got.MoodScore != 7 {
		t.Errorf("mood score = %v", got.MoodScore)
	}
	if len(got.MoodFeelings) != 2 || got.MoodFeelings[0] != "calm" {
		t.Errorf("feelings = %v", got.MoodFeelings)
	}
	if got.DiaryDate == nil || !got.DiaryDate.Equal(date) {
		t.Errorf("diary date = %v", got.DiaryDate)
	}
}

func titles(notes []*models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}
