package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewQueueListsZipsSorted(t *testing.T) {
	dir := t.TempDir()
	zipPathIn(t, dir, "beta.zip", map[string]string{"a": "a"})
	zipPathIn(t, dir, "alpha.ZIP", map[string]string{"a": "a"})
	zipPathIn(t, dir, "gamma.zip", map[string]string{"a": "a"})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir.zip"), 0o755); err != nil {
		t.Fatal(err)
	}

	q, err := NewQueue(dir)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	want := []string{"alpha.ZIP", "beta.zip", "gamma.zip"}
	got := q.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestQueueCursor(t *testing.T) {
	dir := t.TempDir()
	zipPathIn(t, dir, "a.zip", map[string]string{"a": "a"})
	zipPathIn(t, dir, "b.zip", map[string]string{"a": "a"})

	q, err := NewQueue(dir)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}

	cur, ok := q.Current()
	if !ok || filepath.Base(cur) != "a.zip" {
		t.Fatalf("Current() = %s, %v", cur, ok)
	}

	// Back at the start stays at the start.
	q.Back()
	if q.Pos() != 0 {
		t.Errorf("Pos() after Back at start = %d", q.Pos())
	}

	q.Advance()
	cur, ok = q.Current()
	if !ok || filepath.Base(cur) != "b.zip" {
		t.Fatalf("Current() after Advance = %s, %v", cur, ok)
	}

	// Advancing past the end exhausts the queue without wrapping.
	q.Advance()
	if _, ok := q.Current(); ok {
		t.Error("Current() should report exhaustion past the end")
	}
	q.Advance()
	if q.Pos() != 2 {
		t.Errorf("Pos() past end = %d, want clamped at 2", q.Pos())
	}

	q.Back()
	cur, ok = q.Current()
	if !ok || filepath.Base(cur) != "b.zip" {
		t.Fatalf("Current() after Back = %s, %v", cur, ok)
	}
}

func TestQueueRemoveCurrent(t *testing.T) {
	dir := t.TempDir()
	zipPathIn(t, dir, "a.zip", map[string]string{"a": "a"})
	zipPathIn(t, dir, "b.zip", map[string]string{"a": "a"})
	zipPathIn(t, dir, "c.zip", map[string]string{"a": "a"})

	q, err := NewQueue(dir)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	q.Advance()
	q.RemoveCurrent()

	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	// The cursor now points at the entry that followed the removed one.
	cur, ok := q.Current()
	if !ok || filepath.Base(cur) != "c.zip" {
		t.Errorf("Current() after RemoveCurrent = %s, %v", cur, ok)
	}

	q.RemoveCurrent()
	if _, ok := q.Current(); ok {
		t.Error("queue should be exhausted after removing the last entry")
	}
	q.RemoveCurrent() // no-op past the end
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}
}

func TestQueueFilterSorted(t *testing.T) {
	dir := t.TempDir()
	zipPathIn(t, dir, "done.zip", map[string]string{"a": "a"})
	zipPathIn(t, dir, "todo.zip", map[string]string{"a": "a"})
	writeCorruptZip(t, filepath.Join(dir, "broken.zip"))
	if err := Mark(filepath.Join(dir, "done.zip"), nil); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	q, err := NewQueue(dir)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	q.FilterSorted()

	names := q.Names()
	if len(names) != 2 || names[0] != "broken.zip" || names[1] != "todo.zip" {
		t.Errorf("Names() after FilterSorted = %v, want [broken.zip todo.zip]", names)
	}
}
