package core

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Queue is the ordered list of candidate archives in a source directory and
// a cursor over it. Entries are removed when the archive they refer to is
// deleted or moved out; navigation never mutates the filesystem.
type Queue struct {
	dir   string
	files []string
	pos   int
}

// NewQueue lists the .zip files in dir in name order.
func NewQueue(dir string) (*Queue, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list source folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	slog.Debug("listed source folder", "dir", dir, "archives", len(files))
	return &Queue{dir: dir, files: files}, nil
}

// Dir returns the source directory the queue was built from.
func (q *Queue) Dir() string { return q.dir }

// Len returns the number of remaining entries.
func (q *Queue) Len() int { return len(q.files) }

// Pos returns the zero-based cursor position.
func (q *Queue) Pos() int { return q.pos }

// Names returns the remaining archive filenames in order.
func (q *Queue) Names() []string {
	out := make([]string, len(q.files))
	copy(out, q.files)
	return out
}

// Current returns the full path of the archive under the cursor, or false
// when the cursor has run past the end.
func (q *Queue) Current() (string, bool) {
	if q.pos < 0 || q.pos >= len(q.files) {
		return "", false
	}
	return filepath.Join(q.dir, q.files[q.pos]), true
}

// Advance steps the cursor forward.
func (q *Queue) Advance() {
	if q.pos < len(q.files) {
		q.pos++
	}
}

// Back steps the cursor backward, stopping at the first entry.
func (q *Queue) Back() {
	if q.pos > 0 {
		q.pos--
	}
}

// RemoveCurrent drops the entry under the cursor, after its archive has
// been deleted or moved away. The cursor then points at the next entry.
func (q *Queue) RemoveCurrent() {
	if q.pos < 0 || q.pos >= len(q.files) {
		return
	}
	q.files = append(q.files[:q.pos], q.files[q.pos+1:]...)
}

// FilterSorted drops entries whose archive already carries the sentinel
// marker. Unreadable archives are kept so they surface during triage.
func (q *Queue) FilterSorted() {
	kept := q.files[:0]
	for _, name := range q.files {
		marked, err := IsMarked(filepath.Join(q.dir, name))
		if err != nil {
			slog.Warn("could not check sorted marker", "archive", name, "error", err)
			kept = append(kept, name)
			continue
		}
		if !marked {
			kept = append(kept, name)
		}
	}
	q.files = kept
	if q.pos > len(q.files) {
		q.pos = len(q.files)
	}
}
