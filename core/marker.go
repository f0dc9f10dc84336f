package core

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// MarkerName is the reserved sentinel entry written into sorted archives.
// Other tooling treats its mere presence, not its content, as the signal.
const MarkerName = ".mod_sorted"

// MarkerInfo is the JSON content written into the sentinel entry. Readers
// must not depend on it being present or well-formed.
type MarkerInfo struct {
	Name     string    `json:"name"`
	Author   string    `json:"author,omitempty"`
	Type     ModType   `json:"type"`
	Version  string    `json:"version,omitempty"`
	SortedAt time.Time `json:"sorted_at"`
}

// IsMarked reports whether the archive contains the sentinel entry. A zip
// that cannot be read fails with ErrMalformedArchive.
func IsMarked(zipPath string) (bool, error) {
	if _, err := os.Stat(zipPath); err != nil {
		return false, fmt.Errorf("stat archive: %w", err)
	}
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return false, fmt.Errorf("%s: %w: %v", filepath.Base(zipPath), ErrMalformedArchive, err)
	}
	defer zr.Close()
	return hasEntry(&zr.Reader, MarkerName), nil
}

// ReadMarker returns the sentinel content for a marked archive, or nil when
// the archive is unmarked or the content is not parsable.
func ReadMarker(zipPath string) (*MarkerInfo, error) {
	if _, err := os.Stat(zipPath); err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", filepath.Base(zipPath), ErrMalformedArchive, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != MarkerName {
			continue
		}
		var marker MarkerInfo
		if err := decodeEntryJSON(f, &marker); err != nil {
			slog.Debug("sentinel content not parsable", "archive", zipPath, "error", err)
			return nil, nil
		}
		return &marker, nil
	}
	return nil, nil
}

// Mark writes the sentinel entry into the archive. The archive is rewritten
// entry by entry into a temporary file which then atomically replaces the
// original, so a failure partway never leaves a truncated archive. Marking
// an already-marked archive is a no-op.
func Mark(zipPath string, info *ModInfo) error {
	marked, err := IsMarked(zipPath)
	if err != nil {
		return err
	}
	if marked {
		slog.Debug("archive already marked", "archive", zipPath)
		return nil
	}

	marker := MarkerInfo{SortedAt: time.Now().UTC()}
	if info != nil {
		marker.Name = info.Name
		marker.Author = info.Author
		marker.Type = info.Type
		marker.Version = info.Version
	}
	content, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sentinel: %w", err)
	}

	err = rewriteArchive(zipPath, func(name string) bool { return name != MarkerName }, func(w *zip.Writer) error {
		entry, err := w.Create(MarkerName)
		if err != nil {
			return err
		}
		_, err = entry.Write(content)
		return err
	})
	if err != nil {
		return fmt.Errorf("mark %s: %w", filepath.Base(zipPath), err)
	}
	slog.Info("marked archive as sorted", "archive", zipPath)
	return nil
}

// Unmark removes the sentinel entry, rewriting the archive the same way
// Mark does. Unmarking an unmarked archive is a no-op.
func Unmark(zipPath string) error {
	marked, err := IsMarked(zipPath)
	if err != nil {
		return err
	}
	if !marked {
		slog.Debug("archive not marked", "archive", zipPath)
		return nil
	}

	err = rewriteArchive(zipPath, func(name string) bool { return name != MarkerName }, nil)
	if err != nil {
		return fmt.Errorf("unmark %s: %w", filepath.Base(zipPath), err)
	}
	slog.Info("removed sorted marker", "archive", zipPath)
	return nil
}

// rewriteArchive copies every entry accepted by keep into a fresh zip in the
// same directory, runs add (if any) to append new entries, then replaces the
// original file. Existing entries are copied raw, preserving their
// compression method, timestamps and bytes exactly.
func rewriteArchive(zipPath string, keep func(name string) bool, add func(*zip.Writer) error) (err error) {
	src, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(zipPath), ".modsorter-*.zip")
	if err != nil {
		return fmt.Errorf("create temporary archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	w := zip.NewWriter(tmp)
	if src.Comment != "" {
		if err = w.SetComment(src.Comment); err != nil {
			return fmt.Errorf("copy archive comment: %w", err)
		}
	}
	for _, f := range src.File {
		if !keep(f.Name) {
			continue
		}
		if err = copyRawEntry(w, f); err != nil {
			return fmt.Errorf("copy entry %s: %w", f.Name, err)
		}
	}
	if add != nil {
		if err = add(w); err != nil {
			return fmt.Errorf("write new entry: %w", err)
		}
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temporary archive: %w", err)
	}

	// Release the source handle before replacing the file; on Windows the
	// rename fails while the original is still open.
	if err = src.Close(); err != nil {
		return fmt.Errorf("close source archive: %w", err)
	}

	if err = os.Rename(tmpPath, zipPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace archive: %w", err)
	}
	return nil
}

// copyRawEntry transfers one entry without recompression.
func copyRawEntry(w *zip.Writer, f *zip.File) error {
	header := f.FileHeader
	entry, err := w.CreateRaw(&header)
	if err != nil {
		return err
	}
	rc, err := f.OpenRaw()
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, rc)
	return err
}
