package core

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// CollisionPolicy decides what Move does when the destination file already
// exists.
type CollisionPolicy string

const (
	// CollisionAbort fails the move with ErrDestinationExists.
	CollisionAbort CollisionPolicy = "abort"
	// CollisionOverwrite replaces the destination file.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionRename picks a free " (n)" suffixed name in the destination.
	CollisionRename CollisionPolicy = "rename"
)

// ParseCollisionPolicy validates a user-supplied policy name.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case CollisionAbort:
		return CollisionAbort, nil
	case CollisionOverwrite:
		return CollisionOverwrite, nil
	case CollisionRename:
		return CollisionRename, nil
	}
	return "", fmt.Errorf("invalid collision policy %q, must be one of abort, overwrite, or rename", s)
}

// Delete removes the archive file. Irreversible; confirmation is the
// caller's responsibility.
func Delete(zipPath string) error {
	if err := os.Remove(zipPath); err != nil {
		return fmt.Errorf("delete archive: %w", err)
	}
	slog.Info("deleted archive", "archive", zipPath)
	return nil
}

// Move relocates the archive into destDir, creating the directory if
// needed, and returns the final destination path. Same-name collisions are
// resolved per the policy. A move that fails partway leaves the source file
// in place.
func Move(zipPath, destDir string, policy CollisionPolicy) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination folder: %w", err)
	}

	dest := filepath.Join(destDir, filepath.Base(zipPath))
	if _, err := os.Lstat(dest); err == nil {
		switch policy {
		case CollisionOverwrite:
			// os.Rename below replaces the destination.
		case CollisionRename:
			dest = renameCandidate(destDir, filepath.Base(zipPath))
		default:
			return "", fmt.Errorf("%s: %w", dest, ErrDestinationExists)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("check destination: %w", err)
	}

	if err := os.Rename(zipPath, dest); err != nil {
		var linkErr *os.LinkError
		if !errors.As(err, &linkErr) {
			return "", fmt.Errorf("move archive: %w", err)
		}
		// Cross-device move: copy with verification, then remove the source.
		if err := copyFileVerified(zipPath, dest); err != nil {
			return "", fmt.Errorf("move archive: %w", err)
		}
		if err := os.Remove(zipPath); err != nil {
			return "", fmt.Errorf("remove source after copy: %w", err)
		}
	}

	slog.Info("moved archive", "from", zipPath, "to", dest)
	return dest, nil
}

// renameCandidate finds the first free "name (n).zip" style filename in dir.
func renameCandidate(dir, base string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}

// copyFileVerified streams src to dst with size and SHA256 verification,
// removing dst on mismatch so a bad copy never looks like a finished move.
func copyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	if written != srcInfo.Size() {
		os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}
