package core

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMarkAddsSentinel(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "mod.zip", map[string]string{
		"vehicles/car/info.json": `{"Name": "Car"}`,
		"readme.txt":             "hello",
	})

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if err := Mark(path, info); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	marked, err := IsMarked(path)
	if err != nil {
		t.Fatalf("IsMarked: %v", err)
	}
	if !marked {
		t.Fatal("archive not marked after Mark")
	}

	// Marker content carries the inspected summary.
	marker, err := ReadMarker(path)
	if err != nil {
		t.Fatalf("ReadMarker: %v", err)
	}
	if marker == nil || marker.Name != "Car" || marker.Type != TypeVehicle {
		t.Errorf("marker = %+v, want name Car, type Vehicle", marker)
	}
	if marker != nil && marker.SortedAt.IsZero() {
		t.Error("marker missing sort timestamp")
	}
}

func TestMarkIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "mod.zip", map[string]string{
		"vehicles/car/info.json": `{"Name": "Car"}`,
		"data.bin":               "payload",
	})
	before := readZipEntries(t, path)

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if err := Mark(path, info); err != nil {
		t.Fatalf("first Mark: %v", err)
	}
	if err := Mark(path, info); err != nil {
		t.Fatalf("second Mark: %v", err)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open marked zip: %v", err)
	}
	sentinels := 0
	for _, f := range zr.File {
		if f.Name == MarkerName {
			sentinels++
		}
	}
	zr.Close()
	if sentinels != 1 {
		t.Fatalf("sentinel count = %d, want exactly 1", sentinels)
	}

	after := readZipEntries(t, path)
	delete(after, MarkerName)
	if len(after) != len(before) {
		t.Fatalf("non-sentinel entry count changed: %d -> %d", len(before), len(after))
	}
	for name, content := range before {
		if after[name] != content {
			t.Errorf("entry %s changed content after marking", name)
		}
	}
}

func TestMarkPreservesCompressionMethod(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "mod.zip", map[string]string{
		"big.txt": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
	})

	methodsBefore := entryMethods(t, path)
	if err := Mark(path, nil); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	methodsAfter := entryMethods(t, path)

	for name, method := range methodsBefore {
		if methodsAfter[name] != method {
			t.Errorf("entry %s method changed %d -> %d", name, method, methodsAfter[name])
		}
	}
}

func TestUnmarkRemovesSentinel(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "mod.zip", map[string]string{
		"stuff.txt": "x",
	})

	if err := Mark(path, nil); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if err := Unmark(path); err != nil {
		t.Fatalf("Unmark: %v", err)
	}

	marked, err := IsMarked(path)
	if err != nil {
		t.Fatalf("IsMarked: %v", err)
	}
	if marked {
		t.Error("archive still marked after Unmark")
	}

	entries := readZipEntries(t, path)
	if entries["stuff.txt"] != "x" {
		t.Error("other entries not preserved by Unmark")
	}

	// Unmarking an unmarked archive is a no-op.
	if err := Unmark(path); err != nil {
		t.Fatalf("second Unmark: %v", err)
	}
}

func TestIsMarkedDistinguishesMissingFromMalformed(t *testing.T) {
	dir := t.TempDir()

	_, err := IsMarked(filepath.Join(dir, "absent.zip"))
	if err == nil {
		t.Fatal("IsMarked on missing file should fail")
	}
	if errors.Is(err, ErrMalformedArchive) {
		t.Errorf("missing file reported as malformed archive: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}

	corrupt := filepath.Join(dir, "corrupt.zip")
	writeCorruptZip(t, corrupt)
	_, err = IsMarked(corrupt)
	if !errors.Is(err, ErrMalformedArchive) {
		t.Errorf("err = %v, want ErrMalformedArchive", err)
	}
}

func TestMarkLeavesOnlyTheArchive(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "mod.zip", map[string]string{"a.txt": "a"})

	if err := Mark(path, nil); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	// The rewrite goes through a temp file that must be gone after the
	// replace, whether it succeeded or not.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "mod.zip" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contents = %v, want only mod.zip", names)
	}
}

func TestMarkMalformedArchiveLeavesFileIntact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.zip")
	writeCorruptZip(t, path)
	before := readFile(t, path)

	if err := Mark(path, nil); err == nil {
		t.Fatal("Mark on corrupt zip should fail")
	}
	if readFile(t, path) != before {
		t.Error("corrupt archive modified by failed Mark")
	}
}

func entryMethods(t *testing.T, path string) map[string]uint16 {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	out := map[string]uint16{}
	for _, f := range zr.File {
		out[f.Name] = f.Method
	}
	return out
}
