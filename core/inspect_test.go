package core

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestInspectVehicleMod(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "car_mod.zip", map[string]string{
		"vehicles/mycar/info.json": `{"Name": "Speedy", "Author": "Alice"}`,
		"preview.jpg":              "jpegdata",
	})

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Name != "Speedy" {
		t.Errorf("Name = %q, want Speedy", info.Name)
	}
	if info.Author != "Alice" {
		t.Errorf("Author = %q, want Alice", info.Author)
	}
	if info.Type != TypeVehicle {
		t.Errorf("Type = %v, want %v", info.Type, TypeVehicle)
	}
	if len(info.Previews) != 1 {
		t.Fatalf("expected 1 preview, got %d", len(info.Previews))
	}
	if info.IsSorted {
		t.Error("IsSorted = true for unmarked archive")
	}
}

func TestInspectVehicleConfigurations(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "tuner.zip", map[string]string{
		"vehicles/tuner/info.json": `{"Name": "Tuner", "Author": "Bob", "Brand": "Ibishu", "Country": "Japan", "Years": {"min": 1988, "max": 1994}}`,
		"vehicles/tuner/default.png": "defaultimg",
		"vehicles/tuner/street.pc":   "{}",
		"vehicles/tuner/street.png":  "streetimg",
		"vehicles/tuner/drift.pc":    "{}",
	})

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Type != TypeVehicle {
		t.Fatalf("Type = %v, want Vehicle", info.Type)
	}
	// default image first, then the street configuration image; drift has
	// no matching image.
	if len(info.Previews) != 2 {
		t.Fatalf("expected 2 previews, got %d", len(info.Previews))
	}
	if info.Previews[0].Name != "default" {
		t.Errorf("first preview = %q, want default", info.Previews[0].Name)
	}
	if info.Previews[1].Name != "street" {
		t.Errorf("second preview = %q, want street", info.Previews[1].Name)
	}
	if len(info.Extra.Configurations) != 2 {
		t.Errorf("configurations = %v, want 2 entries", info.Extra.Configurations)
	}
	if info.Extra.Years != "1988-1994" {
		t.Errorf("Years = %q, want 1988-1994", info.Extra.Years)
	}
	if info.Extra.Brand != "Ibishu" {
		t.Errorf("Brand = %q, want Ibishu", info.Extra.Brand)
	}
}

func TestInspectMapMod(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "island.zip", map[string]string{
		"levels/island/info.json": `{"title": "Island", "authors": ["Carol", "Dave"], "biome": "tropical", "previews": ["island_preview.png"]}`,
		"levels/island/island_preview.png": "imgdata",
		"levels/island/unrelated.png":      "other",
	})

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Type != TypeMap {
		t.Errorf("Type = %v, want Map", info.Type)
	}
	if info.Name != "Island" {
		t.Errorf("Name = %q, want Island", info.Name)
	}
	if info.Author != "Carol, Dave" {
		t.Errorf("Author = %q, want Carol, Dave", info.Author)
	}
	if len(info.Previews) != 1 || info.Previews[0].Name != "island_preview.png" {
		t.Errorf("previews = %v, want only island_preview.png", previewNames(info))
	}
}

func TestInspectMapAuthorsAsString(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "flat.zip", map[string]string{
		"levels/flat/info.json": `{"title": "Flat", "authors": "Solo"}`,
	})

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Author != "Solo" {
		t.Errorf("Author = %q, want Solo", info.Author)
	}
}

func TestInspectMissingMetadata(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "mystery_mod.zip", map[string]string{
		"scripts/thing.lua": "-- lua",
		"a.png":             "img1",
		"b.jpg":             "img2",
		"c.jpeg":            "img3",
		"d.png":             "img4",
	})

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Type != TypeOther {
		t.Errorf("Type = %v, want Other", info.Type)
	}
	if info.Name != "mystery_mod" {
		t.Errorf("Name = %q, want mystery_mod", info.Name)
	}
	if info.Author != "" {
		t.Errorf("Author = %q, want empty", info.Author)
	}
	if len(info.Previews) != 3 {
		t.Errorf("expected at most 3 fallback previews, got %d", len(info.Previews))
	}
}

func TestInspectBrokenMetadataDegrades(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "broken.zip", map[string]string{
		"vehicles/wreck/info.json": `{"Name": "Wreck", unquoted}`,
		"vehicles/wreck/pic.png":   "imgdata",
	})

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect should not fail on bad metadata: %v", err)
	}
	// Layout still implies a vehicle even though the JSON is unusable.
	if info.Type != TypeVehicle {
		t.Errorf("Type = %v, want Vehicle", info.Type)
	}
	if info.Name != "broken" {
		t.Errorf("Name = %q, want broken", info.Name)
	}
	if len(info.Previews) == 0 {
		t.Error("expected fallback previews for degraded mod")
	}
}

func TestInspectMalformedArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.zip")
	writeCorruptZip(t, path)

	_, err := Inspect(path)
	if !errors.Is(err, ErrMalformedArchive) {
		t.Fatalf("err = %v, want ErrMalformedArchive", err)
	}
}

func TestInspectDeterministicType(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "both.zip", map[string]string{
		// Both conventions present: the vehicle check runs first and wins.
		"vehicles/v/info.json": `{"Name": "V"}`,
		"levels/l/info.json":   `{"title": "L"}`,
	})

	for i := 0; i < 3; i++ {
		info, err := Inspect(path)
		if err != nil {
			t.Fatalf("Inspect: %v", err)
		}
		if info.Type != TypeVehicle {
			t.Fatalf("run %d: Type = %v, want Vehicle", i, info.Type)
		}
	}
}

func TestInspectSortedMarker(t *testing.T) {
	dir := t.TempDir()
	path := zipPathIn(t, dir, "done.zip", map[string]string{
		MarkerName:  "{}",
		"stuff.txt": "x",
	})

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !info.IsSorted {
		t.Error("IsSorted = false for archive with sentinel entry")
	}
}

func previewNames(info *ModInfo) []string {
	names := make([]string, len(info.Previews))
	for i, p := range info.Previews {
		names[i] = p.Name
	}
	return names
}
