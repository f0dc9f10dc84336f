package core

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// InfoFileName is the metadata entry BeamNG mod archives carry.
const InfoFileName = "info.json"

// fallbackPreviewLimit caps how many images are pulled from archives without
// a preview list of their own.
const fallbackPreviewLimit = 3

var imageExtensions = []string{".png", ".jpg", ".jpeg"}

// Inspect reads a mod archive and produces its ModInfo. A zip whose central
// directory cannot be read fails with ErrMalformedArchive; missing or
// unparsable metadata is not an error and degrades to a filename-derived
// name with type Other (or the type already implied by the archive layout).
func Inspect(zipPath string) (*ModInfo, error) {
	st, err := os.Stat(zipPath)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", filepath.Base(zipPath), ErrMalformedArchive, err)
	}
	defer zr.Close()

	slog.Debug("inspecting archive", "path", zipPath)

	mi := &ModInfo{
		SourcePath: zipPath,
		FileSize:   st.Size(),
		ModTime:    st.ModTime(),
		IsSorted:   hasEntry(&zr.Reader, MarkerName),
	}

	if infoFile := findInfoEntry(&zr.Reader, "vehicles"); infoFile != nil {
		inspectVehicle(&zr.Reader, infoFile, mi)
	} else if infoFile := findInfoEntry(&zr.Reader, "levels"); infoFile != nil {
		inspectMap(&zr.Reader, infoFile, mi)
	} else {
		inspectOther(&zr.Reader, mi)
	}

	slog.Debug("inspected archive",
		"path", zipPath, "name", mi.Name, "type", mi.Type,
		"previews", len(mi.Previews), "sorted", mi.IsSorted)
	return mi, nil
}

func inspectVehicle(r *zip.Reader, infoFile *zip.File, mi *ModInfo) {
	mi.Type = TypeVehicle

	var meta vehicleInfoJSON
	if err := decodeEntryJSON(infoFile, &meta); err != nil {
		degrade(r, mi, infoFile.Name, err)
		return
	}

	mi.Name = firstNonEmpty(meta.Name, FallbackName(mi.SourcePath))
	mi.Author = meta.Author
	mi.Version = NormalizeVersion(meta.Version)
	mi.Extra = ExtraInfo{
		Brand:       meta.Brand,
		BodyStyle:   meta.BodyStyle,
		Years:       meta.Years.String(),
		Country:     meta.Country,
		DerbyClass:  meta.DerbyClass,
		VehicleType: meta.Type,
	}

	baseDir := path.Dir(infoFile.Name)
	mi.Previews, mi.Extra.Configurations = vehiclePreviews(r, baseDir)
	if len(mi.Previews) == 0 {
		mi.Previews = fallbackPreviews(r, mi.SourcePath)
	}
	mi.Description = vehicleDescription(meta)
}

func inspectMap(r *zip.Reader, infoFile *zip.File, mi *ModInfo) {
	mi.Type = TypeMap

	var meta mapInfoJSON
	if err := decodeEntryJSON(infoFile, &meta); err != nil {
		degrade(r, mi, infoFile.Name, err)
		return
	}

	mi.Name = firstNonEmpty(meta.Title, FallbackName(mi.SourcePath))
	mi.Author = meta.Authors.join()
	mi.Version = NormalizeVersion(meta.Version)
	mi.Extra = ExtraInfo{
		Biome:       meta.Biome,
		Roads:       meta.Roads,
		SuitableFor: meta.SuitableFor,
	}

	baseDir := path.Dir(infoFile.Name)
	entries := entryIndex(r)
	for _, preview := range meta.Previews {
		f, ok := entries[path.Join(baseDir, preview)]
		if !ok {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			slog.Warn("could not load preview image", "archive", mi.SourcePath, "entry", f.Name, "error", err)
			continue
		}
		mi.Previews = append(mi.Previews, PreviewImage{Name: path.Base(preview), Data: data})
	}
	if len(mi.Previews) == 0 {
		mi.Previews = fallbackPreviews(r, mi.SourcePath)
	}
	mi.Description = mapDescription(meta)
}

func inspectOther(r *zip.Reader, mi *ModInfo) {
	mi.Type = TypeOther
	mi.Name = FallbackName(mi.SourcePath)
	mi.Description = "Unknown mod type. Review contents manually."

	infoFile := findAnyInfoEntry(r)
	if infoFile != nil {
		var meta genericInfoJSON
		if err := decodeEntryJSON(infoFile, &meta); err != nil {
			degrade(r, mi, infoFile.Name, err)
			return
		}
		mi.Name = firstNonEmpty(meta.Name, meta.Title, mi.Name)
		mi.Author = firstNonEmpty(meta.Author, meta.Authors.join())
		mi.Version = NormalizeVersion(meta.Version)
		if meta.Description != "" {
			mi.Description = meta.Description
		}
	}

	mi.Previews = fallbackPreviews(r, mi.SourcePath)
}

// degrade fills a ModInfo for an archive whose metadata entry exists but
// cannot be parsed. The type inferred from the archive layout is kept.
func degrade(r *zip.Reader, mi *ModInfo, entry string, cause error) {
	slog.Warn("unparsable mod metadata", "archive", mi.SourcePath, "entry", entry, "error", cause)
	mi.Name = FallbackName(mi.SourcePath)
	mi.Author = ""
	mi.Description = fmt.Sprintf("Error parsing %s: %v", entry, cause)
	mi.Previews = fallbackPreviews(r, mi.SourcePath)
}

// vehiclePreviews collects preview images for a vehicle archive: the
// default.* image first, then one image per .pc configuration file found
// under the vehicle directory. Returns the previews and the configuration
// names.
func vehiclePreviews(r *zip.Reader, baseDir string) ([]PreviewImage, []string) {
	entries := entryIndex(r)

	var previews []PreviewImage
	for _, def := range []string{"default.png", "default.jpg"} {
		f, ok := entries[path.Join(baseDir, def)]
		if !ok {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			slog.Warn("could not load default image", "entry", f.Name, "error", err)
			continue
		}
		previews = append(previews, PreviewImage{Name: "default", Data: data})
	}

	var configs []string
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, baseDir+"/") || !strings.HasSuffix(strings.ToLower(f.Name), ".pc") {
			continue
		}
		config := strings.TrimSuffix(path.Base(f.Name), path.Ext(f.Name))
		configs = append(configs, config)
		for _, ext := range imageExtensions {
			img, ok := entries[path.Join(baseDir, config)+ext]
			if !ok {
				continue
			}
			data, err := readEntry(img)
			if err != nil {
				slog.Warn("could not load configuration image", "entry", img.Name, "error", err)
			} else {
				previews = append(previews, PreviewImage{Name: config, Data: data})
			}
			break
		}
	}
	return previews, configs
}

// fallbackPreviews takes the first few image entries from anywhere in the
// archive, for mods without a preview convention of their own.
func fallbackPreviews(r *zip.Reader, archivePath string) []PreviewImage {
	var previews []PreviewImage
	for _, f := range r.File {
		if len(previews) >= fallbackPreviewLimit {
			break
		}
		if f.Mode().IsDir() || !isImageEntry(f.Name) {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			slog.Warn("could not load image", "archive", archivePath, "entry", f.Name, "error", err)
			continue
		}
		previews = append(previews, PreviewImage{Name: path.Base(f.Name), Data: data})
	}
	return previews
}

func vehicleDescription(meta vehicleInfoJSON) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	add("Brand", meta.Brand)
	add("Body Style", meta.BodyStyle)
	add("Years", meta.Years.String())
	add("Country", meta.Country)
	add("Derby Class", meta.DerbyClass)
	add("Type", meta.Type)
	return strings.Join(lines, "\n")
}

func mapDescription(meta mapInfoJSON) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	add("Biome", meta.Biome)
	add("Description", meta.Description)
	add("Roads", strings.Join(meta.Roads, ", "))
	add("Suitable for", strings.Join(meta.SuitableFor, ", "))
	return strings.Join(lines, "\n")
}

// findInfoEntry locates an info.json entry that sits under a directory with
// the given path segment ("vehicles" or "levels").
func findInfoEntry(r *zip.Reader, segment string) *zip.File {
	for _, f := range r.File {
		if path.Base(f.Name) != InfoFileName {
			continue
		}
		if hasPathSegment(f.Name, segment) {
			return f
		}
	}
	return nil
}

func findAnyInfoEntry(r *zip.Reader) *zip.File {
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, InfoFileName) {
			return f
		}
	}
	return nil
}

func hasPathSegment(name, segment string) bool {
	for _, part := range strings.Split(name, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

func hasEntry(r *zip.Reader, name string) bool {
	for _, f := range r.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

func entryIndex(r *zip.Reader) map[string]*zip.File {
	index := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		index[f.Name] = f
	}
	return index
}

func isImageEntry(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func decodeEntryJSON(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return json.NewDecoder(rc).Decode(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
