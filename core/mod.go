package core

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/camelcase"
	"github.com/igorsobreira/titlecase"
)

// ModType classifies an archive by its content layout.
type ModType string

// The three possible mod types. Anything that is not recognisably a vehicle
// or a map is Other.
const (
	TypeVehicle ModType = "Vehicle"
	TypeMap     ModType = "Map"
	TypeOther   ModType = "Other"
)

// PreviewImage is one image extracted from an archive. Data holds the full
// decompressed entry bytes.
type PreviewImage struct {
	Name string
	Data []byte
}

// ExtraInfo holds secondary metadata fields from info.json. Every field is
// individually optional; zero values mean the field was absent.
type ExtraInfo struct {
	Brand          string
	BodyStyle      string
	Years          string
	Country        string
	DerbyClass     string
	VehicleType    string
	Configurations []string
	Biome          string
	Roads          []string
	SuitableFor    []string
}

// ModInfo describes one mod archive. It is rebuilt from the on-disk archive
// every time it is needed and must not be reused after the archive has been
// marked, moved or deleted.
type ModInfo struct {
	Name        string
	Author      string
	Description string
	Version     string
	Type        ModType
	Previews    []PreviewImage
	Extra       ExtraInfo
	SourcePath  string
	IsSorted    bool
	FileSize    int64
	ModTime     time.Time
}

// FallbackName is the mod name used when an archive has no usable metadata:
// the archive filename without its extension.
func FallbackName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" {
		return "Unknown Mod"
	}
	return name
}

// PrettyName turns an identifier-style name (directory or category keys like
// "rally_cars" or "OldTimers") into a space-separated title-cased label.
func PrettyName(name string) string {
	name = strings.Join(camelcase.Split(name), " ")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.Join(strings.Fields(name), " ")
	return titlecase.Title(name)
}

// NormalizeVersion canonicalises a declared mod version where it parses as
// semver; otherwise the raw string is kept as-is.
func NormalizeVersion(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if v, err := semver.NewVersion(raw); err == nil {
		return v.String()
	}
	return raw
}
