package core

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// FoldersFileName is the optional per-source-directory destination mapping.
const FoldersFileName = "folders.toml"

// foldersFile is the folders.toml shape: category name to directory path.
type foldersFile struct {
	Folders map[string]string `toml:"folders"`
}

// Destinations maps category names to directories. Built once at startup
// and immutable for the rest of the session.
type Destinations struct {
	dirs  map[string]string
	order []string
}

// LoadDestinations builds the category mapping for a source directory:
// built-in defaults for the three mod types, then folders.toml in the
// source directory, then destinations.* from the user config, each layer
// overriding or extending the previous. Relative paths resolve against the
// source directory.
func LoadDestinations(sourceDir string) (*Destinations, error) {
	dirs := map[string]string{
		string(TypeVehicle): filepath.Join(sourceDir, "sorted", "vehicles"),
		string(TypeMap):     filepath.Join(sourceDir, "sorted", "maps"),
		string(TypeOther):   filepath.Join(sourceDir, "sorted", "other"),
	}

	foldersPath := filepath.Join(sourceDir, FoldersFileName)
	if _, err := os.Stat(foldersPath); err == nil {
		var file foldersFile
		if _, err := toml.DecodeFile(foldersPath, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", FoldersFileName, err)
		}
		for category, dir := range file.Folders {
			dirs[category] = resolveDir(sourceDir, dir)
		}
		slog.Debug("loaded folder mapping", "path", foldersPath, "categories", len(file.Folders))
	}

	if raw := viper.GetStringMap("destinations"); len(raw) > 0 {
		var overrides map[string]string
		if err := mapstructure.Decode(raw, &overrides); err != nil {
			return nil, fmt.Errorf("decode destinations config: %w", err)
		}
		for category, dir := range overrides {
			// viper lowercases map keys, so fold the built-in type names back.
			dirs[canonicalCategory(category)] = resolveDir(sourceDir, dir)
		}
	}

	return newDestinations(dirs), nil
}

func newDestinations(dirs map[string]string) *Destinations {
	// Built-in types first, then custom categories in name order.
	order := []string{string(TypeVehicle), string(TypeMap), string(TypeOther)}
	var custom []string
	for category := range dirs {
		switch category {
		case string(TypeVehicle), string(TypeMap), string(TypeOther):
		default:
			custom = append(custom, category)
		}
	}
	sort.Strings(custom)
	return &Destinations{dirs: dirs, order: append(order, custom...)}
}

func canonicalCategory(category string) string {
	for _, builtin := range []string{string(TypeVehicle), string(TypeMap), string(TypeOther)} {
		if strings.EqualFold(category, builtin) {
			return builtin
		}
	}
	return category
}

func resolveDir(sourceDir, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(sourceDir, dir)
}

// Categories returns the category names: the three built-in types first,
// then custom categories sorted by name.
func (d *Destinations) Categories() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Dir returns the directory for a category.
func (d *Destinations) Dir(category string) (string, bool) {
	dir, ok := d.dirs[category]
	return dir, ok
}

// ForType returns the directory for a mod type's built-in category.
func (d *Destinations) ForType(t ModType) string {
	return d.dirs[string(t)]
}

// Label returns the human-readable menu label for a category.
func (d *Destinations) Label(category string) string {
	switch category {
	case string(TypeVehicle), string(TypeMap), string(TypeOther):
		return category
	}
	return PrettyName(category)
}
