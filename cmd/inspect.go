package cmd

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modsorter/modsorter/cmdshared"
	"github.com/modsorter/modsorter/core"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:     "inspect <archive>",
	Short:   "Show the metadata and previews of one mod archive",
	Aliases: []string{"info", "show"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := filepath.Abs(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		info, err := core.Inspect(path)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		printModInfo(info)

		extractDir := viper.GetString("inspect.extract-previews")
		openPreviews := viper.GetBool("inspect.open-previews")
		if extractDir == "" && !openPreviews {
			return
		}
		if len(info.Previews) == 0 {
			fmt.Println("No preview images to extract.")
			return
		}

		if extractDir == "" {
			extractDir, err = os.MkdirTemp("", "modsorter-previews-*")
			if err != nil {
				fmt.Printf("Error creating preview folder: %v\n", err)
				os.Exit(1)
			}
		}
		paths, err := extractPreviews(info, extractDir)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Extracted %d preview(s) to %s\n", len(paths), extractDir)

		if openPreviews {
			if err := open.Start(paths[0]); err != nil {
				fmt.Printf("Error opening %s: %v\n", paths[0], err)
			}
		}
	},
}

func printModInfo(info *core.ModInfo) {
	fmt.Printf("%s\n", info.Name)
	fmt.Printf("  Archive:  %s (%s)\n", filepath.Base(info.SourcePath), cmdshared.FormatSize(info.FileSize))
	fmt.Printf("  Type:     %s\n", info.Type)
	if info.Author != "" {
		fmt.Printf("  Author:   %s\n", info.Author)
	}
	if info.Version != "" {
		fmt.Printf("  Version:  %s\n", info.Version)
	}
	fmt.Printf("  Modified: %s\n", cmdshared.FormatTime(info.ModTime))
	if info.IsSorted {
		fmt.Printf("  Sorted:   yes%s\n", markerSummary(info.SourcePath))
	} else {
		fmt.Printf("  Sorted:   no\n")
	}

	if info.Description != "" {
		fmt.Println("  Description:")
		for _, line := range strings.Split(info.Description, "\n") {
			fmt.Printf("    %s\n", line)
		}
	}

	if len(info.Extra.Configurations) > 0 {
		fmt.Printf("  Configurations: %s\n", strings.Join(info.Extra.Configurations, ", "))
	}

	if len(info.Previews) > 0 {
		fmt.Printf("  Previews (%d):\n", len(info.Previews))
		for _, p := range info.Previews {
			dims := ""
			if cfg, _, err := image.DecodeConfig(bytes.NewReader(p.Data)); err == nil {
				dims = fmt.Sprintf(", %dx%d", cfg.Width, cfg.Height)
			}
			fmt.Printf("    %s (%s%s)\n", p.Name, cmdshared.FormatSize(int64(len(p.Data))), dims)
		}
	}
}

// markerSummary renders what the sorted marker recorded, if it holds a
// readable summary. Presence of the marker alone carries no content promise.
func markerSummary(path string) string {
	marker, err := core.ReadMarker(path)
	if err != nil || marker == nil {
		return ""
	}
	var parts []string
	if marker.Type != "" {
		part := "as " + string(marker.Type)
		if marker.Name != "" {
			part += fmt.Sprintf(" %q", marker.Name)
		}
		parts = append(parts, part)
	}
	if !marker.SortedAt.IsZero() {
		parts = append(parts, "on "+cmdshared.FormatTime(marker.SortedAt))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " ") + ")"
}

// extractPreviews writes each preview image to dir and returns the written
// paths in preview order.
func extractPreviews(info *core.ModInfo, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview folder: %v", err)
	}
	paths := make([]string, 0, len(info.Previews))
	for i, p := range info.Previews {
		name := fmt.Sprintf("%02d-%s", i+1, sanitizeFilename(p.Name))
		if filepath.Ext(name) == "" {
			name += ".png"
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, p.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write preview %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().String("extract-previews", "", "Extract preview images into the given folder")
	_ = viper.BindPFlag("inspect.extract-previews", inspectCmd.Flags().Lookup("extract-previews"))
	inspectCmd.Flags().BoolP("open-previews", "o", false, "Extract preview images and open the first one")
	_ = viper.BindPFlag("inspect.open-previews", inspectCmd.Flags().Lookup("open-previews"))
}
