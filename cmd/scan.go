package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	mpb "github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"

	"github.com/modsorter/modsorter/cmdshared"
	"github.com/modsorter/modsorter/core"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "Scan a folder of mod archives and summarise them",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := sourceDir(args)
		queue, err := core.NewQueue(dir)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if queue.Len() == 0 {
			fmt.Printf("No mod archives found in %s\n", dir)
			return
		}

		cache := core.LoadCache(core.CachePath(dir))
		refresh := viper.GetBool("scan.refresh")

		progress := mpb.New(mpb.WithWidth(48), mpb.WithOutput(os.Stderr))
		bar := progress.AddBar(int64(queue.Len()),
			mpb.PrependDecorators(
				decor.Name("Scanning "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)

		type scanRow struct {
			Archive string          `json:"archive"`
			Entry   core.CacheEntry `json:"summary"`
		}
		var results []scanRow
		var unreadable []string
		for _, name := range queue.Names() {
			entry, err := core.Summarize(dir, name, cache, refresh)
			bar.Increment()
			if err != nil {
				if errors.Is(err, core.ErrMalformedArchive) {
					slog.Warn("skipping malformed archive", "archive", name, "error", err)
					unreadable = append(unreadable, name)
					continue
				}
				fmt.Printf("Error scanning %s: %v\n", name, err)
				continue
			}
			results = append(results, scanRow{Archive: name, Entry: entry})
		}
		progress.Wait()

		// Drop cache entries for archives no longer in the folder.
		present := make(map[string]bool, queue.Len())
		for _, name := range queue.Names() {
			present[name] = true
		}
		for name := range cache.Entries() {
			if !present[name] {
				cache.Remove(name)
			}
		}

		if err := cache.Save(); err != nil {
			slog.Warn("could not save scan cache", "error", err)
		}

		if viper.GetBool("scan.unsorted") {
			i := 0
			for _, r := range results {
				if !r.Entry.Sorted {
					results[i] = r
					i++
				}
			}
			results = results[:i]
		}

		if viper.GetBool("scan.json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			return
		}

		rows := make([][]string, 0, len(results))
		for _, r := range results {
			sorted := ""
			if r.Entry.Sorted {
				sorted = "yes"
			}
			rows = append(rows, []string{
				r.Archive,
				r.Entry.Name,
				string(r.Entry.Type),
				r.Entry.Author,
				r.Entry.Version,
				cmdshared.FormatSize(r.Entry.Size),
				sorted,
			})
		}
		fmt.Println(renderTable(
			[]string{"Archive", "Name", "Type", "Author", "Version", "Size", "Sorted"},
			rows, 5))

		if len(unreadable) > 0 {
			fmt.Printf("Skipped %d unreadable archive(s): %v\n", len(unreadable), unreadable)
		}
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolP("refresh", "r", false, "Ignore the scan cache and re-inspect every archive")
	_ = viper.BindPFlag("scan.refresh", scanCmd.Flags().Lookup("refresh"))
	scanCmd.Flags().BoolP("unsorted", "u", false, "Only show archives without the sorted marker")
	_ = viper.BindPFlag("scan.unsorted", scanCmd.Flags().Lookup("unsorted"))
	scanCmd.Flags().Bool("json", false, "Output the scan results as JSON")
	_ = viper.BindPFlag("scan.json", scanCmd.Flags().Lookup("json"))
}
