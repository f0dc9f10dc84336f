package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/modsorter/modsorter/core"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query> [directory]",
	Short: "Fuzzy-search the scanned mods by name and author",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		query := args[0]
		dir := sourceDir(args[1:])

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
		type candidate struct {
			archive string
			entry   core.CacheEntry
		}
		var candidates []candidate
		for _, name := range queue.Names() {
			entry, err := core.Summarize(dir, name, cache, false)
			if err != nil {
				slog.Warn("skipping archive", "archive", name, "error", err)
				continue
			}
			candidates = append(candidates, candidate{archive: name, entry: entry})
		}
		if err := cache.Save(); err != nil {
			slog.Warn("could not save scan cache", "error", err)
		}

		targets := make([]string, len(candidates))
		for i, c := range candidates {
			targets[i] = c.entry.Name + " " + c.entry.Author + " " + c.archive
		}
		// Find returns matches ranked best-first.
		matches := fuzzy.Find(query, targets)
		if len(matches) == 0 {
			fmt.Printf("No mods matching %q\n", query)
			return
		}

		rows := make([][]string, 0, len(matches))
		for _, m := range matches {
			c := candidates[m.Index]
			rows = append(rows, []string{
				c.archive, c.entry.Name, string(c.entry.Type), c.entry.Author,
			})
		}
		fmt.Println(renderTable([]string{"Archive", "Name", "Type", "Author"}, rows))
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
