package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modsorter/modsorter/core"
	"github.com/modsorter/modsorter/history"
)

// markCmd represents the mark command
var markCmd = &cobra.Command{
	Use:   "mark <archive>",
	Short: "Mark a mod archive as sorted",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := filepath.Abs(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		name := filepath.Base(path)

		info, err := core.Inspect(path)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if info.IsSorted {
			fmt.Printf("%s is already marked as sorted.\n", name)
			return
		}

		if err := core.Mark(path, info); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		invalidateCache(filepath.Dir(path), name)

		store := openHistory(filepath.Dir(path))
		if store != nil {
			defer store.Close()
		}
		record(store, history.Entry{Archive: name, ModName: info.Name, ModType: string(info.Type), Action: history.ActionMark})

		fmt.Printf("%s marked as sorted.\n", name)
	},
}

// unmarkCmd represents the unmark command
var unmarkCmd = &cobra.Command{
	Use:   "unmark <archive>",
	Short: "Remove the sorted marker from a mod archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := filepath.Abs(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		name := filepath.Base(path)

		marked, err := core.IsMarked(path)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if !marked {
			fmt.Printf("%s is not marked as sorted.\n", name)
			return
		}

		if err := core.Unmark(path); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		invalidateCache(filepath.Dir(path), name)

		store := openHistory(filepath.Dir(path))
		if store != nil {
			defer store.Close()
		}
		record(store, history.Entry{Archive: name, Action: history.ActionUnmark})

		fmt.Printf("Sorted marker removed from %s.\n", name)
	},
}

// invalidateCache drops a scan cache entry after an archive was mutated.
func invalidateCache(dir, name string) {
	cache := core.LoadCache(core.CachePath(dir))
	if cache.Len() == 0 {
		return
	}
	cache.Remove(name)
	if err := cache.Save(); err != nil {
		slog.Warn("could not update scan cache", "error", err)
	}
}

func init() {
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(unmarkCmd)
}
