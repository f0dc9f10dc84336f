package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modsorter/modsorter/cmdshared"
	"github.com/modsorter/modsorter/core"
	"github.com/modsorter/modsorter/history"
)

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:     "remove <archive>",
	Short:   "Delete a mod archive from disk",
	Aliases: []string{"delete", "rm"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := filepath.Abs(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		name := filepath.Base(path)

		var modName, modType string
		if info, err := core.Inspect(path); err == nil {
			modName = info.Name
			modType = string(info.Type)
		}

		if !cmdshared.PromptYesNo(fmt.Sprintf("Really delete %s? This cannot be undone. [Y/n] ", name)) {
			fmt.Println("Cancelled.")
			return
		}

		if err := core.Delete(path); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		invalidateCache(filepath.Dir(path), name)

		store := openHistory(filepath.Dir(path))
		if store != nil {
			defer store.Close()
		}
		record(store, history.Entry{Archive: name, ModName: modName, ModType: modType, Action: history.ActionDelete})

		fmt.Printf("%s deleted.\n", name)
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
