package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modsorter/modsorter/cmdshared"
	"github.com/modsorter/modsorter/core"
	"github.com/modsorter/modsorter/history"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [directory]",
	Short: "Show the recorded sort actions for a folder",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := sourceDir(args)

		dbPath := core.HistoryPath(dir)
		if _, err := os.Stat(dbPath); err != nil {
			fmt.Printf("No history recorded for %s\n", dir)
			return
		}

		store, err := history.Open(context.Background(), dbPath)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer store.Close()

		entries, err := store.List(context.Background(), viper.GetInt("history.limit"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			fmt.Printf("No history recorded for %s\n", dir)
			return
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				cmdshared.FormatTime(e.CreatedAt),
				e.Action,
				e.Archive,
				e.ModName,
				e.ModType,
				e.Destination,
			})
		}
		fmt.Println(renderTable([]string{"When", "Action", "Archive", "Mod", "Type", "Destination"}, rows))
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries to show (0 for all)")
	_ = viper.BindPFlag("history.limit", historyCmd.Flags().Lookup("limit"))
}
