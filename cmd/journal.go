package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/modsorter/modsorter/core"
	"github.com/modsorter/modsorter/history"
)

// openHistory opens the action journal for a source directory. Journal
// problems are logged and disable recording; they never block an action.
func openHistory(dir string) *history.Store {
	if viper.GetBool("no-history") {
		return nil
	}
	store, err := history.Open(context.Background(), core.HistoryPath(dir))
	if err != nil {
		slog.Warn("history journal unavailable", "error", err)
		return nil
	}
	return store
}

func record(store *history.Store, e history.Entry) {
	if store == nil {
		return
	}
	if err := store.Record(context.Background(), e); err != nil {
		slog.Warn("could not record action", "archive", e.Archive, "action", e.Action, "error", err)
	}
}
