package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	wmenu "gopkg.in/dixonwille/wmenu.v4"

	"github.com/modsorter/modsorter/cmdshared"
	"github.com/modsorter/modsorter/core"
	"github.com/modsorter/modsorter/history"
)

type triageChoice int

const (
	choiceKeep triageChoice = iota
	choiceDelete
	choicePreviews
	choiceSkip
	choiceBack
	choiceQuit
)

type moveChoice struct {
	category string
}

// triageCmd represents the triage command
var triageCmd = &cobra.Command{
	Use:     "triage [directory]",
	Short:   "Interactively sort the mod archives in a folder",
	Aliases: []string{"sort"},
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("non-interactive") {
			fmt.Println("triage is interactive and cannot run in non-interactive mode.")
			os.Exit(1)
		}
		dir := sourceDir(args)

		// One triage session per folder at a time.
		lock := flock.New(core.LockPath(dir))
		locked, err := lock.TryLock()
		if err != nil {
			fmt.Printf("Error acquiring folder lock: %v\n", err)
			os.Exit(1)
		}
		if !locked {
			fmt.Println("Another modsorter instance is already triaging this folder.")
			os.Exit(1)
		}
		defer func() { _ = lock.Unlock() }()

		queue, err := core.NewQueue(dir)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if queue.Len() == 0 {
			fmt.Printf("No mod archives found in %s\n", dir)
			return
		}

		skipSorted := viper.GetBool("triage.skip-sorted")
		if !cmd.Flags().Changed("skip-sorted") {
			skipSorted = cmdshared.PromptYesNo("Skip mods that have already been sorted? [Y/n] ")
		}
		if skipSorted {
			queue.FilterSorted()
			if queue.Len() == 0 {
				fmt.Println("All archives are already sorted!")
				return
			}
		}

		dests, err := core.LoadDestinations(dir)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		store := openHistory(dir)
		if store != nil {
			defer store.Close()
		}
		cache := core.LoadCache(core.CachePath(dir))
		defer func() {
			if err := cache.Save(); err != nil {
				slog.Warn("could not save scan cache", "error", err)
			}
		}()

		runTriage(queue, dests, cache, store)
	},
}

func runTriage(queue *core.Queue, dests *core.Destinations, cache *core.Cache, store *history.Store) {
	for {
		path, ok := queue.Current()
		if !ok {
			break
		}
		name := filepath.Base(path)

		info, err := core.Inspect(path)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", name, err)
			queue.Advance()
			continue
		}

		fmt.Println()
		fmt.Printf("[%d/%d] ", queue.Pos()+1, queue.Len())
		printModInfo(info)

		choice, err := askAction(info, dests)
		if err != nil {
			fmt.Println(err)
			continue
		}

		switch c := choice.(type) {
		case triageChoice:
			switch c {
			case choiceKeep:
				if err := core.Mark(path, info); err != nil {
					fmt.Printf("Error marking %s: %v\n", name, err)
					continue
				}
				cache.Remove(name)
				record(store, history.Entry{Archive: name, ModName: info.Name, ModType: string(info.Type), Action: history.ActionMark})
				fmt.Printf("%s kept and marked as sorted.\n", info.Name)
				queue.Advance()
			case choiceDelete:
				if !cmdshared.PromptYesNo(fmt.Sprintf("Really delete %s? This cannot be undone. [Y/n] ", name)) {
					continue
				}
				if err := core.Delete(path); err != nil {
					fmt.Printf("Error deleting %s: %v\n", name, err)
					continue
				}
				cache.Remove(name)
				record(store, history.Entry{Archive: name, ModName: info.Name, ModType: string(info.Type), Action: history.ActionDelete})
				fmt.Printf("%s deleted.\n", name)
				queue.RemoveCurrent()
			case choicePreviews:
				showPreviews(info)
			case choiceSkip:
				queue.Advance()
			case choiceBack:
				queue.Back()
			case choiceQuit:
				fmt.Println("Stopping triage.")
				return
			}
		case moveChoice:
			destDir, ok := dests.Dir(c.category)
			if !ok {
				fmt.Printf("Unknown category %q\n", c.category)
				continue
			}
			finalPath, err := moveWithPrompt(path, destDir)
			if err != nil {
				if !errors.Is(err, errMoveCancelled) {
					fmt.Printf("Error moving %s: %v\n", name, err)
				}
				continue
			}
			cache.Remove(name)
			record(store, history.Entry{
				Archive: name, ModName: info.Name, ModType: string(info.Type),
				Action: history.ActionMove, Destination: finalPath,
			})
			fmt.Printf("%s moved to %s\n", name, finalPath)
			queue.RemoveCurrent()
		}
	}
	fmt.Println("All archives processed!")
}

func askAction(info *core.ModInfo, dests *core.Destinations) (interface{}, error) {
	menu := wmenu.NewMenu("Action:")
	menu.Option("Keep (mark as sorted)", choiceKeep, true, nil)
	menu.Option("Delete", choiceDelete, false, nil)
	for _, category := range dests.Categories() {
		d, _ := dests.Dir(category)
		menu.Option(fmt.Sprintf("Move to %s (%s)", dests.Label(category), d), moveChoice{category: category}, false, nil)
	}
	if len(info.Previews) > 0 {
		menu.Option("Open previews", choicePreviews, false, nil)
	}
	menu.Option("Skip", choiceSkip, false, nil)
	menu.Option("Back", choiceBack, false, nil)
	menu.Option("Quit", choiceQuit, false, nil)

	var choice interface{}
	menu.Action(func(menuRes []wmenu.Opt) error {
		if len(menuRes) != 1 {
			return fmt.Errorf("expected a single selection")
		}
		choice = menuRes[0].Value
		return nil
	})
	if err := menu.Run(); err != nil {
		return nil, err
	}
	return choice, nil
}

// showPreviews extracts the previews to a temporary folder and opens the
// first one with the OS image viewer. The item stays current so the user
// can act on it after looking.
func showPreviews(info *core.ModInfo) {
	dir, err := os.MkdirTemp("", "modsorter-previews-*")
	if err != nil {
		fmt.Printf("Error creating preview folder: %v\n", err)
		return
	}
	paths, err := extractPreviews(info, dir)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := open.Start(paths[0]); err != nil {
		fmt.Printf("Error opening %s: %v\n", paths[0], err)
		return
	}
	fmt.Printf("Opened %d preview(s) from %s\n", len(paths), dir)
}

func init() {
	rootCmd.AddCommand(triageCmd)

	triageCmd.Flags().Bool("skip-sorted", false, "Skip archives that already carry the sorted marker")
	_ = viper.BindPFlag("triage.skip-sorted", triageCmd.Flags().Lookup("skip-sorted"))
}
