package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modsorter/modsorter/cmdshared"
	"github.com/modsorter/modsorter/core"
	"github.com/modsorter/modsorter/history"
)

var errMoveCancelled = errors.New("move cancelled")

// moveCmd represents the move command
var moveCmd = &cobra.Command{
	Use:   "move <archive>",
	Short: "Move a mod archive into a destination or category folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := filepath.Abs(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		name := filepath.Base(path)
		dir := filepath.Dir(path)

		destDir := viper.GetString("move.to")
		category := viper.GetString("move.category")
		if (destDir == "") == (category == "") {
			fmt.Println("You must specify exactly one of --to or --category.")
			os.Exit(1)
		}

		var modName, modType string
		if info, err := core.Inspect(path); err == nil {
			modName = info.Name
			modType = string(info.Type)
			if category != "" && category == "auto" {
				category = string(info.Type)
			}
		} else if category == "auto" {
			fmt.Printf("Cannot infer category: %v\n", err)
			os.Exit(1)
		}

		if category != "" {
			dests, err := core.LoadDestinations(dir)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			resolved, ok := dests.Dir(category)
			if !ok {
				fmt.Printf("Unknown category %q. Available: %v\n", category, dests.Categories())
				os.Exit(1)
			}
			destDir = resolved
		} else if destDir, err = filepath.Abs(destDir); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		var finalPath string
		if cmd.Flags().Changed("on-collision") {
			policy, err := core.ParseCollisionPolicy(viper.GetString("move.on-collision"))
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			finalPath, err = core.Move(path, destDir, policy)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		} else {
			finalPath, err = moveWithPrompt(path, destDir)
			if errors.Is(err, errMoveCancelled) {
				fmt.Println("Move cancelled.")
				return
			}
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}

		invalidateCache(dir, name)

		store := openHistory(dir)
		if store != nil {
			defer store.Close()
		}
		record(store, history.Entry{
			Archive: name, ModName: modName, ModType: modType,
			Action: history.ActionMove, Destination: finalPath,
		})

		fmt.Printf("%s moved to %s\n", name, finalPath)
	},
}

// moveWithPrompt moves the archive, asking the user how to resolve a
// destination collision. In non-interactive mode collisions fall back to
// renaming.
func moveWithPrompt(path, destDir string) (string, error) {
	policy := core.CollisionAbort
	dest := filepath.Join(destDir, filepath.Base(path))
	if _, err := os.Lstat(dest); err == nil {
		policy, err = cmdshared.ChooseCollisionPolicy(dest)
		if err != nil {
			return "", err
		}
		if policy == core.CollisionAbort {
			return "", errMoveCancelled
		}
	}
	return core.Move(path, destDir, policy)
}

func init() {
	rootCmd.AddCommand(moveCmd)

	moveCmd.Flags().String("to", "", "Destination folder")
	_ = viper.BindPFlag("move.to", moveCmd.Flags().Lookup("to"))
	moveCmd.Flags().StringP("category", "c", "", "Destination category name (or \"auto\" to match the mod type)")
	_ = viper.BindPFlag("move.category", moveCmd.Flags().Lookup("category"))
	moveCmd.Flags().String("on-collision", "", "Collision policy: abort, overwrite, or rename")
	_ = viper.BindPFlag("move.on-collision", moveCmd.Flags().Lookup("on-collision"))
}
