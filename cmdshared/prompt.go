package cmdshared

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	wmenu "gopkg.in/dixonwille/wmenu.v4"

	"github.com/modsorter/modsorter/core"
)

func PromptYesNo(prompt string) bool {
	fmt.Print(prompt)
	if viper.GetBool("non-interactive") {
		fmt.Println("Y (non-interactive mode)")
		return true
	}
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		fmt.Printf("Failed to prompt user: %v\n", err)
		os.Exit(1)
	}

	ansNormal := strings.ToLower(strings.TrimSpace(answer))
	if len(ansNormal) > 0 && ansNormal[0] == 'n' {
		return false
	}
	return true
}

// ChooseCollisionPolicy asks what to do about an existing destination file.
// In non-interactive mode it picks rename, the safe default.
func ChooseCollisionPolicy(dest string) (core.CollisionPolicy, error) {
	if viper.GetBool("non-interactive") {
		fmt.Printf("%s already exists; renaming (non-interactive mode)\n", dest)
		return core.CollisionRename, nil
	}

	policy := core.CollisionAbort
	menu := wmenu.NewMenu(fmt.Sprintf("%s already exists. What now?", dest))
	menu.Option("Rename (keep both)", core.CollisionRename, true, nil)
	menu.Option("Overwrite", core.CollisionOverwrite, false, nil)
	menu.Option("Cancel", core.CollisionAbort, false, nil)
	menu.Action(func(menuRes []wmenu.Opt) error {
		if len(menuRes) != 1 {
			return fmt.Errorf("expected a single selection")
		}
		chosen, ok := menuRes[0].Value.(core.CollisionPolicy)
		if !ok {
			return fmt.Errorf("error converting interface from wmenu")
		}
		policy = chosen
		return nil
	})
	if err := menu.Run(); err != nil {
		return core.CollisionAbort, err
	}
	return policy, nil
}
