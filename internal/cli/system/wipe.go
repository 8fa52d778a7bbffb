package system

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type WipeCmd struct {
	Force bool `short:"f" help:"Skip confirmation."`
}

// Run erases everything: both stores, credentials, and sync state.
func (c *WipeCmd) Run(ctx *cli.Context) error {
	if !c.Force {
		fmt.Print("This deletes all presets, activities, points, and credentials. Type 'yes' to continue: ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := ctx.Store.ClearAllData(); err != nil {
		return fmt.Errorf("wipe incomplete: %w", err)
	}
	fmt.Println("All data cleared.")
	return nil
}
