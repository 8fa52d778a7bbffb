package system

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type InitCmd struct{}

// Run reports how storage came up this session. Initialization itself
// happens on every start; this command makes the outcome visible.
func (c *InitCmd) Run(ctx *cli.Context) error {
	if !ctx.Store.StructuredOK() {
		fmt.Println("Structured store unavailable; session is running on the key-value fallback.")
		return nil
	}

	fmt.Printf("Initialized structured store at: %s\n", ctx.Store.ConfigPath())
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Printf("Schema version %d (latest %d)\n", current, latest)
	if current < latest {
		fmt.Println("Pending migrations; run 'planner migrate'.")
	}
	return nil
}
