package backups

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type ExportCmd struct {
	Output string `short:"o" help:"Output file path." default:"planner-backup.json"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	snapshot := ctx.Store.ExportAllData()
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize backup: %w", err)
	}
	if err := os.WriteFile(c.Output, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	fmt.Printf("Exported %d presets, %d activities, %d completed tasks to %s\n",
		len(snapshot.Presets), len(snapshot.Activities), len(snapshot.CompletedTasks), c.Output)
	return nil
}
