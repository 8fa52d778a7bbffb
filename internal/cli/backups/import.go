package backups

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
	"github.com/iankellyUW/relaxed-point-planner/internal/storage"
	"github.com/iankellyUW/relaxed-point-planner/internal/validation"
)

type ImportCmd struct {
	Input string `arg:"" help:"Backup file to restore from."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	var snapshot storage.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}

	// Validate at the edge; the stores accept whatever they are given
	for _, p := range snapshot.Presets {
		if err := validation.ValidatePreset(p); err != nil {
			return fmt.Errorf("backup contains invalid data: %w", err)
		}
	}
	for _, a := range snapshot.Activities {
		if err := validation.ValidateActivity(a); err != nil {
			return fmt.Errorf("backup contains invalid data: %w", err)
		}
	}

	if err := ctx.Store.ImportAllData(&snapshot); err != nil {
		return err
	}
	fmt.Printf("Imported %d presets, %d activities, %d completed tasks from %s\n",
		len(snapshot.Presets), len(snapshot.Activities), len(snapshot.CompletedTasks), c.Input)
	return nil
}
