package presets

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type PresetLoadCmd struct {
	ID string `arg:"" help:"Preset id."`
}

// Run replaces the working schedule with the preset's activities and marks
// the preset as loaded.
func (c *PresetLoadCmd) Run(ctx *cli.Context) error {
	preset := ctx.Store.GetPresetByID(c.ID)
	if preset == nil {
		return fmt.Errorf("no preset with id %s", c.ID)
	}

	if err := ctx.Store.SaveActivities(preset.Activities); err != nil {
		return fmt.Errorf("failed to load preset activities: %w", err)
	}
	if err := ctx.Store.SaveLoadedPresetID(preset.ID); err != nil {
		return fmt.Errorf("failed to mark preset as loaded: %w", err)
	}

	fmt.Printf("Loaded preset %q (%d activities)\n", preset.Name, len(preset.Activities))
	return nil
}
