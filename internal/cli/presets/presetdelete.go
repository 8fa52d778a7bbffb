package presets

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type PresetDeleteCmd struct {
	ID string `arg:"" help:"Preset id."`
}

func (c *PresetDeleteCmd) Run(ctx *cli.Context) error {
	if preset := ctx.Store.GetPresetByID(c.ID); preset == nil {
		return fmt.Errorf("no preset with id %s", c.ID)
	}
	if err := ctx.Store.DeletePreset(c.ID); err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	if ctx.Store.GetLoadedPresetID() == c.ID {
		if err := ctx.Store.ClearLoadedPresetID(); err != nil {
			return fmt.Errorf("failed to clear loaded preset marker: %w", err)
		}
	}
	fmt.Printf("Deleted preset %s\n", c.ID)
	return nil
}
