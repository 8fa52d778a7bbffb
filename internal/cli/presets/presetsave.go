package presets

import (
	"fmt"
	"time"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
	"github.com/iankellyUW/relaxed-point-planner/internal/utils"
	"github.com/iankellyUW/relaxed-point-planner/internal/validation"
)

type PresetSaveCmd struct {
	Name string `arg:"" help:"Preset name."`
	Mood string `short:"m" help:"Optional mood tag."`
}

// Run snapshots the current working schedule into a named preset.
func (c *PresetSaveCmd) Run(ctx *cli.Context) error {
	activities := ctx.Store.GetActivities()
	if len(activities) == 0 {
		return fmt.Errorf("the current schedule is empty; add activities first")
	}

	preset := models.Preset{
		ID:         utils.NewID(),
		Name:       c.Name,
		Activities: activities,
		Mood:       c.Mood,
		CreatedAt:  time.Now().Format(time.RFC3339),
	}
	if err := validation.ValidatePreset(preset); err != nil {
		return err
	}
	if err := ctx.Store.SavePreset(preset); err != nil {
		return fmt.Errorf("failed to save preset: %w", err)
	}

	fmt.Printf("Saved preset %q (%s) with %d activities\n", preset.Name, preset.ID, len(preset.Activities))
	return nil
}
