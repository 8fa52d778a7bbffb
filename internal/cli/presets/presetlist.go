package presets

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type PresetListCmd struct {
	Verbose bool `short:"v" help:"Show each preset's activities."`
}

func (c *PresetListCmd) Run(ctx *cli.Context) error {
	presets := ctx.Store.GetPresets()
	if len(presets) == 0 {
		fmt.Println("No presets saved.")
		return nil
	}

	loaded := ctx.Store.GetLoadedPresetID()
	for _, p := range presets {
		marker := "  "
		if p.ID == loaded {
			marker = "* "
		}
		fmt.Println(marker + cli.FormatPresetSummary(p))
		if c.Verbose {
			for _, a := range p.Activities {
				fmt.Println("    " + cli.FormatActivityLine(a))
			}
		}
	}
	return nil
}
