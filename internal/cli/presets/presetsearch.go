package presets

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type PresetSearchCmd struct {
	Term string `arg:"" help:"Search term (matches name, mood, and activity titles)."`
}

func (c *PresetSearchCmd) Run(ctx *cli.Context) error {
	matches := ctx.Store.SearchPresets(c.Term)
	if len(matches) == 0 {
		fmt.Printf("No presets match %q.\n", c.Term)
		return nil
	}
	for _, p := range matches {
		fmt.Println(cli.FormatPresetSummary(p))
	}
	return nil
}
