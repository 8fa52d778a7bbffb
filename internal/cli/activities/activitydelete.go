package activities

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type ActivityDeleteCmd struct {
	ID string `arg:"" help:"Activity id."`
}

func (c *ActivityDeleteCmd) Run(ctx *cli.Context) error {
	activities := ctx.Store.GetActivities()
	kept := activities[:0]
	for _, a := range activities {
		if a.ID != c.ID {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(activities) {
		return fmt.Errorf("no activity with id %s", c.ID)
	}
	if err := ctx.Store.SaveActivities(kept); err != nil {
		return fmt.Errorf("failed to save activities: %w", err)
	}
	fmt.Printf("Removed activity %s\n", c.ID)
	return nil
}
