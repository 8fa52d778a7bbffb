package activities

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type ActivityListCmd struct{}

func (c *ActivityListCmd) Run(ctx *cli.Context) error {
	activities := ctx.Store.GetActivities()
	if len(activities) == 0 {
		fmt.Println("No activities in the current schedule.")
		return nil
	}
	for _, a := range activities {
		fmt.Println(cli.FormatActivityLine(a))
	}
	return nil
}
