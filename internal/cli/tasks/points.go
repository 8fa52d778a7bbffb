package tasks

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type PointsCmd struct{}

func (c *PointsCmd) Run(ctx *cli.Context) error {
	points := ctx.Store.GetPoints()
	fmt.Printf("Total points: %d\n", points.TotalPoints)
	fmt.Printf("Today's points: %d\n", points.DailyPoints)
	if points.LastActivityDate != nil {
		fmt.Printf("Last activity: %s\n", *points.LastActivityDate)
	}

	done := ctx.Store.GetCompletedTasks()
	fmt.Printf("Completed tasks: %d\n", len(done))
	return nil
}
