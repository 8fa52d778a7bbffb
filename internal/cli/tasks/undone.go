package tasks

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type UndoneCmd struct {
	ActivityID string `arg:"" help:"Activity id to un-mark."`
	Date       string `short:"d" help:"Day (YYYY-MM-DD), defaults to today."`
}

// Run removes a completion and debits the points it had credited.
func (c *UndoneCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	var credited int
	found := false
	for _, t := range ctx.Store.GetCompletedTasks() {
		if t.ActivityID == c.ActivityID && t.Date == date {
			credited = t.Points
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("activity %s is not marked done for %s", c.ActivityID, date)
	}

	if err := ctx.Store.RemoveCompletedTask(c.ActivityID, date); err != nil {
		return fmt.Errorf("failed to remove completion: %w", err)
	}

	points := ctx.Store.GetPoints()
	if err := ctx.Store.SetTotalPoints(points.TotalPoints - credited); err != nil {
		return fmt.Errorf("failed to update points: %w", err)
	}
	if points.LastActivityDate != nil && *points.LastActivityDate == date {
		if err := ctx.Store.SetDailyPoints(points.DailyPoints - credited); err != nil {
			return fmt.Errorf("failed to update points: %w", err)
		}
	}

	fmt.Printf("Undone: %s for %s (-%d pts)\n", c.ActivityID, date, credited)
	return nil
}
