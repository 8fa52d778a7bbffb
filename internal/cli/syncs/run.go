package syncs

import (
	"context"
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type RunCmd struct {
	Date string `short:"d" help:"Day to sync (YYYY-MM-DD), defaults to today."`
}

// Run pushes the current schedule to the remote calendar. Per-activity
// failures are skipped; the command fails only when nothing synced.
func (c *RunCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	activities := ctx.Store.GetActivities()
	if len(activities) == 0 {
		fmt.Println("Nothing to sync: the current schedule is empty.")
		return nil
	}

	ok := ctx.Calendar.SyncActivitiesToCalendar(context.Background(), activities, date)
	if !ok {
		return fmt.Errorf("no activities could be synced")
	}
	fmt.Printf("Synced schedule for %s to the calendar.\n", date)
	return nil
}
