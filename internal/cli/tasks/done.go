package tasks

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
	"github.com/iankellyUW/relaxed-point-planner/internal/utils"
)

type DoneCmd struct {
	ActivityID string `arg:"" help:"Activity id to mark done."`
	Date       string `short:"d" help:"Day (YYYY-MM-DD), defaults to today."`
}

// Run marks an activity done for the day and credits its points. Completing
// the same activity twice on one day replaces the earlier completion rather
// than double-crediting.
func (c *DoneCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	activity, err := ctx.FindActivity(c.ActivityID)
	if err != nil {
		return err
	}

	// Idempotence: if this (activity, date) is already done, do nothing
	for _, t := range ctx.Store.GetCompletedTasks() {
		if t.ActivityID == c.ActivityID && t.Date == date {
			fmt.Printf("%s is already done for %s\n", activity.Title, date)
			return nil
		}
	}

	task := models.CompletedTask{
		ID:         utils.NewID(),
		ActivityID: activity.ID,
		Date:       date,
		Points:     activity.Points,
	}
	if err := ctx.Store.AddCompletedTask(task); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	points := ctx.Store.GetPoints()
	total := points.TotalPoints + activity.Points
	daily := activity.Points
	if points.LastActivityDate != nil && *points.LastActivityDate == date {
		daily = points.DailyPoints + activity.Points
	}
	if err := ctx.Store.SetTotalPoints(total); err != nil {
		return fmt.Errorf("failed to update points: %w", err)
	}
	if err := ctx.Store.SetDailyPoints(daily); err != nil {
		return fmt.Errorf("failed to update points: %w", err)
	}
	if err := ctx.Store.SetLastActivityDate(date); err != nil {
		return fmt.Errorf("failed to update points: %w", err)
	}

	fmt.Printf("Done: %s (+%d pts, %d today, %d total)\n", activity.Title, activity.Points, daily, total)
	return nil
}
