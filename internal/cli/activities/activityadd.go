package activities

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
	"github.com/iankellyUW/relaxed-point-planner/internal/utils"
	"github.com/iankellyUW/relaxed-point-planner/internal/validation"
)

type ActivityAddCmd struct {
	Title       string `arg:"" help:"Activity title."`
	Start       string `short:"s" help:"Start time (HH:MM)." required:""`
	End         string `short:"e" help:"End time (HH:MM)." required:""`
	Category    string `short:"c" help:"Category (fitness|work|leisure|recovery)." default:"work"`
	Points      int    `short:"p" help:"Points awarded on completion." default:"0"`
	Color       string `help:"Display color (hex)."`
	Description string `short:"d" help:"Optional description."`
}

func (c *ActivityAddCmd) Run(ctx *cli.Context) error {
	activity := models.Activity{
		ID:          utils.NewID(),
		Title:       c.Title,
		StartTime:   c.Start,
		EndTime:     c.End,
		Category:    models.Category(c.Category),
		Color:       c.Color,
		Points:      c.Points,
		Description: c.Description,
	}
	if err := validation.ValidateActivity(activity); err != nil {
		return err
	}

	activities := ctx.Store.GetActivities()
	activities = append(activities, activity)
	if err := ctx.Store.SaveActivities(activities); err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}

	fmt.Printf("Added %s (%s)\n", activity.Title, activity.ID)
	return nil
}
