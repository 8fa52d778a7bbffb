package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/iankellyUW/relaxed-point-planner/internal/calendar"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
	"github.com/iankellyUW/relaxed-point-planner/internal/notifier"
	"github.com/iankellyUW/relaxed-point-planner/internal/storage"
	"github.com/iankellyUW/relaxed-point-planner/internal/utils"
)

// Context carries the application services into every command.
type Context struct {
	Store    *storage.Facade
	Calendar *calendar.Coordinator
	Notifier *notifier.Notifier
	Location *time.Location
}

// ResolveDate returns the given date or today when empty, validating format.
func (c *Context) ResolveDate(date string) (string, error) {
	if date == "" {
		return utils.Today(c.Location), nil
	}
	if !utils.ValidateDateFormat(date) {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return date, nil
}

// FindActivity looks up an activity in the current working schedule.
func (c *Context) FindActivity(id string) (*models.Activity, error) {
	for _, a := range c.Store.GetActivities() {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("no activity with id %s in the current schedule", id)
}

// FormatActivityLine renders one activity for list output.
func FormatActivityLine(a models.Activity) string {
	line := fmt.Sprintf("%s  %s-%s  [%s]  %s (%d pts)", a.ID, a.StartTime, a.EndTime, a.Category, a.Title, a.Points)
	if a.Description != "" {
		line += "  - " + a.Description
	}
	return line
}

// FormatPresetSummary renders a one-line preset summary.
func FormatPresetSummary(p models.Preset) string {
	parts := []string{fmt.Sprintf("%s  %s (%d activities)", p.ID, p.Name, len(p.Activities))}
	if p.Mood != "" {
		parts = append(parts, "mood: "+p.Mood)
	}
	if p.CreatedAt != "" {
		parts = append(parts, "created "+p.CreatedAt)
	}
	return strings.Join(parts, "  ")
}
