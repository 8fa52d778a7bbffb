package validation

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/models"
	"github.com/iankellyUW/relaxed-point-planner/internal/utils"
)

// ValidateActivity checks an activity for structural problems before it is
// persisted. The stores themselves accept whatever they are given; callers
// (the CLI, import) validate at the edge.
func ValidateActivity(a models.Activity) error {
	if a.ID == "" {
		return fmt.Errorf("activity is missing an id")
	}
	if a.Title == "" {
		return fmt.Errorf("activity %s is missing a title", a.ID)
	}
	if !utils.ValidateTimeFormat(a.StartTime) {
		return fmt.Errorf("activity %q has invalid start time %q (expected HH:MM)", a.Title, a.StartTime)
	}
	if !utils.ValidateTimeFormat(a.EndTime) {
		return fmt.Errorf("activity %q has invalid end time %q (expected HH:MM)", a.Title, a.EndTime)
	}
	if !ValidCategory(a.Category) {
		return fmt.Errorf("activity %q has unknown category %q", a.Title, a.Category)
	}
	if a.Points < 0 {
		return fmt.Errorf("activity %q has negative points", a.Title)
	}
	return nil
}

// ValidatePreset checks a preset and all of its embedded activities.
func ValidatePreset(p models.Preset) error {
	if p.ID == "" {
		return fmt.Errorf("preset is missing an id")
	}
	if p.Name == "" {
		return fmt.Errorf("preset %s is missing a name", p.ID)
	}
	for _, a := range p.Activities {
		if err := ValidateActivity(a); err != nil {
			return fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}
	return nil
}

// ValidCategory reports whether c is one of the known activity categories.
func ValidCategory(c models.Category) bool {
	for _, known := range models.Categories {
		if c == known {
			return true
		}
	}
	return false
}
