package validation

import (
	"testing"

	"github.com/iankellyUW/relaxed-point-planner/internal/models"
)

func validActivity() models.Activity {
	return models.Activity{
		ID:        "a1",
		Title:     "Run",
		StartTime: "07:00",
		EndTime:   "08:00",
		Category:  models.CategoryFitness,
		Points:    10,
	}
}

func TestValidateActivity(t *testing.T) {
	if err := ValidateActivity(validActivity()); err != nil {
		t.Errorf("valid activity rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*models.Activity)
	}{
		{"missing id", func(a *models.Activity) { a.ID = "" }},
		{"missing title", func(a *models.Activity) { a.Title = "" }},
		{"bad start time", func(a *models.Activity) { a.StartTime = "7am" }},
		{"bad end time", func(a *models.Activity) { a.EndTime = "25:00" }},
		{"unknown category", func(a *models.Activity) { a.Category = "sleep" }},
		{"negative points", func(a *models.Activity) { a.Points = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := validActivity()
			tc.mutate(&a)
			if err := ValidateActivity(a); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidatePreset(t *testing.T) {
	preset := models.Preset{ID: "p1", Name: "Morning", Activities: []models.Activity{validActivity()}}
	if err := ValidatePreset(preset); err != nil {
		t.Errorf("valid preset rejected: %v", err)
	}

	if err := ValidatePreset(models.Preset{Name: "no id"}); err == nil {
		t.Error("expected error for missing id")
	}
	if err := ValidatePreset(models.Preset{ID: "p2"}); err == nil {
		t.Error("expected error for missing name")
	}

	broken := validActivity()
	broken.Category = "nope"
	preset.Activities = append(preset.Activities, broken)
	if err := ValidatePreset(preset); err == nil {
		t.Error("expected error for invalid embedded activity")
	}
}
