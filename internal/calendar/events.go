package calendar

import (
	"fmt"
	"time"

	"github.com/iankellyUW/relaxed-point-planner/internal/constants"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
	"github.com/iankellyUW/relaxed-point-planner/internal/utils"
)

// EventDateTime is the remote API's timestamp shape.
type EventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type ReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type EventReminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []ReminderOverride `json:"overrides,omitempty"`
}

// Event is the create-event request body.
type Event struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	Start       EventDateTime   `json:"start"`
	End         EventDateTime   `json:"end"`
	Reminders   *EventReminders `json:"reminders,omitempty"`
}

// buildEvent turns an activity on a given date into a remote event. When the
// activity's end does not land after its start (midnight wrap, bad input),
// the end is forced to one hour after the start.
func buildEvent(activity models.Activity, date string, loc *time.Location) (Event, time.Time, error) {
	start, err := utils.CombineDateAndTime(date, activity.StartTime, loc)
	if err != nil {
		return Event{}, time.Time{}, fmt.Errorf("activity %s: %w", activity.ID, err)
	}
	end, err := utils.CombineDateAndTime(date, activity.EndTime, loc)
	if err != nil {
		return Event{}, time.Time{}, fmt.Errorf("activity %s: %w", activity.ID, err)
	}
	if !end.After(start) {
		end = start.Add(time.Duration(constants.MinEventDurationMinutes) * time.Minute)
	}

	event := Event{
		Summary:     activity.Title,
		Description: activity.Description,
		Start:       EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: loc.String()},
		End:         EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: loc.String()},
		Reminders: &EventReminders{
			UseDefault: false,
			Overrides: []ReminderOverride{
				{Method: "popup", Minutes: constants.ReminderLeadMinutes},
			},
		},
	}
	return event, start, nil
}
