package constants

const (
	// CalendarAPIBaseURL is the base URL for the remote calendar API
	CalendarAPIBaseURL = "https://www.googleapis.com/calendar/v3"

	// CalendarTokenURL is the OAuth token endpoint used for refresh
	CalendarTokenURL = "https://oauth2.googleapis.com/token"

	// CalendarID is the calendar events are created in
	CalendarID = "primary"

	// ReminderLeadMinutes is how far before an activity's start its
	// reminder notification fires
	ReminderLeadMinutes = 15

	// MinEventDurationMinutes is the forced event length when an
	// activity's end time is not after its start time
	MinEventDurationMinutes = 60
)
