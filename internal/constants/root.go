package constants

const (
	// AppName is the application name used for config paths and keyring entries
	AppName = "planner"

	// DefaultKeyringUser is the keyring account under which calendar
	// credentials are stored
	DefaultKeyringUser = "calendar-credentials"

	// DateFormat is the standard day format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard clock format (HH:MM)
	TimeFormat = "15:04"
)
