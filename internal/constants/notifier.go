package constants

const (
	// TrayAppIdentifier is the config directory name of the tray application
	TrayAppIdentifier = "planner-tray"

	// NotifierLockfileName is the lockfile the tray app writes on startup
	NotifierLockfileName = "planner-tray.lock"

	// NotificationDurationMs is how long a notification stays on screen
	NotificationDurationMs uint32 = 8000
)
