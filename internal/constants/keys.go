package constants

// Key-value store key namespace. The legacy keys predate the structured
// store and are consumed once by the facade's legacy migration.
const (
	KeyActivities       = "activities"
	KeyPresets          = "presets"
	KeyTotalPoints      = "totalPoints"
	KeyDailyPoints      = "dailyPoints"
	KeyCompletedTasks   = "completedTasks"
	KeyLoadedPresetID   = "loadedPresetId"
	KeyLastActivityDate = "lastActivityDate"
	KeySyncStatus       = "calendar_sync_status"
	KeyCredentials      = "google_calendar_credentials"
)

// AllKnownKeys lists every key the persistence layer may have written.
// ClearAllData removes exactly this set.
var AllKnownKeys = []string{
	KeyActivities,
	KeyPresets,
	KeyTotalPoints,
	KeyDailyPoints,
	KeyCompletedTasks,
	KeyLoadedPresetID,
	KeyLastActivityDate,
	KeySyncStatus,
	KeyCredentials,
}
