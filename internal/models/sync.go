package models

// SyncStatus tracks the last calendar sync. Lives in the key-value store
// only, independent of the structured store.
type SyncStatus struct {
	LastSyncDate      *string  `json:"last_sync_date"` // RFC3339 timestamp, nil before first sync
	SyncedActivityIDs []string `json:"synced_activity_ids"`
}

// Credentials is the opaque OAuth credential blob for the remote calendar.
// The persistence layer stores and retrieves it without interpreting
// anything beyond the refresh flow's needs.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}
