package models

// CompletedTask marks one activity done on one calendar day. At most one
// exists per (ActivityID, Date) pair.
type CompletedTask struct {
	ID         string `json:"id"`
	ActivityID string `json:"activity_id"`
	Date       string `json:"date"` // YYYY-MM-DD format
	Points     int    `json:"points"`
}

// PointsTracking is the points singleton. Exactly one logical record exists
// after first initialization.
type PointsTracking struct {
	TotalPoints      int     `json:"total_points"`
	DailyPoints      int     `json:"daily_points"`
	LastActivityDate *string `json:"last_activity_date"` // YYYY-MM-DD, nil before first completion
	UpdatedAt        string  `json:"updated_at"`         // RFC3339 timestamp
}
