package models

// Preset is a named, ordered snapshot of a schedule. Activities are owned
// by the preset: deleting the preset deletes its activity list.
type Preset struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Activities []Activity `json:"activities"`
	Mood       string     `json:"mood,omitempty"`
	CreatedAt  string     `json:"created_at"` // RFC3339 timestamp
}
