package models

type Category string

const (
	CategoryFitness  Category = "fitness"
	CategoryWork     Category = "work"
	CategoryLeisure  Category = "leisure"
	CategoryRecovery Category = "recovery"
)

// Categories lists every valid activity category.
var Categories = []Category{CategoryFitness, CategoryWork, CategoryLeisure, CategoryRecovery}

type Activity struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	StartTime   string   `json:"start_time"` // HH:MM format
	EndTime     string   `json:"end_time"`   // HH:MM format
	Category    Category `json:"category"`
	Color       string   `json:"color"`
	Points      int      `json:"points"`
	Description string   `json:"description,omitempty"`
}
