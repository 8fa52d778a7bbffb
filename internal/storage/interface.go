package storage

import "github.com/iankellyUW/relaxed-point-planner/internal/models"

// Provider is the structured-store contract. Implementations own a single
// database connection and serialize every operation through a Queue.
type Provider interface {
	// Lifecycle
	Init() error
	Close() error

	// Presets. GetPresetByID returns ErrNotFound when no preset has the id.
	SavePreset(models.Preset) error
	LoadPresets() ([]models.Preset, error)
	GetPresetByID(id string) (*models.Preset, error)
	SearchPresets(term string) ([]models.Preset, error)
	DeletePreset(id string) error

	// Completed tasks
	SaveCompletedTasks([]models.CompletedTask) error
	AddCompletedTask(models.CompletedTask) error
	RemoveCompletedTask(activityID, date string) error
	LoadCompletedTasks() ([]models.CompletedTask, error)

	// Points singleton
	UpdateTotalPoints(total int) error
	UpdateDailyPoints(daily int) error
	UpdateLastActivityDate(date string) error
	LoadPoints() (models.PointsTracking, error)

	// Wipe
	ClearAll() error

	// Utils
	GetConfigPath() string
}

// Migrator is the schema-management surface of a Provider with a versioned
// schema. The system commands reach it through the facade.
type Migrator interface {
	SchemaVersion() (current, latest int, err error)
	ApplyMigrations(logFn func(msg string, keyvals ...interface{})) (int, error)
}
