package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iankellyUW/relaxed-point-planner/internal/constants"
	"github.com/iankellyUW/relaxed-point-planner/internal/keyring"
	"github.com/iankellyUW/relaxed-point-planner/internal/logger"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
)

// Mode is the facade's session state. Once Ready it never reverts;
// structured-store failures after that point are handled per call.
type Mode int

const (
	Uninitialized Mode = iota
	Initializing
	Ready
)

// Facade is the persistence API the rest of the application consumes.
// Writes go to the structured store first and fall back to the key-value
// store on failure; reads never fail, returning zero defaults when every
// store is unavailable. Activities, sync status, loaded-preset-id, and
// credentials are fallback-only entity kinds.
type Facade struct {
	mu           sync.Mutex
	mode         Mode
	structuredOK bool

	structured Provider // may be nil when no structured backend is configured
	fallback   *Fallback
}

// NewFacade wires a facade over its two stores. structured may be nil.
func NewFacade(structured Provider, fallback *Fallback) *Facade {
	return &Facade{structured: structured, fallback: fallback}
}

// Initialize opens the structured store and runs the one-time legacy key
// migration. A structured-store failure is not an error: the session
// continues fallback-only.
func (f *Facade) Initialize() error {
	f.mu.Lock()
	if f.mode != Uninitialized {
		f.mu.Unlock()
		return nil
	}
	f.mode = Initializing
	f.mu.Unlock()

	structuredOK := false
	if f.structured != nil {
		if err := f.structured.Init(); err != nil {
			logger.Warn("structured store unavailable, using key-value fallback", "error", err)
		} else {
			structuredOK = true
		}
	}

	f.mu.Lock()
	f.structuredOK = structuredOK
	f.mode = Ready
	f.mu.Unlock()

	if err := f.migrateFromLegacyStore(); err != nil {
		logger.Warn("legacy data migration failed", "error", err)
	}
	return nil
}

// Mode returns the current session state.
func (f *Facade) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// StructuredOK reports whether the structured store initialized this session.
func (f *Facade) StructuredOK() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.structuredOK
}

func (f *Facade) useStructured() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.structuredOK && f.structured != nil
}

// migrateFromLegacyStore moves flat-key blobs that predate the structured
// store into it, then deletes the consumed keys. When the structured store
// is unavailable the key-value entries already are the live storage, so
// there is nothing to move; either way a second run is a no-op.
func (f *Facade) migrateFromLegacyStore() error {
	if !f.useStructured() {
		return nil
	}

	if presets, err := f.fallback.LoadPresets(); err != nil {
		return err
	} else if len(presets) > 0 {
		migrated := 0
		for _, p := range presets {
			if err := f.structured.SavePreset(p); err != nil {
				return fmt.Errorf("failed to migrate preset %s: %w", p.ID, err)
			}
			migrated++
		}
		if err := f.fallback.kv.Remove(constants.KeyPresets); err != nil {
			return err
		}
		logger.Info("migrated legacy presets", "count", migrated)
	}

	if tasks, err := f.fallback.LoadCompletedTasks(); err != nil {
		return err
	} else if len(tasks) > 0 {
		if err := f.structured.SaveCompletedTasks(tasks); err != nil {
			return fmt.Errorf("failed to migrate completed tasks: %w", err)
		}
		if err := f.fallback.kv.Remove(constants.KeyCompletedTasks); err != nil {
			return err
		}
		logger.Info("migrated legacy completed tasks", "count", len(tasks))
	}

	hasTotal, err := f.fallback.Has(constants.KeyTotalPoints)
	if err != nil {
		return err
	}
	hasDaily, err := f.fallback.Has(constants.KeyDailyPoints)
	if err != nil {
		return err
	}
	hasDate, err := f.fallback.Has(constants.KeyLastActivityDate)
	if err != nil {
		return err
	}
	if hasTotal || hasDaily || hasDate {
		points, err := f.fallback.LoadPoints()
		if err != nil {
			return err
		}
		if err := f.structured.UpdateTotalPoints(points.TotalPoints); err != nil {
			return fmt.Errorf("failed to migrate total points: %w", err)
		}
		if err := f.structured.UpdateDailyPoints(points.DailyPoints); err != nil {
			return fmt.Errorf("failed to migrate daily points: %w", err)
		}
		if points.LastActivityDate != nil {
			if err := f.structured.UpdateLastActivityDate(*points.LastActivityDate); err != nil {
				return fmt.Errorf("failed to migrate last activity date: %w", err)
			}
		}
		for _, key := range []string{constants.KeyTotalPoints, constants.KeyDailyPoints, constants.KeyLastActivityDate} {
			if err := f.fallback.kv.Remove(key); err != nil {
				return err
			}
		}
		logger.Info("migrated legacy points tracking")
	}

	return nil
}

// Activities (fallback-only)

func (f *Facade) SaveActivities(activities []models.Activity) error {
	return f.fallback.SaveActivities(activities)
}

// GetActivities never fails; on store errors it returns an empty list.
func (f *Facade) GetActivities() []models.Activity {
	activities, err := f.fallback.LoadActivities()
	if err != nil {
		logger.Warn("failed to load activities", "error", err)
		return []models.Activity{}
	}
	if activities == nil {
		return []models.Activity{}
	}
	return activities
}

// Presets

func (f *Facade) SavePreset(preset models.Preset) error {
	if f.useStructured() {
		err := f.structured.SavePreset(preset)
		if err == nil {
			return nil
		}
		logger.Warn("structured preset save failed, using fallback", "preset", preset.ID, "error", err)
		if fbErr := f.fallback.SavePreset(preset); fbErr != nil {
			logger.Warn("fallback preset save also failed", "preset", preset.ID, "error", fbErr)
			return err
		}
		return nil
	}
	return f.fallback.SavePreset(preset)
}

func (f *Facade) GetPresets() []models.Preset {
	if f.useStructured() {
		presets, err := f.structured.LoadPresets()
		if err == nil {
			return presets
		}
		logger.Warn("structured preset load failed, using fallback", "error", err)
	}
	presets, err := f.fallback.LoadPresets()
	if err != nil {
		logger.Warn("failed to load presets", "error", err)
		return []models.Preset{}
	}
	if presets == nil {
		return []models.Preset{}
	}
	return presets
}

func (f *Facade) GetPresetByID(id string) *models.Preset {
	if f.useStructured() {
		preset, err := f.structured.GetPresetByID(id)
		if err == nil {
			return preset
		}
		// A structured miss is authoritative; a stale fallback copy must
		// not resurrect a deleted preset
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		logger.Warn("structured preset lookup failed, using fallback", "preset", id, "error", err)
	}
	preset, err := f.fallback.GetPresetByID(id)
	if err != nil {
		logger.Warn("failed to look up preset", "preset", id, "error", err)
		return nil
	}
	return preset
}

func (f *Facade) SearchPresets(term string) []models.Preset {
	if f.useStructured() {
		presets, err := f.structured.SearchPresets(term)
		if err == nil {
			return presets
		}
		logger.Warn("structured preset search failed, using fallback", "error", err)
	}
	presets, err := f.fallback.SearchPresets(term)
	if err != nil {
		logger.Warn("failed to search presets", "error", err)
		return []models.Preset{}
	}
	return presets
}

// DeletePreset removes the preset from the structured store and best-effort
// scrubs any stale copy from the fallback so the stores do not diverge. If
// the structured delete fails, the fallback delete stands in for it; the
// original error surfaces only when both paths fail.
func (f *Facade) DeletePreset(id string) error {
	if f.useStructured() {
		structuredErr := f.structured.DeletePreset(id)
		if structuredErr == nil {
			if err := f.fallback.DeletePreset(id); err != nil {
				logger.Warn("fallback preset cleanup failed", "preset", id, "error", err)
			}
			return nil
		}
		logger.Warn("structured preset delete failed, using fallback", "preset", id, "error", structuredErr)
		if err := f.fallback.DeletePreset(id); err != nil {
			return structuredErr
		}
		return nil
	}
	return f.fallback.DeletePreset(id)
}

// Completed tasks

func (f *Facade) SaveCompletedTasks(tasks []models.CompletedTask) error {
	if f.useStructured() {
		err := f.structured.SaveCompletedTasks(tasks)
		if err == nil {
			return nil
		}
		logger.Warn("structured completed-task save failed, using fallback", "error", err)
		if fbErr := f.fallback.SaveCompletedTasks(tasks); fbErr != nil {
			logger.Warn("fallback completed-task save also failed", "error", fbErr)
			return err
		}
		return nil
	}
	return f.fallback.SaveCompletedTasks(tasks)
}

func (f *Facade) AddCompletedTask(task models.CompletedTask) error {
	if f.useStructured() {
		err := f.structured.AddCompletedTask(task)
		if err == nil {
			return nil
		}
		logger.Warn("structured completed-task add failed, using fallback", "activity", task.ActivityID, "error", err)
		if fbErr := f.fallback.AddCompletedTask(task); fbErr != nil {
			logger.Warn("fallback completed-task add also failed", "activity", task.ActivityID, "error", fbErr)
			return err
		}
		return nil
	}
	return f.fallback.AddCompletedTask(task)
}

func (f *Facade) RemoveCompletedTask(activityID, date string) error {
	if f.useStructured() {
		err := f.structured.RemoveCompletedTask(activityID, date)
		if err == nil {
			return nil
		}
		logger.Warn("structured completed-task remove failed, using fallback", "activity", activityID, "error", err)
		if fbErr := f.fallback.RemoveCompletedTask(activityID, date); fbErr != nil {
			logger.Warn("fallback completed-task remove also failed", "activity", activityID, "error", fbErr)
			return err
		}
		return nil
	}
	return f.fallback.RemoveCompletedTask(activityID, date)
}

func (f *Facade) GetCompletedTasks() []models.CompletedTask {
	if f.useStructured() {
		tasks, err := f.structured.LoadCompletedTasks()
		if err == nil {
			return tasks
		}
		logger.Warn("structured completed-task load failed, using fallback", "error", err)
	}
	tasks, err := f.fallback.LoadCompletedTasks()
	if err != nil {
		logger.Warn("failed to load completed tasks", "error", err)
		return []models.CompletedTask{}
	}
	if tasks == nil {
		return []models.CompletedTask{}
	}
	return tasks
}

// Points

func (f *Facade) SetTotalPoints(total int) error {
	if f.useStructured() {
		err := f.structured.UpdateTotalPoints(total)
		if err == nil {
			return nil
		}
		logger.Warn("structured total-points update failed, using fallback", "error", err)
		if fbErr := f.fallback.SaveTotalPoints(total); fbErr != nil {
			logger.Warn("fallback total-points update also failed", "error", fbErr)
			return err
		}
		return nil
	}
	return f.fallback.SaveTotalPoints(total)
}

func (f *Facade) SetDailyPoints(daily int) error {
	if f.useStructured() {
		err := f.structured.UpdateDailyPoints(daily)
		if err == nil {
			return nil
		}
		logger.Warn("structured daily-points update failed, using fallback", "error", err)
		if fbErr := f.fallback.SaveDailyPoints(daily); fbErr != nil {
			logger.Warn("fallback daily-points update also failed", "error", fbErr)
			return err
		}
		return nil
	}
	return f.fallback.SaveDailyPoints(daily)
}

func (f *Facade) SetLastActivityDate(date string) error {
	if f.useStructured() {
		err := f.structured.UpdateLastActivityDate(date)
		if err == nil {
			return nil
		}
		logger.Warn("structured last-activity-date update failed, using fallback", "error", err)
		if fbErr := f.fallback.SaveLastActivityDate(date); fbErr != nil {
			logger.Warn("fallback last-activity-date update also failed", "error", fbErr)
			return err
		}
		return nil
	}
	return f.fallback.SaveLastActivityDate(date)
}

// GetPoints never fails; on total store failure it returns the zero record.
func (f *Facade) GetPoints() models.PointsTracking {
	if f.useStructured() {
		points, err := f.structured.LoadPoints()
		if err == nil {
			return points
		}
		logger.Warn("structured points load failed, using fallback", "error", err)
	}
	points, err := f.fallback.LoadPoints()
	if err != nil {
		logger.Warn("failed to load points", "error", err)
		return models.PointsTracking{UpdatedAt: time.Now().Format(time.RFC3339)}
	}
	return points
}

// Loaded preset id (fallback-only)

func (f *Facade) SaveLoadedPresetID(id string) error {
	return f.fallback.SaveLoadedPresetID(id)
}

func (f *Facade) GetLoadedPresetID() string {
	id, err := f.fallback.LoadLoadedPresetID()
	if err != nil {
		logger.Warn("failed to load active preset id", "error", err)
		return ""
	}
	return id
}

func (f *Facade) ClearLoadedPresetID() error {
	return f.fallback.RemoveLoadedPresetID()
}

// Sync status (fallback-only)

func (f *Facade) SaveSyncStatus(status models.SyncStatus) error {
	return f.fallback.SaveSyncStatus(status)
}

func (f *Facade) GetSyncStatus() *models.SyncStatus {
	status, err := f.fallback.LoadSyncStatus()
	if err != nil {
		logger.Warn("failed to load sync status", "error", err)
		return nil
	}
	return status
}

func (f *Facade) ClearSyncStatus() error {
	return f.fallback.RemoveSyncStatus()
}

// Credentials: the OS keyring is the primary home, the key-value store the
// fallback for systems without one.

func (f *Facade) SaveCredentials(creds models.Credentials) error {
	err := keyring.SetCredentials(creds)
	if err == nil {
		return nil
	}
	logger.Warn("keyring unavailable, storing credentials in key-value store", "error", err)
	return f.fallback.SaveCredentials(creds)
}

func (f *Facade) GetCredentials() *models.Credentials {
	if creds, err := keyring.GetCredentials(); err == nil {
		return creds
	}
	creds, err := f.fallback.LoadCredentials()
	if err != nil {
		logger.Warn("failed to load credentials", "error", err)
		return nil
	}
	return creds
}

func (f *Facade) ClearCredentials() error {
	if err := keyring.DeleteCredentials(); err != nil && err != keyring.ErrNotFound {
		logger.Warn("failed to clear keyring credentials", "error", err)
	}
	return f.fallback.RemoveCredentials()
}

// Snapshot is the backup/restore envelope covering every entity kind.
type Snapshot struct {
	ExportedAt     string                 `json:"exported_at"`
	Activities     []models.Activity      `json:"activities"`
	Presets        []models.Preset        `json:"presets"`
	CompletedTasks []models.CompletedTask `json:"completed_tasks"`
	Points         models.PointsTracking  `json:"points"`
	LoadedPresetID string                 `json:"loaded_preset_id,omitempty"`
	SyncStatus     *models.SyncStatus     `json:"sync_status,omitempty"`
}

// ExportAllData aggregates every entity kind into one snapshot.
func (f *Facade) ExportAllData() *Snapshot {
	return &Snapshot{
		ExportedAt:     time.Now().Format(time.RFC3339),
		Activities:     f.GetActivities(),
		Presets:        f.GetPresets(),
		CompletedTasks: f.GetCompletedTasks(),
		Points:         f.GetPoints(),
		LoadedPresetID: f.GetLoadedPresetID(),
		SyncStatus:     f.GetSyncStatus(),
	}
}

// ImportAllData writes every entity kind from the snapshot. Writes run
// concurrently and independently; a partial import on error is possible.
func (f *Facade) ImportAllData(snapshot *Snapshot) error {
	var wg sync.WaitGroup
	errs := make(chan error, 8)

	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				errs <- err
			}
		}()
	}

	run(func() error { return f.SaveActivities(snapshot.Activities) })
	run(func() error {
		for _, p := range snapshot.Presets {
			if err := f.SavePreset(p); err != nil {
				return err
			}
		}
		return nil
	})
	run(func() error { return f.SaveCompletedTasks(snapshot.CompletedTasks) })
	run(func() error { return f.SetTotalPoints(snapshot.Points.TotalPoints) })
	run(func() error { return f.SetDailyPoints(snapshot.Points.DailyPoints) })
	run(func() error {
		if snapshot.Points.LastActivityDate == nil {
			return nil
		}
		return f.SetLastActivityDate(*snapshot.Points.LastActivityDate)
	})
	run(func() error {
		if snapshot.LoadedPresetID == "" {
			return nil
		}
		return f.SaveLoadedPresetID(snapshot.LoadedPresetID)
	})
	run(func() error {
		if snapshot.SyncStatus == nil {
			return nil
		}
		return f.SaveSyncStatus(*snapshot.SyncStatus)
	})

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return fmt.Errorf("import incomplete: %w", err)
		}
	}
	return nil
}

// ClearAllData wipes both stores: every known key-value entry and, when the
// structured store is available, all of its tables.
func (f *Facade) ClearAllData() error {
	var structuredErr error
	if f.useStructured() {
		structuredErr = f.structured.ClearAll()
		if structuredErr != nil {
			logger.Warn("structured store wipe failed", "error", structuredErr)
		}
	}
	if err := keyring.DeleteCredentials(); err != nil && err != keyring.ErrNotFound {
		logger.Warn("failed to clear keyring credentials", "error", err)
	}
	if err := f.fallback.RemoveAll(); err != nil {
		return err
	}
	return structuredErr
}

func (f *Facade) migrator() (Migrator, error) {
	if !f.useStructured() {
		return nil, fmt.Errorf("structured store unavailable")
	}
	m, ok := f.structured.(Migrator)
	if !ok {
		return nil, fmt.Errorf("structured store does not manage schema versions")
	}
	return m, nil
}

// SchemaVersion reports the applied and latest bundled schema versions of the
// structured store.
func (f *Facade) SchemaVersion() (current, latest int, err error) {
	m, err := f.migrator()
	if err != nil {
		return 0, 0, err
	}
	return m.SchemaVersion()
}

// ApplyMigrations runs pending schema migrations, reporting progress through
// logFn, and returns how many were applied.
func (f *Facade) ApplyMigrations(logFn func(msg string, keyvals ...interface{})) (int, error) {
	m, err := f.migrator()
	if err != nil {
		return 0, err
	}
	return m.ApplyMigrations(logFn)
}

// ConfigPath is the structured store's location, empty when none is
// configured.
func (f *Facade) ConfigPath() string {
	if f.structured != nil {
		return f.structured.GetConfigPath()
	}
	return ""
}

// Close releases the structured store connection.
func (f *Facade) Close() error {
	if f.structured != nil {
		return f.structured.Close()
	}
	return nil
}
