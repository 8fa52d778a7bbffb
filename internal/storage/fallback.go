package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iankellyUW/relaxed-point-planner/internal/constants"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
)

// Fallback is the key-value rendition of the persistence API. Collections
// live as whole-list JSON blobs under flat keys, so every mutation is a
// read-modify-write of its collection.
type Fallback struct {
	kv KV
}

// NewFallback wraps a KV primitive.
func NewFallback(kv KV) *Fallback {
	return &Fallback{kv: kv}
}

func (f *Fallback) getJSON(key string, out interface{}) (bool, error) {
	raw, ok, err := f.kv.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return true, nil
}

func (f *Fallback) setJSON(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	return f.kv.Set(key, string(raw))
}

// Activities

func (f *Fallback) SaveActivities(activities []models.Activity) error {
	return f.setJSON(constants.KeyActivities, activities)
}

func (f *Fallback) LoadActivities() ([]models.Activity, error) {
	var activities []models.Activity
	if _, err := f.getJSON(constants.KeyActivities, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// Presets

func (f *Fallback) LoadPresets() ([]models.Preset, error) {
	var presets []models.Preset
	if _, err := f.getJSON(constants.KeyPresets, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

func (f *Fallback) SavePresets(presets []models.Preset) error {
	return f.setJSON(constants.KeyPresets, presets)
}

// SavePreset replaces the preset with the same id, or appends if new.
func (f *Fallback) SavePreset(preset models.Preset) error {
	presets, err := f.LoadPresets()
	if err != nil {
		return err
	}
	replaced := false
	for i := range presets {
		if presets[i].ID == preset.ID {
			presets[i] = preset
			replaced = true
			break
		}
	}
	if !replaced {
		presets = append(presets, preset)
	}
	return f.SavePresets(presets)
}

func (f *Fallback) GetPresetByID(id string) (*models.Preset, error) {
	presets, err := f.LoadPresets()
	if err != nil {
		return nil, err
	}
	for i := range presets {
		if presets[i].ID == id {
			return &presets[i], nil
		}
	}
	return nil, nil
}

func (f *Fallback) DeletePreset(id string) error {
	presets, err := f.LoadPresets()
	if err != nil {
		return err
	}
	kept := presets[:0]
	for _, p := range presets {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return f.SavePresets(kept)
}

// SearchPresets matches term case-insensitively against preset name, mood,
// and activity titles.
func (f *Fallback) SearchPresets(term string) ([]models.Preset, error) {
	presets, err := f.LoadPresets()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	var matches []models.Preset
	for _, p := range presets {
		if presetMatches(p, needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func presetMatches(p models.Preset, needle string) bool {
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Mood), needle) {
		return true
	}
	for _, a := range p.Activities {
		if strings.Contains(strings.ToLower(a.Title), needle) {
			return true
		}
	}
	return false
}

// Completed tasks

func (f *Fallback) LoadCompletedTasks() ([]models.CompletedTask, error) {
	var tasks []models.CompletedTask
	if _, err := f.getJSON(constants.KeyCompletedTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (f *Fallback) SaveCompletedTasks(tasks []models.CompletedTask) error {
	return f.setJSON(constants.KeyCompletedTasks, tasks)
}

// AddCompletedTask enforces the one-per-(activity, date) invariant by
// filtering any existing entry before appending.
func (f *Fallback) AddCompletedTask(task models.CompletedTask) error {
	tasks, err := f.LoadCompletedTasks()
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if !(t.ActivityID == task.ActivityID && t.Date == task.Date) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, task)
	return f.SaveCompletedTasks(kept)
}

func (f *Fallback) RemoveCompletedTask(activityID, date string) error {
	tasks, err := f.LoadCompletedTasks()
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if !(t.ActivityID == activityID && t.Date == date) {
			kept = append(kept, t)
		}
	}
	return f.SaveCompletedTasks(kept)
}

// Points. Scalars are stored as bare strings to stay readable by the legacy
// key consumers.

func (f *Fallback) SaveTotalPoints(total int) error {
	return f.kv.Set(constants.KeyTotalPoints, strconv.Itoa(total))
}

func (f *Fallback) SaveDailyPoints(daily int) error {
	return f.kv.Set(constants.KeyDailyPoints, strconv.Itoa(daily))
}

func (f *Fallback) SaveLastActivityDate(date string) error {
	return f.kv.Set(constants.KeyLastActivityDate, date)
}

func (f *Fallback) loadInt(key string) (int, error) {
	raw, ok, err := f.kv.Get(key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

func (f *Fallback) LoadPoints() (models.PointsTracking, error) {
	total, err := f.loadInt(constants.KeyTotalPoints)
	if err != nil {
		return models.PointsTracking{}, err
	}
	daily, err := f.loadInt(constants.KeyDailyPoints)
	if err != nil {
		return models.PointsTracking{}, err
	}
	points := models.PointsTracking{
		TotalPoints: total,
		DailyPoints: daily,
		UpdatedAt:   time.Now().Format(time.RFC3339),
	}
	if date, ok, err := f.kv.Get(constants.KeyLastActivityDate); err != nil {
		return models.PointsTracking{}, err
	} else if ok && date != "" {
		points.LastActivityDate = &date
	}
	return points, nil
}

// Loaded preset id

func (f *Fallback) SaveLoadedPresetID(id string) error {
	return f.kv.Set(constants.KeyLoadedPresetID, id)
}

func (f *Fallback) LoadLoadedPresetID() (string, error) {
	id, _, err := f.kv.Get(constants.KeyLoadedPresetID)
	return id, err
}

func (f *Fallback) RemoveLoadedPresetID() error {
	return f.kv.Remove(constants.KeyLoadedPresetID)
}

// Sync status

func (f *Fallback) SaveSyncStatus(status models.SyncStatus) error {
	return f.setJSON(constants.KeySyncStatus, status)
}

func (f *Fallback) LoadSyncStatus() (*models.SyncStatus, error) {
	var status models.SyncStatus
	ok, err := f.getJSON(constants.KeySyncStatus, &status)
	if err != nil || !ok {
		return nil, err
	}
	return &status, nil
}

func (f *Fallback) RemoveSyncStatus() error {
	return f.kv.Remove(constants.KeySyncStatus)
}

// Credentials. The keyring is the preferred home for these; this is the
// fallback for systems without one.

func (f *Fallback) SaveCredentials(creds models.Credentials) error {
	return f.setJSON(constants.KeyCredentials, creds)
}

func (f *Fallback) LoadCredentials() (*models.Credentials, error) {
	var creds models.Credentials
	ok, err := f.getJSON(constants.KeyCredentials, &creds)
	if err != nil || !ok {
		return nil, err
	}
	return &creds, nil
}

func (f *Fallback) RemoveCredentials() error {
	return f.kv.Remove(constants.KeyCredentials)
}

// Has reports whether a key is present, without parsing it.
func (f *Fallback) Has(key string) (bool, error) {
	_, ok, err := f.kv.Get(key)
	return ok, err
}

// RemoveAll deletes every key the persistence layer has ever written.
func (f *Fallback) RemoveAll() error {
	for _, key := range constants.AllKnownKeys {
		if err := f.kv.Remove(key); err != nil {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}
	return nil
}
