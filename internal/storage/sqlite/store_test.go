package sqlite

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/iankellyUW/relaxed-point-planner/internal/models"
	"github.com/iankellyUW/relaxed-point-planner/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "planner.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePreset(id string, createdAt string) models.Preset {
	return models.Preset{
		ID:   id,
		Name: "Morning Routine",
		Mood: "energetic",
		Activities: []models.Activity{
			{ID: id + "-a1", Title: "Run", StartTime: "07:00", EndTime: "08:00", Category: models.CategoryFitness, Color: "#ff0000", Points: 10},
			{ID: id + "-a2", Title: "Stretch", StartTime: "08:00", EndTime: "08:30", Category: models.CategoryRecovery, Points: 5, Description: "light stretching"},
			{ID: id + "-a3", Title: "Plan day", StartTime: "08:30", EndTime: "09:00", Category: models.CategoryWork, Points: 3},
		},
		CreatedAt: createdAt,
	}
}

func TestPresetOrderRoundTrip(t *testing.T) {
	store := newTestStore(t)

	preset := samplePreset("p1", "2026-01-01T08:00:00Z")
	if err := store.SavePreset(preset); err != nil {
		t.Fatal(err)
	}

	presets, err := store.LoadPresets()
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(presets))
	}
	got := presets[0]
	if got.Name != preset.Name || got.Mood != preset.Mood {
		t.Errorf("preset fields lost: %+v", got)
	}
	if len(got.Activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(got.Activities))
	}
	for i, a := range got.Activities {
		if a.ID != preset.Activities[i].ID {
			t.Errorf("activity order broken at %d: got %s want %s", i, a.ID, preset.Activities[i].ID)
		}
	}
	if got.Activities[1].Description != "light stretching" {
		t.Errorf("description lost: %+v", got.Activities[1])
	}
}

func TestSavePresetReplacesActivities(t *testing.T) {
	store := newTestStore(t)

	preset := samplePreset("p1", "2026-01-01T08:00:00Z")
	if err := store.SavePreset(preset); err != nil {
		t.Fatal(err)
	}

	// Re-save with a reordered, shorter list
	preset.Activities = []models.Activity{preset.Activities[2], preset.Activities[0]}
	if err := store.SavePreset(preset); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetPresetByID("p1")
	if err != nil || got == nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got.Activities) != 2 {
		t.Fatalf("expected 2 activities after replace, got %d", len(got.Activities))
	}
	if got.Activities[0].ID != "p1-a3" || got.Activities[1].ID != "p1-a1" {
		t.Errorf("new order not persisted: %+v", got.Activities)
	}
}

func TestLoadPresetsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	_ = store.SavePreset(samplePreset("old", "2026-01-01T08:00:00Z"))
	_ = store.SavePreset(samplePreset("new", "2026-02-01T08:00:00Z"))

	presets, err := store.LoadPresets()
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 2 || presets[0].ID != "new" || presets[1].ID != "old" {
		t.Errorf("expected newest first, got %v %v", presets[0].ID, presets[1].ID)
	}
}

func TestDeletePresetCascades(t *testing.T) {
	store := newTestStore(t)
	if err := store.SavePreset(samplePreset("p1", "2026-01-01T08:00:00Z")); err != nil {
		t.Fatal(err)
	}

	if err := store.DeletePreset("p1"); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetPresetByID("p1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}

	// Activity rows went with the preset
	var count int
	err = store.queue.Do(func() error {
		return store.db.QueryRow("SELECT count(*) FROM preset_activities WHERE preset_id = 'p1'").Scan(&count)
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected 0 activity rows after cascade, got %d", count)
	}
}

func TestGetPresetByIDMissing(t *testing.T) {
	store := newTestStore(t)
	got, err := store.GetPresetByID("nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing preset, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing preset, got %+v", got)
	}
}

func TestSchemaVersion(t *testing.T) {
	store := newTestStore(t)

	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if current != latest {
		t.Errorf("expected schema fully migrated after Init, got %d of %d", current, latest)
	}
	if current < 1 {
		t.Errorf("expected at least version 1, got %d", current)
	}

	// Init already applied everything; a second run is a no-op
	applied, err := store.ApplyMigrations(nil)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 0 {
		t.Errorf("expected 0 pending migrations, got %d", applied)
	}
}

func TestSearchPresets(t *testing.T) {
	store := newTestStore(t)
	_ = store.SavePreset(samplePreset("p1", "2026-01-01T08:00:00Z"))
	_ = store.SavePreset(models.Preset{
		ID: "p2", Name: "Wind Down", CreatedAt: "2026-01-02T08:00:00Z",
		Activities: []models.Activity{
			{ID: "p2-a1", Title: "Evening Yoga", StartTime: "20:00", EndTime: "21:00", Category: models.CategoryRecovery},
		},
	})

	cases := []struct {
		term string
		want string
	}{
		{"MORNING", "p1"},   // name, case-insensitive
		{"energetic", "p1"}, // mood
		{"yoga", "p2"},      // activity title
	}
	for _, tc := range cases {
		matches, err := store.SearchPresets(tc.term)
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 1 || matches[0].ID != tc.want {
			t.Errorf("search %q: got %d matches, want %s", tc.term, len(matches), tc.want)
		}
	}

	if matches, _ := store.SearchPresets("zzz"); len(matches) != 0 {
		t.Errorf("expected no matches, got %+v", matches)
	}
}

func TestCompletedTaskUniqueness(t *testing.T) {
	store := newTestStore(t)

	if err := store.AddCompletedTask(models.CompletedTask{ID: "c1", ActivityID: "a1", Date: "2026-02-01", Points: 10}); err != nil {
		t.Fatal(err)
	}
	// Same (activity, date): upsert, not duplicate
	if err := store.AddCompletedTask(models.CompletedTask{ID: "c2", ActivityID: "a1", Date: "2026-02-01", Points: 15}); err != nil {
		t.Fatal(err)
	}

	tasks, err := store.LoadCompletedTasks()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Points != 15 {
		t.Errorf("upsert did not take the new points: %+v", tasks[0])
	}

	if err := store.RemoveCompletedTask("a1", "2026-02-01"); err != nil {
		t.Fatal(err)
	}
	tasks, _ = store.LoadCompletedTasks()
	if len(tasks) != 0 {
		t.Errorf("expected empty after remove, got %+v", tasks)
	}
}

func TestSaveCompletedTasksBulkReplace(t *testing.T) {
	store := newTestStore(t)
	_ = store.AddCompletedTask(models.CompletedTask{ID: "c1", ActivityID: "a1", Date: "2026-02-01", Points: 10})

	replacement := []models.CompletedTask{
		{ID: "c2", ActivityID: "a2", Date: "2026-02-02", Points: 5},
		{ID: "c3", ActivityID: "a3", Date: "2026-02-03", Points: 7},
	}
	if err := store.SaveCompletedTasks(replacement); err != nil {
		t.Fatal(err)
	}

	tasks, err := store.LoadCompletedTasks()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks after replace, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.ActivityID == "a1" {
			t.Error("old task survived bulk replace")
		}
	}
}

func TestPointsSingleton(t *testing.T) {
	store := newTestStore(t)

	points, err := store.LoadPoints()
	if err != nil {
		t.Fatal(err)
	}
	if points.TotalPoints != 0 || points.DailyPoints != 0 || points.LastActivityDate != nil {
		t.Errorf("expected seeded zero row, got %+v", points)
	}

	if err := store.UpdateTotalPoints(25); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateDailyPoints(10); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateLastActivityDate("2026-02-01"); err != nil {
		t.Fatal(err)
	}

	points, err = store.LoadPoints()
	if err != nil {
		t.Fatal(err)
	}
	if points.TotalPoints != 25 || points.DailyPoints != 10 {
		t.Errorf("unexpected points: %+v", points)
	}
	if points.LastActivityDate == nil || *points.LastActivityDate != "2026-02-01" {
		t.Errorf("unexpected last activity date: %v", points.LastActivityDate)
	}

	// Still exactly one row
	var count int
	err = store.queue.Do(func() error {
		return store.db.QueryRow("SELECT count(*) FROM points_tracking").Scan(&count)
	})
	if err != nil || count != 1 {
		t.Errorf("expected singleton row, got count=%d err=%v", count, err)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	_ = store.SavePreset(samplePreset("p1", "2026-01-01T08:00:00Z"))
	_ = store.UpdateTotalPoints(30)
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopening applies no migrations and keeps data
	reopened := NewStore(path)
	if err := reopened.Init(); err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	presets, err := reopened.LoadPresets()
	if err != nil || len(presets) != 1 {
		t.Errorf("data lost on reopen: %v %v", presets, err)
	}
	points, _ := reopened.LoadPoints()
	if points.TotalPoints != 30 {
		t.Errorf("points reset on reopen: %+v", points)
	}
}

func TestClearAll(t *testing.T) {
	store := newTestStore(t)
	_ = store.SavePreset(samplePreset("p1", "2026-01-01T08:00:00Z"))
	_ = store.AddCompletedTask(models.CompletedTask{ID: "c1", ActivityID: "a1", Date: "2026-02-01", Points: 10})
	_ = store.UpdateTotalPoints(10)

	if err := store.ClearAll(); err != nil {
		t.Fatal(err)
	}

	if presets, _ := store.LoadPresets(); len(presets) != 0 {
		t.Error("presets survived wipe")
	}
	if tasks, _ := store.LoadCompletedTasks(); len(tasks) != 0 {
		t.Error("completed tasks survived wipe")
	}
	points, err := store.LoadPoints()
	if err != nil {
		t.Fatal(err)
	}
	if points.TotalPoints != 0 || points.LastActivityDate != nil {
		t.Errorf("points not reset: %+v", points)
	}
}

func TestLegacySchemaRepair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")

	// Build a pre-versioning database: preset tables with the old column
	// layout and no schema_version table
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	stmts := []string{
		"CREATE TABLE presets (id TEXT PRIMARY KEY, name TEXT, created_at TEXT)",
		"CREATE TABLE preset_activities (preset_id TEXT, activity_id TEXT, title TEXT, start_time TEXT, end_time TEXT)",
		"INSERT INTO presets VALUES ('old', 'Old Preset', '2025-01-01T00:00:00Z')",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("init over legacy database: %v", err)
	}
	defer store.Close()

	// The incompatible preset tables were rebuilt; current schema works
	if err := store.SavePreset(samplePreset("p1", "2026-01-01T08:00:00Z")); err != nil {
		t.Fatalf("save after repair: %v", err)
	}
	presets, err := store.LoadPresets()
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 1 || presets[0].ID != "p1" {
		t.Errorf("unexpected presets after repair: %+v", presets)
	}
}
