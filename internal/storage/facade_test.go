package storage

import (
	"errors"
	"path/filepath"
	"sort"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/iankellyUW/relaxed-point-planner/internal/constants"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
)

// memProvider is an in-memory Provider for facade tests.
type memProvider struct {
	initErr error
	failAll bool

	presets map[string]models.Preset
	tasks   map[string]models.CompletedTask // key: activityID|date
	points  models.PointsTracking
}

func newMemProvider() *memProvider {
	return &memProvider{
		presets: make(map[string]models.Preset),
		tasks:   make(map[string]models.CompletedTask),
	}
}

var errProviderDown = errors.New("provider down")

func (m *memProvider) check() error {
	if m.failAll {
		return errProviderDown
	}
	return nil
}

func (m *memProvider) Init() error  { return m.initErr }
func (m *memProvider) Close() error { return nil }

func (m *memProvider) SavePreset(p models.Preset) error {
	if err := m.check(); err != nil {
		return err
	}
	m.presets[p.ID] = p
	return nil
}

func (m *memProvider) LoadPresets() ([]models.Preset, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []models.Preset
	for _, p := range m.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *memProvider) GetPresetByID(id string) (*models.Preset, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	if p, ok := m.presets[id]; ok {
		return &p, nil
	}
	return nil, ErrNotFound
}

func (m *memProvider) SearchPresets(term string) ([]models.Preset, error) {
	return m.LoadPresets()
}

func (m *memProvider) DeletePreset(id string) error {
	if err := m.check(); err != nil {
		return err
	}
	delete(m.presets, id)
	return nil
}

func (m *memProvider) SaveCompletedTasks(tasks []models.CompletedTask) error {
	if err := m.check(); err != nil {
		return err
	}
	m.tasks = make(map[string]models.CompletedTask)
	for _, t := range tasks {
		m.tasks[t.ActivityID+"|"+t.Date] = t
	}
	return nil
}

func (m *memProvider) AddCompletedTask(t models.CompletedTask) error {
	if err := m.check(); err != nil {
		return err
	}
	m.tasks[t.ActivityID+"|"+t.Date] = t
	return nil
}

func (m *memProvider) RemoveCompletedTask(activityID, date string) error {
	if err := m.check(); err != nil {
		return err
	}
	delete(m.tasks, activityID+"|"+date)
	return nil
}

func (m *memProvider) LoadCompletedTasks() ([]models.CompletedTask, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	var out []models.CompletedTask
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (m *memProvider) UpdateTotalPoints(total int) error {
	if err := m.check(); err != nil {
		return err
	}
	m.points.TotalPoints = total
	return nil
}

func (m *memProvider) UpdateDailyPoints(daily int) error {
	if err := m.check(); err != nil {
		return err
	}
	m.points.DailyPoints = daily
	return nil
}

func (m *memProvider) UpdateLastActivityDate(date string) error {
	if err := m.check(); err != nil {
		return err
	}
	m.points.LastActivityDate = &date
	return nil
}

func (m *memProvider) LoadPoints() (models.PointsTracking, error) {
	if err := m.check(); err != nil {
		return models.PointsTracking{}, err
	}
	return m.points, nil
}

func (m *memProvider) ClearAll() error {
	if err := m.check(); err != nil {
		return err
	}
	m.presets = make(map[string]models.Preset)
	m.tasks = make(map[string]models.CompletedTask)
	m.points = models.PointsTracking{}
	return nil
}

func (m *memProvider) GetConfigPath() string { return ":memory:" }

func (m *memProvider) SchemaVersion() (int, int, error) {
	if err := m.check(); err != nil {
		return 0, 0, err
	}
	return 1, 1, nil
}

func (m *memProvider) ApplyMigrations(func(string, ...interface{})) (int, error) {
	if err := m.check(); err != nil {
		return 0, err
	}
	return 0, nil
}

// brokenKV fails every operation, simulating an unwritable fallback file.
type brokenKV struct{}

var errKVDown = errors.New("kv down")

func (brokenKV) Get(string) (string, bool, error) { return "", false, errKVDown }
func (brokenKV) Set(string, string) error         { return errKVDown }
func (brokenKV) Remove(string) error              { return errKVDown }

func newTestFacade(t *testing.T, provider Provider) (*Facade, *Fallback) {
	t.Helper()
	fallback := NewFallback(NewFileKV(filepath.Join(t.TempDir(), "kv.json")))
	facade := NewFacade(provider, fallback)
	if err := facade.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return facade, fallback
}

func TestFacadeModeTransitions(t *testing.T) {
	fallback := NewFallback(NewFileKV(filepath.Join(t.TempDir(), "kv.json")))
	facade := NewFacade(newMemProvider(), fallback)

	if facade.Mode() != Uninitialized {
		t.Error("expected Uninitialized before Initialize")
	}
	if err := facade.Initialize(); err != nil {
		t.Fatal(err)
	}
	if facade.Mode() != Ready {
		t.Error("expected Ready after Initialize")
	}
	if !facade.StructuredOK() {
		t.Error("expected structured store to be marked available")
	}

	// Initialize is idempotent
	if err := facade.Initialize(); err != nil {
		t.Errorf("re-initialize: %v", err)
	}
}

func TestFacadeFallbackOnInitFailure(t *testing.T) {
	provider := newMemProvider()
	provider.initErr = ErrInitialization
	facade, _ := newTestFacade(t, provider)

	if facade.StructuredOK() {
		t.Fatal("expected fallback-only mode")
	}

	// Every operation still works, no errors escape
	preset := models.Preset{ID: "p1", Name: "Morning", CreatedAt: "2026-01-01T00:00:00Z"}
	if err := facade.SavePreset(preset); err != nil {
		t.Fatalf("save preset: %v", err)
	}
	presets := facade.GetPresets()
	if len(presets) != 1 || presets[0].ID != "p1" {
		t.Errorf("unexpected presets: %+v", presets)
	}
	if got := facade.GetPresetByID("p1"); got == nil || got.Name != "Morning" {
		t.Errorf("lookup = %+v", got)
	}
	if err := facade.SetTotalPoints(10); err != nil {
		t.Fatalf("set points: %v", err)
	}
	if points := facade.GetPoints(); points.TotalPoints != 10 {
		t.Errorf("points = %+v", points)
	}
}

func TestFacadeMidSessionFailureFallsBack(t *testing.T) {
	provider := newMemProvider()
	facade, fallback := newTestFacade(t, provider)

	// Structured store starts failing mid-session; mode stays Ready and
	// writes land in the fallback instead
	provider.failAll = true

	preset := models.Preset{ID: "p1", Name: "Morning"}
	if err := facade.SavePreset(preset); err != nil {
		t.Fatalf("save preset: %v", err)
	}
	if facade.Mode() != Ready {
		t.Error("mode demoted on per-call failure")
	}
	stored, err := fallback.GetPresetByID("p1")
	if err != nil || stored == nil {
		t.Fatalf("preset not in fallback: %v", err)
	}

	// Reads also fall back
	if presets := facade.GetPresets(); len(presets) != 1 {
		t.Errorf("expected fallback read, got %+v", presets)
	}
}

func TestFacadeDualWriteFailureReturnsStructuredError(t *testing.T) {
	provider := newMemProvider()
	facade := NewFacade(provider, NewFallback(brokenKV{}))
	if err := facade.Initialize(); err != nil {
		t.Fatal(err)
	}
	provider.failAll = true

	// When the structured write and the fallback write both fail, the
	// structured store's error is the one callers see
	if err := facade.SavePreset(models.Preset{ID: "p1", Name: "Morning"}); !errors.Is(err, errProviderDown) {
		t.Errorf("SavePreset error = %v, want provider error", err)
	}
	if err := facade.AddCompletedTask(models.CompletedTask{ID: "c1", ActivityID: "a1", Date: "2026-02-01"}); !errors.Is(err, errProviderDown) {
		t.Errorf("AddCompletedTask error = %v, want provider error", err)
	}
	if err := facade.SetTotalPoints(5); !errors.Is(err, errProviderDown) {
		t.Errorf("SetTotalPoints error = %v, want provider error", err)
	}
	if err := facade.SetLastActivityDate("2026-02-01"); !errors.Is(err, errProviderDown) {
		t.Errorf("SetLastActivityDate error = %v, want provider error", err)
	}
}

func TestFacadeStructuredMissIsAuthoritative(t *testing.T) {
	provider := newMemProvider()
	facade, fallback := newTestFacade(t, provider)

	// Stale copy only in the fallback; the structured store never had it
	if err := fallback.SavePreset(models.Preset{ID: "ghost", Name: "Deleted"}); err != nil {
		t.Fatal(err)
	}
	if got := facade.GetPresetByID("ghost"); got != nil {
		t.Errorf("stale fallback copy resurrected: %+v", got)
	}
}

func TestFacadeSchemaVersion(t *testing.T) {
	facade, _ := newTestFacade(t, newMemProvider())
	current, latest, err := facade.SchemaVersion()
	if err != nil || current != 1 || latest != 1 {
		t.Errorf("SchemaVersion() = %d, %d, %v", current, latest, err)
	}
	if applied, err := facade.ApplyMigrations(nil); err != nil || applied != 0 {
		t.Errorf("ApplyMigrations() = %d, %v", applied, err)
	}

	// Fallback-only sessions have no schema to manage
	down := newMemProvider()
	down.initErr = ErrInitialization
	fallbackOnly, _ := newTestFacade(t, down)
	if _, _, err := fallbackOnly.SchemaVersion(); err == nil {
		t.Error("expected error in fallback-only mode")
	}
	if _, err := fallbackOnly.ApplyMigrations(nil); err == nil {
		t.Error("expected error in fallback-only mode")
	}
}

func TestFacadeAdditivePoints(t *testing.T) {
	facade, _ := newTestFacade(t, newMemProvider())

	// Complete a task worth 10, another worth 5, uncomplete the first
	apply := func(delta int) {
		t.Helper()
		points := facade.GetPoints()
		if err := facade.SetTotalPoints(points.TotalPoints + delta); err != nil {
			t.Fatal(err)
		}
	}
	_ = facade.AddCompletedTask(models.CompletedTask{ID: "c1", ActivityID: "a1", Date: "2026-02-01", Points: 10})
	apply(10)
	_ = facade.AddCompletedTask(models.CompletedTask{ID: "c2", ActivityID: "a2", Date: "2026-02-01", Points: 5})
	apply(5)
	_ = facade.RemoveCompletedTask("a1", "2026-02-01")
	apply(-10)

	if points := facade.GetPoints(); points.TotalPoints != 5 {
		t.Errorf("expected 5 total points, got %d", points.TotalPoints)
	}
	if tasks := facade.GetCompletedTasks(); len(tasks) != 1 {
		t.Errorf("expected 1 completed task, got %+v", tasks)
	}
}

func TestFacadeLegacyMigration(t *testing.T) {
	kv := NewFileKV(filepath.Join(t.TempDir(), "kv.json"))
	fallback := NewFallback(kv)

	// Seed legacy flat keys before the structured store exists
	legacy := models.Preset{ID: "p1", Name: "Legacy", CreatedAt: "2025-12-01T00:00:00Z"}
	if err := fallback.SavePresets([]models.Preset{legacy}); err != nil {
		t.Fatal(err)
	}
	if err := fallback.SaveCompletedTasks([]models.CompletedTask{{ID: "c1", ActivityID: "a1", Date: "2025-12-01", Points: 3}}); err != nil {
		t.Fatal(err)
	}
	if err := fallback.SaveTotalPoints(42); err != nil {
		t.Fatal(err)
	}

	provider := newMemProvider()
	facade := NewFacade(provider, fallback)
	if err := facade.Initialize(); err != nil {
		t.Fatal(err)
	}

	// Data moved into the structured store
	if _, ok := provider.presets["p1"]; !ok {
		t.Error("legacy preset not migrated")
	}
	if provider.points.TotalPoints != 42 {
		t.Errorf("legacy points not migrated: %+v", provider.points)
	}

	// Legacy keys consumed
	for _, key := range []string{constants.KeyPresets, constants.KeyCompletedTasks, constants.KeyTotalPoints} {
		if _, ok, _ := kv.Get(key); ok {
			t.Errorf("legacy key %s still present", key)
		}
	}

	// Second run is a no-op: same end state
	facade2 := NewFacade(provider, fallback)
	if err := facade2.Initialize(); err != nil {
		t.Fatal(err)
	}
	if len(provider.presets) != 1 || provider.points.TotalPoints != 42 {
		t.Errorf("second migration changed state: %+v %+v", provider.presets, provider.points)
	}
}

func TestFacadeDeletePresetScrubsFallback(t *testing.T) {
	provider := newMemProvider()
	facade, fallback := newTestFacade(t, provider)

	// Stale fallback copy alongside the structured row
	preset := models.Preset{ID: "p1", Name: "Morning"}
	if err := fallback.SavePreset(preset); err != nil {
		t.Fatal(err)
	}
	provider.presets["p1"] = preset

	if err := facade.DeletePreset("p1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := provider.presets["p1"]; ok {
		t.Error("preset still in structured store")
	}
	if stale, _ := fallback.GetPresetByID("p1"); stale != nil {
		t.Error("stale fallback copy not scrubbed")
	}
}

func TestFacadeExportImport(t *testing.T) {
	gokeyring.MockInit()
	facade, _ := newTestFacade(t, newMemProvider())

	_ = facade.SaveActivities([]models.Activity{sampleActivity("a1", "Run", 10)})
	_ = facade.SavePreset(models.Preset{ID: "p1", Name: "Morning", CreatedAt: "2026-01-01T00:00:00Z"})
	_ = facade.AddCompletedTask(models.CompletedTask{ID: "c1", ActivityID: "a1", Date: "2026-02-01", Points: 10})
	_ = facade.SetTotalPoints(10)
	_ = facade.SaveLoadedPresetID("p1")

	snapshot := facade.ExportAllData()
	if len(snapshot.Presets) != 1 || len(snapshot.Activities) != 1 || snapshot.Points.TotalPoints != 10 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}

	// Restore into a fresh facade
	restored, _ := newTestFacade(t, newMemProvider())
	if err := restored.ImportAllData(snapshot); err != nil {
		t.Fatal(err)
	}
	if presets := restored.GetPresets(); len(presets) != 1 || presets[0].ID != "p1" {
		t.Errorf("presets not restored: %+v", presets)
	}
	if points := restored.GetPoints(); points.TotalPoints != 10 {
		t.Errorf("points not restored: %+v", points)
	}
	if id := restored.GetLoadedPresetID(); id != "p1" {
		t.Errorf("loaded preset id not restored: %q", id)
	}
}

func TestFacadeClearAllData(t *testing.T) {
	gokeyring.MockInit()
	provider := newMemProvider()
	facade, fallback := newTestFacade(t, provider)

	_ = facade.SavePreset(models.Preset{ID: "p1", Name: "Morning"})
	_ = fallback.SavePreset(models.Preset{ID: "p2", Name: "Stale"})
	_ = facade.SetTotalPoints(50)
	_ = facade.SaveCredentials(models.Credentials{AccessToken: "tok"})

	if err := facade.ClearAllData(); err != nil {
		t.Fatal(err)
	}

	// Both stores wiped
	if len(provider.presets) != 0 {
		t.Error("structured presets survived wipe")
	}
	if presets := facade.GetPresets(); len(presets) != 0 {
		t.Errorf("presets survived wipe: %+v", presets)
	}
	if points := facade.GetPoints(); points.TotalPoints != 0 {
		t.Errorf("points survived wipe: %+v", points)
	}
}
