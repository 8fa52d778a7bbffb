// Package calendar pushes local activities to a remote calendar as events
// and keeps its credential and sync-status state independent of the
// structured store.
package calendar

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/iankellyUW/relaxed-point-planner/internal/constants"
	"github.com/iankellyUW/relaxed-point-planner/internal/logger"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
	"github.com/iankellyUW/relaxed-point-planner/internal/notifier"
	"github.com/iankellyUW/relaxed-point-planner/internal/storage"
)

// Notifier is the reminder-scheduling collaborator.
type Notifier interface {
	Schedule(title, body string, id int, at time.Time, extra notifier.Extra) error
}

// ConnectionResult is what TestConnection reports. It never raises; failures
// land in Error/Details.
type ConnectionResult struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// Coordinator drives per-activity calendar sync. It implements
// CredentialSource for its client so the refresh flow mutates the same
// credentials the coordinator persists.
type Coordinator struct {
	mu        sync.Mutex
	connected bool
	creds     *models.Credentials

	store    *storage.Facade
	client   *Client
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewCoordinator wires the coordinator and its API client. notifier may be
// nil when reminders are unavailable.
func NewCoordinator(store *storage.Facade, cfg Config, n Notifier, loc *time.Location) *Coordinator {
	if loc == nil {
		loc = time.Local
	}
	c := &Coordinator{
		store:    store,
		notifier: n,
		loc:      loc,
		now:      time.Now,
	}
	c.client = NewClient(cfg, c)

	// Recall a persisted connection from a previous session
	if creds := store.GetCredentials(); creds != nil {
		c.creds = creds
		c.connected = true
	}
	return c
}

// Current implements CredentialSource.
func (c *Coordinator) Current() *models.Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds
}

// Update implements CredentialSource: a refreshed token replaces the
// in-memory blob and is persisted.
func (c *Coordinator) Update(creds models.Credentials) error {
	c.mu.Lock()
	c.creds = &creds
	c.mu.Unlock()
	return c.store.SaveCredentials(creds)
}

// Clear implements CredentialSource: invoked when refresh fails.
func (c *Coordinator) Clear() error {
	c.mu.Lock()
	c.creds = nil
	c.connected = false
	c.mu.Unlock()
	return c.store.ClearCredentials()
}

// Connected reports whether the coordinator holds credentials this session.
func (c *Coordinator) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SetCredentials stores the credential blob and marks the coordinator
// connected. If persistence fails the session still proceeds in memory and
// ErrCredentialPersistence is returned; the connection just will not be
// recalled on next start.
func (c *Coordinator) SetCredentials(creds models.Credentials) error {
	if creds.AccessToken == "" {
		return fmt.Errorf("access token cannot be empty")
	}
	c.mu.Lock()
	c.creds = &creds
	c.connected = true
	c.mu.Unlock()

	if err := c.store.SaveCredentials(creds); err != nil {
		logger.Warn("credentials kept in memory only", "error", err)
		return fmt.Errorf("%w: %v", ErrCredentialPersistence, err)
	}
	return nil
}

// TestConnection issues one lightweight authenticated read. It never
// returns an error; the outcome is in the result.
func (c *Coordinator) TestConnection(ctx context.Context) ConnectionResult {
	if !c.Connected() {
		return ConnectionResult{IsValid: false, Error: "not connected"}
	}
	if err := c.client.GetCalendar(ctx); err != nil {
		return ConnectionResult{
			IsValid: false,
			Error:   "calendar request failed",
			Details: err.Error(),
		}
	}
	return ConnectionResult{IsValid: true, Details: "calendar reachable"}
}

// SyncActivitiesToCalendar pushes each activity for the given date as a
// calendar event. Individual failures are logged and skipped; the batch
// reports true iff at least one activity synced. Sync status is always
// recorded with the full input id list, whatever the per-item outcomes.
func (c *Coordinator) SyncActivitiesToCalendar(ctx context.Context, activities []models.Activity, date string) bool {
	synced := 0
	ids := make([]string, 0, len(activities))
	for _, activity := range activities {
		ids = append(ids, activity.ID)

		event, start, err := buildEvent(activity, date, c.loc)
		if err != nil {
			logger.Warn("skipping unsyncable activity", "activity", activity.ID, "error", err)
			continue
		}
		if err := c.client.CreateEvent(ctx, event); err != nil {
			logger.Warn("failed to sync activity", "activity", activity.ID, "error", err)
			continue
		}
		synced++
		c.scheduleReminder(activity, start)
	}

	now := c.now().Format(time.RFC3339)
	status := models.SyncStatus{LastSyncDate: &now, SyncedActivityIDs: ids}
	if err := c.store.SaveSyncStatus(status); err != nil {
		logger.Warn("failed to record sync status", "error", err)
	}

	logger.Info("calendar sync finished", "synced", synced, "total", len(activities))
	return synced > 0
}

// scheduleReminder asks the notifier for a reminder 15 minutes before the
// activity starts, but only when that instant is still ahead of now.
func (c *Coordinator) scheduleReminder(activity models.Activity, start time.Time) {
	if c.notifier == nil {
		return
	}
	remindAt := start.Add(-time.Duration(constants.ReminderLeadMinutes) * time.Minute)
	if !remindAt.After(c.now()) {
		return
	}
	body := fmt.Sprintf("%s starts at %s", activity.Title, activity.StartTime)
	extra := notifier.Extra{ActivityID: activity.ID, Category: string(activity.Category)}
	if err := c.notifier.Schedule(activity.Title, body, reminderID(activity.ID), remindAt, extra); err != nil {
		logger.Warn("failed to schedule reminder", "activity", activity.ID, "error", err)
	}
}

// reminderID derives a stable notification id from the activity id.
func reminderID(activityID string) int {
	h := fnv.New32a()
	h.Write([]byte(activityID))
	return int(h.Sum32() & 0x7fffffff)
}

// Disconnect clears in-memory and persisted credentials together with the
// sync status.
func (c *Coordinator) Disconnect() error {
	c.mu.Lock()
	c.creds = nil
	c.connected = false
	c.mu.Unlock()

	credErr := c.store.ClearCredentials()
	statusErr := c.store.ClearSyncStatus()
	if credErr != nil {
		return credErr
	}
	return statusErr
}
