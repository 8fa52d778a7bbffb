package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/iankellyUW/relaxed-point-planner/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// Notifier delivers reminder notifications through the local tray
// application's webhook.
type Notifier struct{}

// ScheduleRequest asks the tray app to fire a notification at a given time.
type ScheduleRequest struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	At         string `json:"at"` // RFC3339 timestamp
	DurationMs uint32 `json:"duration_ms"`
	ActivityID string `json:"activity_id,omitempty"`
	Category   string `json:"category,omitempty"`
}

// PendingNotification describes one notification the tray app has queued.
type PendingNotification struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	At    string `json:"at"`
}

// Extra carries activity context attached to a scheduled notification.
type Extra struct {
	ActivityID string
	Category   string
}

func New() *Notifier {
	return &Notifier{}
}

// Schedule queues a notification with the tray app for the given time.
func (n *Notifier) Schedule(title, body string, id int, at time.Time, extra Extra) error {
	port, secret, err := trayEndpoint()
	if err != nil {
		return err
	}

	req := ScheduleRequest{
		ID:         id,
		Title:      title,
		Body:       body,
		At:         at.Format(time.RFC3339),
		DurationMs: constants.NotificationDurationMs,
		ActivityID: extra.ActivityID,
		Category:   extra.Category,
	}
	return postJSON(port, secret, "/schedule", req, nil)
}

// Cancel removes a previously scheduled notification.
func (n *Notifier) Cancel(id int) error {
	port, secret, err := trayEndpoint()
	if err != nil {
		return err
	}
	return postJSON(port, secret, "/cancel", map[string]int{"id": id}, nil)
}

// ListPending returns the notifications the tray app still has queued.
func (n *Notifier) ListPending() ([]PendingNotification, error) {
	port, secret, err := trayEndpoint()
	if err != nil {
		return nil, err
	}

	var pending []PendingNotification
	if err := getJSON(port, secret, "/pending", &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// RequestPermission asks the tray app whether notifications are allowed.
func (n *Notifier) RequestPermission() (bool, error) {
	port, secret, err := trayEndpoint()
	if err != nil {
		return false, err
	}

	var result struct {
		Granted bool `json:"granted"`
	}
	if err := postJSON(port, secret, "/permission", struct{}{}, &result); err != nil {
		return false, err
	}
	return result.Granted, nil
}

// trayEndpoint locates the running tray app and returns its port and secret.
func trayEndpoint() (string, string, error) {
	trayConfigDir, err := GetTrayAppConfigDir()
	if err != nil {
		return "", "", err
	}
	return findAndValidateTrayProcess(filepath.Join(trayConfigDir, constants.NotifierLockfileName))
}

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	// Check for settings.json to see if a custom lockfile dir is set
	settingsPath := filepath.Join(trayConfigDir, "settings.json")
	if _, err := os.Stat(settingsPath); err == nil {
		data, err := os.ReadFile(settingsPath)
		if err == nil {
			var store struct {
				Settings struct {
					LockfileDir *string `json:"lockfile_dir"`
				} `json:"settings"`
			}
			if err := json.Unmarshal(data, &store); err == nil {
				if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
					return *store.Settings.LockfileDir, nil
				}
			}
		}
	}

	return trayConfigDir, nil
}

func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", errors.New("planner-tray is not running")
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := parts[0]
	if strings.TrimSpace(port) == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	// Validate port is a valid number in the valid TCP range (1-65535)
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", errors.New("planner-tray process not running")
	}

	if !strings.HasPrefix(process.Executable(), "planner-tray") {
		return "", "", fmt.Errorf("process with PID %d is not planner-tray (is %s)", pid, process.Executable())
	}

	return port, secret, nil
}

func postJSON(port, secret, path string, payload any, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("http://127.0.0.1:%s%s", port, path), bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Planner-Secret", secret)

	return doTrayRequest(req, out)
}

func getJSON(port, secret, path string, out any) error {
	req, err := http.NewRequest("GET", fmt.Sprintf("http://127.0.0.1:%s%s", port, path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Planner-Secret", secret)

	return doTrayRequest(req, out)
}

func doTrayRequest(req *http.Request, out any) error {
	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("tray request failed with status %d: %s", res.StatusCode, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to parse tray response: %w", err)
		}
	}
	return nil
}
