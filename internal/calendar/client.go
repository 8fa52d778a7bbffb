package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iankellyUW/relaxed-point-planner/internal/constants"
	"github.com/iankellyUW/relaxed-point-planner/internal/logger"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
)

// CredentialSource is how the client reads and mutates the active
// credentials. On a successful refresh Update receives the new blob; on a
// failed refresh Clear is invoked before the original 401 is surfaced.
type CredentialSource interface {
	Current() *models.Credentials
	Update(models.Credentials) error
	Clear() error
}

// Config carries the remote endpoints and OAuth client identity.
type Config struct {
	BaseURL      string
	TokenURL     string
	CalendarID   string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

// Client issues authenticated requests against the remote calendar API with
// a single transparent refresh-and-retry on 401.
type Client struct {
	cfg   Config
	http  *http.Client
	creds CredentialSource
}

func NewClient(cfg Config, creds CredentialSource) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.CalendarAPIBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = constants.CalendarTokenURL
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = constants.CalendarID
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient, creds: creds}
}

// GetCalendar is the lightweight authenticated read used by connection
// tests.
func (c *Client) GetCalendar(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/calendars/%s", c.cfg.BaseURL, url.PathEscape(c.cfg.CalendarID))
	resp, err := c.doAuthenticated(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}
	return nil
}

// CreateEvent posts one event to the calendar.
func (c *Client) CreateEvent(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.cfg.BaseURL, url.PathEscape(c.cfg.CalendarID))
	resp, err := c.doAuthenticated(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return responseError(resp)
	}
	return nil
}

// doAuthenticated attaches the bearer token and, on 401, refreshes once and
// retries once. A failed refresh clears the credentials and surfaces
// ErrAuthExpired.
func (c *Client) doAuthenticated(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	creds := c.creds.Current()
	if creds == nil || creds.AccessToken == "" {
		return nil, ErrNotConnected
	}

	resp, err := c.send(ctx, method, endpoint, body, creds.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	refreshed, err := c.refresh(ctx, creds)
	if err != nil {
		logger.Warn("token refresh failed", "error", err)
		if clearErr := c.creds.Clear(); clearErr != nil {
			logger.Warn("failed to clear credentials", "error", clearErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrAuthExpired, err)
	}
	if err := c.creds.Update(refreshed); err != nil {
		logger.Warn("failed to persist refreshed credentials", "error", err)
	}

	return c.send(ctx, method, endpoint, body, refreshed.AccessToken)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// refresh exchanges the refresh token for a new access token. The refresh
// token itself is carried over when the response omits one.
func (c *Client) refresh(ctx context.Context, creds *models.Credentials) (models.Credentials, error) {
	if creds.RefreshToken == "" {
		return models.Credentials{}, fmt.Errorf("no refresh token available")
	}

	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"refresh_token": {creds.RefreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return models.Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Credentials{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.Credentials{}, responseError(resp)
	}

	var refreshed models.Credentials
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		return models.Credentials{}, fmt.Errorf("failed to parse token response: %w", err)
	}
	if refreshed.AccessToken == "" {
		return models.Credentials{}, fmt.Errorf("token response missing access token")
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = creds.RefreshToken
	}
	return refreshed, nil
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("remote calendar returned %d: %s", resp.StatusCode, msg)
}
