package hass

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	. "github.com/roelfdiedericks/hassmcp/internal/logging"
)

// Client wraps the Home Assistant REST API.
// It handles authentication, TLS configuration, and returns raw JSON
// responses plus typed helpers for the endpoints the tools consume.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a new Home Assistant API client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := &http.Transport{}
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // G402: HASS instances may use private SSL certs
		L_debug("hass: TLS verification disabled (insecure mode)")
	}

	client := &http.Client{
		Timeout:   cfg.requestTimeout(),
		Transport: transport,
	}

	baseURL := strings.TrimSuffix(cfg.URL, "/")
	L_debug("hass: client created", "url", baseURL, "timeout", cfg.requestTimeout())

	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		client:  client,
	}, nil
}

// Get performs a GET request and returns raw JSON response.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	url := c.baseURL + path
	L_debug("hass: GET request", "path", path)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.parseError(resp.StatusCode, body)
	}

	L_debug("hass: GET completed", "path", path, "status", resp.StatusCode, "bytes", len(body))
	return json.RawMessage(body), nil
}

// Post performs a POST request and returns raw JSON response.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	url := c.baseURL + path
	L_debug("hass: POST request", "path", path)

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = strings.NewReader(string(jsonBody))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.parseError(resp.StatusCode, respBody)
	}

	L_debug("hass: POST completed", "path", path, "status", resp.StatusCode, "bytes", len(respBody))
	return json.RawMessage(respBody), nil
}

// GetStates retrieves all entity states from /api/states.
func (c *Client) GetStates(ctx context.Context) ([]State, error) {
	raw, err := c.Get(ctx, "/api/states")
	if err != nil {
		return nil, err
	}
	var states []State
	if err := json.Unmarshal(raw, &states); err != nil {
		return nil, fmt.Errorf("failed to decode states: %w", err)
	}
	return states, nil
}

// GetState retrieves a single entity state from /api/states/<entity_id>.
func (c *Client) GetState(ctx context.Context, entityID string) (*State, error) {
	raw, err := c.Get(ctx, "/api/states/"+url.PathEscape(entityID))
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &state, nil
}

// GetServices retrieves the service catalog from /api/services.
func (c *Client) GetServices(ctx context.Context) ([]ServiceDomain, error) {
	raw, err := c.Get(ctx, "/api/services")
	if err != nil {
		return nil, err
	}
	var domains []ServiceDomain
	if err := json.Unmarshal(raw, &domains); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return domains, nil
}

// GetSystemConfig retrieves instance info from /api/config.
func (c *Client) GetSystemConfig(ctx context.Context) (*SystemConfig, error) {
	raw, err := c.Get(ctx, "/api/config")
	if err != nil {
		return nil, err
	}
	var cfg SystemConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// GetConfigEntries retrieves integration config entries.
func (c *Client) GetConfigEntries(ctx context.Context) ([]ConfigEntry, error) {
	raw, err := c.Get(ctx, "/api/config/config_entries/entry")
	if err != nil {
		return nil, err
	}
	var entries []ConfigEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode config entries: %w", err)
	}
	return entries, nil
}

// CallService invokes domain.service via POST /api/services/....
// It first asks for the service response (?return_response); services
// that do not support responses reject that with a 400, in which case
// the call is retried plainly.
func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]any) (json.RawMessage, error) {
	path := fmt.Sprintf("/api/services/%s/%s", url.PathEscape(domain), url.PathEscape(service))

	result, err := c.Post(ctx, path+"?return_response", data)
	if err == nil {
		return result, nil
	}

	var herr *Error
	if errors.As(err, &herr) && herr.StatusCode == http.StatusBadRequest {
		L_debug("hass: service does not support return_response, retrying plain", "domain", domain, "service", service)
		return c.Post(ctx, path, data)
	}
	return nil, err
}

// Error represents an error from the Home Assistant API.
type Error struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Status, e.Message)
	}
	return e.Status
}

// parseError creates an Error from an HTTP error response.
func (c *Client) parseError(statusCode int, body []byte) error {
	status := http.StatusText(statusCode)
	if status == "" {
		status = fmt.Sprintf("%d", statusCode)
	} else {
		status = fmt.Sprintf("%d %s", statusCode, status)
	}

	// Try to parse error message from JSON
	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &Error{StatusCode: statusCode, Status: status, Message: errResp.Message}
	}

	// Use body as message if it's short enough
	if len(body) > 0 && len(body) < 200 {
		return &Error{StatusCode: statusCode, Status: status, Message: string(body)}
	}

	return &Error{StatusCode: statusCode, Status: status}
}

// IsAvailable checks if the Home Assistant API is reachable.
func (c *Client) IsAvailable(ctx context.Context) bool {
	_, err := c.Get(ctx, "/api/")
	return err == nil
}
