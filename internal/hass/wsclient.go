package hass

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	. "github.com/roelfdiedericks/hassmcp/internal/logging"
)

// WSClient performs one-shot WebSocket queries against the Home
// Assistant registries that have no REST equivalent. Each query opens
// a fresh connection, authenticates, sends a single command, waits for
// the response, and closes.
type WSClient struct {
	cfg Config
}

// NewWSClient creates a new WebSocket client for registry queries.
func NewWSClient(cfg Config) *WSClient {
	return &WSClient{cfg: cfg}
}

// ListAreas retrieves all areas from the area registry.
func (c *WSClient) ListAreas(ctx context.Context) ([]AreaEntry, error) {
	raw, err := c.Command(ctx, "config/area_registry/list")
	if err != nil {
		return nil, err
	}
	var areas []AreaEntry
	if err := json.Unmarshal(raw, &areas); err != nil {
		return nil, fmt.Errorf("failed to decode area registry: %w", err)
	}
	return areas, nil
}

// ListEntities retrieves all entries from the entity registry.
func (c *WSClient) ListEntities(ctx context.Context) ([]EntityEntry, error) {
	raw, err := c.Command(ctx, "config/entity_registry/list")
	if err != nil {
		return nil, err
	}
	var entities []EntityEntry
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("failed to decode entity registry: %w", err)
	}
	return entities, nil
}

// ListDevices retrieves all entries from the device registry.
func (c *WSClient) ListDevices(ctx context.Context) ([]DeviceEntry, error) {
	raw, err := c.Command(ctx, "config/device_registry/list")
	if err != nil {
		return nil, err
	}
	var devices []DeviceEntry
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, fmt.Errorf("failed to decode device registry: %w", err)
	}
	return devices, nil
}

// Command performs a single WebSocket command and returns the result.
func (c *WSClient) Command(ctx context.Context, cmdType string) (json.RawMessage, error) {
	wsURL := c.buildWebSocketURL()
	L_debug("hass: ws command starting", "type", cmdType, "url", wsURL)

	timeout := c.cfg.requestTimeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
	}
	if c.cfg.Insecure {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // G402: HASS instances may use private SSL certs
	}

	//nolint:bodyclose // WebSocket upgrade - response body handled by gorilla/websocket
	conn, _, err := dialer.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		L_error("hass: ws connect failed", "error", err)
		return nil, fmt.Errorf("websocket connect: %w", err)
	}
	defer conn.Close()

	// Read auth_required message
	var authReq Message
	if err := conn.ReadJSON(&authReq); err != nil {
		return nil, fmt.Errorf("read auth_required: %w", err)
	}
	if authReq.Type != "auth_required" {
		return nil, fmt.Errorf("unexpected message type: %s (expected auth_required)", authReq.Type)
	}

	// Send auth
	authMsg := AuthMessage{
		Type:        "auth",
		AccessToken: c.cfg.Token,
	}
	if err := conn.WriteJSON(authMsg); err != nil {
		return nil, fmt.Errorf("send auth: %w", err)
	}

	// Read auth result
	var authResult Message
	if err := conn.ReadJSON(&authResult); err != nil {
		return nil, fmt.Errorf("read auth result: %w", err)
	}
	if authResult.Type != "auth_ok" {
		if authResult.Type == "auth_invalid" {
			return nil, fmt.Errorf("authentication failed: invalid token")
		}
		return nil, fmt.Errorf("auth failed: %s", authResult.Type)
	}

	// Send command
	cmd := CommandMessage{
		ID:   1,
		Type: cmdType,
	}
	if err := conn.WriteJSON(cmd); err != nil {
		return nil, fmt.Errorf("send command: %w", err)
	}

	// Read result
	var result Message
	if err := conn.ReadJSON(&result); err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}

	if result.Success != nil && !*result.Success {
		errMsg := "unknown error"
		if result.Error != nil {
			errMsg = result.Error.Message
		}
		return nil, fmt.Errorf("command failed: %s", errMsg)
	}

	L_debug("hass: ws command completed", "type", cmdType, "resultSize", len(result.Result))
	return result.Result, nil
}

// buildWebSocketURL converts the REST URL to a WebSocket URL.
// https://example.com:8123 -> wss://example.com:8123/api/websocket
// http://example.com:8123 -> ws://example.com:8123/api/websocket
func (c *WSClient) buildWebSocketURL() string {
	url := strings.TrimSuffix(c.cfg.URL, "/")

	if strings.HasPrefix(url, "https://") {
		url = "wss://" + strings.TrimPrefix(url, "https://")
	} else if strings.HasPrefix(url, "http://") {
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}

	return url + "/api/websocket"
}
