package hass

import "encoding/json"

// State represents the state of an entity as returned by /api/states.
type State struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	LastChanged string         `json:"last_changed,omitempty"`
	LastUpdated string         `json:"last_updated,omitempty"`
	Context     *Context       `json:"context,omitempty"`
}

// FriendlyName returns the friendly_name attribute, or "" if unset.
func (s State) FriendlyName() string {
	if s.Attributes == nil {
		return ""
	}
	name, _ := s.Attributes["friendly_name"].(string)
	return name
}

// Context represents the context of a state change or event.
type Context struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// Message represents a WebSocket message from/to Home Assistant.
type Message struct {
	ID      int             `json:"id,omitempty"`
	Type    string          `json:"type"`
	Success *bool           `json:"success,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *WSError        `json:"error,omitempty"`
}

// WSError represents an error response on the WebSocket API.
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AuthMessage is the authentication message sent to Home Assistant.
type AuthMessage struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token"`
}

// CommandMessage is a generic WebSocket command message.
type CommandMessage struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// ConfigEntry is an integration config entry from
// /api/config/config_entries/entry.
type ConfigEntry struct {
	EntryID string `json:"entry_id"`
	Domain  string `json:"domain"`
	Title   string `json:"title"`
	State   string `json:"state"`
	Source  string `json:"source,omitempty"`
}

// AreaEntry is an area registry entry (config/area_registry/list).
type AreaEntry struct {
	AreaID string `json:"area_id"`
	Name   string `json:"name"`
}

// EntityEntry is an entity registry entry (config/entity_registry/list).
// Only the fields the server inspects are decoded.
type EntityEntry struct {
	EntityID string `json:"entity_id"`
	AreaID   string `json:"area_id,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
	Platform string `json:"platform,omitempty"`
	Disabled string `json:"disabled_by,omitempty"`
}

// DeviceEntry is a device registry entry (config/device_registry/list).
// Only the fields the server inspects are decoded.
type DeviceEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	AreaID       string `json:"area_id,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// ServiceDomain is one entry of the /api/services response: a domain
// and its callable services.
type ServiceDomain struct {
	Domain   string                     `json:"domain"`
	Services map[string]json.RawMessage `json:"services"`
}

// SystemConfig is the subset of /api/config the overview reports.
type SystemConfig struct {
	LocationName string `json:"location_name"`
	Version      string `json:"version"`
	TimeZone     string `json:"time_zone"`
	State        string `json:"state"`
}
