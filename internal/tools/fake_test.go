package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
)

var errFake = fmt.Errorf("fake upstream failure")

// fakeHA is an in-memory HomeAssistant for tool tests. Unset fields
// make the corresponding call fail.
type fakeHA struct {
	states       []hass.State
	services     []hass.ServiceDomain
	sysConfig    *hass.SystemConfig
	entries      []hass.ConfigEntry
	getResponses map[string]string // path (with query) -> body
	postFn       func(path string, body any) (json.RawMessage, error)
	statesErr    error
}

func (f *fakeHA) Get(ctx context.Context, path string) (json.RawMessage, error) {
	if body, ok := f.getResponses[path]; ok {
		return json.RawMessage(body), nil
	}
	return nil, &hass.Error{StatusCode: 404, Status: "404 Not Found", Message: "no fake response for " + path}
}

func (f *fakeHA) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	if f.postFn != nil {
		return f.postFn(path, body)
	}
	return nil, fmt.Errorf("unexpected POST %s", path)
}

func (f *fakeHA) GetStates(ctx context.Context) ([]hass.State, error) {
	if f.statesErr != nil {
		return nil, f.statesErr
	}
	return f.states, nil
}

func (f *fakeHA) GetState(ctx context.Context, entityID string) (*hass.State, error) {
	for i := range f.states {
		if f.states[i].EntityID == entityID {
			return &f.states[i], nil
		}
	}
	return nil, &hass.Error{StatusCode: 404, Status: "404 Not Found", Message: "Entity not found."}
}

func (f *fakeHA) GetServices(ctx context.Context) ([]hass.ServiceDomain, error) {
	return f.services, nil
}

func (f *fakeHA) GetSystemConfig(ctx context.Context) (*hass.SystemConfig, error) {
	if f.sysConfig == nil {
		return nil, fmt.Errorf("no fake system config")
	}
	return f.sysConfig, nil
}

func (f *fakeHA) GetConfigEntries(ctx context.Context) ([]hass.ConfigEntry, error) {
	return f.entries, nil
}

func (f *fakeHA) CallService(ctx context.Context, domain, service string, data map[string]any) (json.RawMessage, error) {
	if f.postFn != nil {
		return f.postFn(fmt.Sprintf("/api/services/%s/%s", domain, service), data)
	}
	return json.RawMessage(`[]`), nil
}

// fakeRegistry is an in-memory RegistryQuerier.
type fakeRegistry struct {
	areas    []hass.AreaEntry
	entities []hass.EntityEntry
	devices  []hass.DeviceEntry
}

func (f *fakeRegistry) ListAreas(ctx context.Context) ([]hass.AreaEntry, error) {
	return f.areas, nil
}

func (f *fakeRegistry) ListEntities(ctx context.Context) ([]hass.EntityEntry, error) {
	return f.entities, nil
}

func (f *fakeRegistry) ListDevices(ctx context.Context) ([]hass.DeviceEntry, error) {
	return f.devices, nil
}

func sampleStates() []hass.State {
	return []hass.State{
		{EntityID: "light.bedroom", State: "on", Attributes: map[string]any{"friendly_name": "Bedroom Light"}},
		{EntityID: "light.kitchen", State: "off", Attributes: map[string]any{"friendly_name": "Kitchen Light"}},
		{EntityID: "sensor.bedroom_temperature", State: "21.4", Attributes: map[string]any{"friendly_name": "Bedroom Temperature"}},
		{EntityID: "switch.garage_door", State: "off", Attributes: map[string]any{"friendly_name": "Garage Door"}},
		{EntityID: "automation.morning_lights", State: "on", Attributes: map[string]any{"friendly_name": "Morning Lights", "id": "auto1"}},
	}
}

// decodeResult unmarshals a tool result into a generic map.
func decodeResult(t interface{ Fatalf(string, ...any) }, result string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(result), &out); err != nil {
		t.Fatalf("tool result is not JSON: %v\n%s", err, result)
	}
	return out
}

// errKind extracts error.kind from an error envelope, or "".
func errKind(result map[string]any) string {
	errObj, _ := result["error"].(map[string]any)
	if errObj == nil {
		return ""
	}
	kind, _ := errObj["kind"].(string)
	return kind
}
