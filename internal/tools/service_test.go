package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
)

func TestCallServiceSplitsDomain(t *testing.T) {
	var gotPath string
	var gotBody any
	fake := &fakeHA{postFn: func(path string, body any) (json.RawMessage, error) {
		gotPath = path
		gotBody = body
		return json.RawMessage(`[]`), nil
	}}

	tool := NewCallServiceTool(fake)
	result, err := tool.Execute(context.Background(), json.RawMessage(
		`{"service": "light.turn_on", "entity_id": "light.bedroom", "data": {"brightness": 128}}`))
	if err != nil {
		t.Fatal(err)
	}
	resp := decodeResult(t, result)
	if resp["success"] != true || resp["domain"] != "light" || resp["service"] != "turn_on" {
		t.Errorf("resp = %v", resp)
	}
	if gotPath != "/api/services/light/turn_on" {
		t.Errorf("path = %q", gotPath)
	}
	data := gotBody.(map[string]any)
	if data["entity_id"] != "light.bedroom" {
		t.Errorf("entity_id not merged into data: %v", data)
	}
	if data["brightness"].(float64) != 128 {
		t.Errorf("brightness = %v", data["brightness"])
	}
}

func TestCallServiceBadForm(t *testing.T) {
	tool := NewCallServiceTool(&fakeHA{})
	for _, input := range []string{`{"service": "turn_on"}`, `{"service": "light."}`, `{}`} {
		result, err := tool.Execute(context.Background(), json.RawMessage(input))
		if err != nil {
			t.Fatal(err)
		}
		resp := decodeResult(t, result)
		if resp["success"] != false || errKind(resp) != ErrValidation {
			t.Errorf("input %s: expected validation error, got %v", input, resp)
		}
	}
}

func TestListServicesAllDomains(t *testing.T) {
	fake := &fakeHA{services: []hass.ServiceDomain{
		{Domain: "light", Services: map[string]json.RawMessage{
			"turn_on":  json.RawMessage(`{}`),
			"turn_off": json.RawMessage(`{}`),
		}},
		{Domain: "switch", Services: map[string]json.RawMessage{
			"toggle": json.RawMessage(`{}`),
		}},
	}}

	tool := NewListServicesTool(fake)
	result, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	resp := decodeResult(t, result)
	if resp["count"].(float64) != 3 {
		t.Errorf("count = %v", resp["count"])
	}
	domains := resp["domains"].(map[string]any)
	light := domains["light"].([]any)
	if len(light) != 2 || light[0] != "turn_off" || light[1] != "turn_on" {
		t.Errorf("light services = %v, want sorted names", light)
	}
}

func TestListServicesUnknownDomain(t *testing.T) {
	tool := NewListServicesTool(&fakeHA{services: []hass.ServiceDomain{}})
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"domain": "nope"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp := decodeResult(t, result)
	if errKind(resp) != ErrNotFound {
		t.Errorf("kind = %v, want not_found", errKind(resp))
	}
}
