package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
)

// GetStateTool fetches the full state of a single entity.
type GetStateTool struct {
	ha HomeAssistant
}

// NewGetStateTool creates the ha_get_state tool.
func NewGetStateTool(ha HomeAssistant) *GetStateTool {
	return &GetStateTool{ha: ha}
}

func (t *GetStateTool) Name() string {
	return "ha_get_state"
}

func (t *GetStateTool) Description() string {
	return "Get the current state and attributes of a single Home Assistant entity."
}

func (t *GetStateTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entity_id": map[string]any{
				"type":        "string",
				"description": "Entity ID (e.g., 'light.bedroom')",
			},
		},
		"required": []string{"entity_id"},
	}
}

type getStateResponse struct {
	Success bool        `json:"success"`
	Entity  *hass.State `json:"entity"`
}

func (t *GetStateTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}

	entityID, err := ParseString(params, "entity_id", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	if entityID == "" {
		return validationError("entity_id is required",
			"use ha_search_entities to find valid entity IDs"), nil
	}

	state, err := t.ha.GetState(ctx, entityID)
	if err != nil {
		return upstreamError(err), nil
	}

	data, err := json.Marshal(getStateResponse{Success: true, Entity: state})
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(data), nil
}
