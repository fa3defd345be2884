package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// GetHistoryTool fetches recorded state history for one entity.
type GetHistoryTool struct {
	ha HomeAssistant
}

// NewGetHistoryTool creates the ha_get_history tool.
func NewGetHistoryTool(ha HomeAssistant) *GetHistoryTool {
	return &GetHistoryTool{ha: ha}
}

func (t *GetHistoryTool) Name() string {
	return "ha_get_history"
}

func (t *GetHistoryTool) Description() string {
	return "Get recorded state history for an entity over a time window."
}

func (t *GetHistoryTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entity_id": map[string]any{
				"type":        "string",
				"description": "Entity ID to fetch history for",
			},
			"hours": map[string]any{
				"type":        "integer",
				"description": "Hours to look back from now. Default: 24. Ignored when start is set.",
			},
			"start": map[string]any{
				"type":        "string",
				"description": "Window start, RFC 3339 (e.g., '2026-08-22T00:00:00Z')",
			},
			"end": map[string]any{
				"type":        "string",
				"description": "Window end, RFC 3339. Default: now",
			},
			"minimal": map[string]any{
				"type":        "boolean",
				"description": "Return minimal responses (state changes only, no attributes). Default: true",
			},
		},
		"required": []string{"entity_id"},
	}
}

type getHistoryResponse struct {
	Success  bool            `json:"success"`
	EntityID string          `json:"entity_id"`
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Count    int             `json:"count"`
	History  json.RawMessage `json:"history"`
}

func (t *GetHistoryTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}

	entityID, err := ParseString(params, "entity_id", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	if entityID == "" {
		return validationError("entity_id is required"), nil
	}
	hours, err := ParseInt(params, "hours", 24, 1, 720)
	if err != nil {
		return validationError(err.Error()), nil
	}
	startStr, err := ParseString(params, "start", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	endStr, err := ParseString(params, "end", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	minimal, err := ParseBool(params, "minimal", true)
	if err != nil {
		return validationError(err.Error()), nil
	}

	now := time.Now().UTC()
	start := now.Add(-time.Duration(hours) * time.Hour)
	if startStr != "" {
		start, err = time.Parse(time.RFC3339, startStr)
		if err != nil {
			return validationError(fmt.Sprintf("start %q is not RFC 3339: %v", startStr, err)), nil
		}
	}
	end := now
	if endStr != "" {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			return validationError(fmt.Sprintf("end %q is not RFC 3339: %v", endStr, err)), nil
		}
	}
	if !end.After(start) {
		return validationError("end must be after start"), nil
	}

	q := url.Values{}
	q.Set("filter_entity_id", entityID)
	q.Set("end_time", end.Format(time.RFC3339))
	if minimal {
		q.Set("minimal_response", "")
	}
	path := "/api/history/period/" + url.PathEscape(start.Format(time.RFC3339)) + "?" + q.Encode()

	raw, err := t.ha.Get(ctx, path)
	if err != nil {
		return upstreamError(err), nil
	}

	// The API nests one list per requested entity.
	var lists []json.RawMessage
	if err := json.Unmarshal(raw, &lists); err != nil {
		return "", fmt.Errorf("failed to decode history: %w", err)
	}
	history := json.RawMessage(`[]`)
	count := 0
	if len(lists) > 0 {
		history = lists[0]
		var entries []json.RawMessage
		if err := json.Unmarshal(history, &entries); err == nil {
			count = len(entries)
		}
	}

	resp := getHistoryResponse{
		Success:  true,
		EntityID: entityID,
		Start:    start.Format(time.RFC3339),
		End:      end.Format(time.RFC3339),
		Count:    count,
		History:  history,
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(out), nil
}

// GetLogbookTool fetches logbook entries with client-side pagination.
// Home Assistant's logbook endpoint has no offset support, so the full
// window is fetched and sliced here.
type GetLogbookTool struct {
	ha HomeAssistant
}

// NewGetLogbookTool creates the ha_get_logbook tool.
func NewGetLogbookTool(ha HomeAssistant) *GetLogbookTool {
	return &GetLogbookTool{ha: ha}
}

func (t *GetLogbookTool) Name() string {
	return "ha_get_logbook"
}

func (t *GetLogbookTool) Description() string {
	return "Get logbook entries (who did what, when) for the whole instance or one entity, paginated."
}

func (t *GetLogbookTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hours_back": map[string]any{
				"type":        "integer",
				"description": "Hours to look back from now. Default: 1",
			},
			"entity_id": map[string]any{
				"type":        "string",
				"description": "Restrict to one entity",
			},
			"end_time": map[string]any{
				"type":        "string",
				"description": "Window end, RFC 3339. Default: now",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Entries per page, max 500. Default: 50",
			},
			"offset": map[string]any{
				"type":        "integer",
				"description": "Entries to skip. Default: 0",
			},
		},
	}
}

type getLogbookResponse struct {
	Success bool              `json:"success"`
	Total   int               `json:"total"`
	Offset  int               `json:"offset"`
	Limit   int               `json:"limit"`
	HasMore bool              `json:"has_more"`
	Entries []json.RawMessage `json:"entries"`
}

func (t *GetLogbookTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}

	hoursBack, err := ParseInt(params, "hours_back", 1, 1, 168)
	if err != nil {
		return validationError(err.Error()), nil
	}
	entityID, err := ParseString(params, "entity_id", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	endStr, err := ParseString(params, "end_time", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	limit, err := ParseInt(params, "limit", 50, 1, 500)
	if err != nil {
		return validationError(err.Error()), nil
	}
	offset, err := ParseInt(params, "offset", 0, 0, 1_000_000)
	if err != nil {
		return validationError(err.Error()), nil
	}

	end := time.Now().UTC()
	if endStr != "" {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			return validationError(fmt.Sprintf("end_time %q is not RFC 3339: %v", endStr, err)), nil
		}
	}
	start := end.Add(-time.Duration(hoursBack) * time.Hour)

	q := url.Values{}
	q.Set("end_time", end.Format(time.RFC3339))
	if entityID != "" {
		q.Set("entity", entityID)
	}
	path := "/api/logbook/" + url.PathEscape(start.Format(time.RFC3339)) + "?" + q.Encode()

	raw, err := t.ha.Get(ctx, path)
	if err != nil {
		return upstreamError(err), nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return "", fmt.Errorf("failed to decode logbook: %w", err)
	}

	total := len(entries)
	page := []json.RawMessage{}
	if offset < total {
		endIdx := offset + limit
		if endIdx > total {
			endIdx = total
		}
		page = entries[offset:endIdx]
	}

	resp := getLogbookResponse{
		Success: true,
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: offset+len(page) < total,
		Entries: page,
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(out), nil
}
