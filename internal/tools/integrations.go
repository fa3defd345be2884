package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
	"github.com/roelfdiedericks/hassmcp/internal/search"
)

// Integration search keeps only strong matches. A listing of loosely
// related integrations is useless to an agent trying to identify one,
// unlike entity search where weak hits still help.
const integrationScoreFloor = 70

// ListIntegrationsTool lists configured integrations, optionally
// filtered by a fuzzy query over domain and title.
type ListIntegrationsTool struct {
	ha HomeAssistant
}

// NewListIntegrationsTool creates the ha_list_integrations tool.
func NewListIntegrationsTool(ha HomeAssistant) *ListIntegrationsTool {
	return &ListIntegrationsTool{ha: ha}
}

func (t *ListIntegrationsTool) Name() string {
	return "ha_list_integrations"
}

func (t *ListIntegrationsTool) Description() string {
	return "List configured Home Assistant integrations with their state, optionally filtered by name."
}

func (t *ListIntegrationsTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Filter by integration domain or title (e.g., 'hue', 'zigbee')",
			},
		},
	}
}

type integrationMatch struct {
	EntryID string `json:"entry_id"`
	Domain  string `json:"domain"`
	Title   string `json:"title"`
	State   string `json:"state"`
	Score   int    `json:"score,omitempty"`
}

type listIntegrationsResponse struct {
	Success      bool               `json:"success"`
	Query        string             `json:"query,omitempty"`
	Total        int                `json:"total"`
	Integrations []integrationMatch `json:"integrations"`
	StateSummary map[string]int     `json:"state_summary"`
}

func (t *ListIntegrationsTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}
	query, err := ParseString(params, "query", "")
	if err != nil {
		return validationError(err.Error()), nil
	}

	entries, err := t.ha.GetConfigEntries(ctx)
	if err != nil {
		return upstreamError(err), nil
	}

	matches := filterIntegrations(entries, query)

	summary := make(map[string]int)
	for _, m := range matches {
		summary[m.State]++
	}

	resp := listIntegrationsResponse{
		Success:      true,
		Query:        query,
		Total:        len(matches),
		Integrations: matches,
		StateSummary: summary,
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(out), nil
}

// filterIntegrations scores entries against the query over domain and
// title, keeping scores of at least integrationScoreFloor, sorted by
// descending score. An empty query returns everything in source order.
func filterIntegrations(entries []hass.ConfigEntry, query string) []integrationMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]integrationMatch, 0, len(entries))
		for _, e := range entries {
			out = append(out, integrationMatch{
				EntryID: e.EntryID,
				Domain:  e.Domain,
				Title:   e.Title,
				State:   e.State,
			})
		}
		return out
	}

	type scored struct {
		entry hass.ConfigEntry
		score int
	}
	var kept []scored
	for _, e := range entries {
		score := search.Score(query, e.Domain)
		if s := search.Score(query, e.Title); s > score {
			score = s
		}
		if score >= integrationScoreFloor {
			kept = append(kept, scored{e, score})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	out := make([]integrationMatch, 0, len(kept))
	for _, s := range kept {
		out = append(out, integrationMatch{
			EntryID: s.entry.EntryID,
			Domain:  s.entry.Domain,
			Title:   s.entry.Title,
			State:   s.entry.State,
			Score:   s.score,
		})
	}
	return out
}
