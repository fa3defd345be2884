package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
	. "github.com/roelfdiedericks/hassmcp/internal/logging"
	"github.com/roelfdiedericks/hassmcp/internal/search"
)

// deepSearchConcurrency bounds parallel config fetches so a broad
// search does not hammer the instance.
const deepSearchConcurrency = 5

// Entity domains treated as helpers.
var helperDomains = map[string]bool{
	"input_boolean":  true,
	"input_number":   true,
	"input_select":   true,
	"input_text":     true,
	"input_datetime": true,
	"input_button":   true,
	"counter":        true,
	"timer":          true,
}

// DeepSearchTool searches inside automation, script and helper
// configurations, not just their names. A query like 'light.bedroom'
// finds every automation that touches that entity.
type DeepSearchTool struct {
	ha        HomeAssistant
	threshold int
}

// NewDeepSearchTool creates the ha_deep_search tool. threshold is the
// minimum score for a match to be reported.
func NewDeepSearchTool(ha HomeAssistant, threshold int) *DeepSearchTool {
	if threshold <= 0 {
		threshold = 60
	}
	return &DeepSearchTool{ha: ha, threshold: threshold}
}

func (t *DeepSearchTool) Name() string {
	return "ha_deep_search"
}

func (t *DeepSearchTool) Description() string {
	return "Search inside automation, script and helper configurations. Finds where an entity, " +
		"service or phrase is used, not just things named like it."
}

func (t *DeepSearchTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Text to find (entity ID, service name, or free text)",
			},
			"search_types": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Subset of ['automation', 'script', 'helper']. Default: all three",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum results. Default: 20",
			},
		},
		"required": []string{"query"},
	}
}

type deepSearchMatch struct {
	EntityID     string `json:"entity_id"`
	FriendlyName string `json:"friendly_name,omitempty"`
	Type         string `json:"type"`
	Score        int    `json:"score"`
	MatchedIn    string `json:"matched_in"` // "name" or "config"
}

type deepSearchResponse struct {
	Success bool                         `json:"success"`
	Query   string                       `json:"query"`
	Total   int                          `json:"total"`
	Results []deepSearchMatch            `json:"results"`
	ByType  map[string][]deepSearchMatch `json:"by_type"`
}

func (t *DeepSearchTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}

	query, err := ParseString(params, "query", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	if strings.TrimSpace(query) == "" {
		return validationError("query is required"), nil
	}
	searchTypes, err := ParseStringList(params, "search_types", []string{"automation", "script", "helper"})
	if err != nil {
		return validationError(err.Error()), nil
	}
	for _, st := range searchTypes {
		if st != "automation" && st != "script" && st != "helper" {
			return validationError(fmt.Sprintf("unknown search type %q (accepted: automation, script, helper)", st)), nil
		}
	}
	limit, err := ParseInt(params, "limit", 20, 1, 100)
	if err != nil {
		return validationError(err.Error()), nil
	}

	states, err := t.ha.GetStates(ctx)
	if err != nil {
		return upstreamError(err), nil
	}

	wantType := make(map[string]bool, len(searchTypes))
	for _, st := range searchTypes {
		wantType[st] = true
	}

	var matches []deepSearchMatch
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, deepSearchConcurrency)

	for _, s := range states {
		kind := classifyEntity(s.EntityID)
		if kind == "" || !wantType[kind] {
			continue
		}

		wg.Add(1)
		go func(s hass.State, kind string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			m, ok := t.scoreEntity(ctx, query, s, kind)
			if !ok {
				return
			}
			mu.Lock()
			matches = append(matches, m)
			mu.Unlock()
		}(s, kind)
	}
	wg.Wait()

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].EntityID < matches[j].EntityID
	})

	total := len(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []deepSearchMatch{}
	}

	byType := make(map[string][]deepSearchMatch)
	for _, m := range matches {
		byType[m.Type] = append(byType[m.Type], m)
	}

	L_debug("deep_search", "query", query, "total", total, "returned", len(matches))

	resp := deepSearchResponse{
		Success: true,
		Query:   query,
		Total:   total,
		Results: matches,
		ByType:  byType,
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(out), nil
}

// scoreEntity rates one entity against the query: its name first, then
// its configuration when the name alone does not clear the threshold.
func (t *DeepSearchTool) scoreEntity(ctx context.Context, query string, s hass.State, kind string) (deepSearchMatch, bool) {
	m := deepSearchMatch{
		EntityID:     s.EntityID,
		FriendlyName: s.FriendlyName(),
		Type:         kind,
		MatchedIn:    "name",
	}

	m.Score = search.Score(query, s.EntityID)
	if sc := search.Score(query, s.FriendlyName()); sc > m.Score {
		m.Score = sc
	}
	if m.Score >= t.threshold {
		return m, true
	}

	config := t.fetchConfig(ctx, s, kind)
	if config == nil {
		// Helpers have no config endpoint; their attributes stand in.
		config = s.Attributes
	}
	if sc := scanValue(query, config); sc > m.Score {
		m.Score = sc
		m.MatchedIn = "config"
	}
	return m, m.Score >= t.threshold
}

// fetchConfig retrieves the stored configuration for automations and
// scripts. Failures are logged and treated as no-config: the entity can
// still match on its name.
func (t *DeepSearchTool) fetchConfig(ctx context.Context, s hass.State, kind string) map[string]any {
	var path string
	switch kind {
	case "automation":
		id, _ := s.Attributes["id"].(string)
		if id == "" {
			return nil
		}
		path = "/api/config/automation/config/" + url.PathEscape(id)
	case "script":
		objectID := strings.TrimPrefix(s.EntityID, "script.")
		path = "/api/config/script/config/" + url.PathEscape(objectID)
	default:
		return nil
	}

	raw, err := t.ha.Get(ctx, path)
	if err != nil {
		L_debug("deep_search: config fetch failed", "entity", s.EntityID, "error", err)
		return nil
	}
	var config map[string]any
	if err := json.Unmarshal(raw, &config); err != nil {
		return nil
	}
	return config
}

// scanValue walks a decoded config value and returns the best partial
// match score found in any nested string, key or scalar.
func scanValue(query string, v any) int {
	switch t := v.(type) {
	case string:
		return search.PartialRatio(query, t)
	case map[string]any:
		best := 0
		for key, val := range t {
			if s := search.PartialRatio(query, key); s > best {
				best = s
			}
			if s := scanValue(query, val); s > best {
				best = s
			}
			if best == 100 {
				break
			}
		}
		return best
	case []any:
		best := 0
		for _, item := range t {
			if s := scanValue(query, item); s > best {
				best = s
			}
			if best == 100 {
				break
			}
		}
		return best
	case float64, bool:
		return search.PartialRatio(query, fmt.Sprintf("%v", t))
	}
	return 0
}

// classifyEntity maps an entity to a deep-search type, or "".
func classifyEntity(entityID string) string {
	domain := entityDomain(entityID)
	switch {
	case domain == "automation":
		return "automation"
	case domain == "script":
		return "script"
	case helperDomains[domain]:
		return "helper"
	}
	return ""
}
