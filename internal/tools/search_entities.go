package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	. "github.com/roelfdiedericks/hassmcp/internal/logging"
	"github.com/roelfdiedericks/hassmcp/internal/search"
)

// SearchEntitiesTool finds entities by fuzzy matching against entity
// ID, friendly name and domain, or lists a whole domain when no query
// is given.
type SearchEntitiesTool struct {
	ha HomeAssistant
}

// NewSearchEntitiesTool creates the ha_search_entities tool.
func NewSearchEntitiesTool(ha HomeAssistant) *SearchEntitiesTool {
	return &SearchEntitiesTool{ha: ha}
}

func (t *SearchEntitiesTool) Name() string {
	return "ha_search_entities"
}

func (t *SearchEntitiesTool) Description() string {
	return "Search Home Assistant entities by fuzzy matching on entity ID, friendly name and domain. " +
		"Leave the query empty and set domain_filter to list every entity of a domain."
}

func (t *SearchEntitiesTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search text (e.g., 'bedroom light'). Empty with domain_filter set lists the domain.",
			},
			"domain_filter": map[string]any{
				"type":        "string",
				"description": "Restrict results to one domain (e.g., 'light', 'sensor'). Exact match.",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of results. Default: 10",
			},
			"group_by_domain": map[string]any{
				"type":        "boolean",
				"description": "Additionally group the results by domain. Default: false",
			},
		},
	}
}

// entityMatch is one result row.
type entityMatch struct {
	EntityID     string `json:"entity_id"`
	FriendlyName string `json:"friendly_name,omitempty"`
	State        string `json:"state"`
	Domain       string `json:"domain"`
	Score        int    `json:"score"`
	MatchType    string `json:"match_type"`
}

type searchEntitiesResponse struct {
	Success      bool                     `json:"success"`
	Query        string                   `json:"query"`
	DomainFilter string                   `json:"domain_filter,omitempty"`
	TotalMatches int                      `json:"total_matches"`
	Results      []entityMatch            `json:"results"`
	IsTruncated  bool                     `json:"is_truncated"`
	SearchType   string                   `json:"search_type"`
	ByDomain     map[string][]entityMatch `json:"by_domain,omitempty"`
	Note         string                   `json:"note,omitempty"`
}

func (t *SearchEntitiesTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}

	query, err := ParseString(params, "query", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	domainFilter, err := ParseString(params, "domain_filter", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	limit, err := ParseInt(params, "limit", 10, 1, 500)
	if err != nil {
		return validationError(err.Error()), nil
	}
	groupByDomain, err := ParseBool(params, "group_by_domain", false)
	if err != nil {
		return validationError(err.Error()), nil
	}

	states, err := t.ha.GetStates(ctx)
	if err != nil {
		return upstreamError(err), nil
	}

	candidates := make([]search.Candidate, 0, len(states))
	for _, s := range states {
		candidates = append(candidates, search.Candidate{
			EntityID:     s.EntityID,
			FriendlyName: s.FriendlyName(),
			State:        s.State,
		})
	}

	res, err := search.Search(candidates, search.Options{
		Query:         query,
		DomainFilter:  domainFilter,
		Limit:         limit,
		GroupByDomain: groupByDomain,
		MinScore:      1,
	})
	if err != nil {
		var verr *search.ValidationError
		if errors.As(err, &verr) {
			return validationError(verr.Error()), nil
		}
		return "", err
	}

	resp := searchEntitiesResponse{
		Success:      true,
		Query:        query,
		DomainFilter: domainFilter,
		TotalMatches: res.TotalMatches,
		Results:      toEntityMatches(res.Matches),
		IsTruncated:  res.Truncated,
		SearchType:   res.SearchType,
	}
	if res.ByDomain != nil {
		resp.ByDomain = make(map[string][]entityMatch, len(res.ByDomain))
		for domain, ms := range res.ByDomain {
			resp.ByDomain[domain] = toEntityMatches(ms)
		}
	}
	if res.Truncated {
		resp.Note = fmt.Sprintf("showing first %d of %d matches, raise limit or narrow the query for more",
			len(res.Matches), res.TotalMatches)
	}

	L_debug("search_entities", "query", query, "domain", domainFilter,
		"total", res.TotalMatches, "returned", len(res.Matches))

	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(data), nil
}

func toEntityMatches(ms []search.ScoredMatch) []entityMatch {
	out := make([]entityMatch, 0, len(ms))
	for _, m := range ms {
		out = append(out, entityMatch{
			EntityID:     m.EntityID,
			FriendlyName: m.FriendlyName,
			State:        m.State,
			Domain:       m.Domain(),
			Score:        m.Score,
			MatchType:    string(m.MatchType),
		})
	}
	return out
}
