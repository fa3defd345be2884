package tools

import (
	"context"
	"encoding/json"
	"testing"
)

func runSearch(t *testing.T, input string) map[string]any {
	t.Helper()
	tool := NewSearchEntitiesTool(&fakeHA{states: sampleStates()})
	result, err := tool.Execute(context.Background(), json.RawMessage(input))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return decodeResult(t, result)
}

func TestSearchEntitiesFuzzy(t *testing.T) {
	resp := runSearch(t, `{"query": "bed"}`)
	if resp["success"] != true {
		t.Fatalf("success = %v: %v", resp["success"], resp)
	}
	if resp["search_type"] != "fuzzy_search" {
		t.Errorf("search_type = %v", resp["search_type"])
	}

	results := resp["results"].([]any)
	if len(results) == 0 {
		t.Fatal("no results")
	}
	top := results[0].(map[string]any)
	if top["entity_id"] != "light.bedroom" && top["entity_id"] != "sensor.bedroom_temperature" {
		t.Errorf("top result = %v", top["entity_id"])
	}
	if top["score"].(float64) != 100 {
		t.Errorf("top score = %v, substring should be 100", top["score"])
	}
	if top["match_type"] != "exact_substring" {
		t.Errorf("match_type = %v", top["match_type"])
	}
}

func TestSearchEntitiesDomainListing(t *testing.T) {
	resp := runSearch(t, `{"domain_filter": "light"}`)
	if resp["search_type"] != "domain_listing" {
		t.Errorf("search_type = %v", resp["search_type"])
	}
	results := resp["results"].([]any)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if resp["total_matches"].(float64) != 2 {
		t.Errorf("total_matches = %v", resp["total_matches"])
	}
	if resp["is_truncated"] != false {
		t.Errorf("is_truncated = %v", resp["is_truncated"])
	}
}

func TestSearchEntitiesTruncation(t *testing.T) {
	resp := runSearch(t, `{"query": "light", "limit": 2}`)
	results := resp["results"].([]any)
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
	if resp["is_truncated"] != true {
		t.Errorf("is_truncated = %v", resp["is_truncated"])
	}
	if total := resp["total_matches"].(float64); total <= 2 {
		t.Errorf("total_matches = %v, want > limit", total)
	}
	if resp["note"] == nil {
		t.Error("truncated response should carry a note")
	}
}

func TestSearchEntitiesStringCoercion(t *testing.T) {
	// Agents routinely send numbers and booleans as strings.
	resp := runSearch(t, `{"query": "light", "limit": "2", "group_by_domain": "yes"}`)
	if resp["success"] != true {
		t.Fatalf("coerced params rejected: %v", resp)
	}
	if resp["by_domain"] == nil {
		t.Error("by_domain missing despite group_by_domain=yes")
	}
}

func TestSearchEntitiesInvalidLimit(t *testing.T) {
	for _, input := range []string{`{"query": "x", "limit": 0}`, `{"query": "x", "limit": -5}`, `{"query": "x", "limit": "many"}`} {
		resp := runSearch(t, input)
		if resp["success"] != false || errKind(resp) != ErrValidation {
			t.Errorf("input %s: expected validation error, got %v", input, resp)
		}
	}
}

func TestSearchEntitiesUnknownDomainEmpty(t *testing.T) {
	resp := runSearch(t, `{"domain_filter": "vacuum"}`)
	if resp["success"] != true {
		t.Fatalf("unknown domain should not be an error: %v", resp)
	}
	if len(resp["results"].([]any)) != 0 {
		t.Errorf("results = %v, want empty", resp["results"])
	}
}

func TestSearchEntitiesUpstreamFailure(t *testing.T) {
	tool := NewSearchEntitiesTool(&fakeHA{statesErr: errFake})
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"query": "bed"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	resp := decodeResult(t, result)
	if resp["success"] != false || errKind(resp) != ErrUpstream {
		t.Errorf("expected upstream error envelope, got %v", resp)
	}
}

func TestSearchEntitiesMalformedInput(t *testing.T) {
	resp := runSearch(t, `["not","an","object"]`)
	if resp["success"] != false || errKind(resp) != ErrValidation {
		t.Errorf("expected validation error for non-object input, got %v", resp)
	}
}
