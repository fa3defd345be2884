package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	. "github.com/roelfdiedericks/hassmcp/internal/logging"
)

// QueryTool runs a jq expression over live Home Assistant API data.
// It covers the long tail of questions the shaped tools do not:
// aggregation, projection, cross-entity filtering.
type QueryTool struct {
	ha HomeAssistant
}

// NewQueryTool creates the ha_query tool.
func NewQueryTool(ha HomeAssistant) *QueryTool {
	return &QueryTool{ha: ha}
}

func (t *QueryTool) Name() string {
	return "ha_query"
}

func (t *QueryTool) Description() string {
	return "Run a jq expression over live Home Assistant data. Sources: 'states' (all entity states), " +
		"'services' (service catalog), 'config' (instance config)."
}

func (t *QueryTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "jq filter expression (e.g., '.[] | select(.state == \"on\") | .entity_id')",
			},
			"source": map[string]any{
				"type":        "string",
				"description": "Data source: 'states', 'services' or 'config'. Default: states",
			},
			"raw": map[string]any{
				"type":        "boolean",
				"description": "Output raw strings without JSON encoding (like jq -r). Default: false",
			},
			"compact": map[string]any{
				"type":        "boolean",
				"description": "Compact output (no pretty-printing). Default: true",
			},
		},
		"required": []string{"query"},
	}
}

var querySources = map[string]string{
	"states":   "/api/states",
	"services": "/api/services",
	"config":   "/api/config",
}

func (t *QueryTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}

	query, err := ParseString(params, "query", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	if query == "" {
		return validationError("query is required"), nil
	}
	source, err := ParseString(params, "source", "states")
	if err != nil {
		return validationError(err.Error()), nil
	}
	path, ok := querySources[source]
	if !ok {
		return validationError(fmt.Sprintf("unknown source %q (accepted: states, services, config)", source)), nil
	}
	raw, err := ParseBool(params, "raw", false)
	if err != nil {
		return validationError(err.Error()), nil
	}
	compact, err := ParseBool(params, "compact", true)
	if err != nil {
		return validationError(err.Error()), nil
	}

	data, err := t.ha.Get(ctx, path)
	if err != nil {
		return upstreamError(err), nil
	}

	result, err := executeJQ(query, data, raw, compact)
	if err != nil {
		return validationError(err.Error()), nil
	}

	L_debug("ha_query completed", "source", source, "resultLen", len(result))
	return result, nil
}

// executeJQ parses and executes a jq query on JSON data
func executeJQ(query string, data []byte, raw bool, compact bool) (string, error) {
	var input interface{}
	if err := json.Unmarshal(data, &input); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	parsed, err := gojq.Parse(query)
	if err != nil {
		return "", fmt.Errorf("invalid jq query: %w", err)
	}

	var results []interface{}
	iter := parsed.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return "", fmt.Errorf("jq error: %w", err)
		}
		results = append(results, v)
	}

	return formatJQOutput(results, raw, compact)
}

// formatJQOutput formats jq results for output
func formatJQOutput(results []interface{}, raw bool, compact bool) (string, error) {
	var lines []string
	for _, r := range results {
		if raw {
			// Raw string output (like jq -r)
			if s, ok := r.(string); ok {
				lines = append(lines, s)
			} else if r == nil {
				lines = append(lines, "null")
			} else {
				b, err := json.Marshal(r)
				if err != nil {
					return "", fmt.Errorf("failed to encode result: %w", err)
				}
				lines = append(lines, string(b))
			}
		} else {
			var b []byte
			var err error
			if compact {
				b, err = json.Marshal(r)
			} else {
				b, err = json.MarshalIndent(r, "", "  ")
			}
			if err != nil {
				return "", fmt.Errorf("failed to encode result: %w", err)
			}
			lines = append(lines, string(b))
		}
	}
	return strings.Join(lines, "\n"), nil
}
