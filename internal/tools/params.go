package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tool input arrives as loosely typed JSON from agents that frequently
// send booleans as "true", numbers as "10", and lists as JSON-encoded
// strings. Coercion here is explicit and total: every accepted literal
// is listed, everything else is a typed parse error the tool turns
// into a validation envelope.

// paramError reports a parameter that failed coercion.
type paramError struct {
	Param  string
	Reason string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Param, e.Reason)
}

// decodeParams unmarshals raw tool input into a parameter map. Empty
// input means no parameters.
func decodeParams(input json.RawMessage) (map[string]any, error) {
	if len(input) == 0 {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("input is not a JSON object: %w", err)
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

// ParseString returns the string value of key, or def when absent.
// Non-string values are errors, not stringified.
func ParseString(params map[string]any, key, def string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &paramError{key, fmt.Sprintf("expected a string, got %T", v)}
	}
	return s, nil
}

// ParseBool coerces key to a boolean. Accepted string literals, case
// insensitive: true/false, 1/0, yes/no, on/off. Native booleans and
// the JSON numbers 0 and 1 also pass.
func ParseBool(params map[string]any, key string, def bool) (bool, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case float64:
		if t == 0 {
			return false, nil
		}
		if t == 1 {
			return true, nil
		}
		return false, &paramError{key, fmt.Sprintf("number %v is not a boolean (use 0 or 1)", t)}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
		return false, &paramError{key, fmt.Sprintf("%q is not a boolean (accepted: true/false, 1/0, yes/no, on/off)", t)}
	}
	return false, &paramError{key, fmt.Sprintf("expected a boolean, got %T", v)}
}

// ParseInt coerces key to an integer in [min, max]. JSON numbers must
// be integral; numeric strings are accepted.
func ParseInt(params map[string]any, key string, def, min, max int) (int, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return def, nil
	}

	var n int
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, &paramError{key, fmt.Sprintf("%v is not an integer", t)}
		}
		n = int(t)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, &paramError{key, fmt.Sprintf("%q is not an integer", t)}
		}
		n = parsed
	default:
		return 0, &paramError{key, fmt.Sprintf("expected an integer, got %T", v)}
	}

	if n < min || n > max {
		return 0, &paramError{key, fmt.Sprintf("%d is out of range [%d, %d]", n, min, max)}
	}
	return n, nil
}

// ParseStringList coerces key to a list of strings. Accepted forms: a
// JSON array of strings, a string containing a JSON array, or a single
// bare string (one-element list).
func ParseStringList(params map[string]any, key string, def []string) ([]string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return def, nil
	}
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, &paramError{key, fmt.Sprintf("element %d is %T, expected string", i, item)}
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		trimmed := strings.TrimSpace(t)
		if strings.HasPrefix(trimmed, "[") {
			var out []string
			if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
				return nil, &paramError{key, "string looks like a JSON array but does not parse"}
			}
			return out, nil
		}
		return []string{t}, nil
	}
	return nil, &paramError{key, fmt.Sprintf("expected a list of strings, got %T", v)}
}

// ParseObject returns the object value of key, or nil when absent.
func ParseObject(params map[string]any, key string) (map[string]any, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &paramError{key, fmt.Sprintf("expected an object, got %T", v)}
	}
	return obj, nil
}
