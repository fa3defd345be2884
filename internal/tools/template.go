package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EvalTemplateTool renders a Jinja2 template on the Home Assistant
// instance via POST /api/template.
type EvalTemplateTool struct {
	ha HomeAssistant
}

// NewEvalTemplateTool creates the ha_eval_template tool.
func NewEvalTemplateTool(ha HomeAssistant) *EvalTemplateTool {
	return &EvalTemplateTool{ha: ha}
}

func (t *EvalTemplateTool) Name() string {
	return "ha_eval_template"
}

func (t *EvalTemplateTool) Description() string {
	return "Evaluate a Home Assistant Jinja2 template (e.g., '{{ states(\"sensor.temperature\") }}')."
}

func (t *EvalTemplateTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template": map[string]any{
				"type":        "string",
				"description": "Jinja2 template source to render",
			},
			"timeout": map[string]any{
				"type":        "integer",
				"description": "Render timeout in seconds, max 30. Default: 3",
			},
		},
		"required": []string{"template"},
	}
}

type evalTemplateResponse struct {
	Success  bool   `json:"success"`
	Template string `json:"template"`
	Result   string `json:"result"`
}

func (t *EvalTemplateTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}

	template, err := ParseString(params, "template", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	if template == "" {
		return validationError("template is required"), nil
	}
	timeout, err := ParseInt(params, "timeout", 3, 1, 30)
	if err != nil {
		return validationError(err.Error()), nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	// The endpoint returns the rendered text verbatim, not JSON.
	raw, err := t.ha.Post(ctx, "/api/template", map[string]any{"template": template})
	if err != nil {
		return upstreamError(err,
			"check the template syntax, Home Assistant reports render errors as 400s"), nil
	}

	resp := evalTemplateResponse{Success: true, Template: template, Result: string(raw)}
	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(out), nil
}
