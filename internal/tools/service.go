package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
	. "github.com/roelfdiedericks/hassmcp/internal/logging"
)

// CallServiceTool invokes a Home Assistant service.
type CallServiceTool struct {
	ha HomeAssistant
}

// NewCallServiceTool creates the ha_call_service tool.
func NewCallServiceTool(ha HomeAssistant) *CallServiceTool {
	return &CallServiceTool{ha: ha}
}

func (t *CallServiceTool) Name() string {
	return "ha_call_service"
}

func (t *CallServiceTool) Description() string {
	return "Call a Home Assistant service (e.g., 'light.turn_on'). Services that return data " +
		"(weather.get_forecasts, calendar.get_events) have their response included."
}

func (t *CallServiceTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"service": map[string]any{
				"type":        "string",
				"description": "Service in domain.service form (e.g., 'light.turn_on')",
			},
			"entity_id": map[string]any{
				"type":        "string",
				"description": "Target entity ID. Optional for services without a target.",
			},
			"data": map[string]any{
				"type":        "object",
				"description": "Additional service data (e.g., {\"brightness\": 128})",
			},
		},
		"required": []string{"service"},
	}
}

type callServiceResponse struct {
	Success bool            `json:"success"`
	Domain  string          `json:"domain"`
	Service string          `json:"service"`
	Result  json.RawMessage `json:"result,omitempty"`
}

func (t *CallServiceTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}

	service, err := ParseString(params, "service", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	domain, name, ok := strings.Cut(service, ".")
	if !ok || domain == "" || name == "" {
		return validationError("service must be in domain.service form (e.g., 'light.turn_on')",
			"use ha_list_services to see available services"), nil
	}

	entityID, err := ParseString(params, "entity_id", "")
	if err != nil {
		return validationError(err.Error()), nil
	}
	data, err := ParseObject(params, "data")
	if err != nil {
		return validationError(err.Error()), nil
	}
	if entityID != "" {
		if data == nil {
			data = map[string]any{}
		}
		data["entity_id"] = entityID
	}

	result, err := t.ha.CallService(ctx, domain, name, data)
	if err != nil {
		return upstreamError(err,
			"use ha_list_services to check the service name and its fields"), nil
	}

	L_info("service called", "service", service, "entity_id", entityID)

	resp := callServiceResponse{Success: true, Domain: domain, Service: name, Result: result}
	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(out), nil
}

// ListServicesTool lists callable services, optionally for one domain.
type ListServicesTool struct {
	ha HomeAssistant
}

// NewListServicesTool creates the ha_list_services tool.
func NewListServicesTool(ha HomeAssistant) *ListServicesTool {
	return &ListServicesTool{ha: ha}
}

func (t *ListServicesTool) Name() string {
	return "ha_list_services"
}

func (t *ListServicesTool) Description() string {
	return "List callable Home Assistant services. Without a domain, returns service names per domain; " +
		"with a domain, includes each service's full field description."
}

func (t *ListServicesTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"domain": map[string]any{
				"type":        "string",
				"description": "Restrict to one domain (e.g., 'light')",
			},
		},
	}
}

type listServicesResponse struct {
	Success  bool                       `json:"success"`
	Domain   string                     `json:"domain,omitempty"`
	Domains  map[string][]string        `json:"domains,omitempty"`
	Services map[string]json.RawMessage `json:"services,omitempty"`
	Count    int                        `json:"count"`
}

func (t *ListServicesTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}
	domain, err := ParseString(params, "domain", "")
	if err != nil {
		return validationError(err.Error()), nil
	}

	catalog, err := t.ha.GetServices(ctx)
	if err != nil {
		return upstreamError(err), nil
	}

	resp := listServicesResponse{Success: true, Domain: domain}
	if domain != "" {
		resp.Services = findDomainServices(catalog, domain)
		if resp.Services == nil {
			return errorResult(ErrNotFound, fmt.Sprintf("domain %q has no services", domain),
				"call ha_list_services without a domain to see all domains"), nil
		}
		resp.Count = len(resp.Services)
	} else {
		resp.Domains = make(map[string][]string, len(catalog))
		for _, d := range catalog {
			names := make([]string, 0, len(d.Services))
			for name := range d.Services {
				names = append(names, name)
			}
			sort.Strings(names)
			resp.Domains[d.Domain] = names
			resp.Count += len(names)
		}
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(out), nil
}

func findDomainServices(catalog []hass.ServiceDomain, domain string) map[string]json.RawMessage {
	for _, d := range catalog {
		if d.Domain == domain {
			return d.Services
		}
	}
	return nil
}
