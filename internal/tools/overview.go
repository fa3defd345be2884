package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
	. "github.com/roelfdiedericks/hassmcp/internal/logging"
)

// Entities shown per domain at each detail level.
const (
	overviewMinimalPerDomain  = 10
	overviewStandardPerDomain = 25
	overviewFullPerDomain     = 1000
)

// GetOverviewTool builds a structural snapshot of the whole instance:
// domains, entity counts, areas, and instance info. It is the map an
// agent reads before reaching for the targeted tools.
type GetOverviewTool struct {
	ha HomeAssistant
	ws RegistryQuerier
}

// NewGetOverviewTool creates the ha_get_overview tool.
func NewGetOverviewTool(ha HomeAssistant, ws RegistryQuerier) *GetOverviewTool {
	return &GetOverviewTool{ha: ha, ws: ws}
}

func (t *GetOverviewTool) Name() string {
	return "ha_get_overview"
}

func (t *GetOverviewTool) Description() string {
	return "Get a structural overview of the Home Assistant instance: domains with entity counts and " +
		"samples, areas, and system info. Start here before searching."
}

func (t *GetOverviewTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"detail_level": map[string]any{
				"type":        "string",
				"description": "'minimal' (10 entities/domain, names only), 'standard' (25, with state) or 'full'. Default: standard",
			},
			"max_entities_per_domain": map[string]any{
				"type":        "integer",
				"description": "Override the per-domain entity cap",
			},
			"include_state": map[string]any{
				"type":        "boolean",
				"description": "Include each sampled entity's state. Default depends on detail_level.",
			},
			"include_entity_id": map[string]any{
				"type":        "boolean",
				"description": "Include entity IDs alongside names. Default: true",
			},
		},
	}
}

type overviewEntity struct {
	EntityID string `json:"entity_id,omitempty"`
	Name     string `json:"name"`
	State    string `json:"state,omitempty"`
}

type overviewDomain struct {
	Count    int              `json:"count"`
	Entities []overviewEntity `json:"entities"`
}

type overviewArea struct {
	AreaID      string `json:"area_id"`
	Name        string `json:"name"`
	EntityCount int    `json:"entity_count"`
	DeviceCount int    `json:"device_count"`
}

type overviewResponse struct {
	Success        bool                      `json:"success"`
	SystemInfo     *hass.SystemConfig        `json:"system_info,omitempty"`
	TotalEntities  int                       `json:"total_entities"`
	TotalDevices   int                       `json:"total_devices"`
	Domains        map[string]overviewDomain `json:"domains"`
	Areas          []overviewArea            `json:"areas,omitempty"`
	ServiceDomains int                       `json:"service_domains"`
	Warnings       []string                  `json:"warnings,omitempty"`
}

func (t *GetOverviewTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	params, err := decodeParams(input)
	if err != nil {
		return validationError(err.Error()), nil
	}

	detail, err := ParseString(params, "detail_level", "standard")
	if err != nil {
		return validationError(err.Error()), nil
	}
	var perDomain int
	var defaultIncludeState bool
	switch detail {
	case "minimal":
		perDomain, defaultIncludeState = overviewMinimalPerDomain, false
	case "standard":
		perDomain, defaultIncludeState = overviewStandardPerDomain, true
	case "full":
		perDomain, defaultIncludeState = overviewFullPerDomain, true
	default:
		return validationError(fmt.Sprintf("unknown detail_level %q (accepted: minimal, standard, full)", detail)), nil
	}

	perDomain, err = ParseInt(params, "max_entities_per_domain", perDomain, 1, 10000)
	if err != nil {
		return validationError(err.Error()), nil
	}
	includeState, err := ParseBool(params, "include_state", defaultIncludeState)
	if err != nil {
		return validationError(err.Error()), nil
	}
	includeEntityID, err := ParseBool(params, "include_entity_id", true)
	if err != nil {
		return validationError(err.Error()), nil
	}

	// Fetch everything in parallel. States are required; the rest
	// degrades to a warning so one blocked endpoint does not kill the
	// whole overview.
	var (
		wg       sync.WaitGroup
		states   []hass.State
		services []hass.ServiceDomain
		sysInfo  *hass.SystemConfig
		areas    []hass.AreaEntry
		registry []hass.EntityEntry
		devices  []hass.DeviceEntry

		statesErr   error
		servicesErr error
		sysErr      error
		areasErr    error
		registryErr error
		devicesErr  error
	)
	wg.Add(6)
	go func() { defer wg.Done(); states, statesErr = t.ha.GetStates(ctx) }()
	go func() { defer wg.Done(); services, servicesErr = t.ha.GetServices(ctx) }()
	go func() { defer wg.Done(); sysInfo, sysErr = t.ha.GetSystemConfig(ctx) }()
	go func() { defer wg.Done(); areas, areasErr = t.ws.ListAreas(ctx) }()
	go func() { defer wg.Done(); registry, registryErr = t.ws.ListEntities(ctx) }()
	go func() { defer wg.Done(); devices, devicesErr = t.ws.ListDevices(ctx) }()
	wg.Wait()

	if statesErr != nil {
		return upstreamError(statesErr), nil
	}

	var warnings []string
	for _, soft := range []struct {
		what string
		err  error
	}{
		{"service catalog", servicesErr},
		{"system config", sysErr},
		{"area registry", areasErr},
		{"entity registry", registryErr},
		{"device registry", devicesErr},
	} {
		if soft.err != nil {
			warnings = append(warnings, fmt.Sprintf("%s unavailable: %v", soft.what, soft.err))
			L_warn("overview: partial result", "missing", soft.what, "error", soft.err)
		}
	}

	resp := overviewResponse{
		Success:        true,
		SystemInfo:     sysInfo,
		TotalEntities:  len(states),
		TotalDevices:   len(devices),
		Domains:        buildDomainSummary(states, perDomain, includeState, includeEntityID),
		Areas:          buildAreaSummary(areas, registry, devices),
		ServiceDomains: len(services),
		Warnings:       warnings,
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(out), nil
}

func buildDomainSummary(states []hass.State, perDomain int, includeState, includeEntityID bool) map[string]overviewDomain {
	byDomain := make(map[string][]hass.State)
	for _, s := range states {
		d := entityDomain(s.EntityID)
		byDomain[d] = append(byDomain[d], s)
	}

	out := make(map[string]overviewDomain, len(byDomain))
	for domain, group := range byDomain {
		entities := make([]overviewEntity, 0, min(len(group), perDomain))
		for _, s := range group {
			if len(entities) == perDomain {
				break
			}
			e := overviewEntity{Name: s.FriendlyName()}
			if e.Name == "" {
				e.Name = s.EntityID
			}
			if includeEntityID {
				e.EntityID = s.EntityID
			}
			if includeState {
				e.State = s.State
			}
			entities = append(entities, e)
		}
		out[domain] = overviewDomain{Count: len(group), Entities: entities}
	}
	return out
}

func buildAreaSummary(areas []hass.AreaEntry, registry []hass.EntityEntry, devices []hass.DeviceEntry) []overviewArea {
	if len(areas) == 0 {
		return nil
	}
	entityCounts := make(map[string]int)
	for _, e := range registry {
		if e.AreaID != "" {
			entityCounts[e.AreaID]++
		}
	}
	deviceCounts := make(map[string]int)
	for _, d := range devices {
		if d.AreaID != "" {
			deviceCounts[d.AreaID]++
		}
	}
	out := make([]overviewArea, 0, len(areas))
	for _, a := range areas {
		out = append(out, overviewArea{
			AreaID:      a.AreaID,
			Name:        a.Name,
			EntityCount: entityCounts[a.AreaID],
			DeviceCount: deviceCounts[a.AreaID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// entityDomain returns the domain prefix of an entity ID.
func entityDomain(entityID string) string {
	for i := 0; i < len(entityID); i++ {
		if entityID[i] == '.' {
			return entityID[:i]
		}
	}
	return entityID
}
