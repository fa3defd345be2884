package tools

import (
	"context"
	"encoding/json"

	"github.com/roelfdiedericks/hassmcp/internal/hass"
)

// HomeAssistant is the REST surface the tools consume. *hass.Client
// implements it; tests substitute fakes.
type HomeAssistant interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	GetStates(ctx context.Context) ([]hass.State, error)
	GetState(ctx context.Context, entityID string) (*hass.State, error)
	GetServices(ctx context.Context) ([]hass.ServiceDomain, error)
	GetSystemConfig(ctx context.Context) (*hass.SystemConfig, error)
	GetConfigEntries(ctx context.Context) ([]hass.ConfigEntry, error)
	CallService(ctx context.Context, domain, service string, data map[string]any) (json.RawMessage, error)
}

// RegistryQuerier is the WebSocket registry surface. *hass.WSClient
// implements it.
type RegistryQuerier interface {
	ListAreas(ctx context.Context) ([]hass.AreaEntry, error)
	ListEntities(ctx context.Context) ([]hass.EntityEntry, error)
	ListDevices(ctx context.Context) ([]hass.DeviceEntry, error)
}

// Options carries the tunables the tools need beyond their clients.
type Options struct {
	// FuzzyThreshold is the score floor for deep-search matches.
	FuzzyThreshold int
}

// RegisterAll populates the registry with every Home Assistant tool.
// Registration is explicit: this list is the complete tool surface.
func RegisterAll(reg *Registry, ha HomeAssistant, ws RegistryQuerier, opts Options) {
	reg.Register(NewSearchEntitiesTool(ha))
	reg.Register(NewGetStateTool(ha))
	reg.Register(NewGetOverviewTool(ha, ws))
	reg.Register(NewDeepSearchTool(ha, opts.FuzzyThreshold))
	reg.Register(NewCallServiceTool(ha))
	reg.Register(NewListServicesTool(ha))
	reg.Register(NewGetHistoryTool(ha))
	reg.Register(NewGetLogbookTool(ha))
	reg.Register(NewListIntegrationsTool(ha))
	reg.Register(NewEvalTemplateTool(ha))
	reg.Register(NewQueryTool(ha))
}
