package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/roelfdiedericks/hassmcp/internal/config"
	"github.com/roelfdiedericks/hassmcp/internal/hass"
	. "github.com/roelfdiedericks/hassmcp/internal/logging"
	"github.com/roelfdiedericks/hassmcp/internal/mcp"
	"github.com/roelfdiedericks/hassmcp/internal/tools"
)

const version = "0.1.0"

type cli struct {
	Config string `short:"c" help:"Config file path (YAML or JSON). HASS_URL/HASS_TOKEN env vars override." type:"path"`
	Debug  bool   `help:"Enable debug logging (stderr)."`

	Serve   serveCmd   `cmd:"" default:"1" help:"Run the MCP server on stdio."`
	Version versionCmd `cmd:"" help:"Print version and exit."`
}

type serveCmd struct{}

func (s *serveCmd) Run(c *cli) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !c.Debug {
		applyLogLevel(cfg.LogLevel)
	}

	client, err := hass.NewClient(cfg.HomeAssistant)
	if err != nil {
		return err
	}
	ws := hass.NewWSClient(cfg.HomeAssistant)

	// Reachability is advisory: the instance may still be booting, and
	// MCP clients surface per-call errors anyway.
	ctx := context.Background()
	if !client.IsAvailable(ctx) {
		L_warn("home assistant not reachable at startup", "url", cfg.HomeAssistant.URL)
	}

	registry := tools.NewRegistry()
	tools.RegisterAll(registry, client, ws, tools.Options{
		FuzzyThreshold: cfg.Search.FuzzyThreshold,
	})

	L_info("hassmcp %s starting", version)
	L_debug("connected instance", "url", cfg.HomeAssistant.URL, "tools", registry.Count())

	server := mcp.NewServer(registry, "hassmcp", version)
	return server.Run(ctx)
}

type versionCmd struct{}

func (v *versionCmd) Run(c *cli) error {
	fmt.Printf("hassmcp %s\n", version)
	return nil
}

func applyLogLevel(level string) {
	switch level {
	case "debug", "trace":
		SetLevel(LevelDebug)
	case "warn":
		SetLevel(LevelWarn)
	case "error":
		SetLevel(LevelError)
	default:
		SetLevel(LevelInfo)
	}
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("hassmcp"),
		kong.Description("Home Assistant MCP tool server (stdio)."),
		kong.UsageOnError(),
	)

	level := LevelInfo
	if c.Debug {
		level = LevelDebug
	}
	Init(level)

	if err := ctx.Run(&c); err != nil {
		L_fatal("hassmcp failed: %v", err)
	}
}
