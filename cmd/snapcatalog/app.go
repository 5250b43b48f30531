package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	snapcatalog "github.com/shibukawa/snapcatalog"
	"github.com/shibukawa/snapcatalog/audit"
	"github.com/shibukawa/snapcatalog/catalog"
	"github.com/shibukawa/snapcatalog/rel"
)

// app bundles what every catalog command needs.
type app struct {
	Config   *snapcatalog.Config
	Service  *catalog.Service
	Location *time.Location
}

func (a *app) Close() error {
	return a.Service.Backend.Close()
}

// openApp loads the configuration, opens the configured backend and builds
// the catalog service around it.
func openApp(ctx context.Context, c *Context) (*app, error) {
	config, err := snapcatalog.LoadConfig(c.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !config.Output.ColorEnabled() {
		color.NoColor = true
	}

	logger := c.logger()
	logger.Debug("configuration loaded", "path", c.Config, "backend", config.Backend)

	rules, err := rel.NewIdentifierRules(config.Identifiers.MaxLength, config.Identifiers.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", snapcatalog.ErrConfigValidation, err)
	}

	loc, err := config.Audit.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: audit.timezone: %w", snapcatalog.ErrConfigValidation, err)
	}

	backend, err := catalog.OpenBackend(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog backend: %w", err)
	}

	stamper := &audit.Stamper{
		Clock:     audit.SystemClock{Location: loc},
		Principal: audit.ContextPrincipal{Fallback: audit.StaticPrincipal(config.Audit.User)},
	}

	svc := catalog.NewService(backend, stamper, logger, rel.WithNameValidator(rules))

	return &app{Config: config, Service: svc, Location: loc}, nil
}

func withUser(ctx context.Context, user string) context.Context {
	if user == "" {
		return ctx
	}

	return audit.WithUser(ctx, user)
}
