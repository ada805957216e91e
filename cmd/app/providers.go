package main

import (
	"context"
	"log/slog"

	"github.com/yanqian/planeet/internal/bootstrap"
	"github.com/yanqian/planeet/internal/domain/availability"
	"github.com/yanqian/planeet/internal/domain/planning"
	"github.com/yanqian/planeet/internal/domain/venue"
	"github.com/yanqian/planeet/internal/infra/config"
)

func provideOracle(ctx context.Context, cfg *config.Config, logger *slog.Logger) (availability.Oracle, func(), error) {
	return bootstrap.BuildOracle(ctx, cfg, logger)
}

func provideSlotLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (availability.SlotLedger, func()) {
	return bootstrap.BuildSlotLedger(ctx, cfg, logger)
}

func providePlacesProvider(cfg *config.Config, logger *slog.Logger) (venue.PlacesProvider, error) {
	return bootstrap.BuildPlacesProvider(cfg, logger)
}

func providePreferenceSource(cfg *config.Config) planning.PreferenceSource {
	return bootstrap.BuildProfileClient(cfg)
}

func providePlanningService(cfg *config.Config, provider venue.PlacesProvider, oracle availability.Oracle, ledger availability.SlotLedger, profiles planning.PreferenceSource, logger *slog.Logger) planning.Service {
	return bootstrap.BuildPlanningService(cfg, provider, oracle, ledger, profiles, logger)
}
