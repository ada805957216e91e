//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/yanqian/planeet/internal/bootstrap"
	"github.com/yanqian/planeet/internal/infra/config"
	httpiface "github.com/yanqian/planeet/internal/interface/http"
	"github.com/yanqian/planeet/pkg/logger"
)

func initializeApp(ctx context.Context) (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideOracle,
		provideSlotLedger,
		providePlacesProvider,
		providePreferenceSource,
		providePlanningService,
		httpiface.NewPlanHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
