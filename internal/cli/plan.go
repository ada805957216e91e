package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/yanqian/planeet/internal/bootstrap"
	"github.com/yanqian/planeet/internal/domain/planning"
	"github.com/yanqian/planeet/internal/infra/config"
)

type PlanCmd struct {
	Request string `short:"r" help:"Plan request JSON file, - for stdin." default:"-"`
	Seed    int64  `help:"Seed for plan selection; 0 keeps the configured seed."`
	Venues  string `help:"Venue fixture YAML; switches the places provider to the fixture." type:"path"`
}

func (c *PlanCmd) Run(ctx *Context) error {
	cfg := *ctx.Config
	if c.Venues != "" {
		cfg.Places.Provider = config.PlacesFixture
		cfg.Places.FixturePath = c.Venues
	}
	if c.Seed != 0 {
		cfg.Planning.Seed = c.Seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	req, err := c.readRequest(ctx.In)
	if err != nil {
		return err
	}

	oracle, cleanup, err := bootstrap.BuildOracle(ctx.Ctx, &cfg, ctx.Logger)
	if err != nil {
		return err
	}
	defer cleanup()
	provider, err := bootstrap.BuildPlacesProvider(&cfg, ctx.Logger)
	if err != nil {
		return err
	}
	ledger, closeLedger := bootstrap.BuildSlotLedger(ctx.Ctx, &cfg, ctx.Logger)
	defer closeLedger()
	svc := bootstrap.BuildPlanningService(&cfg, provider, oracle, ledger, bootstrap.BuildProfileClient(&cfg), ctx.Logger)

	resp, err := svc.CreatePlan(ctx.Ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func (c *PlanCmd) readRequest(stdin io.Reader) (planning.Request, error) {
	var (
		data []byte
		err  error
	)
	if c.Request == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(c.Request)
	}
	if err != nil {
		return planning.Request{}, fmt.Errorf("read request: %w", err)
	}
	var req planning.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return planning.Request{}, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}
