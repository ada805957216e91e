package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/yanqian/planeet/internal/bootstrap"
	"github.com/yanqian/planeet/internal/domain/availability"
	"github.com/yanqian/planeet/internal/infra/config"
)

// Context carries what every planctl command needs.
type Context struct {
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
	In     io.Reader
	Out    io.Writer
}

func (c *Context) openOracle() (availability.Oracle, func(), error) {
	if err := c.Config.ValidateOracle(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return bootstrap.BuildOracle(c.Ctx, c.Config, c.Logger)
}
