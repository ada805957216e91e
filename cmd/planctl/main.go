package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/yanqian/planeet/internal/cli"
	"github.com/yanqian/planeet/internal/infra/config"
	"github.com/yanqian/planeet/pkg/logger"
)

var CLI struct {
	Config  string `help:"Config file path." type:"path" env:"CONFIG_PATH"`
	Oracle  string `help:"Availability backend (booking|postgres|sqlite|memory)." enum:"booking,postgres,sqlite,memory" default:"sqlite" env:"ORACLE_BACKEND"`
	DB      string `help:"SQLite database for the local oracle." type:"path" env:"ORACLE_SQLITE_PATH"`
	Verbose bool   `short:"v" help:"Log pipeline progress to stderr."`

	Plan  cli.PlanCmd `cmd:"" help:"Generate sibling plans for a request."`
	Slots struct {
		Generate cli.SlotsGenerateCmd `cmd:"" help:"Create a venue's daily slots."`
		List     cli.SlotsListCmd     `cmd:"" help:"List a venue's slots."`
		Check    cli.SlotsCheckCmd    `cmd:"" help:"Check a venue for a window."`
		Book     cli.SlotsBookCmd     `cmd:"" help:"Take seats in a window."`
	} `cmd:"" help:"Inspect and manage time slots."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("planctl"),
		kong.Description("Venue plan generation and slot management"),
		kong.UsageOnError(),
	)

	if CLI.Config != "" {
		os.Setenv("CONFIG_PATH", CLI.Config)
	}
	cfg, err := config.LoadRaw()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Oracle.Backend = CLI.Oracle
	if CLI.DB != "" {
		cfg.Oracle.SQLitePath = CLI.DB
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&cli.Context{
		Ctx:    ctx,
		Config: cfg,
		Logger: logger.NewCLI(CLI.Verbose),
		In:     os.Stdin,
		Out:    os.Stdout,
	})
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
