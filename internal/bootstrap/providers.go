package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/planeet/internal/domain/availability"
	"github.com/yanqian/planeet/internal/domain/planning"
	"github.com/yanqian/planeet/internal/domain/venue"
	"github.com/yanqian/planeet/internal/infra/config"
	"github.com/yanqian/planeet/internal/infra/oracle/booking"
	memoryoracle "github.com/yanqian/planeet/internal/infra/oracle/memory"
	pgoracle "github.com/yanqian/planeet/internal/infra/oracle/postgres"
	sqliteoracle "github.com/yanqian/planeet/internal/infra/oracle/sqlite"
	"github.com/yanqian/planeet/internal/infra/places/fixture"
	"github.com/yanqian/planeet/internal/infra/places/google"
	"github.com/yanqian/planeet/internal/infra/profile"
	"github.com/yanqian/planeet/internal/infra/slotledger"
)

// SlotPolicy builds the slot layout used by the in-process oracles.
func SlotPolicy(cfg *config.Config) (availability.SlotPolicy, error) {
	policy := availability.DefaultSlotPolicy()
	if cfg.Oracle.OpenHours.Start != "" || cfg.Oracle.OpenHours.End != "" {
		hours, err := availability.ParseOpenHours(cfg.Oracle.OpenHours.Start, cfg.Oracle.OpenHours.End)
		if err != nil {
			return availability.SlotPolicy{}, fmt.Errorf("oracle.openHours: %w", err)
		}
		policy.Hours = hours
	}
	if cfg.Oracle.SlotLength > 0 {
		policy.Length = cfg.Oracle.SlotLength
	}
	return policy, nil
}

// BuildOracle selects the availability oracle. Local backends that fail to open fall back to
// the in-memory oracle. The returned cleanup releases the backend's resources.
func BuildOracle(ctx context.Context, cfg *config.Config, logger *slog.Logger) (availability.Oracle, func(), error) {
	logger = logger.With("component", "bootstrap.oracle")
	noop := func() {}

	if cfg.Oracle.Backend == config.OracleBooking {
		logger.Info("booking service oracle enabled", "base_url", cfg.Booking.BaseURL)
		return booking.NewClient(cfg.Booking.BaseURL, cfg.Booking.Timeout), noop, nil
	}

	policy, err := SlotPolicy(cfg)
	if err != nil {
		return nil, noop, err
	}
	fallback := memoryoracle.NewOracle(policy)

	switch cfg.Oracle.Backend {
	case config.OraclePostgres:
		pool, err := openPostgres(ctx, cfg.Oracle.Postgres)
		if err != nil {
			logger.Error("postgres oracle unavailable, using memory oracle", "error", err)
			return fallback, noop, nil
		}
		oracle := pgoracle.NewOracle(pool, policy)
		if err := oracle.EnsureSchema(ctx); err != nil {
			logger.Error("postgres schema setup failed, using memory oracle", "error", err)
			pool.Close()
			return fallback, noop, nil
		}
		logger.Info("postgres oracle enabled")
		return oracle, pool.Close, nil
	case config.OracleSQLite:
		oracle, err := sqliteoracle.Open(cfg.Oracle.SQLitePath, policy)
		if err != nil {
			logger.Error("sqlite oracle unavailable, using memory oracle", "path", cfg.Oracle.SQLitePath, "error", err)
			return fallback, noop, nil
		}
		logger.Info("sqlite oracle enabled", "path", cfg.Oracle.SQLitePath)
		return oracle, func() {
			if err := oracle.Close(); err != nil {
				logger.Warn("close sqlite oracle", "error", err)
			}
		}, nil
	default:
		logger.Info("memory oracle enabled")
		return fallback, noop, nil
	}
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// BuildSlotLedger returns a Valkey ledger when configured and reachable, otherwise an in-memory one.
// The returned cleanup closes the Valkey client.
func BuildSlotLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (availability.SlotLedger, func()) {
	logger = logger.With("component", "bootstrap.ledger")
	noop := func() {}
	fallback := slotledger.NewMemoryLedger(cfg.SlotLedger.TTL)
	if !cfg.SlotLedger.Redis.Enabled {
		return fallback, noop
	}
	opt, err := valkeyOptions(cfg.SlotLedger.Redis.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory ledger", "error", err)
		return fallback, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory ledger", "error", err)
		return fallback, noop
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory ledger", "error", err)
		client.Close()
		return fallback, noop
	}
	logger.Info("valkey slot ledger enabled", "addr", cfg.SlotLedger.Redis.Addr)
	return slotledger.NewValkeyLedger(client, "slots:generated", cfg.SlotLedger.TTL), client.Close
}

func valkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// BuildPlacesProvider selects the venue source.
func BuildPlacesProvider(cfg *config.Config, logger *slog.Logger) (venue.PlacesProvider, error) {
	logger = logger.With("component", "bootstrap.places")
	switch cfg.Places.Provider {
	case config.PlacesFixture:
		provider, err := fixture.Load(cfg.Places.FixturePath)
		if err != nil {
			return nil, err
		}
		logger.Info("fixture places provider enabled", "path", cfg.Places.FixturePath)
		return provider, nil
	default:
		logger.Info("google places provider enabled", "base_url", cfg.Places.BaseURL)
		return google.NewClient(google.Config{
			APIKey:            cfg.Places.APIKey,
			BaseURL:           cfg.Places.BaseURL,
			Timeout:           cfg.Places.Timeout,
			RequestsPerSecond: cfg.Places.RequestsPerSecond,
			Burst:             cfg.Places.Burst,
			PageDelay:         cfg.Places.PageDelay,
		}), nil
	}
}

// BuildProfileClient returns the preference source. An empty base URL disables lookups.
func BuildProfileClient(cfg *config.Config) *profile.Client {
	return profile.NewClient(cfg.Profile.BaseURL, cfg.Profile.Timeout)
}

// BuildPlanningService assembles discovery, availability filtering and plan assembly.
func BuildPlanningService(cfg *config.Config, provider venue.PlacesProvider, oracle availability.Oracle, ledger availability.SlotLedger, profiles planning.PreferenceSource, logger *slog.Logger) planning.Service {
	discoverer := venue.NewDiscoverer(venue.Config{
		MaxVenuesPerType: cfg.Discovery.MaxVenuesPerType,
		Concurrency:      cfg.Discovery.Concurrency,
	}, provider, logger)
	filter := availability.NewFilter(availability.FilterConfig{
		CheckTimeout:   cfg.Availability.CheckTimeout,
		Concurrency:    cfg.Availability.Concurrency,
		DefaultCounter: cfg.Availability.DefaultCounter,
	}, oracle, ledger, logger)
	return planning.NewService(planning.Config{
		PlansPerRequest: cfg.Planning.PlansPerRequest,
		PlanTimeout:     cfg.Planning.PlanTimeout,
		Seed:            cfg.Planning.Seed,
	}, discoverer, filter, profiles, logger)
}
