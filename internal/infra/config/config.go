package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Planning     PlanningConfig     `yaml:"planning"`
	Discovery    DiscoveryConfig    `yaml:"discovery"`
	Availability AvailabilityConfig `yaml:"availability"`
	Places       PlacesConfig       `yaml:"places"`
	Booking      BookingConfig      `yaml:"booking"`
	Oracle       OracleConfig       `yaml:"oracle"`
	SlotLedger   SlotLedgerConfig   `yaml:"slotLedger"`
	Profile      ProfileConfig      `yaml:"profile"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for plan requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// PlanningConfig shapes plan assembly.
type PlanningConfig struct {
	PlansPerRequest int           `yaml:"plansPerRequest"`
	PlanTimeout     time.Duration `yaml:"planTimeout"`
	Seed            int64         `yaml:"seed"`
}

// DiscoveryConfig bounds venue discovery.
type DiscoveryConfig struct {
	MaxVenuesPerType int `yaml:"maxVenuesPerType"`
	Concurrency      int `yaml:"concurrency"`
}

// AvailabilityConfig bounds the availability filter.
type AvailabilityConfig struct {
	CheckTimeout   time.Duration `yaml:"checkTimeout"`
	Concurrency    int           `yaml:"concurrency"`
	DefaultCounter int           `yaml:"defaultCounter"`
}

// PlacesConfig selects and tunes the places provider.
type PlacesConfig struct {
	Provider          string        `yaml:"provider"`
	APIKey            string        `yaml:"apiKey"`
	BaseURL           string        `yaml:"baseUrl"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
	PageDelay         time.Duration `yaml:"pageDelay"`
	FixturePath       string        `yaml:"fixturePath"`
}

// BookingConfig points at the booking service availability API.
type BookingConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// OracleConfig selects the availability oracle backend.
type OracleConfig struct {
	Backend    string         `yaml:"backend"`
	Postgres   PostgresConfig `yaml:"postgres"`
	SQLitePath string         `yaml:"sqlitePath"`
	OpenHours  OpenHours      `yaml:"openHours"`
	SlotLength time.Duration  `yaml:"slotLength"`
}

// OpenHours bounds generated slots, "HH:MM" each.
type OpenHours struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SlotLedgerConfig controls where slot generation is remembered.
type SlotLedgerConfig struct {
	Redis RedisConfig   `yaml:"redis"`
	TTL   time.Duration `yaml:"ttl"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ProfileConfig points at the outing profile service.
type ProfileConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// Oracle backends.
const (
	OracleBooking  = "booking"
	OraclePostgres = "postgres"
	OracleSQLite   = "sqlite"
	OracleMemory   = "memory"
)

// Places providers.
const (
	PlacesGoogle  = "google"
	PlacesFixture = "fixture"
)

// Load reads configuration from an optional .env file, a YAML file and environment variables.
func Load() (*Config, error) {
	cfg, err := LoadRaw()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadRaw resolves configuration like Load but leaves validation to the caller.
func LoadRaw() (*Config, error) {
	cfg := defaultConfig()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// loadDotEnv reads DOTENV_PATH or ./.env when present. Variables already set win.
func loadDotEnv() error {
	path := os.Getenv("DOTENV_PATH")
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("PLANS_PER_REQUEST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Planning.PlansPerRequest = parsed
		}
	}
	if v := os.Getenv("PLAN_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Planning.PlanTimeout = parsed
		}
	}
	if v := os.Getenv("PLANNING_SEED"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Planning.Seed = parsed
		}
	}
	if v := os.Getenv("MAX_VENUES_PER_TYPE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Discovery.MaxVenuesPerType = parsed
		}
	}
	if v := os.Getenv("AVAILABILITY_CHECK_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Availability.CheckTimeout = parsed
		}
	}
	if v := os.Getenv("PLACES_PROVIDER"); v != "" {
		cfg.Places.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Places.APIKey = v
	}
	if v := os.Getenv("PLACES_FIXTURE_PATH"); v != "" {
		cfg.Places.FixturePath = v
	}
	if v := os.Getenv("BOOKING_SERVICE_URL"); v != "" {
		cfg.Booking.BaseURL = v
	}
	if v := os.Getenv("ORACLE_BACKEND"); v != "" {
		cfg.Oracle.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("ORACLE_POSTGRES_DSN"); v != "" {
		cfg.Oracle.Postgres.DSN = v
	}
	if v := os.Getenv("ORACLE_SQLITE_PATH"); v != "" {
		cfg.Oracle.SQLitePath = v
	}
	if v := os.Getenv("OUTING_PROFILE_SERVICE_URL"); v != "" {
		cfg.Profile.BaseURL = v
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.SlotLedger.Redis.Addr = v
		cfg.SlotLedger.Redis.Enabled = true
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 2,
				BaseBackoff: 200 * time.Millisecond,
			},
		},
		Planning: PlanningConfig{
			PlansPerRequest: 3,
			PlanTimeout:     60 * time.Second,
		},
		Discovery: DiscoveryConfig{
			MaxVenuesPerType: 10,
			Concurrency:      4,
		},
		Availability: AvailabilityConfig{
			CheckTimeout:   30 * time.Second,
			Concurrency:    8,
			DefaultCounter: 100,
		},
		Places: PlacesConfig{
			Provider:          PlacesGoogle,
			BaseURL:           "https://maps.googleapis.com/maps/api/place",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 10,
			Burst:             5,
			PageDelay:         2 * time.Second,
		},
		Booking: BookingConfig{
			BaseURL: "http://localhost:8003",
			Timeout: 10 * time.Second,
		},
		Oracle: OracleConfig{
			Backend:    OracleBooking,
			Postgres:   PostgresConfig{MaxConns: 4},
			SQLitePath: "planeet.db",
			OpenHours:  OpenHours{Start: "08:00", End: "24:00"},
			SlotLength: 2 * time.Hour,
		},
		SlotLedger: SlotLedgerConfig{
			TTL: 24 * time.Hour,
		},
		Profile: ProfileConfig{
			Timeout: 5 * time.Second,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Planning.PlansPerRequest <= 0 {
		return errors.New("planning.plansPerRequest must be positive")
	}
	if c.Planning.PlanTimeout <= 0 {
		return errors.New("planning.planTimeout must be positive")
	}
	if c.Discovery.MaxVenuesPerType <= 0 {
		return errors.New("discovery.maxVenuesPerType must be positive")
	}
	if c.Discovery.Concurrency <= 0 {
		return errors.New("discovery.concurrency must be positive")
	}
	if c.Availability.CheckTimeout <= 0 {
		return errors.New("availability.checkTimeout must be positive")
	}
	if c.Availability.Concurrency <= 0 {
		return errors.New("availability.concurrency must be positive")
	}
	if c.Availability.DefaultCounter <= 0 {
		return errors.New("availability.defaultCounter must be positive")
	}
	switch c.Places.Provider {
	case PlacesGoogle:
		if strings.TrimSpace(c.Places.APIKey) == "" {
			return errors.New("places.apiKey cannot be empty for the google provider")
		}
		if c.Places.RequestsPerSecond <= 0 || c.Places.Burst <= 0 {
			return errors.New("places.requestsPerSecond and places.burst must be positive")
		}
	case PlacesFixture:
		if strings.TrimSpace(c.Places.FixturePath) == "" {
			return errors.New("places.fixturePath cannot be empty for the fixture provider")
		}
	default:
		return fmt.Errorf("places.provider %q is not supported", c.Places.Provider)
	}
	return c.ValidateOracle()
}

// ValidateOracle checks only the availability oracle and slot ledger sections.
func (c *Config) ValidateOracle() error {
	switch c.Oracle.Backend {
	case OracleBooking:
		if strings.TrimSpace(c.Booking.BaseURL) == "" {
			return errors.New("booking.baseUrl cannot be empty for the booking oracle")
		}
	case OraclePostgres:
		if strings.TrimSpace(c.Oracle.Postgres.DSN) == "" {
			return errors.New("oracle.postgres.dsn cannot be empty for the postgres oracle")
		}
	case OracleSQLite:
		if strings.TrimSpace(c.Oracle.SQLitePath) == "" {
			return errors.New("oracle.sqlitePath cannot be empty for the sqlite oracle")
		}
	case OracleMemory:
	default:
		return fmt.Errorf("oracle.backend %q is not supported", c.Oracle.Backend)
	}
	if c.Oracle.Backend != OracleBooking && c.Oracle.SlotLength <= 0 {
		return errors.New("oracle.slotLength must be positive")
	}
	if c.SlotLedger.Redis.Enabled && strings.TrimSpace(c.SlotLedger.Redis.Addr) == "" {
		return errors.New("slotLedger.redis.addr cannot be empty when redis is enabled")
	}
	if c.SlotLedger.TTL < 0 {
		return errors.New("slotLedger.ttl cannot be negative")
	}
	return nil
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
