package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/planeet/internal/domain/planning"
	"github.com/yanqian/planeet/internal/infra/config"
	apperrors "github.com/yanqian/planeet/pkg/errors"
)

func newTestContext(t *testing.T, backend string) (*Context, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		HTTP:         config.HTTPConfig{Address: ":0"},
		Planning:     config.PlanningConfig{PlansPerRequest: 2, PlanTimeout: 10 * time.Second, Seed: 9},
		Discovery:    config.DiscoveryConfig{MaxVenuesPerType: 5, Concurrency: 2},
		Availability: config.AvailabilityConfig{CheckTimeout: time.Second, Concurrency: 2, DefaultCounter: 100},
		Places:       config.PlacesConfig{Provider: config.PlacesGoogle},
		Oracle: config.OracleConfig{
			Backend:    backend,
			SQLitePath: filepath.Join(t.TempDir(), "planeet.db"),
			OpenHours:  config.OpenHours{Start: "08:00", End: "24:00"},
			SlotLength: 2 * time.Hour,
		},
		SlotLedger: config.SlotLedgerConfig{TTL: time.Hour},
	}
	out := &bytes.Buffer{}
	return &Context{
		Ctx:    context.Background(),
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		In:     strings.NewReader(""),
		Out:    out,
	}, out
}

func TestSlotsCommandsShareSQLiteState(t *testing.T) {
	ctx, out := newTestContext(t, config.OracleSQLite)

	require.NoError(t, (&SlotsGenerateCmd{VenueID: "venue-1", Counter: 4}).Run(ctx))
	require.Contains(t, out.String(), "slots ready for venue-1")

	out.Reset()
	require.NoError(t, (&SlotsListCmd{VenueID: "venue-1"}).Run(ctx))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 8)
	require.Equal(t, "08:00-10:00\t4", lines[0])

	out.Reset()
	require.NoError(t, (&SlotsBookCmd{VenueID: "venue-1", Window: "18:00-19:00", Seats: 3}).Run(ctx))
	require.Contains(t, out.String(), "booked 3 seats")

	out.Reset()
	require.NoError(t, (&SlotsCheckCmd{VenueID: "venue-1", Window: "18:00-19:00", GroupSize: 2}).Run(ctx))
	require.Contains(t, out.String(), "available=true remaining=1 fits=false")
}

func TestSlotsCommandValidation(t *testing.T) {
	require.Error(t, (&SlotsGenerateCmd{VenueID: "v", Counter: 0}).Validate())
	require.Error(t, (&SlotsBookCmd{VenueID: "v", Seats: 0}).Validate())

	ctx, _ := newTestContext(t, config.OracleSQLite)
	require.Error(t, (&SlotsCheckCmd{VenueID: "v", Window: "nine-ten"}).Run(ctx))

	ctx.Config.Oracle.SQLitePath = ""
	require.Error(t, (&SlotsGenerateCmd{VenueID: "v", Counter: 1}).Run(ctx))
}

func TestSlotsListNeedsSlotStore(t *testing.T) {
	ctx, _ := newTestContext(t, config.OracleBooking)
	ctx.Config.Booking = config.BookingConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}

	err := (&SlotsListCmd{VenueID: "v"}).Run(ctx)
	require.ErrorContains(t, err, "does not expose its slots")
}

func TestPlanCmdWithFixtureVenues(t *testing.T) {
	ctx, out := newTestContext(t, config.OracleMemory)
	ctx.In = strings.NewReader(`{
		"venue_types": ["cafe", "museum"],
		"location": {"latitude": 40.7048, "longitude": -74.0115},
		"radius_km": 3,
		"requested_time": "2026-03-01T14:00:00Z",
		"group_size": 2
	}`)

	cmd := &PlanCmd{Request: "-", Venues: filepath.Join("..", "..", "configs", "venues.yaml")}
	require.NoError(t, cmd.Run(ctx))

	var resp planning.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.NotEmpty(t, resp.Plans)
	require.Equal(t, config.PlacesGoogle, ctx.Config.Places.Provider)
}

func TestPlanCmdReadsRequestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"group_size":0}`), 0o600))

	ctx, _ := newTestContext(t, config.OracleMemory)
	cmd := &PlanCmd{Request: path, Venues: filepath.Join("..", "..", "configs", "venues.yaml")}
	err := cmd.Run(ctx)
	require.Error(t, err)
	require.Equal(t, planning.CodeInvalidInput, apperrors.CodeOf(err))

	cmd.Request = filepath.Join(t.TempDir(), "missing.json")
	require.ErrorContains(t, cmd.Run(ctx), "read request")
}
