package availability

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/planeet/internal/domain/venue"
)

// FilterConfig holds the filter's limits.
type FilterConfig struct {
	CheckTimeout   time.Duration
	Concurrency    int
	DefaultCounter int
	// WindowFor picks the window to check; nil means a fixed two hour window.
	WindowFor WindowFunc
}

// Filter keeps the venues that can host a group at the requested time.
type Filter struct {
	cfg    FilterConfig
	oracle Oracle
	ledger SlotLedger
	logger *slog.Logger
}

// NewFilter builds a Filter. ledger may be nil, in which case slot generation is requested on every check.
func NewFilter(cfg FilterConfig, oracle Oracle, ledger SlotLedger, logger *slog.Logger) *Filter {
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 30 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.DefaultCounter <= 0 {
		cfg.DefaultCounter = 100
	}
	if cfg.WindowFor == nil {
		cfg.WindowFor = FixedWindow(2 * time.Hour)
	}
	return &Filter{
		cfg:    cfg,
		oracle: oracle,
		ledger: ledger,
		logger: logger.With("component", "availability.filter"),
	}
}

type checkResult struct {
	result Result
	err    error
}

// Filter checks every venue concurrently. When the oracle cannot be reached at all the
// venues are returned unchanged and the outcome is flagged degraded; a single failing
// check only drops that venue.
func (f *Filter) Filter(ctx context.Context, venues []venue.Venue, requested time.Time, groupSize int) (Outcome, error) {
	return f.FilterWindows(ctx, venues, requested, groupSize, f.cfg.WindowFor)
}

// FilterWindows is Filter with a caller supplied window per venue.
func (f *Filter) FilterWindows(ctx context.Context, venues []venue.Venue, requested time.Time, groupSize int, windowFor WindowFunc) (Outcome, error) {
	if windowFor == nil {
		windowFor = f.cfg.WindowFor
	}
	if len(venues) == 0 {
		return Outcome{}, nil
	}

	if err := f.ping(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
		f.logger.Warn("availability oracle unreachable, passing venues through", "venues", len(venues), "error", err)
		return passThrough(venues, "oracle health check failed: "+err.Error()), nil
	}

	results := make([]checkResult, len(venues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Concurrency)
	for i, v := range venues {
		g.Go(func() error {
			res, err := f.check(gctx, v, windowFor(v, requested))
			results[i] = checkResult{result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Checked: len(venues)}
	unreachable := 0
	for i, v := range venues {
		res := results[i]
		switch {
		case res.err != nil:
			if errors.Is(res.err, ErrOracleUnreachable) {
				unreachable++
			}
			f.logger.Warn("availability check failed", "venue_id", v.ID, "error", res.err)
			out.Rejected = append(out.Rejected, Rejection{VenueID: v.ID, Type: v.Type, Reason: ReasonCheckFailed, Err: res.err})
		case !res.result.Available:
			out.Rejected = append(out.Rejected, Rejection{VenueID: v.ID, Type: v.Type, Reason: ReasonUnavailable})
		case res.result.RemainingCapacity < groupSize:
			out.Rejected = append(out.Rejected, Rejection{VenueID: v.ID, Type: v.Type, Reason: ReasonInsufficientCapacity})
		default:
			out.Kept = append(out.Kept, Candidate{Venue: v, Availability: res.result})
		}
	}

	if unreachable == len(venues) {
		f.logger.Warn("every availability check hit an unreachable oracle, passing venues through", "venues", len(venues))
		return passThrough(venues, "availability oracle unreachable for every venue"), nil
	}

	f.logger.Info("availability filtered", "checked", len(venues), "kept", len(out.Kept), "rejected", len(out.Rejected))
	return out, nil
}

func (f *Filter) ping(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, f.cfg.CheckTimeout)
	defer cancel()
	return f.oracle.Ping(pctx)
}

func (f *Filter) check(ctx context.Context, v venue.Venue, w Window) (Result, error) {
	cctx, cancel := context.WithTimeout(ctx, f.cfg.CheckTimeout)
	defer cancel()

	skipped, err := f.ensureSlots(cctx, v.ID)
	if err != nil {
		return Result{}, err
	}
	res, err := f.oracle.CheckOverlapping(cctx, v.ID, w)
	if err != nil && skipped && errors.Is(err, ErrVenueNotFound) {
		// The ledger outlived the oracle's slots; generation is idempotent, so redo it.
		f.logger.Warn("slot ledger out of sync with oracle, regenerating", "venue_id", v.ID)
		if err := f.generate(cctx, v.ID); err != nil {
			return Result{}, err
		}
		res, err = f.oracle.CheckOverlapping(cctx, v.ID, w)
	}
	if err != nil {
		return Result{}, err
	}
	res.Checked = true
	return res, nil
}

// ensureSlots makes sure the venue has slots. skipped reports that generation was
// left out because the ledger already recorded it.
func (f *Filter) ensureSlots(ctx context.Context, venueID string) (skipped bool, err error) {
	if f.ledger != nil {
		done, err := f.ledger.Generated(ctx, venueID)
		if err != nil {
			f.logger.Warn("slot ledger lookup failed", "venue_id", venueID, "error", err)
		} else if done {
			return true, nil
		}
	}
	return false, f.generate(ctx, venueID)
}

func (f *Filter) generate(ctx context.Context, venueID string) error {
	if err := f.oracle.GenerateTimeSlots(ctx, venueID, f.cfg.DefaultCounter); err != nil {
		return err
	}
	if f.ledger != nil {
		if err := f.ledger.MarkGenerated(ctx, venueID); err != nil {
			f.logger.Warn("slot ledger write failed", "venue_id", venueID, "error", err)
		}
	}
	return nil
}

func passThrough(venues []venue.Venue, reason string) Outcome {
	kept := make([]Candidate, len(venues))
	for i, v := range venues {
		kept[i] = Candidate{Venue: v}
	}
	return Outcome{Kept: kept, Degraded: true, Reason: reason}
}
