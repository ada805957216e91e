package venue

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Config bounds a discovery round.
type Config struct {
	MaxVenuesPerType int
	Concurrency      int
}

// Discoverer fans out one provider search per requested type.
type Discoverer struct {
	cfg      Config
	provider PlacesProvider
	logger   *slog.Logger
}

// NewDiscoverer builds a Discoverer. Non-positive limits fall back to 10 venues per type and 4 concurrent searches.
func NewDiscoverer(cfg Config, provider PlacesProvider, logger *slog.Logger) *Discoverer {
	if cfg.MaxVenuesPerType <= 0 {
		cfg.MaxVenuesPerType = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Discoverer{
		cfg:      cfg,
		provider: provider,
		logger:   logger.With("component", "venue.discoverer"),
	}
}

// searchLimit over-fetches for every type after the first, since those can lose venues to
// earlier types during dedupe and would otherwise end up under the cap.
func (d *Discoverer) searchLimit(position int) int {
	if position == 0 {
		return d.cfg.MaxVenuesPerType
	}
	return 2 * d.cfg.MaxVenuesPerType
}

type searchResult struct {
	venues []Venue
	err    error
}

// Discover queries the provider once per type. A failing type yields no venues and is reported in
// Discovery.Failed; only a canceled context fails the whole round.
func (d *Discoverer) Discover(ctx context.Context, types []Tag, loc Location, radiusKm float64) (Discovery, error) {
	results := make([]searchResult, len(types))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)
	for i, tag := range types {
		g.Go(func() error {
			venues, err := d.provider.Search(gctx, Query{
				Type:     tag,
				Location: loc,
				RadiusKm: radiusKm,
				Limit:    d.searchLimit(i),
			})
			results[i] = searchResult{venues: venues, err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Discovery{}, err
	}

	out := Discovery{ByType: make(map[Tag][]Venue, len(types))}
	seen := make(map[string]struct{})
	for i, tag := range types {
		res := results[i]
		if res.err != nil {
			d.logger.Warn("places search failed", "venue_type", tag, "error", res.err)
			out.ByType[tag] = nil
			out.Failed = append(out.Failed, tag)
			continue
		}

		kept := make([]Venue, 0, len(res.venues))
		for _, v := range res.venues {
			if len(kept) == d.cfg.MaxVenuesPerType {
				break
			}
			if v.ID == "" {
				continue
			}
			if _, dup := seen[v.ID]; dup {
				out.Duplicates++
				continue
			}
			seen[v.ID] = struct{}{}
			v.Type = tag
			kept = append(kept, v)
		}
		out.ByType[tag] = kept
		if len(kept) == 0 {
			out.Empty = append(out.Empty, tag)
		}
		d.logger.Info("venues discovered", "venue_type", tag, "count", len(kept))
	}
	return out, nil
}
