package fixture

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/planeet/internal/domain/venue"
)

// File is the on-disk fixture layout.
type File struct {
	Venues []venue.Venue `yaml:"venues"`
}

// Provider answers searches from a fixed venue list. It backs local runs and the CLI.
type Provider struct {
	venues []venue.Venue
}

// NewProvider wraps an in-memory venue list.
func NewProvider(venues []venue.Venue) *Provider {
	normalized := make([]venue.Venue, len(venues))
	for i, v := range venues {
		v.Type = venue.NormalizeTag(string(v.Type))
		normalized[i] = v
	}
	return &Provider{venues: normalized}
}

// Load reads a YAML fixture file.
func Load(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read venue fixture: %w", err)
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse venue fixture: %w", err)
	}
	return NewProvider(file.Venues), nil
}

// Search returns venues of the requested type inside the radius, nearest first.
func (p *Provider) Search(ctx context.Context, q venue.Query) ([]venue.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type hit struct {
		v    venue.Venue
		dist float64
	}
	var hits []hit
	for _, v := range p.venues {
		if v.Type != q.Type {
			continue
		}
		d := venue.DistanceKm(q.Location, v.Location)
		if q.RadiusKm > 0 && d > q.RadiusKm {
			continue
		}
		hits = append(hits, hit{v: v, dist: d})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	out := make([]venue.Venue, len(hits))
	for i, h := range hits {
		out[i] = h.v
	}
	return out, nil
}

var _ venue.PlacesProvider = (*Provider)(nil)
