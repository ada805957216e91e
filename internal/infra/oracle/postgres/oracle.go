package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/planeet/internal/domain/availability"
)

// Schema creates the time_slots table.
const Schema = `
CREATE TABLE IF NOT EXISTS time_slots (
	venue_id     TEXT    NOT NULL,
	start_minute INTEGER NOT NULL,
	end_minute   INTEGER NOT NULL,
	counter      INTEGER NOT NULL CHECK (counter >= 0),
	PRIMARY KEY (venue_id, start_minute)
)`

// Oracle implements availability.SlotStore on a shared Postgres database.
type Oracle struct {
	pool   *pgxpool.Pool
	policy availability.SlotPolicy
}

// NewOracle constructs the oracle. Call EnsureSchema once before use.
func NewOracle(pool *pgxpool.Pool, policy availability.SlotPolicy) *Oracle {
	return &Oracle{pool: pool, policy: policy}
}

// EnsureSchema creates the table when missing.
func (o *Oracle) EnsureSchema(ctx context.Context) error {
	_, err := o.pool.Exec(ctx, Schema)
	return err
}

func (o *Oracle) Ping(ctx context.Context) error {
	if err := o.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", availability.ErrOracleUnreachable, err)
	}
	return nil
}

func (o *Oracle) GenerateTimeSlots(ctx context.Context, venueID string, defaultCounter int) error {
	slots := o.policy.Slots(venueID, defaultCounter)
	starts := make([]int32, len(slots))
	ends := make([]int32, len(slots))
	for i, s := range slots {
		starts[i] = int32(s.StartMinute)
		ends[i] = int32(s.EndMinute)
	}
	_, err := o.pool.Exec(ctx, `
		INSERT INTO time_slots (venue_id, start_minute, end_minute, counter)
		SELECT $1::text, s.start_minute, s.end_minute, $4::int
		FROM unnest($2::int[], $3::int[]) AS s(start_minute, end_minute)
		ON CONFLICT (venue_id, start_minute) DO NOTHING
	`, venueID, starts, ends, defaultCounter)
	return err
}

func (o *Oracle) CheckOverlapping(ctx context.Context, venueID string, w availability.Window) (availability.Result, error) {
	slots, err := querySlots(ctx, o.pool, venueID, false)
	if err != nil {
		return availability.Result{}, err
	}
	return availability.Evaluate(slots, w)
}

func (o *Oracle) Slots(ctx context.Context, venueID string) ([]availability.TimeSlot, error) {
	slots, err := querySlots(ctx, o.pool, venueID, false)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, availability.ErrVenueNotFound
	}
	return slots, nil
}

// Book locks the venue's slots and takes seats from every one overlapping w.
func (o *Oracle) Book(ctx context.Context, venueID string, w availability.Window, seats int) error {
	return pgx.BeginFunc(ctx, o.pool, func(tx pgx.Tx) error {
		slots, err := querySlots(ctx, tx, venueID, true)
		if err != nil {
			return err
		}
		if len(slots) == 0 {
			return availability.ErrVenueNotFound
		}
		hit := availability.Overlapping(slots, w)
		if len(hit) == 0 {
			return availability.ErrSlotNotFound
		}
		starts := make([]int32, 0, len(hit))
		for _, s := range hit {
			if s.Counter < seats {
				return availability.ErrInsufficientCapacity
			}
			starts = append(starts, int32(s.StartMinute))
		}
		_, err = tx.Exec(ctx, `
			UPDATE time_slots SET counter = counter - $3
			WHERE venue_id = $1 AND start_minute = ANY($2::int[])
		`, venueID, starts, seats)
		return err
	})
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func querySlots(ctx context.Context, q querier, venueID string, lock bool) ([]availability.TimeSlot, error) {
	query := `
		SELECT venue_id, start_minute, end_minute, counter
		FROM time_slots
		WHERE venue_id = $1
		ORDER BY start_minute`
	if lock {
		query += " FOR UPDATE"
	}
	rows, err := q.Query(ctx, query, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.TimeSlot
	for rows.Next() {
		var (
			s                 availability.TimeSlot
			start, end, count int32
		)
		if err := rows.Scan(&s.VenueID, &start, &end, &count); err != nil {
			return nil, err
		}
		s.StartMinute, s.EndMinute, s.Counter = int(start), int(end), int(count)
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ availability.SlotStore = (*Oracle)(nil)
