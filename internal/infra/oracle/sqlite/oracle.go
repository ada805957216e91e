package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/yanqian/planeet/internal/domain/availability"
)

const schema = `
CREATE TABLE IF NOT EXISTS time_slots (
	venue_id     TEXT    NOT NULL,
	start_minute INTEGER NOT NULL,
	end_minute   INTEGER NOT NULL,
	counter      INTEGER NOT NULL CHECK (counter >= 0),
	PRIMARY KEY (venue_id, start_minute)
)`

// Oracle stores time slots in a local SQLite file. It backs the CLI and single-node setups.
type Oracle struct {
	db     *sql.DB
	policy availability.SlotPolicy
}

// Open creates the database file and schema when missing.
func Open(path string, policy availability.SlotPolicy) (*Oracle, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Oracle{db: db, policy: policy}, nil
}

// Close releases the database handle.
func (o *Oracle) Close() error {
	return o.db.Close()
}

func (o *Oracle) Ping(ctx context.Context) error {
	if err := o.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", availability.ErrOracleUnreachable, err)
	}
	return nil
}

func (o *Oracle) GenerateTimeSlots(ctx context.Context, venueID string, defaultCounter int) error {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO time_slots (venue_id, start_minute, end_minute, counter)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (venue_id, start_minute) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range o.policy.Slots(venueID, defaultCounter) {
		if _, err := stmt.ExecContext(ctx, s.VenueID, s.StartMinute, s.EndMinute, s.Counter); err != nil {
			return fmt.Errorf("insert slot %s: %w", s.Hours(), err)
		}
	}
	return tx.Commit()
}

func (o *Oracle) CheckOverlapping(ctx context.Context, venueID string, w availability.Window) (availability.Result, error) {
	slots, err := o.slots(ctx, o.db, venueID)
	if err != nil {
		return availability.Result{}, err
	}
	return availability.Evaluate(slots, w)
}

func (o *Oracle) Slots(ctx context.Context, venueID string) ([]availability.TimeSlot, error) {
	slots, err := o.slots(ctx, o.db, venueID)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, availability.ErrVenueNotFound
	}
	return slots, nil
}

// Book takes seats from every slot overlapping w inside one transaction.
func (o *Oracle) Book(ctx context.Context, venueID string, w availability.Window, seats int) error {
	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	slots, err := o.slots(ctx, tx, venueID)
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
	for _, s := range hit {
		if s.Counter < seats {
			return availability.ErrInsufficientCapacity
		}
	}
	for _, s := range hit {
		if _, err := tx.ExecContext(ctx,
			`UPDATE time_slots SET counter = counter - ? WHERE venue_id = ? AND start_minute = ?`,
			seats, venueID, s.StartMinute); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (o *Oracle) slots(ctx context.Context, q querier, venueID string) ([]availability.TimeSlot, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT venue_id, start_minute, end_minute, counter
		FROM time_slots
		WHERE venue_id = ?
		ORDER BY start_minute`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.TimeSlot
	for rows.Next() {
		var s availability.TimeSlot
		if err := rows.Scan(&s.VenueID, &s.StartMinute, &s.EndMinute, &s.Counter); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ availability.SlotStore = (*Oracle)(nil)
