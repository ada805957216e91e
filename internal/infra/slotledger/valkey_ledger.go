package slotledger

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/planeet/internal/domain/availability"
)

// ValkeyLedger shares the generated set across planner instances.
type ValkeyLedger struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyLedger constructs a ledger backed by Valkey.
func NewValkeyLedger(client valkey.Client, prefix string, ttl time.Duration) *ValkeyLedger {
	if prefix == "" {
		prefix = "slots:generated"
	}
	return &ValkeyLedger{client: client, prefix: prefix, ttl: ttl}
}

func (l *ValkeyLedger) Generated(ctx context.Context, venueID string) (bool, error) {
	n, err := l.client.Do(ctx, l.client.B().Exists().Key(l.key(venueID)).Build()).AsInt64()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}

func (l *ValkeyLedger) MarkGenerated(ctx context.Context, venueID string) error {
	builder := l.client.B().Set().Key(l.key(venueID)).Value("1")
	if ttl := expiry(l.ttl); ttl > 0 {
		return l.client.Do(ctx, builder.Ex(ttl).Build()).Error()
	}
	return l.client.Do(ctx, builder.Build()).Error()
}

// expiry is the EX value for a ledger TTL. EX counts whole seconds, so positive TTLs
// below a second round up to one.
func expiry(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

func (l *ValkeyLedger) key(venueID string) string {
	return l.prefix + ":" + venueID
}

var _ availability.SlotLedger = (*ValkeyLedger)(nil)
