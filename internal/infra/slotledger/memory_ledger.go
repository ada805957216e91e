package slotledger

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/planeet/internal/domain/availability"
)

// MemoryLedger remembers generated venues in process memory.
type MemoryLedger struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryLedger constructs a ledger whose entries expire after ttl. Zero ttl keeps them forever.
func NewMemoryLedger(ttl time.Duration) *MemoryLedger {
	return &MemoryLedger{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Generated implements availability.SlotLedger.
func (l *MemoryLedger) Generated(_ context.Context, venueID string) (bool, error) {
	l.mu.RLock()
	expiresAt, ok := l.entries[venueID]
	l.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !expiresAt.IsZero() && l.now().After(expiresAt) {
		l.mu.Lock()
		delete(l.entries, venueID)
		l.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// MarkGenerated implements availability.SlotLedger.
func (l *MemoryLedger) MarkGenerated(_ context.Context, venueID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var exp time.Time
	if l.ttl > 0 {
		exp = l.now().Add(l.ttl)
	}
	l.entries[venueID] = exp
	return nil
}

var _ availability.SlotLedger = (*MemoryLedger)(nil)
