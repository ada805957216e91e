package slotledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(time.Hour)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return now }

	done, err := ledger.Generated(ctx, "v1")
	require.NoError(t, err)
	require.False(t, done)

	require.NoError(t, ledger.MarkGenerated(ctx, "v1"))
	done, err = ledger.Generated(ctx, "v1")
	require.NoError(t, err)
	require.True(t, done)

	now = now.Add(2 * time.Hour)
	done, err = ledger.Generated(ctx, "v1")
	require.NoError(t, err)
	require.False(t, done)
}

func TestMemoryLedgerWithoutTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(0)
	require.NoError(t, ledger.MarkGenerated(ctx, "v1"))
	ledger.now = func() time.Time { return time.Now().Add(1000 * time.Hour) }

	done, err := ledger.Generated(ctx, "v1")
	require.NoError(t, err)
	require.True(t, done)
}
