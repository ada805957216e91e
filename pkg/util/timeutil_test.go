package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCeilToStep(t *testing.T) {
	base := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	step := 15 * time.Minute

	require.Equal(t, base, CeilToStep(base, step))
	require.Equal(t, base.Add(15*time.Minute), CeilToStep(base.Add(time.Minute), step))
	require.Equal(t, base.Add(30*time.Minute), CeilToStep(base.Add(16*time.Minute), step))
	require.Equal(t, base.Add(time.Second), CeilToStep(base.Add(time.Second), 0))
}

func TestMinuteOfDay(t *testing.T) {
	require.Equal(t, 14*60+45, MinuteOfDay(time.Date(2024, 1, 15, 14, 45, 0, 0, time.UTC)))
}
