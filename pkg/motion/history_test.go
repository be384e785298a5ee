package motion

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistoryEvictsOldestAtCapacity(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(image.Pt(i*10, 0))
	}

	require.Equal(t, 3, h.Len())
	// Window is now {20,30,40}: two deltas of 10.
	require.InDelta(t, 20.0, h.TotalMovement(), 1e-9)
}

func TestHistoryTotalMovement(t *testing.T) {
	h := NewHistory(10)
	h.Append(image.Pt(0, 0))
	h.Append(image.Pt(3, 4))

	require.InDelta(t, 5.0, h.TotalMovement(), 1e-9)
}

func TestHistoryDirectionChanges(t *testing.T) {
	h := NewHistory(10)
	for _, p := range []image.Point{{0, 0}, {10, 0}, {0, 0}, {10, 0}} {
		h.Append(p)
	}

	// Deltas +10, -10, +10: two reversals.
	require.Equal(t, 2, h.DirectionChanges())
}

func TestHistoryZeroDeltasDoNotBreakReversals(t *testing.T) {
	h := NewHistory(10)
	for _, p := range []image.Point{{0, 0}, {10, 0}, {10, 5}, {0, 5}} {
		h.Append(p)
	}

	// Deltas +10, 0, -10: the vertical-only move neither counts as a
	// reversal nor clears the previous direction.
	require.Equal(t, 1, h.DirectionChanges())
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory(10)
	h.Append(image.Pt(0, 0))
	h.Append(image.Pt(50, 0))
	h.Reset()

	require.Equal(t, 0, h.Len())
	require.Zero(t, h.TotalMovement())
	require.Zero(t, h.DirectionChanges())
}
