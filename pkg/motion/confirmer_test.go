package motion

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

var ref = image.Pt(0, 0)

// alternate returns the i-th point of a left-right oscillation wide enough
// to satisfy the movement threshold.
func alternate(i int) image.Point {
	if i%2 == 0 {
		return image.Pt(20, 0)
	}
	return image.Pt(0, 0)
}

func TestCentroidConfirmerConfirmsSustainedOscillation(t *testing.T) {
	c := NewCentroidConfirmer(30, 15, 10)

	// The oscillation predicate first holds on the 4th observation (two
	// reversals need four points), so the counter reaches 10 on the 13th.
	for i := 1; i <= 12; i++ {
		require.False(t, c.Observe(alternate(i), ref), "observation %d", i)
	}
	require.True(t, c.Observe(alternate(13), ref))

	// Confirmation is sustained while the oscillation continues.
	require.True(t, c.Observe(alternate(14), ref))
}

func TestCentroidConfirmerIgnoresStationaryObject(t *testing.T) {
	c := NewCentroidConfirmer(30, 15, 10)
	for i := 0; i < 100; i++ {
		require.False(t, c.Observe(image.Pt(5, 5), ref))
	}
	require.Zero(t, c.Counter())
}

func TestCentroidConfirmerCounterDecaysAndFloorsAtZero(t *testing.T) {
	// Small window so stopped motion ages out of the statistics quickly.
	c := NewCentroidConfirmer(4, 15, 10)

	for i := 1; i <= 8; i++ {
		c.Observe(alternate(i), ref)
	}
	require.Greater(t, c.Counter(), 0)

	for i := 0; i < 20; i++ {
		require.False(t, c.Observe(image.Pt(0, 0), ref))
	}
	require.Zero(t, c.Counter())
}

func TestCentroidConfirmerBelowThresholdNeverCounts(t *testing.T) {
	// Oscillation with total movement below the threshold.
	c := NewCentroidConfirmer(4, 15, 2)
	points := []image.Point{{0, 0}, {2, 0}, {0, 0}, {2, 0}, {0, 0}}
	for _, p := range points {
		require.False(t, c.Observe(p, ref))
	}
	require.Zero(t, c.Counter())
}

func TestCentroidConfirmerReset(t *testing.T) {
	c := NewCentroidConfirmer(30, 15, 10)
	for i := 1; i <= 13; i++ {
		c.Observe(alternate(i), ref)
	}
	require.True(t, c.Observe(alternate(14), ref))

	c.Reset()
	require.Zero(t, c.Counter())
	require.False(t, c.Observe(alternate(1), ref))
}
