package motion

import (
	"image"
	"math"
)

// FluctuationConfirmer is the camera-service variant of rubbing confirmation:
// instead of the centroid path it watches the distance between the tracked
// centroid and the reference surface center over a short window, and confirms
// when the distance oscillates. A delta only participates when its magnitude
// reaches Threshold, which filters jitter around a resting position.
type FluctuationConfirmer struct {
	distances  []float64
	windowSize int
	threshold  float64
	required   int
}

func NewFluctuationConfirmer(windowSize int, threshold float64, required int) *FluctuationConfirmer {
	if windowSize < 3 {
		windowSize = 3
	}
	return &FluctuationConfirmer{
		distances:  make([]float64, 0, windowSize),
		windowSize: windowSize,
		threshold:  threshold,
		required:   required,
	}
}

func (f *FluctuationConfirmer) Observe(centroid, refCenter image.Point) bool {
	dist := math.Hypot(float64(centroid.X-refCenter.X), float64(centroid.Y-refCenter.Y))

	if len(f.distances) == f.windowSize {
		copy(f.distances, f.distances[1:])
		f.distances[len(f.distances)-1] = dist
	} else {
		f.distances = append(f.distances, dist)
	}

	if len(f.distances) < 3 {
		return false
	}

	diffs := make([]float64, len(f.distances)-1)
	for i := 1; i < len(f.distances); i++ {
		diffs[i-1] = f.distances[i] - f.distances[i-1]
	}

	// A sign change only counts when both the current and the previous delta
	// are meaningful, mirroring the reference fluctuation rule.
	signChanges := 0
	prevSign := fsign(diffs[0])
	for i := 1; i < len(diffs); i++ {
		s := fsign(diffs[i])
		meaningful := math.Abs(diffs[i]) >= f.threshold && math.Abs(diffs[i-1]) >= f.threshold
		if meaningful && s != 0 && prevSign != 0 && s != prevSign {
			signChanges++
		}
		if s != 0 {
			prevSign = s
		}
	}

	return signChanges >= f.required
}

func (f *FluctuationConfirmer) Reset() {
	f.distances = f.distances[:0]
}

func fsign(v float64) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
