package motion

import "image"

// Confirmer turns a stream of per-frame centroids into a debounced
// "rubbing confirmed" decision. Implementations are owned by a single
// session and are not safe for concurrent use.
type Confirmer interface {
	// Observe records the centroid of the tracked object together with the
	// center of the reference surface and reports whether sustained rubbing
	// is confirmed as of this frame.
	Observe(centroid, refCenter image.Point) bool
	Reset()
}

// CentroidConfirmer tracks the raw centroid path and requires the oscillation
// predicate (movement above threshold with at least two x-axis reversals in
// the window) to hold for ConfirmFrames consecutive-ish frames: the counter
// rises on a satisfied predicate and falls (floored at zero) otherwise, so a
// single noisy frame cannot flip the decision either way.
type CentroidConfirmer struct {
	history       *History
	threshold     float64
	confirmFrames int
	counter       int
}

func NewCentroidConfirmer(historySize int, threshold float64, confirmFrames int) *CentroidConfirmer {
	return &CentroidConfirmer{
		history:       NewHistory(historySize),
		threshold:     threshold,
		confirmFrames: confirmFrames,
	}
}

func (c *CentroidConfirmer) Observe(centroid, _ image.Point) bool {
	c.history.Append(centroid)

	satisfied := false
	if c.history.Len() >= 2 {
		satisfied = c.history.TotalMovement() > c.threshold && c.history.DirectionChanges() >= 2
	}

	if satisfied {
		c.counter++
	} else if c.counter > 0 {
		c.counter--
	}

	return c.counter >= c.confirmFrames
}

func (c *CentroidConfirmer) Reset() {
	c.history.Reset()
	c.counter = 0
}

// Counter exposes the hysteresis counter for status reporting.
func (c *CentroidConfirmer) Counter() int {
	return c.counter
}
