package motion

import (
	"image"
	"math"
)

// History is a fixed-capacity FIFO ring of centroid positions with
// oscillation statistics derived over the full window. Both statistics are
// recomputed on every append, so readers always see values consistent with
// the current window.
type History struct {
	points []image.Point
	cap    int

	totalMovement    float64
	directionChanges int
}

func NewHistory(capacity int) *History {
	if capacity < 2 {
		capacity = 2
	}
	return &History{
		points: make([]image.Point, 0, capacity),
		cap:    capacity,
	}
}

// Append adds a centroid, evicting the oldest point when the window is full,
// and refreshes the derived statistics.
func (h *History) Append(p image.Point) {
	if len(h.points) == h.cap {
		copy(h.points, h.points[1:])
		h.points[len(h.points)-1] = p
	} else {
		h.points = append(h.points, p)
	}
	h.recompute()
}

func (h *History) Len() int {
	return len(h.points)
}

// TotalMovement is the sum of Euclidean distances between consecutive points
// in the window.
func (h *History) TotalMovement() float64 {
	return h.totalMovement
}

// DirectionChanges counts x-axis reversals: indices where the sign of the
// x-delta differs from the immediately preceding nonzero x-delta. Zero deltas
// neither count nor update the reference sign.
func (h *History) DirectionChanges() int {
	return h.directionChanges
}

func (h *History) Reset() {
	h.points = h.points[:0]
	h.totalMovement = 0
	h.directionChanges = 0
}

func (h *History) recompute() {
	h.totalMovement = 0
	h.directionChanges = 0

	prevDX := 0
	for i := 1; i < len(h.points); i++ {
		dx := h.points[i].X - h.points[i-1].X
		dy := h.points[i].Y - h.points[i-1].Y
		h.totalMovement += math.Hypot(float64(dx), float64(dy))

		if dx != 0 {
			if prevDX != 0 && sign(dx) != sign(prevDX) {
				h.directionChanges++
			}
			prevDX = dx
		}
	}
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
