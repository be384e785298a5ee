package detector

import (
	"context"
	"errors"
	"image"
)

// ErrUnavailable is returned when detection capability is not compiled in or
// a model failed to load. Callers degrade to "no detections" instead of
// failing the stream.
var ErrUnavailable = errors.New("object detection is not available")

// Options are per-call detection parameters.
type Options struct {
	Conf float64 // minimum confidence
	IoU  float64 // overlap suppression threshold
}

// Object is one detected box with its raw model class label.
type Object struct {
	Class      string
	X1, Y1     int
	X2, Y2     int
	Confidence float64
}

// ObjectDetector is the black-box detection contract: given an image, return
// labeled boxes with confidence scores. Implementations must be safe for use
// from a single goroutine per call site.
type ObjectDetector interface {
	Detect(ctx context.Context, img image.Image, opts Options) ([]Object, error)
}

// Models aggregates the three stage detectors. Any entry may be nil when the
// corresponding model failed to load; the pipeline then reports the stage as
// having no detections.
type Models struct {
	Gold       ObjectDetector
	Stone      ObjectDetector
	Acid       ObjectDetector
	DeviceName string
}

// Available reports whether the full detection capability is loaded.
func (m *Models) Available() bool {
	return m != nil && m.Gold != nil && m.Stone != nil && m.Acid != nil
}

// Device reports which device class backs detection ("cuda", "cpu" or
// "unavailable"). Observational only.
func (m *Models) Device() string {
	if m == nil || m.DeviceName == "" {
		return "unavailable"
	}
	return m.DeviceName
}

// Default class label sets for the bundled models. The acid model encodes the
// purity grade in its class names.
var (
	DefaultGoldClasses  = []string{"gold"}
	DefaultStoneClasses = []string{"stone"}
	DefaultAcidClasses  = []string{"18k_gold", "22k_gold", "24k_gold", "acid_reaction"}
)
