package camera

import (
	"context"
	"errors"
	"image"
)

// ErrUnavailable is returned when no capture backend is compiled in or the
// device cannot be opened.
var ErrUnavailable = errors.New("camera capture unavailable")

// Capture is one open video device.
type Capture interface {
	// Read blocks for the next frame. Returns ErrUnavailable when the
	// device drops; the runner then re-enters its reconnect loop.
	Read(ctx context.Context) (*image.RGBA, error)
	Close() error
}

// OpenFunc opens a device by index. Runners take it as a dependency so tests
// can substitute synthetic captures.
type OpenFunc func(device, width, height int) (Capture, error)
