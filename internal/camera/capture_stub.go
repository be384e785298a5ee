//go:build !gocv

package camera

import "fmt"

// OpenDevice is compiled without a capture backend; the runner stays in its
// offline-placeholder loop.
func OpenDevice(device, width, height int) (Capture, error) {
	return nil, fmt.Errorf("device %d: %w", device, ErrUnavailable)
}
