//go:build gocv

package camera

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"purity-vision-be/pkg/annotate"
)

// captureBackends is tried in order; V4L2 first because the ANY backend can
// pick GStreamer and stall on some devices.
var captureBackends = []gocv.VideoCaptureAPI{
	gocv.VideoCaptureV4L2,
	gocv.VideoCaptureAny,
}

type gocvCapture struct {
	cap *gocv.VideoCapture
	mat gocv.Mat
}

// OpenDevice opens a local video device, trying each backend until one
// delivers a test frame.
func OpenDevice(device, width, height int) (Capture, error) {
	for _, api := range captureBackends {
		cap, err := gocv.OpenVideoCaptureWithAPI(device, api)
		if err != nil {
			continue
		}
		cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
		cap.Set(gocv.VideoCaptureFrameHeight, float64(height))

		probe := gocv.NewMat()
		if !cap.Read(&probe) || probe.Empty() {
			probe.Close()
			cap.Close()
			continue
		}
		probe.Close()
		return &gocvCapture{cap: cap, mat: gocv.NewMat()}, nil
	}
	return nil, fmt.Errorf("device %d: %w", device, ErrUnavailable)
}

func (c *gocvCapture) Read(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.cap.Read(&c.mat) || c.mat.Empty() {
		return nil, ErrUnavailable
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return annotate.ToRGBA(img), nil
}

func (c *gocvCapture) Close() error {
	c.mat.Close()
	return c.cap.Close()
}
