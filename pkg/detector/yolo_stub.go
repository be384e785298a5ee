//go:build !gocv
// +build !gocv

package detector

import (
	"context"
	"image"
)

// OpenYOLO without the gocv build tag reports detection as unavailable. The
// server still runs: the pipeline degrades to annotated passthrough with no
// detections.
func OpenYOLO(modelPath string, device string, inputSize int, classes []string) (*YOLODetector, error) {
	return nil, ErrUnavailable
}

type YOLODetector struct{}

func (d *YOLODetector) Close() error { return nil }

func (d *YOLODetector) Detect(ctx context.Context, img image.Image, opts Options) ([]Object, error) {
	return nil, ErrUnavailable
}
