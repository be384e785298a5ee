//go:build gocv
// +build gocv

package detector

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// YOLODetector runs a YOLO-family ONNX model through the OpenCV DNN module.
type YOLODetector struct {
	net       gocv.Net
	inputSize int
	classes   []string
}

// OpenYOLO loads an ONNX model and binds it to the requested device.
// device "cuda" selects the CUDA backend, "cpu" forces plain CPU, and "auto"
// prefers CUDA and lets OpenCV fall back when no device is present.
func OpenYOLO(modelPath string, device string, inputSize int, classes []string) (*YOLODetector, error) {
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model %s", modelPath)
	}

	if device == "cuda" || device == "auto" {
		_ = net.SetPreferableBackend(gocv.NetBackendCUDA)
		_ = net.SetPreferableTarget(gocv.NetTargetCUDA)
	} else {
		_ = net.SetPreferableBackend(gocv.NetBackendDefault)
		_ = net.SetPreferableTarget(gocv.NetTargetCPU)
	}

	return &YOLODetector{
		net:       net,
		inputSize: inputSize,
		classes:   classes,
	}, nil
}

func (d *YOLODetector) Close() error {
	return d.net.Close()
}

func (d *YOLODetector) Detect(ctx context.Context, img image.Image, opts Options) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)

	blob := gocv.BlobFromImage(bgr, 1.0/255.0, image.Pt(d.inputSize, d.inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	return d.parseOutput(output, img.Bounds().Dx(), img.Bounds().Dy(), opts), nil
}

// parseOutput decodes the YOLO head: rows of [cx, cy, w, h, class scores...]
// in model input coordinates, followed by class-wise NMS.
func (d *YOLODetector) parseOutput(output gocv.Mat, frameW, frameH int, opts Options) []Object {
	out := output.Reshape(1, output.Total()/output.Size()[len(output.Size())-1])
	defer out.Close()

	scaleX := float32(frameW) / float32(d.inputSize)
	scaleY := float32(frameH) / float32(d.inputSize)

	var boxes []image.Rectangle
	var scores []float32
	var classIDs []int

	rows := out.Rows()
	cols := out.Cols()
	for r := 0; r < rows; r++ {
		bestScore := float32(0)
		bestClass := 0
		for c := 4; c < cols; c++ {
			if s := out.GetFloatAt(r, c); s > bestScore {
				bestScore = s
				bestClass = c - 4
			}
		}
		if float64(bestScore) < opts.Conf {
			continue
		}

		cx := out.GetFloatAt(r, 0) * scaleX
		cy := out.GetFloatAt(r, 1) * scaleY
		w := out.GetFloatAt(r, 2) * scaleX
		h := out.GetFloatAt(r, 3) * scaleY

		boxes = append(boxes, image.Rect(
			int(cx-w/2), int(cy-h/2),
			int(cx+w/2), int(cy+h/2),
		))
		scores = append(scores, bestScore)
		classIDs = append(classIDs, bestClass)
	}

	if len(boxes) == 0 {
		return nil
	}

	keep := gocv.NMSBoxes(boxes, scores, float32(opts.Conf), float32(opts.IoU))

	objects := make([]Object, 0, len(keep))
	for _, idx := range keep {
		b := boxes[idx]
		objects = append(objects, Object{
			Class:      d.className(classIDs[idx]),
			X1:         clamp(b.Min.X, 0, frameW),
			Y1:         clamp(b.Min.Y, 0, frameH),
			X2:         clamp(b.Max.X, 0, frameW),
			Y2:         clamp(b.Max.Y, 0, frameH),
			Confidence: float64(scores[idx]),
		})
	}
	return objects
}

func (d *YOLODetector) className(id int) string {
	if id >= 0 && id < len(d.classes) {
		return d.classes[id]
	}
	return fmt.Sprintf("class_%d", id)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
