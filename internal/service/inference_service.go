package service

import (
	"context"
	"fmt"
	"image"
	"strings"

	"purity-vision-be/internal/config"
	"purity-vision-be/internal/entity"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/pkg/annotate"
	"purity-vision-be/pkg/detector"
)

// IInferenceService is the per-frame pipeline: run the detectors for the
// active stage, draw annotations and produce a DetectionResult. It never
// mutates session stage or flags; callers apply the result through
// Session.EndFrame. The only session state it touches is the session-owned
// motion confirmer, which is legal between BeginFrame and EndFrame.
type IInferenceService interface {
	ProcessFrame(ctx context.Context, frame *image.RGBA, stage entity.Stage, sess *entity.Session) (*image.RGBA, *entity.DetectionResult)
	Available() bool
	Device() string
}

type inferenceService struct {
	models *detector.Models
	cfg    config.DetectionConfig
	logger logger.ILogger
}

func NewInferenceService(models *detector.Models, cfg config.DetectionConfig, log logger.ILogger) IInferenceService {
	return &inferenceService{
		models: models,
		cfg:    cfg,
		logger: log,
	}
}

func (s *inferenceService) Available() bool {
	return s.models.Available()
}

func (s *inferenceService) Device() string {
	return s.models.Device()
}

func (s *inferenceService) ProcessFrame(ctx context.Context, frame *image.RGBA, stage entity.Stage, sess *entity.Session) (*image.RGBA, *entity.DetectionResult) {
	result := &entity.DetectionResult{Stage: stage}

	switch stage {
	case entity.StageRubbing:
		s.processRubbing(ctx, frame, sess, result)
	case entity.StageAcid:
		s.processAcid(ctx, frame, result)
	case entity.StageDone:
		frame = annotate.DoneOverlay(frame)
	}

	return frame, result
}

// processRubbing runs the gold and stone detectors and feeds the gold
// centroid into the session's rubbing confirmer when both objects are
// visible. Tie-breaks: the gold item keeps the highest-confidence box, the
// stone keeps the largest-area box (the reference surface is the big static
// object in frame).
func (s *inferenceService) processRubbing(ctx context.Context, frame *image.RGBA, sess *entity.Session, result *entity.DetectionResult) {
	opts := detector.Options{Conf: s.cfg.ConfThreshold, IoU: s.cfg.IoUThreshold}

	gold := s.bestOf(ctx, s.models.Gold, frame, opts, pickHighestConfidence)
	stone := s.bestOf(ctx, s.models.Stone, frame, opts, pickLargestArea)

	if stone != nil {
		box := toBox(*stone)
		result.Detections = append(result.Detections, entity.Detection{
			Type: "stone", Class: stone.Class, Box: box, Confidence: stone.Confidence,
		})
		annotate.Box(frame, toRect(box), annotate.ColorStone, fmt.Sprintf("Stone %.2f", stone.Confidence))
	}

	if gold != nil {
		box := toBox(*gold)
		result.Detections = append(result.Detections, entity.Detection{
			Type: "gold", Class: gold.Class, Box: box, Confidence: gold.Confidence,
		})
		annotate.Box(frame, toRect(box), annotate.ColorGold, fmt.Sprintf("Gold %.2f", gold.Confidence))
	}

	if gold != nil && stone != nil {
		centroid := toBox(*gold).Center()
		annotate.Dot(frame, centroid, 5, annotate.ColorCentroid)
		result.RubbingDetected = sess.Confirmer().Observe(centroid, toBox(*stone).Center())
	}

	if result.RubbingDetected {
		annotate.Banner(frame, "RUBBING DETECTED", annotate.ColorOK)
	} else {
		annotate.Banner(frame, "Rubbing in progress...", annotate.ColorWaiting)
	}
}

// processAcid thresholds the reaction detector and extracts a purity grade
// from the class labels of qualifying boxes.
func (s *inferenceService) processAcid(ctx context.Context, frame *image.RGBA, result *entity.DetectionResult) {
	opts := detector.Options{Conf: s.cfg.AcidConfThreshold, IoU: s.cfg.IoUThreshold}
	objects := s.detect(ctx, s.models.Acid, frame, opts)

	bestGradeConf := 0.0
	for _, obj := range objects {
		if obj.Confidence <= s.cfg.AcidBoxConfThreshold {
			continue
		}

		box := toBox(obj)
		result.Detections = append(result.Detections, entity.Detection{
			Type: "acid", Class: obj.Class, Box: box, Confidence: obj.Confidence,
		})
		annotate.Box(frame, toRect(box), annotate.ColorAcid, fmt.Sprintf("%s %.2f", obj.Class, obj.Confidence))
		result.AcidDetected = true

		grade := purityGrade(obj.Class)
		if grade == "" {
			continue
		}
		switch s.cfg.PurityPolicy {
		case "highest":
			if obj.Confidence > bestGradeConf {
				bestGradeConf = obj.Confidence
				result.GoldPurity = grade
			}
		default: // "first": first-iterated grade wins
			if result.GoldPurity == "" {
				result.GoldPurity = grade
			}
		}
	}

	if result.AcidDetected {
		purity := result.GoldPurity
		if purity == "" {
			purity = "Unknown"
		}
		annotate.Banner(frame, "ACID TEST: "+purity, annotate.ColorOK)
	} else {
		annotate.Banner(frame, "Waiting for acid test...", annotate.ColorWaiting)
	}
}

// bestOf returns the single winning box for a detector, or nil when the
// detector is unavailable or saw nothing.
func (s *inferenceService) bestOf(ctx context.Context, d detector.ObjectDetector, frame image.Image, opts detector.Options, pick func(a, b detector.Object) bool) *detector.Object {
	objects := s.detect(ctx, d, frame, opts)
	if len(objects) == 0 {
		return nil
	}
	best := objects[0]
	for _, obj := range objects[1:] {
		if pick(obj, best) {
			best = obj
		}
	}
	return &best
}

// detect wraps a detector call so that an unloaded model or a per-frame
// detector failure degrades to "no detections" instead of failing the frame.
func (s *inferenceService) detect(ctx context.Context, d detector.ObjectDetector, frame image.Image, opts detector.Options) []detector.Object {
	if d == nil {
		return nil
	}
	objects, err := d.Detect(ctx, frame, opts)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("InferenceService", "Detector error, frame treated as empty", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	return objects
}

func pickHighestConfidence(a, b detector.Object) bool {
	return a.Confidence > b.Confidence
}

func pickLargestArea(a, b detector.Object) bool {
	return (a.X2-a.X1)*(a.Y2-a.Y1) > (b.X2-b.X1)*(b.Y2-b.Y1)
}

// purityGrade maps a detector class label onto a karat grade by substring.
func purityGrade(class string) string {
	lower := strings.ToLower(class)
	switch {
	case strings.Contains(lower, "22k"):
		return "22K"
	case strings.Contains(lower, "18k"):
		return "18K"
	case strings.Contains(lower, "24k"):
		return "24K"
	}
	return ""
}

func toBox(o detector.Object) entity.Box {
	return entity.Box{X1: o.X1, Y1: o.Y1, X2: o.X2, Y2: o.Y2}
}

func toRect(b entity.Box) image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}
