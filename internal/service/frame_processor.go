package service

import (
	"context"
	"image"
	"time"

	"purity-vision-be/internal/entity"
	"purity-vision-be/internal/pkg/logger"
)

// FrameOutcome is what a transport adapter gets back for one processed frame.
type FrameOutcome struct {
	Annotated *image.RGBA
	Status    entity.Status
	Changed   bool
	ProcessMS float64
}

// RunFrame brackets one pipeline pass with the session's BeginFrame/EndFrame
// protocol. A panic inside the pipeline is contained to this frame: the raw
// frame is returned unannotated and the session state is left untouched.
func RunFrame(ctx context.Context, sess *entity.Session, inference IInferenceService, log logger.ILogger, frame *image.RGBA) FrameOutcome {
	start := time.Now()
	stage := sess.BeginFrame()

	annotated := frame
	var result *entity.DetectionResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("FrameProcessor", "Pipeline panic, frame dropped", map[string]interface{}{
					"session_id": sess.ID,
					"panic":      r,
				})
				annotated = frame
				result = nil
			}
		}()
		annotated, result = inference.ProcessFrame(ctx, frame, stage, sess)
	}()

	changed := sess.EndFrame(result)
	return FrameOutcome{
		Annotated: annotated,
		Status:    sess.Status(),
		Changed:   changed,
		ProcessMS: float64(time.Since(start).Microseconds()) / 1000.0,
	}
}
