package service

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"purity-vision-be/internal/entity"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/pkg/detector"
)

type panicInference struct{}

func (panicInference) ProcessFrame(_ context.Context, _ *image.RGBA, _ entity.Stage, _ *entity.Session) (*image.RGBA, *entity.DetectionResult) {
	panic("model blew up")
}
func (panicInference) Available() bool { return true }
func (panicInference) Device() string  { return "test" }

func TestRunFrameAppliesResultToSession(t *testing.T) {
	models := &detector.Models{
		Acid: &fakeDetector{objs: []detector.Object{
			{Class: "24k_gold", X1: 0, Y1: 0, X2: 10, Y2: 10, Confidence: 0.9},
		}},
	}
	svc := newInference(models, testDetCfg())
	sess := entity.NewSession("rf", &countingConfirmer{})
	sess.SetStage(entity.StageAcid)

	outcome := RunFrame(context.Background(), sess, svc, logger.Nop(), testFrame())

	require.True(t, outcome.Changed)
	require.Equal(t, "done", outcome.Status.CurrentTask)
	require.NotNil(t, outcome.Status.GoldPurity)
	require.Equal(t, "24K", *outcome.Status.GoldPurity)
	require.GreaterOrEqual(t, outcome.ProcessMS, 0.0)
}

func TestRunFrameContainsPipelinePanics(t *testing.T) {
	sess := entity.NewSession("rf-panic", &countingConfirmer{})
	frame := testFrame()

	outcome := RunFrame(context.Background(), sess, panicInference{}, logger.Nop(), frame)

	require.Same(t, frame, outcome.Annotated)
	require.False(t, outcome.Changed)
	require.Equal(t, "rubbing", outcome.Status.CurrentTask)

	// The frame slot is released: the next frame can begin normally.
	require.Equal(t, entity.StageRubbing, sess.BeginFrame())
	sess.EndFrame(nil)
}
