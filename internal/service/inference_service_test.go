package service

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"purity-vision-be/internal/config"
	"purity-vision-be/internal/entity"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/pkg/detector"
)

type fakeDetector struct {
	objs []detector.Object
	err  error
}

func (f *fakeDetector) Detect(_ context.Context, _ image.Image, _ detector.Options) ([]detector.Object, error) {
	return f.objs, f.err
}

type countingConfirmer struct {
	confirmed    bool
	observations int
}

func (c *countingConfirmer) Observe(_, _ image.Point) bool {
	c.observations++
	return c.confirmed
}
func (c *countingConfirmer) Reset() {}

func testDetCfg() config.DetectionConfig {
	return config.DetectionConfig{
		ConfThreshold:        0.5,
		IoUThreshold:         0.5,
		AcidConfThreshold:    0.8,
		AcidBoxConfThreshold: 0.4,
		PurityPolicy:         "first",
	}
}

func testFrame() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 640, 480))
}

func newInference(models *detector.Models, cfg config.DetectionConfig) IInferenceService {
	return NewInferenceService(models, cfg, logger.Nop())
}

func TestRubbingStageFeedsConfirmerWithBestPair(t *testing.T) {
	models := &detector.Models{
		Gold: &fakeDetector{objs: []detector.Object{
			{Class: "gold", X1: 10, Y1: 10, X2: 50, Y2: 50, Confidence: 0.6},
			{Class: "gold", X1: 100, Y1: 100, X2: 140, Y2: 140, Confidence: 0.9},
		}},
		Stone: &fakeDetector{objs: []detector.Object{
			{Class: "stone", X1: 0, Y1: 0, X2: 20, Y2: 20, Confidence: 0.9},
			{Class: "stone", X1: 200, Y1: 200, X2: 500, Y2: 460, Confidence: 0.6},
		}},
		DeviceName: "cpu",
	}

	confirmer := &countingConfirmer{confirmed: true}
	sess := entity.NewSession("inf", confirmer)
	svc := newInference(models, testDetCfg())

	_, result := svc.ProcessFrame(context.Background(), testFrame(), entity.StageRubbing, sess)

	require.True(t, result.RubbingDetected)
	require.Equal(t, 1, confirmer.observations)
	require.Len(t, result.Detections, 2)

	byType := map[string]entity.Detection{}
	for _, d := range result.Detections {
		byType[d.Type] = d
	}
	// Highest-confidence gold box wins.
	require.Equal(t, 0.9, byType["gold"].Confidence)
	// Largest-area stone box wins regardless of confidence.
	require.Equal(t, 0.6, byType["stone"].Confidence)
}

func TestRubbingStageNeedsBothObjects(t *testing.T) {
	models := &detector.Models{
		Gold: &fakeDetector{objs: []detector.Object{
			{Class: "gold", X1: 10, Y1: 10, X2: 50, Y2: 50, Confidence: 0.9},
		}},
		Stone: &fakeDetector{},
	}

	confirmer := &countingConfirmer{confirmed: true}
	sess := entity.NewSession("inf", confirmer)
	svc := newInference(models, testDetCfg())

	_, result := svc.ProcessFrame(context.Background(), testFrame(), entity.StageRubbing, sess)

	require.False(t, result.RubbingDetected)
	require.Zero(t, confirmer.observations)
	require.Len(t, result.Detections, 1)
}

func TestAcidStageExtractsPurityAndFiltersWeakBoxes(t *testing.T) {
	models := &detector.Models{
		Acid: &fakeDetector{objs: []detector.Object{
			{Class: "22k_gold", X1: 10, Y1: 10, X2: 60, Y2: 60, Confidence: 0.9},
			{Class: "acid_reaction", X1: 70, Y1: 70, X2: 90, Y2: 90, Confidence: 0.3},
		}},
	}

	sess := entity.NewSession("inf", &countingConfirmer{})
	svc := newInference(models, testDetCfg())

	_, result := svc.ProcessFrame(context.Background(), testFrame(), entity.StageAcid, sess)

	require.True(t, result.AcidDetected)
	require.Equal(t, "22K", result.GoldPurity)
	require.Len(t, result.Detections, 1)
}

func TestAcidStagePurityPolicies(t *testing.T) {
	objs := []detector.Object{
		{Class: "18k_gold", X1: 0, Y1: 0, X2: 10, Y2: 10, Confidence: 0.5},
		{Class: "24k_gold", X1: 20, Y1: 20, X2: 30, Y2: 30, Confidence: 0.9},
	}
	sess := entity.NewSession("inf", &countingConfirmer{})

	cfg := testDetCfg()
	svc := newInference(&detector.Models{Acid: &fakeDetector{objs: objs}}, cfg)
	_, result := svc.ProcessFrame(context.Background(), testFrame(), entity.StageAcid, sess)
	require.Equal(t, "18K", result.GoldPurity)

	cfg.PurityPolicy = "highest"
	svc = newInference(&detector.Models{Acid: &fakeDetector{objs: objs}}, cfg)
	_, result = svc.ProcessFrame(context.Background(), testFrame(), entity.StageAcid, sess)
	require.Equal(t, "24K", result.GoldPurity)
}

func TestAcidStageWithoutQualifyingBoxes(t *testing.T) {
	models := &detector.Models{
		Acid: &fakeDetector{objs: []detector.Object{
			{Class: "22k_gold", X1: 0, Y1: 0, X2: 10, Y2: 10, Confidence: 0.4},
		}},
	}

	sess := entity.NewSession("inf", &countingConfirmer{})
	svc := newInference(models, testDetCfg())

	_, result := svc.ProcessFrame(context.Background(), testFrame(), entity.StageAcid, sess)
	require.False(t, result.AcidDetected)
	require.Empty(t, result.GoldPurity)
	require.Empty(t, result.Detections)
}

func TestDoneStageOnlyOverlays(t *testing.T) {
	sess := entity.NewSession("inf", &countingConfirmer{})
	svc := newInference(&detector.Models{}, testDetCfg())

	out, result := svc.ProcessFrame(context.Background(), testFrame(), entity.StageDone, sess)
	require.NotNil(t, out)
	require.Empty(t, result.Detections)
	require.Equal(t, entity.StageDone, result.Stage)
}

func TestDetectorFailuresDegradeToNoDetections(t *testing.T) {
	models := &detector.Models{
		Gold:  &fakeDetector{err: detector.ErrUnavailable},
		Stone: &fakeDetector{err: detector.ErrUnavailable},
	}

	sess := entity.NewSession("inf", &countingConfirmer{confirmed: true})
	svc := newInference(models, testDetCfg())

	_, result := svc.ProcessFrame(context.Background(), testFrame(), entity.StageRubbing, sess)
	require.False(t, result.RubbingDetected)
	require.Empty(t, result.Detections)
}

func TestUnloadedModelsReportUnavailable(t *testing.T) {
	svc := newInference(&detector.Models{}, testDetCfg())
	require.False(t, svc.Available())
	require.Equal(t, "unavailable", svc.Device())

	sess := entity.NewSession("inf", &countingConfirmer{})
	_, result := svc.ProcessFrame(context.Background(), testFrame(), entity.StageRubbing, sess)
	require.Empty(t, result.Detections)
}

func TestProcessFrameNeverMutatesSessionState(t *testing.T) {
	models := &detector.Models{
		Acid: &fakeDetector{objs: []detector.Object{
			{Class: "22k_gold", X1: 0, Y1: 0, X2: 10, Y2: 10, Confidence: 0.9},
		}},
	}

	sess := entity.NewSession("inf", &countingConfirmer{})
	svc := newInference(models, testDetCfg())

	_, _ = svc.ProcessFrame(context.Background(), testFrame(), entity.StageAcid, sess)

	// The transition is the state machine's call, made at EndFrame.
	status := sess.Status()
	require.Equal(t, "rubbing", status.CurrentTask)
	require.False(t, status.AcidDetected)
	require.Nil(t, status.GoldPurity)
}

func TestPurityGradeMatchingIsCaseInsensitive(t *testing.T) {
	require.Equal(t, "22K", purityGrade("22K_Gold"))
	require.Equal(t, "18K", purityGrade("gold_18k"))
	require.Equal(t, "24K", purityGrade("24k"))
	require.Empty(t, purityGrade("acid_reaction"))
}
