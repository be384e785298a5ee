package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubConfirmer lets tests force the confirmation outcome and count resets.
type stubConfirmer struct {
	confirmed bool
	resets    int
}

func (s *stubConfirmer) Observe(_, _ image.Point) bool { return s.confirmed }
func (s *stubConfirmer) Reset()                        { s.resets++ }

func newTestSession() (*Session, *stubConfirmer) {
	c := &stubConfirmer{}
	return NewSession("test", c), c
}

func TestSessionInitialStatus(t *testing.T) {
	sess, _ := newTestSession()
	status := sess.Status()

	require.Equal(t, "test", status.SessionID)
	require.Equal(t, "rubbing", status.CurrentTask)
	require.False(t, status.RubbingDetected)
	require.False(t, status.AcidDetected)
	require.Nil(t, status.GoldPurity)
	require.Equal(t, "Waiting to start...", status.Message)
}

func TestSessionRubbingConfirmationAdvancesToAcid(t *testing.T) {
	sess, confirmer := newTestSession()

	stage := sess.BeginFrame()
	require.Equal(t, StageRubbing, stage)
	changed := sess.EndFrame(&DetectionResult{Stage: stage, RubbingDetected: true})

	require.True(t, changed)
	status := sess.Status()
	require.Equal(t, "acid", status.CurrentTask)
	require.True(t, status.RubbingDetected)
	require.False(t, status.AcidDetected)
	require.Equal(t, 1, confirmer.resets)
}

func TestSessionAcidDetectionCompletesWorkflow(t *testing.T) {
	sess, _ := newTestSession()
	sess.SetStage(StageAcid)

	stage := sess.BeginFrame()
	changed := sess.EndFrame(&DetectionResult{Stage: stage, AcidDetected: true, GoldPurity: "22K"})

	require.True(t, changed)
	status := sess.Status()
	require.Equal(t, "done", status.CurrentTask)
	require.True(t, status.AcidDetected)
	require.NotNil(t, status.GoldPurity)
	require.Equal(t, "22K", *status.GoldPurity)
}

func TestSessionUnconfirmedFrameChangesNothing(t *testing.T) {
	sess, _ := newTestSession()

	stage := sess.BeginFrame()
	require.False(t, sess.EndFrame(&DetectionResult{Stage: stage}))
	require.Equal(t, StageRubbing, sess.Stage())
}

func TestSessionNilResultOnlyReleasesFrameSlot(t *testing.T) {
	sess, _ := newTestSession()

	sess.BeginFrame()
	require.False(t, sess.EndFrame(nil))
	require.Equal(t, StageRubbing, sess.Stage())
}

func TestSessionStaleResultDiscardedAfterStageSwitch(t *testing.T) {
	sess, _ := newTestSession()

	// A stage switch lands while a frame is in flight; it applies at the
	// next frame boundary.
	sess.BeginFrame()
	sess.SetStage(StageAcid)
	sess.EndFrame(nil)

	stage := sess.BeginFrame()
	require.Equal(t, StageAcid, stage)

	// The late result was computed for the old stage and must not advance
	// the state machine.
	changed := sess.EndFrame(&DetectionResult{Stage: StageRubbing, RubbingDetected: true})
	require.False(t, changed)
	require.Equal(t, StageAcid, sess.Stage())
	require.False(t, sess.Status().RubbingDetected)
}

func TestSessionControlAppliesImmediatelyWhenIdle(t *testing.T) {
	sess, _ := newTestSession()
	sess.SetStage(StageAcid)
	require.Equal(t, StageAcid, sess.Stage())
}

func TestSessionPendingControlLastWriteWins(t *testing.T) {
	sess, _ := newTestSession()

	sess.BeginFrame()
	sess.Reset()
	sess.SetStage(StageDone)
	sess.EndFrame(nil)

	require.Equal(t, StageDone, sess.BeginFrame())
	sess.EndFrame(nil)
}

func TestSessionResetClearsEverything(t *testing.T) {
	sess, confirmer := newTestSession()

	stage := sess.BeginFrame()
	sess.EndFrame(&DetectionResult{Stage: stage, RubbingDetected: true})
	stage = sess.BeginFrame()
	sess.EndFrame(&DetectionResult{Stage: stage, AcidDetected: true, GoldPurity: "18K"})

	sess.Reset()
	status := sess.Status()
	require.Equal(t, "rubbing", status.CurrentTask)
	require.False(t, status.RubbingDetected)
	require.False(t, status.AcidDetected)
	require.Nil(t, status.GoldPurity)
	require.Equal(t, "Session reset.", status.Message)
	require.GreaterOrEqual(t, confirmer.resets, 2)
}

func TestSessionForcedStageKeepsOtherStageFlags(t *testing.T) {
	sess, confirmer := newTestSession()

	stage := sess.BeginFrame()
	sess.EndFrame(&DetectionResult{Stage: stage, RubbingDetected: true})
	require.Equal(t, StageAcid, sess.Stage())

	// Jumping to done must not erase what the rubbing stage established.
	sess.SetStage(StageDone)
	require.True(t, sess.Status().RubbingDetected)

	// Re-entering acid clears only the acid flag and restarts the motion
	// window.
	resets := confirmer.resets
	sess.SetStage(StageAcid)
	status := sess.Status()
	require.True(t, status.RubbingDetected)
	require.False(t, status.AcidDetected)
	require.Greater(t, confirmer.resets, resets)
}

func TestSessionSettingCurrentStageIsNoop(t *testing.T) {
	sess, confirmer := newTestSession()
	sess.SetStage(StageRubbing)
	require.Zero(t, confirmer.resets)
}

func TestParseStage(t *testing.T) {
	for _, valid := range []string{"rubbing", "acid", "done"} {
		stage, err := ParseStage(valid)
		require.NoError(t, err)
		require.Equal(t, Stage(valid), stage)
	}

	_, err := ParseStage("polishing")
	require.Error(t, err)
	_, err = ParseStage("")
	require.Error(t, err)
}

func TestSessionPurityRecordedOnce(t *testing.T) {
	sess, _ := newTestSession()
	sess.SetStage(StageAcid)

	stage := sess.BeginFrame()
	sess.EndFrame(&DetectionResult{Stage: stage, AcidDetected: true, GoldPurity: "24K"})

	// A later forced re-run of the acid stage must not overwrite the grade.
	sess.SetStage(StageAcid)
	stage = sess.BeginFrame()
	sess.EndFrame(&DetectionResult{Stage: stage, AcidDetected: true, GoldPurity: "18K"})

	status := sess.Status()
	require.NotNil(t, status.GoldPurity)
	require.Equal(t, "24K", *status.GoldPurity)
}
