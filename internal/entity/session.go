package entity

import (
	"fmt"
	"sync"

	"purity-vision-be/pkg/motion"
)

// Stage is the workflow phase of a purity test.
type Stage string

const (
	StageRubbing Stage = "rubbing"
	StageAcid    Stage = "acid"
	StageDone    Stage = "done"
)

// ParseStage validates an externally supplied stage string. Unknown values
// are rejected here, at the boundary, so the state machine below only ever
// sees the closed set.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageRubbing, StageAcid, StageDone:
		return Stage(s), nil
	}
	return "", fmt.Errorf("invalid stage %q (expected rubbing, acid or done)", s)
}

const (
	msgWaiting          = "Waiting to start..."
	msgRubbingConfirmed = "Rubbing Confirmed! Waiting for Acid Test..."
	msgAcidDetected     = "Acid Detected! Test Complete."
	msgSessionReset     = "Session reset."
)

// Status is the wire-facing snapshot of a session, shared by the REST status
// endpoint and both socket protocols.
type Status struct {
	SessionID       string  `json:"session_id"`
	CurrentTask     string  `json:"current_task"`
	RubbingDetected bool    `json:"rubbing_detected"`
	AcidDetected    bool    `json:"acid_detected"`
	GoldPurity      *string `json:"gold_purity"`
	Message         string  `json:"message"`
}

// controlOp is the single-slot pending-transition register: an out-of-band
// reset or stage set captured while a frame is in flight, applied at the next
// frame boundary. Last write wins.
type controlOp struct {
	reset bool
	stage Stage
}

// Session holds all per-client mutable state for one inspection workflow.
// Every field is guarded by mu; frames for one session are processed strictly
// one at a time (BeginFrame/EndFrame bracket), while control operations may
// arrive from other goroutines at any moment.
type Session struct {
	ID string

	mu               sync.Mutex
	stage            Stage
	rubbingConfirmed bool
	acidDetected     bool
	purityGrade      string
	message          string
	confirmer        motion.Confirmer
	pending          *controlOp
	inFlight         bool
}

func NewSession(id string, confirmer motion.Confirmer) *Session {
	return &Session{
		ID:        id,
		stage:     StageRubbing,
		message:   msgWaiting,
		confirmer: confirmer,
	}
}

// Confirmer exposes the session-owned motion confirmer to the inference
// pipeline. The pipeline may feed it only between BeginFrame and EndFrame.
func (s *Session) Confirmer() motion.Confirmer {
	return s.confirmer
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// BeginFrame marks the start of frame processing: any pending control
// operation is applied first, then the active stage is snapshotted for the
// pipeline. Callers must pair every BeginFrame with exactly one EndFrame.
func (s *Session) BeginFrame() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.apply(*s.pending)
		s.pending = nil
	}
	s.inFlight = true
	return s.stage
}

// EndFrame feeds the frame's detection result into the stage state machine.
// A nil result (skipped or failed frame) only releases the frame slot. The
// result is discarded when its stage no longer matches the session's, which
// keeps stale frames from influencing the wrong stage after a transition.
// Returns true when session state changed.
func (s *Session) EndFrame(res *DetectionResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if res == nil || res.Stage != s.stage {
		return false
	}

	switch s.stage {
	case StageRubbing:
		if res.RubbingDetected {
			s.rubbingConfirmed = true
			s.stage = StageAcid
			s.acidDetected = false // fresh start for the new stage
			s.confirmer.Reset()
			s.message = msgRubbingConfirmed
			return true
		}
	case StageAcid:
		if res.AcidDetected {
			s.acidDetected = true
			if s.purityGrade == "" && res.GoldPurity != "" {
				s.purityGrade = res.GoldPurity
			}
			s.stage = StageDone
			s.message = msgAcidDetected
			return true
		}
	}
	return false
}

// Reset returns the session to the initial Rubbing stage, clearing all
// confirmation flags, the purity grade and the motion window. Applied
// immediately unless a frame is mid-pipeline, in which case it lands at the
// next frame boundary.
func (s *Session) Reset() {
	s.control(controlOp{reset: true})
}

// SetStage forces the workflow to an explicit stage. Same frame-boundary
// semantics as Reset.
func (s *Session) SetStage(stage Stage) {
	s.control(controlOp{stage: stage})
}

func (s *Session) control(op controlOp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		s.pending = &op
		return
	}
	s.apply(op)
}

// apply executes a control operation. Caller holds mu.
func (s *Session) apply(op controlOp) {
	if op.reset {
		s.stage = StageRubbing
		s.rubbingConfirmed = false
		s.acidDetected = false
		s.purityGrade = ""
		s.confirmer.Reset()
		s.message = msgSessionReset
		return
	}

	if op.stage == s.stage {
		return
	}

	s.stage = op.stage
	s.confirmer.Reset()
	// Only the flag of the entered stage is cleared: switching away from and
	// back to a stage must not erase what other stages already established.
	switch op.stage {
	case StageRubbing:
		s.rubbingConfirmed = false
		s.message = msgWaiting
	case StageAcid:
		s.acidDetected = false
		s.message = msgRubbingConfirmed
	case StageDone:
		s.message = msgAcidDetected
	}
}

// Status returns a consistent snapshot for status queries and socket pushes.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purity *string
	if s.purityGrade != "" {
		p := s.purityGrade
		purity = &p
	}
	return Status{
		SessionID:       s.ID,
		CurrentTask:     string(s.stage),
		RubbingDetected: s.rubbingConfirmed,
		AcidDetected:    s.acidDetected,
		GoldPurity:      purity,
		Message:         s.message,
	}
}
