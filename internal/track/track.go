// Package track implements the continuous-track transport: a pull loop that
// consumes a live frame source, runs the pipeline on every N-th frame and
// forwards annotated output, pushing status snapshots out of band.
package track

import (
	"context"
	"errors"
	"image"
	"io"
	"time"

	"purity-vision-be/internal/dto"
	"purity-vision-be/internal/entity"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/internal/service"
	"purity-vision-be/pkg/annotate"
)

// Source yields raw frames. Recv blocks until a frame is available, the
// source ends (io.EOF) or ctx is cancelled.
type Source interface {
	Recv(ctx context.Context) (*image.RGBA, error)
}

// Sink consumes outbound frames.
type Sink interface {
	Send(ctx context.Context, frame *image.RGBA) error
}

// Notifier receives status snapshots pushed alongside the video track.
type Notifier interface {
	Notify(ctx context.Context, status entity.Status) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, status entity.Status) error

func (f NotifierFunc) Notify(ctx context.Context, status entity.Status) error {
	return f(ctx, status)
}

// Connector is the peer-connection signaling backend. The server runs
// without one; signaling endpoints then report the transport as unavailable.
type Connector interface {
	Offer(ctx context.Context, sessionID string, offer dto.SDPOffer) (dto.SDPAnswer, error)
	AddICECandidate(ctx context.Context, cand dto.ICECandidate) error
	Close(ctx context.Context, sessionID string) error
}

const (
	// defaultSkip processes every 2nd frame; skipped frames still go out with
	// the last known overlay redrawn on their own pixels, so the stream keeps
	// its native rate.
	defaultSkip = 2
	// notifyEveryProcessed pushes a keepalive status after this many processed
	// frames even without a state change. The interval counts pipeline passes,
	// not received frames, so with skip=2 a keepalive lands every 60 frames.
	notifyEveryProcessed = 30
)

// Loop drives one session's continuous track.
type Loop struct {
	sess      *entity.Session
	sessions  service.ISessionService
	inference service.IInferenceService
	logger    logger.ILogger
	notifier  Notifier
	skip      int
}

func NewLoop(sess *entity.Session, sessions service.ISessionService, inference service.IInferenceService, log logger.ILogger, notifier Notifier) *Loop {
	return &Loop{
		sess:      sess,
		sessions:  sessions,
		inference: inference,
		logger:    log,
		notifier:  notifier,
		skip:      defaultSkip,
	}
}

// Run pumps frames from src to sink until the source ends or ctx is
// cancelled. Source exhaustion and cancellation are clean shutdowns.
func (l *Loop) Run(ctx context.Context, src Source, sink Sink) error {
	var (
		frameCount    int
		processed     int
		fps           float64
		lastProcessMS float64
		lastTask      = l.sess.Status().CurrentTask
		lastTick      = time.Now()
	)

	for {
		frame, err := src.Recv(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		frameCount++
		if frameCount%l.skip != 0 {
			// Skipped frames carry the last known readout on their own
			// pixels so the stream stays at the native rate without stale
			// doubled frames.
			annotate.Stats(frame, fps, lastProcessMS, lastTask)
			if err := l.send(ctx, sink, frame); err != nil {
				return err
			}
			continue
		}

		outcome := service.RunFrame(ctx, l.sess, l.inference, l.logger, frame)
		processed++
		l.sessions.Touch(l.sess)

		now := time.Now()
		if dt := now.Sub(lastTick).Seconds(); dt > 0 {
			// Smoothed over the skip interval so the readout is stable.
			fps = 0.9*fps + 0.1*(float64(l.skip)/dt)
		}
		lastTick = now

		annotate.Stats(outcome.Annotated, fps, outcome.ProcessMS, outcome.Status.CurrentTask)
		lastProcessMS = outcome.ProcessMS
		lastTask = outcome.Status.CurrentTask

		if l.notifier != nil && (outcome.Changed || processed%notifyEveryProcessed == 0) {
			if err := l.notifier.Notify(ctx, outcome.Status); err != nil && ctx.Err() == nil {
				l.logger.Warn("Track", "Status push failed", map[string]interface{}{
					"session_id": l.sess.ID,
					"error":      err.Error(),
				})
			}
		}

		if err := l.send(ctx, sink, outcome.Annotated); err != nil {
			return err
		}
	}
}

func (l *Loop) send(ctx context.Context, sink Sink, frame *image.RGBA) error {
	if err := sink.Send(ctx, frame); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
