package camera

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"

	"purity-vision-be/internal/config"
	"purity-vision-be/internal/entity"
	"purity-vision-be/internal/pkg/frameio"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/internal/service"
	"purity-vision-be/internal/track"
	"purity-vision-be/pkg/annotate"
)

const (
	// offlineInterval throttles placeholder frames while no device is
	// connected.
	offlineInterval = time.Second
	reconnectDelay  = 2 * time.Second
)

// Runner owns one capture device: it keeps reconnecting to the device,
// drives the track loop over its frames and publishes annotated JPEGs to the
// hub. While the device is offline it publishes a placeholder frame instead.
type Runner struct {
	device    int
	cfg       config.CameraConfig
	hub       *Hub
	sess      *entity.Session
	sessions  service.ISessionService
	inference service.IInferenceService
	logger    logger.ILogger
	open      OpenFunc
}

func NewRunner(device int, cfg config.CameraConfig, sess *entity.Session, sessions service.ISessionService, inference service.IInferenceService, log logger.ILogger, open OpenFunc) *Runner {
	return &Runner{
		device:    device,
		cfg:       cfg,
		hub:       NewHub(log),
		sess:      sess,
		sessions:  sessions,
		inference: inference,
		logger:    log,
		open:      open,
	}
}

func (r *Runner) Hub() *Hub { return r.hub }

func (r *Runner) Session() *entity.Session { return r.sess }

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	placeholder, err := frameio.EncodeJPEG(
		annotate.Placeholder(r.cfg.FrameWidth, r.cfg.FrameHeight, fmt.Sprintf("Camera %d offline", r.device)),
		r.cfg.JPEGQuality,
	)
	if err != nil {
		r.logger.Error("Camera", "Placeholder encode failed", map[string]interface{}{"error": err.Error()})
		return
	}

	for ctx.Err() == nil {
		cap, err := r.open(r.device, r.cfg.FrameWidth, r.cfg.FrameHeight)
		if err != nil {
			r.offline(ctx, placeholder)
			continue
		}

		r.logger.Info("Camera", "Device connected", map[string]interface{}{
			"device":     r.device,
			"session_id": r.sess.ID,
		})

		loop := track.NewLoop(r.sess, r.sessions, r.inference, r.logger, nil)
		src := &captureSource{cap: cap, width: r.cfg.FrameWidth, height: r.cfg.FrameHeight}
		sink := &hubSink{hub: r.hub, quality: r.cfg.JPEGQuality}
		if err := loop.Run(ctx, src, sink); err != nil {
			r.logger.Warn("Camera", "Device dropped, reconnecting", map[string]interface{}{
				"device": r.device,
				"error":  err.Error(),
			})
		}
		cap.Close()
	}
}

// offline keeps viewers fed with the placeholder while waiting out the
// reconnect delay.
func (r *Runner) offline(ctx context.Context, placeholder []byte) {
	deadline := time.Now().Add(reconnectDelay)
	for ctx.Err() == nil {
		r.hub.Publish(placeholder)
		if !time.Now().Before(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(offlineInterval):
		}
	}
}

// captureSource adapts a Capture to the track loop, normalizing frame size.
type captureSource struct {
	cap    Capture
	width  int
	height int
}

func (s *captureSource) Recv(ctx context.Context) (*image.RGBA, error) {
	frame, err := s.cap.Read(ctx)
	if err != nil {
		return nil, err
	}
	if b := frame.Bounds(); b.Dx() != s.width || b.Dy() != s.height {
		frame = annotate.ToRGBA(imaging.Resize(frame, s.width, s.height, imaging.Linear))
	}
	return frame, nil
}

// hubSink publishes annotated frames as JPEG.
type hubSink struct {
	hub     *Hub
	quality int
}

func (s *hubSink) Send(ctx context.Context, frame *image.RGBA) error {
	data, err := frameio.EncodeJPEG(frame, s.quality)
	if err != nil {
		return err
	}
	s.hub.Publish(data)
	return nil
}
