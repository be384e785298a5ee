// Package camera implements the server-side push mode: the server owns the
// capture device, runs the pipeline continuously on its own session and fans
// annotated JPEG frames out to any number of stream viewers.
package camera

import (
	"sync"

	"purity-vision-be/internal/pkg/logger"
)

// viewerBuffer bounds how far a slow viewer may fall behind before it
// starts skipping frames.
const viewerBuffer = 4

// Viewer is one attached frame consumer. Frames arrive on Send; the channel
// is closed on Unsubscribe.
type Viewer struct {
	Send chan []byte
}

// Hub fans frames out to viewers. Zero viewers is a valid steady state; the
// producer keeps running regardless.
type Hub struct {
	mu      sync.RWMutex
	viewers map[*Viewer]struct{}
	logger  logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		viewers: make(map[*Viewer]struct{}),
		logger:  log,
	}
}

func (h *Hub) Subscribe() *Viewer {
	v := &Viewer{Send: make(chan []byte, viewerBuffer)}
	h.mu.Lock()
	h.viewers[v] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("CameraHub", "Viewer subscribed", map[string]interface{}{"viewers": h.ViewerCount()})
	return v
}

func (h *Hub) Unsubscribe(v *Viewer) {
	h.mu.Lock()
	if _, ok := h.viewers[v]; ok {
		delete(h.viewers, v)
		close(v.Send)
	}
	h.mu.Unlock()
	h.logger.Debug("CameraHub", "Viewer unsubscribed", map[string]interface{}{"viewers": h.ViewerCount()})
}

// Publish delivers a frame to every viewer. A viewer whose buffer is full
// skips this frame; the camera loop is never blocked by a slow consumer.
func (h *Hub) Publish(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for v := range h.viewers {
		select {
		case v.Send <- frame:
		default:
		}
	}
}

func (h *Hub) ViewerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}
