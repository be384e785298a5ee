package camera

import (
	"context"
	"fmt"
	"sync"

	"purity-vision-be/internal/config"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/internal/service"
)

// Info describes one camera slot for the listing endpoint.
type Info struct {
	Device    int    `json:"device"`
	Running   bool   `json:"running"`
	Viewers   int    `json:"viewers"`
	SessionID string `json:"session_id,omitempty"`
}

type managedRunner struct {
	runner *Runner
	cancel context.CancelFunc
}

// Manager starts and stops per-device runners. Each runner gets its own
// long-lived session named after the device.
type Manager struct {
	mu        sync.Mutex
	cfg       config.CameraConfig
	sessions  service.ISessionService
	inference service.IInferenceService
	logger    logger.ILogger
	open      OpenFunc
	runners   map[int]*managedRunner
}

func NewManager(cfg config.CameraConfig, sessions service.ISessionService, inference service.IInferenceService, log logger.ILogger, open OpenFunc) *Manager {
	if open == nil {
		open = OpenDevice
	}
	return &Manager{
		cfg:       cfg,
		sessions:  sessions,
		inference: inference,
		logger:    log,
		open:      open,
		runners:   make(map[int]*managedRunner),
	}
}

// Start launches the runner for a device. Starting an already running device
// is a no-op.
func (m *Manager) Start(device int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runners[device]; ok {
		return nil
	}

	sess := m.sessions.Create(fmt.Sprintf("camera-%d", device))
	runner := NewRunner(device, m.cfg, sess, m.sessions, m.inference, m.logger, m.open)
	ctx, cancel := context.WithCancel(context.Background())
	m.runners[device] = &managedRunner{runner: runner, cancel: cancel}
	go runner.Run(ctx)

	m.logger.Info("Camera", "Runner started", map[string]interface{}{"device": device})
	return nil
}

func (m *Manager) Stop(device int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mr, ok := m.runners[device]
	if !ok {
		return fmt.Errorf("camera %d is not running", device)
	}
	mr.cancel()
	delete(m.runners, device)
	m.logger.Info("Camera", "Runner stopped", map[string]interface{}{"device": device})
	return nil
}

func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for device, mr := range m.runners {
		mr.cancel()
		delete(m.runners, device)
	}
}

// Hub returns the frame hub of a running device.
func (m *Manager) Hub(device int) (*Hub, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mr, ok := m.runners[device]
	if !ok {
		return nil, false
	}
	return mr.runner.Hub(), true
}

// List reports the configured camera slots plus anything else running.
func (m *Manager) List() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[int]bool)
	var infos []Info
	appendInfo := func(device int) {
		if seen[device] {
			return
		}
		seen[device] = true
		info := Info{Device: device}
		if mr, ok := m.runners[device]; ok {
			info.Running = true
			info.Viewers = mr.runner.Hub().ViewerCount()
			info.SessionID = mr.runner.Session().ID
		}
		infos = append(infos, info)
	}

	appendInfo(m.cfg.Camera1Index)
	appendInfo(m.cfg.Camera2Index)
	for device := range m.runners {
		appendInfo(device)
	}
	return infos
}
