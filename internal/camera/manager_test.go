package camera

import (
	"testing"

	"github.com/stretchr/testify/require"

	"purity-vision-be/internal/pkg/logger"
)

func newTestManager() *Manager {
	sessions, inference := newCameraServices()
	open := func(device, width, height int) (Capture, error) {
		return nil, ErrUnavailable
	}
	return NewManager(testCameraCfg(), sessions, inference, logger.Nop(), open)
}

func TestManagerStartIsIdempotent(t *testing.T) {
	m := newTestManager()
	defer m.StopAll()

	require.NoError(t, m.Start(5))
	require.NoError(t, m.Start(5))

	hub, ok := m.Hub(5)
	require.True(t, ok)
	require.NotNil(t, hub)
}

func TestManagerStartRegistersDeviceSession(t *testing.T) {
	sessions, inference := newCameraServices()
	open := func(device, width, height int) (Capture, error) {
		return nil, ErrUnavailable
	}
	m := NewManager(testCameraCfg(), sessions, inference, logger.Nop(), open)
	defer m.StopAll()

	require.NoError(t, m.Start(3))

	sess, ok := sessions.Get("camera-3")
	require.True(t, ok)
	require.Same(t, sess, m.runners[3].runner.Session())
}

func TestManagerStopUnknownDevice(t *testing.T) {
	m := newTestManager()
	require.Error(t, m.Stop(9))
}

func TestManagerStartStopLifecycle(t *testing.T) {
	m := newTestManager()

	require.NoError(t, m.Start(0))
	require.NoError(t, m.Stop(0))
	_, ok := m.Hub(0)
	require.False(t, ok)
	require.Error(t, m.Stop(0))
}

func TestManagerListCoversConfiguredAndRunning(t *testing.T) {
	m := newTestManager()
	defer m.StopAll()

	require.NoError(t, m.Start(7))
	infos := m.List()

	byDevice := map[int]Info{}
	for _, info := range infos {
		byDevice[info.Device] = info
	}

	// Configured slots always appear, running or not.
	require.Contains(t, byDevice, 0)
	require.Contains(t, byDevice, 1)
	require.False(t, byDevice[0].Running)

	require.Contains(t, byDevice, 7)
	require.True(t, byDevice[7].Running)
	require.Equal(t, "camera-7", byDevice[7].SessionID)
}
