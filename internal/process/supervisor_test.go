package process

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForExit(t *testing.T, s Supervisor, h *Handle) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for s.IsRunning(h) {
		select {
		case <-deadline:
			t.Fatal("process did not exit in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStartAndExit(t *testing.T) {
	s := NewSupervisor()
	ctx := context.Background()

	h, err := s.Start(ctx, []string{"sh", "-c", "exit 0"}, t.TempDir(), nil)
	require.NoError(t, err)
	assert.Greater(t, h.PID, 0)

	waitForExit(t, s, h)
	assert.False(t, s.IsRunning(h))
}

func TestStartFailure(t *testing.T) {
	s := NewSupervisor()

	_, err := s.Start(context.Background(), []string{"/nonexistent/definitely-not-a-binary"}, t.TempDir(), nil)
	require.Error(t, err)
	assert.True(t, IsStartError(err), "expected StartError, got %v", err)
}

func TestStartEmptyCommand(t *testing.T) {
	s := NewSupervisor()

	_, err := s.Start(context.Background(), nil, t.TempDir(), nil)
	require.Error(t, err)
	assert.True(t, IsStartError(err))
}

func TestStopRunningProcess(t *testing.T) {
	s := NewSupervisor()
	ctx := context.Background()

	h, err := s.Start(ctx, []string{"sleep", "60"}, t.TempDir(), nil)
	require.NoError(t, err)
	require.True(t, s.IsRunning(h))

	start := time.Now()
	require.NoError(t, s.Stop(ctx, h, 5*time.Second))
	assert.Less(t, time.Since(start), 5*time.Second, "graceful stop should not exhaust the timeout")
	assert.False(t, s.IsRunning(h))
}

func TestStopEscalatesToKill(t *testing.T) {
	s := NewSupervisor()
	ctx := context.Background()

	// The child traps and ignores SIGTERM, forcing the kill path.
	h, err := s.Start(ctx, []string{"sh", "-c", "trap '' TERM; sleep 60"}, t.TempDir(), nil)
	require.NoError(t, err)
	// Give the shell a moment to install the trap.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, s.Stop(ctx, h, 200*time.Millisecond))
	assert.False(t, s.IsRunning(h))
}

func TestStopAlreadyExited(t *testing.T) {
	s := NewSupervisor()
	ctx := context.Background()

	h, err := s.Start(ctx, []string{"sh", "-c", "exit 0"}, t.TempDir(), nil)
	require.NoError(t, err)
	waitForExit(t, s, h)

	// No error, no hang.
	require.NoError(t, s.Stop(ctx, h, time.Second))
}

func TestStopNilHandle(t *testing.T) {
	s := NewSupervisor()
	require.NoError(t, s.Stop(context.Background(), nil, time.Second))
}

func TestStopTerminatesChildren(t *testing.T) {
	s := NewSupervisor()
	ctx := context.Background()

	// Parent shell spawns a child sleep; stopping the handle must take the
	// child down with it.
	h, err := s.Start(ctx, []string{"sh", "-c", "sleep 60 & wait"}, t.TempDir(), nil)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	children := descendants(h.PID)
	require.NotEmpty(t, children, "expected at least one child process")

	require.NoError(t, s.Stop(ctx, h, 5*time.Second))
	assert.False(t, s.IsRunning(h))
}

func TestRun(t *testing.T) {
	s := NewSupervisor()
	ctx := context.Background()

	require.NoError(t, s.Run(ctx, []string{"sh", "-c", "exit 0"}, t.TempDir()))

	err := s.Run(ctx, []string{"sh", "-c", "echo oops >&2; exit 3"}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}

func TestIsRunningFakeHandle(t *testing.T) {
	s := NewSupervisor()
	// Handles not produced by Start (fakes) are never running.
	assert.False(t, s.IsRunning(&Handle{PID: 12345}))
}
