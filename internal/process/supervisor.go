package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	gops "github.com/shirou/gopsutil/v4/process"

	"lychee/pkg/logging"
)

// Handle is a live reference to a spawned OS process: the pid plus the
// underlying exec.Cmd. Handles are created by Start and become inert once
// the process has exited.
type Handle struct {
	PID int
	Cmd *exec.Cmd

	// done is closed by the reaper goroutine once Wait returns.
	done chan struct{}

	mu      sync.Mutex
	waitErr error
}

// Exited reports whether the process behind the handle has exited. Handles
// not created through Start (e.g. test fakes) always report true.
func (h *Handle) Exited() bool {
	if h.done == nil {
		return true
	}
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// StartError is returned when a process cannot be spawned.
type StartError struct {
	Command string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start process %q: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// IsStartError checks if an error is or wraps a StartError.
func IsStartError(err error) bool {
	var startErr *StartError
	return errors.As(err, &startErr)
}

// Supervisor is the process-lifecycle interface the rest of the system
// depends on. The concrete implementation talks to the OS; tests substitute
// fakes.
type Supervisor interface {
	// Start spawns argv in dir with the given environment and returns a
	// live handle immediately. Stdout and stderr are consumed by
	// independent readers that log each line and stop at end-of-stream.
	Start(ctx context.Context, argv []string, dir string, env []string) (*Handle, error)

	// Stop terminates the process tree behind the handle: graceful signal
	// to each descendant and then the process itself, bounded wait, forced
	// kill if still alive, unconditional final wait.
	Stop(ctx context.Context, h *Handle, timeout time.Duration) error

	// IsRunning reports whether the process behind the handle is alive.
	IsRunning(h *Handle) bool

	// Run spawns argv in dir and waits for completion. Used for
	// install/build/test commands which are not tracked.
	Run(ctx context.Context, argv []string, dir string) error
}

// ExecSupervisor implements Supervisor on top of os/exec. Each spawned
// process gets its own process group so the whole tree can be signalled at
// once when graceful termination is not enough.
type ExecSupervisor struct{}

// NewSupervisor returns the OS-backed Supervisor.
func NewSupervisor() *ExecSupervisor {
	return &ExecSupervisor{}
}

// Start spawns the given command. The returned handle is live; a
// background goroutine reaps the process on exit so it never lingers as a
// zombie.
func (s *ExecSupervisor) Start(ctx context.Context, argv []string, dir string, env []string) (*Handle, error) {
	if len(argv) == 0 {
		return nil, &StartError{Command: "", Err: errors.New("empty command")}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &StartError{Command: strings.Join(argv, " "), Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return nil, &StartError{Command: strings.Join(argv, " "), Err: err}
	}

	if err := cmd.Start(); err != nil {
		stdout.Close()
		stderr.Close()
		return nil, &StartError{Command: strings.Join(argv, " "), Err: err}
	}

	h := &Handle{
		PID:  cmd.Process.Pid,
		Cmd:  cmd,
		done: make(chan struct{}),
	}
	logging.Debug("Process", "Started pid %d: %s", h.PID, strings.Join(argv, " "))

	go consumeStream(h.PID, "stdout", stdout)
	go consumeStream(h.PID, "stderr", stderr)

	// Reap the child as soon as it exits. Stop waits on done instead of
	// calling Wait itself, so there is exactly one waiter.
	go func() {
		err := cmd.Wait()
		h.mu.Lock()
		h.waitErr = err
		h.mu.Unlock()
		close(h.done)
	}()

	return h, nil
}

// consumeStream logs every line of one output stream until end-of-stream.
// It runs outside any lifecycle lock and terminates naturally when the
// pipe closes.
func consumeStream(pid int, name string, r interface{ Read([]byte) (int, error) }) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logging.Debug("Process", "[pid %d %s] %s", pid, name, scanner.Text())
	}
}

// IsRunning reports whether the process is still alive.
func (s *ExecSupervisor) IsRunning(h *Handle) bool {
	return h != nil && !h.Exited()
}

// Stop terminates the process and its descendants. Already-exited handles
// are a no-op with a warning.
func (s *ExecSupervisor) Stop(ctx context.Context, h *Handle, timeout time.Duration) error {
	if h == nil || h.Exited() {
		pid := 0
		if h != nil {
			pid = h.PID
		}
		logging.Warn("Process", "Process with pid %d is already stopped", pid)
		return nil
	}

	// Signal descendants first so they do not get reparented and leak when
	// their parent goes away.
	for _, childPID := range descendants(h.PID) {
		if err := syscall.Kill(childPID, syscall.SIGTERM); err != nil {
			logging.Debug("Process", "Could not terminate child process %d: %v", childPID, err)
		}
	}
	if err := h.Cmd.Process.Signal(syscall.SIGTERM); err != nil {
		logging.Debug("Process", "Could not signal pid %d: %v", h.PID, err)
	}

	select {
	case <-h.done:
	case <-time.After(timeout):
		logging.Warn("Process", "Process with pid %d did not terminate gracefully, force-killing", h.PID)
		// Kill the whole group; the child was started with Setpgid so the
		// group id equals the pid.
		if err := syscall.Kill(-h.PID, syscall.SIGKILL); err != nil {
			logging.Debug("Process", "Could not kill process group %d: %v", h.PID, err)
			_ = h.Cmd.Process.Kill()
		}
		<-h.done
	}

	logging.Info("Process", "Stopped process with pid %d", h.PID)
	return nil
}

// Run executes a command to completion. The command inherits the invoking
// process's environment.
func (s *ExecSupervisor) Run(ctx context.Context, argv []string, dir string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("command %q failed: %w (output: %s)",
			strings.Join(argv, " "), err, lastLines(string(output), 10))
	}
	logging.Debug("Process", "Completed command: %s", strings.Join(argv, " "))
	return nil
}

// descendants returns the pids of all transitive children of pid, children
// before their own children. Enumeration is best-effort: processes that
// disappear mid-walk are skipped.
func descendants(pid int) []int {
	proc, err := gops.NewProcess(int32(pid))
	if err != nil {
		return nil
	}

	var out []int
	var walk func(p *gops.Process)
	walk = func(p *gops.Process) {
		children, err := p.Children()
		if err != nil {
			return
		}
		for _, child := range children {
			out = append(out, int(child.Pid))
			walk(child)
		}
	}
	walk(proc)
	return out
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
