package orchestrator

import (
	"context"
	"strings"
	"sync"

	"lychee/internal/plugin"
	"lychee/internal/process"
	"lychee/internal/project"
	"lychee/pkg/logging"
)

// Orchestrator tracks the running service processes of one workspace. All
// lifecycle transitions take a single coarse lock: start and stop are rare
// and cheap relative to the processes they manage, so finer locking buys
// nothing.
type Orchestrator struct {
	registry *plugin.Registry

	mu      sync.Mutex
	handles map[string]*process.Handle
}

// ServiceStatus describes one tracked service process.
type ServiceStatus struct {
	Name    string
	PID     int
	Running bool
	// Command is the argv the process was started with, space-joined.
	Command string
}

// New creates an orchestrator with an empty tracking table.
func New(registry *plugin.Registry) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		handles:  make(map[string]*process.Handle),
	}
}

// StartService starts the service through its language runtime and tracks
// the handle. Starting an already-tracked service is an idempotent no-op
// that returns the existing handle.
func (o *Orchestrator) StartService(ctx context.Context, svc *project.Service, env []string) (*process.Handle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if h, ok := o.handles[svc.Name]; ok {
		logging.Warn("Orchestrator", "Service '%s' is already running (pid %d)", svc.Name, h.PID)
		return h, nil
	}

	rt := o.registry.LanguageRuntime(svc.Language)
	if rt == nil {
		return nil, plugin.NewNoRuntimeError(svc.Language)
	}

	h, err := rt.Start(ctx, svc, env)
	if err != nil {
		return nil, err
	}
	o.handles[svc.Name] = h
	logging.Info("Orchestrator", "Started service '%s' (pid %d)", svc.Name, h.PID)
	return h, nil
}

// StopService stops a tracked service and forgets its handle. Stopping a
// service that is not tracked is a no-op.
func (o *Orchestrator) StopService(ctx context.Context, svc *project.Service) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopLocked(ctx, svc.Name, svc.Language)
}

// StopAll stops every tracked service. Entries whose language has no
// runtime are dropped with a warning so the table always ends empty; one
// failing stop does not prevent the others.
func (o *Orchestrator) StopAll(ctx context.Context, prj *project.Project) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	names := make([]string, 0, len(o.handles))
	for name := range o.handles {
		names = append(names, name)
	}

	var firstErr error
	for _, name := range names {
		language := ""
		if svc, err := prj.Get(name); err == nil {
			language = svc.Language
		}
		if err := o.stopLocked(ctx, name, language); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// stopLocked stops one tracked entry. Callers hold o.mu.
func (o *Orchestrator) stopLocked(ctx context.Context, name, language string) error {
	h, ok := o.handles[name]
	if !ok {
		logging.Debug("Orchestrator", "Service '%s' is not running, nothing to stop", name)
		return nil
	}

	rt := o.registry.LanguageRuntime(language)
	if rt == nil {
		logging.Warn("Orchestrator", "No runtime for language '%s', dropping handle for service '%s'", language, name)
		delete(o.handles, name)
		return nil
	}

	err := rt.Stop(ctx, h)
	delete(o.handles, name)
	if err != nil {
		return err
	}
	logging.Info("Orchestrator", "Stopped service '%s'", name)
	return nil
}

// Handle returns the tracked handle for a service, or nil.
func (o *Orchestrator) Handle(name string) *process.Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handles[name]
}

// IsTracked reports whether the orchestrator holds a handle for the service.
func (o *Orchestrator) IsTracked(name string) bool {
	return o.Handle(name) != nil
}

// Status returns a snapshot of every tracked service.
func (o *Orchestrator) Status() map[string]ServiceStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make(map[string]ServiceStatus, len(o.handles))
	for name, h := range o.handles {
		command := ""
		if h.Cmd != nil {
			command = strings.Join(h.Cmd.Args, " ")
		}
		out[name] = ServiceStatus{
			Name:    name,
			PID:     h.PID,
			Running: !h.Exited(),
			Command: command,
		}
	}
	return out
}
