package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"lychee/internal/config"
	"lychee/internal/language"
	"lychee/internal/orchestrator"
	"lychee/internal/plugin"
	"lychee/internal/process"
	"lychee/internal/project"
	"lychee/internal/schema"
	"lychee/pkg/logging"
)

// App wires the workspace together for one invocation: configuration,
// service graph, plugin registry, orchestrator and schema pipeline. Command
// handlers construct one App and call a single use case on it.
type App struct {
	cfg          *config.Config
	settings     config.Settings
	prj          *project.Project
	registry     *plugin.Registry
	supervisor   process.Supervisor
	orchestrator *orchestrator.Orchestrator
	pipeline     *schema.Pipeline
	runID        string

	shutdownOnce sync.Once
}

// New loads the workspace rooted at root and builds the application.
func New(root string) (*App, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	prj, err := project.FromConfig(cfg, root)
	if err != nil {
		return nil, err
	}

	supervisor := process.NewSupervisor()
	registry := plugin.NewRegistry(plugin.Options{
		BuiltinRuntimes: []plugin.LanguageRuntime{
			language.NewPythonRuntime(supervisor, settings.StopTimeout),
			language.NewNodeRuntime(supervisor, settings.StopTimeout),
		},
		BuiltinCompilers: []plugin.SchemaCompiler{
			schema.NewQuicktypePythonCompiler(supervisor),
			schema.NewQuicktypeTypeScriptCompiler(supervisor),
		},
		Allowlist: allowlist(cfg),
	})

	a := &App{
		cfg:          cfg,
		settings:     settings,
		prj:          prj,
		registry:     registry,
		supervisor:   supervisor,
		orchestrator: orchestrator.New(registry),
		pipeline:     schema.NewPipeline(cfg.Schemas, prj, registry),
		runID:        uuid.NewString(),
	}
	logging.Debug("App", "Initialized run %s for project %s", a.runID, prj.Root)
	return a, nil
}

// allowlist extracts the declared plugin names. A non-empty list restricts
// which discovered plugins load; built-ins are always available.
func allowlist(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Plugins))
	for _, ref := range cfg.Plugins {
		names = append(names, ref.Name)
	}
	return names
}

// Project exposes the service graph, mainly for status rendering.
func (a *App) Project() *project.Project { return a.prj }

// Registry exposes the plugin registry for listings.
func (a *App) Registry() *plugin.Registry { return a.registry }

// RunID identifies this invocation in logs.
func (a *App) RunID() string { return a.runID }

// StartAll installs and starts services in dependency order. An empty
// services slice means all of them; a non-empty slice restricts the pass to
// those names while keeping the topological order. Per-service failures are
// logged and do not stop the pass; if any service failed the returned error
// summarises them. mode is recorded for the started processes' environment.
func (a *App) StartAll(ctx context.Context, services []string, mode string, enableProxy, enableDashboard bool) error {
	order, err := a.prj.TopoOrder()
	if err != nil {
		return err
	}
	order, err = filterOrder(order, services)
	if err != nil {
		return err
	}

	logging.Info("App", "Starting %d service(s) in mode '%s' (run %s)", len(order), mode, a.runID)

	var failed []string
	for _, name := range order {
		svc, err := a.prj.Get(name)
		if err != nil {
			return err
		}

		rt := a.registry.LanguageRuntime(svc.Language)
		if rt == nil {
			logging.Warn("App", "No runtime for language '%s', skipping service '%s'", svc.Language, name)
			continue
		}

		env := a.composeEnv(rt, svc, mode)
		if err := rt.Install(ctx, svc); err != nil {
			logging.Error("App", err, "Failed to install service '%s'", name)
			failed = append(failed, name)
			continue
		}
		if _, err := a.orchestrator.StartService(ctx, svc, env); err != nil {
			logging.Error("App", err, "Failed to start service '%s'", name)
			failed = append(failed, name)
			continue
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to start services: %s", strings.Join(failed, ", "))
	}

	if enableProxy || enableDashboard {
		a.waitForShutdown(ctx)
	}
	return nil
}

// filterOrder restricts a topological order to the requested subset while
// preserving the order. Unknown names are an error.
func filterOrder(order, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return order, nil
	}

	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}
	var out []string
	for _, name := range order {
		if want[name] {
			out = append(out, name)
			delete(want, name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for name := range want {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		return nil, project.NewUnknownServiceError(strings.Join(missing, ", "))
	}
	return out, nil
}

// composeEnv layers the process environment for a service. Later layers win
// on key collision: the invoking environment, then runtime defaults, then
// project-level entries, then the service's own entries.
func (a *App) composeEnv(rt plugin.LanguageRuntime, svc *project.Service, mode string) []string {
	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	for k, v := range rt.Environment(svc) {
		merged[k] = v
	}
	for k, v := range a.cfg.Environment {
		merged[k] = v
	}
	for k, v := range svc.Environment {
		merged[k] = v
	}
	if mode != "" {
		merged["LYCHEE_MODE"] = mode
	}
	merged["LYCHEE_RUN_ID"] = a.runID

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}

// StopAll stops every tracked service process.
func (a *App) StopAll(ctx context.Context) error {
	return a.orchestrator.StopAll(ctx, a.prj)
}

// Restart stops a single service (if it is tracked) and starts it again
// without reinstalling its dependencies. Unlike StartAll, a missing runtime
// is an error: the caller named this service explicitly.
func (a *App) Restart(ctx context.Context, name string) error {
	svc, err := a.prj.Get(name)
	if err != nil {
		return err
	}
	rt := a.registry.LanguageRuntime(svc.Language)
	if rt == nil {
		return plugin.NewNoRuntimeError(svc.Language)
	}

	if a.orchestrator.IsTracked(name) {
		if err := a.orchestrator.StopService(ctx, svc); err != nil {
			return err
		}
	}

	env := a.composeEnv(rt, svc, "")
	_, err = a.orchestrator.StartService(ctx, svc, env)
	return err
}

// Status returns the tracked service processes.
func (a *App) Status() map[string]orchestrator.ServiceStatus {
	return a.orchestrator.Status()
}

// GenerateSchemas compiles all schemas and mounts the artifacts.
func (a *App) GenerateSchemas(ctx context.Context) error {
	return a.pipeline.Generate(ctx)
}

// AddSchema creates a schema file and regenerates artifacts.
func (a *App) AddSchema(ctx context.Context, name string, content []byte) error {
	return a.pipeline.Add(ctx, name, content)
}

// UpdateSchema replaces an existing schema file and regenerates artifacts.
func (a *App) UpdateSchema(ctx context.Context, name string, content []byte) error {
	return a.pipeline.Update(ctx, name, content)
}

// waitForShutdown blocks until SIGINT or SIGTERM, then stops everything.
// The sync.Once guarantees repeated signals never run overlapping stops.
func (a *App) waitForShutdown(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logging.Info("App", "Received %s, shutting down", sig)
	case <-ctx.Done():
	}
	a.Shutdown(context.Background())
}

// Shutdown stops all services exactly once. Safe to call from multiple
// paths; later calls are no-ops.
func (a *App) Shutdown(ctx context.Context) {
	a.shutdownOnce.Do(func() {
		if err := a.orchestrator.StopAll(ctx, a.prj); err != nil {
			logging.Error("App", err, "Shutdown did not stop all services cleanly")
		}
	})
}
