package language

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lychee/internal/process"
	"lychee/internal/project"
	"lychee/pkg/logging"
)

// NodeRuntime is the built-in runtime for TypeScript/Node services.
type NodeRuntime struct {
	supervisor  process.Supervisor
	stopTimeout time.Duration
}

// NewNodeRuntime creates the built-in TypeScript runtime on top of the
// given supervisor.
func NewNodeRuntime(supervisor process.Supervisor, stopTimeout time.Duration) *NodeRuntime {
	return &NodeRuntime{supervisor: supervisor, stopTimeout: stopTimeout}
}

func (r *NodeRuntime) Language() string { return "typescript" }

// packageJSON is the subset of package.json the runtime inspects.
type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
}

func readPackageJSON(servicePath string) (*packageJSON, error) {
	path := filepath.Join(servicePath, "package.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &pkg, nil
}

func (p *packageJSON) hasDependency(name string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.Dependencies[name]; ok {
		return true
	}
	_, ok := p.DevDependencies[name]
	return ok
}

// DetectFramework inspects package.json dependencies.
func (r *NodeRuntime) DetectFramework(ctx context.Context, servicePath string) (string, error) {
	pkg, err := readPackageJSON(servicePath)
	if err != nil || pkg == nil {
		return "", err
	}

	switch {
	case pkg.hasDependency("next"):
		return "nextjs", nil
	case pkg.hasDependency("express"):
		return "express", nil
	case pkg.hasDependency("@nestjs/core"):
		return "nestjs", nil
	case pkg.hasDependency("react") && pkg.hasDependency("react-dom"):
		return "react", nil
	default:
		return "", nil
	}
}

// Install runs npm install when the service has a package.json.
func (r *NodeRuntime) Install(ctx context.Context, svc *project.Service) error {
	if !fileExists(filepath.Join(svc.Path, "package.json")) {
		logging.Warn("NodeRuntime", "No package.json found in %s, skipping install", svc.Path)
		return nil
	}
	return r.supervisor.Run(ctx, []string{"npm", "install"}, svc.Path)
}

// StartCommand builds the argv for the service's process without spawning it.
func (r *NodeRuntime) StartCommand(ctx context.Context, svc *project.Service) ([]string, error) {
	framework := svc.Framework
	if framework == "" {
		detected, err := r.DetectFramework(ctx, svc.Path)
		if err != nil {
			return nil, err
		}
		framework = detected
	}

	switch framework {
	case "nextjs":
		return []string{"npm", "run", "dev"}, nil
	case "express":
		entry := svc.Runtime.EntryPoint
		if fileExists(filepath.Join(svc.Path, "tsconfig.json")) {
			if entry == "" {
				entry = "src/index.ts"
			}
			return []string{"npx", "tsx", "watch", entry}, nil
		}
		if entry == "" {
			entry = "src/index.js"
		}
		return []string{"node", entry}, nil
	case "nestjs":
		return []string{"npm", "run", "start:dev"}, nil
	case "react":
		return []string{"npm", "run", "start"}, nil
	default:
		return []string{"npm", "run", "dev"}, nil
	}
}

// Start spawns the service's process.
func (r *NodeRuntime) Start(ctx context.Context, svc *project.Service, env []string) (*process.Handle, error) {
	argv, err := r.StartCommand(ctx, svc)
	if err != nil {
		return nil, err
	}
	return r.supervisor.Start(ctx, argv, svc.Path, env)
}

// Stop terminates a process previously returned by Start.
func (r *NodeRuntime) Stop(ctx context.Context, h *process.Handle) error {
	return r.supervisor.Stop(ctx, h, r.stopTimeout)
}

// Build prefers the package's build script, falling back to tsc.
func (r *NodeRuntime) Build(ctx context.Context, svc *project.Service) error {
	pkg, err := readPackageJSON(svc.Path)
	if err != nil {
		return err
	}
	if pkg != nil {
		if _, ok := pkg.Scripts["build"]; ok {
			return r.supervisor.Run(ctx, []string{"npm", "run", "build"}, svc.Path)
		}
	}
	if fileExists(filepath.Join(svc.Path, "tsconfig.json")) {
		return r.supervisor.Run(ctx, []string{"npx", "tsc"}, svc.Path)
	}
	return r.supervisor.Run(ctx, []string{"npm", "run", "build"}, svc.Path)
}

// Test runs the package's test script.
func (r *NodeRuntime) Test(ctx context.Context, svc *project.Service) error {
	return r.supervisor.Run(ctx, []string{"npm", "test"}, svc.Path)
}

// Environment returns Node-specific defaults for the service's process.
func (r *NodeRuntime) Environment(svc *project.Service) map[string]string {
	return map[string]string{
		"NODE_ENV":    "development",
		"FORCE_COLOR": "1",
	}
}
