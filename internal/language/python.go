package language

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lychee/internal/process"
	"lychee/internal/project"
	"lychee/pkg/logging"
)

// DefaultPythonVersion is pinned into .python-version when the service
// does not declare one.
const DefaultPythonVersion = "3.12"

const defaultHTTPPort = 8000

// PythonRuntime is the built-in runtime for Python services. It manages a
// per-service virtual environment via uv and knows the start commands of
// the supported frameworks (fastapi, flask).
type PythonRuntime struct {
	supervisor  process.Supervisor
	stopTimeout time.Duration
}

// NewPythonRuntime creates the built-in Python runtime on top of the given
// supervisor.
func NewPythonRuntime(supervisor process.Supervisor, stopTimeout time.Duration) *PythonRuntime {
	return &PythonRuntime{supervisor: supervisor, stopTimeout: stopTimeout}
}

func (r *PythonRuntime) Language() string { return "python" }

// DetectFramework looks for a known framework in the service's declared
// dependencies (pyproject.toml or requirements.txt).
func (r *PythonRuntime) DetectFramework(ctx context.Context, servicePath string) (string, error) {
	for _, framework := range []string{"fastapi", "flask"} {
		found, err := hasPythonDependency(servicePath, framework)
		if err != nil {
			return "", err
		}
		if found {
			return framework, nil
		}
	}
	return "", nil
}

// Install prepares the service's virtual environment and dependencies.
func (r *PythonRuntime) Install(ctx context.Context, svc *project.Service) error {
	version := svc.Runtime.VersionInfo["python_version"]
	if version == "" {
		version = DefaultPythonVersion
	}
	versionFile := filepath.Join(svc.Path, ".python-version")
	if err := os.WriteFile(versionFile, []byte(version+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", versionFile, err)
	}

	if err := r.supervisor.Run(ctx, []string{"python3", "-m", "pip", "install", "uv"}, svc.Path); err != nil {
		return fmt.Errorf("failed to install uv: %w", err)
	}
	if err := r.supervisor.Run(ctx, []string{"python3", "-m", "uv", "venv"}, svc.Path); err != nil {
		return fmt.Errorf("failed to create virtualenv: %w", err)
	}

	switch {
	case fileExists(filepath.Join(svc.Path, "pyproject.toml")):
		return r.supervisor.Run(ctx, []string{"python3", "-m", "uv", "sync"}, svc.Path)
	case fileExists(filepath.Join(svc.Path, "requirements.txt")):
		return r.supervisor.Run(ctx, []string{"python3", "-m", "uv", "pip", "install", "-r", "requirements.txt"}, svc.Path)
	default:
		logging.Warn("PythonRuntime", "No dependency file found in %s. Consider adding pyproject.toml or requirements.txt.", svc.Path)
		return nil
	}
}

// StartCommand builds the argv for the service's process without spawning
// it. Exposed so the command shape is testable on its own.
func (r *PythonRuntime) StartCommand(ctx context.Context, svc *project.Service) ([]string, error) {
	python := r.pythonExecutable(svc.Path)

	framework := svc.Framework
	if framework == "" {
		detected, err := r.DetectFramework(ctx, svc.Path)
		if err != nil {
			return nil, err
		}
		framework = detected
	}

	port := svc.Runtime.Port
	if port == 0 {
		port = defaultHTTPPort
	}

	switch framework {
	case "fastapi":
		entry := svc.Runtime.EntryPoint
		if entry == "" {
			entry = "main:app"
		}
		return []string{
			python, "-m", "uvicorn", entry,
			"--reload",
			"--host", "0.0.0.0",
			"--port", fmt.Sprintf("%d", port),
			"--app-dir", svc.Path,
		}, nil
	case "flask":
		return []string{
			python, "-m", "flask", "run",
			"--host", "0.0.0.0",
			"--port", fmt.Sprintf("%d", port),
		}, nil
	default:
		entry := svc.Runtime.EntryPoint
		if entry == "" {
			entry = "main.py"
		}
		return []string{python, entry}, nil
	}
}

// Start spawns the service's process.
func (r *PythonRuntime) Start(ctx context.Context, svc *project.Service, env []string) (*process.Handle, error) {
	argv, err := r.StartCommand(ctx, svc)
	if err != nil {
		return nil, err
	}
	return r.supervisor.Start(ctx, argv, svc.Path, env)
}

// Stop terminates a process previously returned by Start.
func (r *PythonRuntime) Stop(ctx context.Context, h *process.Handle) error {
	return r.supervisor.Stop(ctx, h, r.stopTimeout)
}

// Build builds the service.
func (r *PythonRuntime) Build(ctx context.Context, svc *project.Service) error {
	return r.supervisor.Run(ctx, []string{r.pythonExecutable(svc.Path), "-m", "build"}, svc.Path)
}

// Test runs the service's tests: pytest when the service uses it,
// unittest discovery when a test directory exists, otherwise nothing.
func (r *PythonRuntime) Test(ctx context.Context, svc *project.Service) error {
	python := r.pythonExecutable(svc.Path)

	usesPytest := fileExists(filepath.Join(svc.Path, "pytest.ini"))
	if !usesPytest {
		found, err := hasPythonDependency(svc.Path, "pytest")
		if err != nil {
			return err
		}
		usesPytest = found
	}
	if usesPytest {
		return r.supervisor.Run(ctx, []string{python, "-m", "pytest", "-v"}, svc.Path)
	}

	for _, dir := range []string{"test", "tests"} {
		if dirExists(filepath.Join(svc.Path, dir)) {
			return r.supervisor.Run(ctx, []string{python, "-m", "unittest", "discover", "-p", "test*"}, svc.Path)
		}
	}

	logging.Info("PythonRuntime", "No tests or testing modules found in %s", svc.Path)
	return nil
}

// Environment returns Python-specific defaults for the service's process.
func (r *PythonRuntime) Environment(svc *project.Service) map[string]string {
	return map[string]string{
		"PYTHONPATH":              svc.Path,
		"PYTHONUNBUFFERED":        "1",
		"PYTHONDONTWRITEBYTECODE": "1",
		"PIP_NO_CACHE_DIR":        "1",
	}
}

// pythonExecutable prefers the service's own virtualenv interpreter.
func (r *PythonRuntime) pythonExecutable(servicePath string) string {
	venvPython := filepath.Join(servicePath, ".venv", "bin", "python")
	if fileExists(venvPython) {
		return venvPython
	}
	return "python3"
}

// hasPythonDependency reports whether the dependency name appears in the
// service's pyproject.toml or requirements.txt. A substring check is
// enough here: the callers probe for unambiguous package names.
func hasPythonDependency(servicePath, name string) (bool, error) {
	for _, file := range []string{"pyproject.toml", "requirements.txt"} {
		path := filepath.Join(servicePath, file)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if strings.Contains(strings.ToLower(string(data)), name) {
			return true, nil
		}
	}
	return false, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
