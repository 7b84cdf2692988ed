package language

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lychee/internal/process"
	"lychee/internal/project"
)

// fakeSupervisor records the commands it is asked to run.
type fakeSupervisor struct {
	started [][]string
	ran     [][]string
	stopped []*process.Handle
}

func (f *fakeSupervisor) Start(ctx context.Context, argv []string, dir string, env []string) (*process.Handle, error) {
	f.started = append(f.started, argv)
	return &process.Handle{PID: 4242}, nil
}

func (f *fakeSupervisor) Stop(ctx context.Context, h *process.Handle, timeout time.Duration) error {
	f.stopped = append(f.stopped, h)
	return nil
}

func (f *fakeSupervisor) IsRunning(h *process.Handle) bool { return false }

func (f *fakeSupervisor) Run(ctx context.Context, argv []string, dir string) error {
	f.ran = append(f.ran, argv)
	return nil
}

func pythonService(t *testing.T, framework string) *project.Service {
	t.Helper()
	return &project.Service{
		Name:      "api",
		Path:      t.TempDir(),
		Language:  "python",
		Framework: framework,
		Runtime:   project.Runtime{Port: 8001, EntryPoint: "main:app"},
	}
}

func TestPythonStartCommandFastAPI(t *testing.T) {
	rt := NewPythonRuntime(&fakeSupervisor{}, time.Second)
	svc := pythonService(t, "fastapi")

	argv, err := rt.StartCommand(context.Background(), svc)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"python3", "-m", "uvicorn", "main:app",
		"--reload",
		"--host", "0.0.0.0",
		"--port", "8001",
		"--app-dir", svc.Path,
	}, argv)
}

func TestPythonStartCommandFlask(t *testing.T) {
	rt := NewPythonRuntime(&fakeSupervisor{}, time.Second)
	svc := pythonService(t, "flask")

	argv, err := rt.StartCommand(context.Background(), svc)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"python3", "-m", "flask", "run",
		"--host", "0.0.0.0",
		"--port", "8001",
	}, argv)
}

func TestPythonStartCommandPlainScript(t *testing.T) {
	rt := NewPythonRuntime(&fakeSupervisor{}, time.Second)
	svc := pythonService(t, "")
	svc.Runtime.EntryPoint = ""

	argv, err := rt.StartCommand(context.Background(), svc)
	require.NoError(t, err)

	assert.Equal(t, []string{"python3", "main.py"}, argv)
}

func TestPythonStartCommandUsesVenvInterpreter(t *testing.T) {
	rt := NewPythonRuntime(&fakeSupervisor{}, time.Second)
	svc := pythonService(t, "")
	svc.Runtime.EntryPoint = "serve.py"

	venvBin := filepath.Join(svc.Path, ".venv", "bin")
	require.NoError(t, os.MkdirAll(venvBin, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(venvBin, "python"), []byte("#!/bin/sh\n"), 0755))

	argv, err := rt.StartCommand(context.Background(), svc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(venvBin, "python"), argv[0])
}

func TestPythonDetectFramework(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		expected string
	}{
		{"fastapi in pyproject", "pyproject.toml", "[project]\ndependencies = [\"fastapi\", \"uvicorn\"]\n", "fastapi"},
		{"flask in requirements", "requirements.txt", "Flask==3.0.0\n", "flask"},
		{"no framework", "requirements.txt", "requests==2.31.0\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewPythonRuntime(&fakeSupervisor{}, time.Second)
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(tt.content), 0644))

			framework, err := rt.DetectFramework(context.Background(), dir)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, framework)
		})
	}
}

func TestPythonDetectFrameworkNoFiles(t *testing.T) {
	rt := NewPythonRuntime(&fakeSupervisor{}, time.Second)
	framework, err := rt.DetectFramework(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, framework)
}

func TestPythonInstallWritesVersionFile(t *testing.T) {
	sup := &fakeSupervisor{}
	rt := NewPythonRuntime(sup, time.Second)
	svc := pythonService(t, "")
	svc.Runtime.VersionInfo = map[string]string{"python_version": "3.11"}

	require.NoError(t, rt.Install(context.Background(), svc))

	data, err := os.ReadFile(filepath.Join(svc.Path, ".python-version"))
	require.NoError(t, err)
	assert.Equal(t, "3.11\n", string(data))

	// pip install uv, then uv venv; no dependency file, so nothing more.
	require.Len(t, sup.ran, 2)
	assert.Contains(t, sup.ran[0], "uv")
	assert.Contains(t, sup.ran[1], "venv")
}

func TestPythonInstallWithRequirements(t *testing.T) {
	sup := &fakeSupervisor{}
	rt := NewPythonRuntime(sup, time.Second)
	svc := pythonService(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(svc.Path, "requirements.txt"), []byte("requests\n"), 0644))

	require.NoError(t, rt.Install(context.Background(), svc))

	require.Len(t, sup.ran, 3)
	assert.Equal(t, []string{"python3", "-m", "uv", "pip", "install", "-r", "requirements.txt"}, sup.ran[2])
}

func TestPythonEnvironment(t *testing.T) {
	rt := NewPythonRuntime(&fakeSupervisor{}, time.Second)
	svc := pythonService(t, "")

	env := rt.Environment(svc)
	assert.Equal(t, svc.Path, env["PYTHONPATH"])
	assert.Equal(t, "1", env["PYTHONUNBUFFERED"])
	assert.Equal(t, "1", env["PYTHONDONTWRITEBYTECODE"])
	assert.Equal(t, "1", env["PIP_NO_CACHE_DIR"])
}

func TestPythonStartDelegatesToSupervisor(t *testing.T) {
	sup := &fakeSupervisor{}
	rt := NewPythonRuntime(sup, time.Second)
	svc := pythonService(t, "flask")

	h, err := rt.Start(context.Background(), svc, []string{"A=1"})
	require.NoError(t, err)
	assert.Equal(t, 4242, h.PID)
	require.Len(t, sup.started, 1)

	require.NoError(t, rt.Stop(context.Background(), h))
	require.Len(t, sup.stopped, 1)
	assert.Same(t, h, sup.stopped[0])
}
