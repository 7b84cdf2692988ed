package language

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lychee/internal/project"
)

func nodeService(t *testing.T, framework string) *project.Service {
	t.Helper()
	return &project.Service{
		Name:      "web",
		Path:      t.TempDir(),
		Language:  "typescript",
		Framework: framework,
	}
}

func writePackageJSON(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0644))
}

func TestNodeDetectFramework(t *testing.T) {
	tests := []struct {
		name     string
		pkg      string
		expected string
	}{
		{"nextjs", `{"dependencies": {"next": "14.0.0"}}`, "nextjs"},
		{"express", `{"dependencies": {"express": "4.18.0"}}`, "express"},
		{"nestjs", `{"dependencies": {"@nestjs/core": "10.0.0"}}`, "nestjs"},
		{"react", `{"dependencies": {"react": "18.0.0", "react-dom": "18.0.0"}}`, "react"},
		{"react without dom", `{"dependencies": {"react": "18.0.0"}}`, ""},
		{"dev dependency counts", `{"devDependencies": {"next": "14.0.0"}}`, "nextjs"},
		{"nothing known", `{"dependencies": {"lodash": "4.0.0"}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewNodeRuntime(&fakeSupervisor{}, time.Second)
			dir := t.TempDir()
			writePackageJSON(t, dir, tt.pkg)

			framework, err := rt.DetectFramework(context.Background(), dir)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, framework)
		})
	}
}

func TestNodeDetectFrameworkNoPackageJSON(t *testing.T) {
	rt := NewNodeRuntime(&fakeSupervisor{}, time.Second)
	framework, err := rt.DetectFramework(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, framework)
}

func TestNodeStartCommand(t *testing.T) {
	tests := []struct {
		name      string
		framework string
		files     map[string]string
		entry     string
		expected  []string
	}{
		{
			name:      "nextjs",
			framework: "nextjs",
			expected:  []string{"npm", "run", "dev"},
		},
		{
			name:      "express with tsconfig",
			framework: "express",
			files:     map[string]string{"tsconfig.json": "{}"},
			expected:  []string{"npx", "tsx", "watch", "src/index.ts"},
		},
		{
			name:      "express plain node",
			framework: "express",
			entry:     "server.js",
			expected:  []string{"node", "server.js"},
		},
		{
			name:      "nestjs",
			framework: "nestjs",
			expected:  []string{"npm", "run", "start:dev"},
		},
		{
			name:      "react",
			framework: "react",
			expected:  []string{"npm", "run", "start"},
		},
		{
			name:     "default",
			expected: []string{"npm", "run", "dev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewNodeRuntime(&fakeSupervisor{}, time.Second)
			svc := nodeService(t, tt.framework)
			svc.Runtime.EntryPoint = tt.entry
			for name, content := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(svc.Path, name), []byte(content), 0644))
			}

			argv, err := rt.StartCommand(context.Background(), svc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, argv)
		})
	}
}

func TestNodeInstallSkipsWithoutPackageJSON(t *testing.T) {
	sup := &fakeSupervisor{}
	rt := NewNodeRuntime(sup, time.Second)

	require.NoError(t, rt.Install(context.Background(), nodeService(t, "")))
	assert.Empty(t, sup.ran)
}

func TestNodeInstall(t *testing.T) {
	sup := &fakeSupervisor{}
	rt := NewNodeRuntime(sup, time.Second)
	svc := nodeService(t, "")
	writePackageJSON(t, svc.Path, `{"dependencies": {}}`)

	require.NoError(t, rt.Install(context.Background(), svc))
	require.Len(t, sup.ran, 1)
	assert.Equal(t, []string{"npm", "install"}, sup.ran[0])
}

func TestNodeBuildPrefersScript(t *testing.T) {
	sup := &fakeSupervisor{}
	rt := NewNodeRuntime(sup, time.Second)
	svc := nodeService(t, "")
	writePackageJSON(t, svc.Path, `{"scripts": {"build": "tsc -p ."}}`)

	require.NoError(t, rt.Build(context.Background(), svc))
	require.Len(t, sup.ran, 1)
	assert.Equal(t, []string{"npm", "run", "build"}, sup.ran[0])
}

func TestNodeBuildFallsBackToTsc(t *testing.T) {
	sup := &fakeSupervisor{}
	rt := NewNodeRuntime(sup, time.Second)
	svc := nodeService(t, "")
	writePackageJSON(t, svc.Path, `{}`)
	require.NoError(t, os.WriteFile(filepath.Join(svc.Path, "tsconfig.json"), []byte("{}"), 0644))

	require.NoError(t, rt.Build(context.Background(), svc))
	require.Len(t, sup.ran, 1)
	assert.Equal(t, []string{"npx", "tsc"}, sup.ran[0])
}

func TestNodeEnvironment(t *testing.T) {
	rt := NewNodeRuntime(&fakeSupervisor{}, time.Second)
	env := rt.Environment(nodeService(t, ""))
	assert.Equal(t, "development", env["NODE_ENV"])
	assert.Equal(t, "1", env["FORCE_COLOR"])
}
