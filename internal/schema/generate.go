package schema

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"lychee/internal/config"
	"lychee/internal/plugin"
	"lychee/internal/project"
	"lychee/internal/symlink"
	"lychee/pkg/logging"
)

// Pipeline compiles the workspace's schema files into per-language type
// artifacts and mounts them into consuming services.
type Pipeline struct {
	cfg      config.SchemasConfig
	prj      *project.Project
	registry *plugin.Registry
}

// NewPipeline creates a pipeline for one workspace. Target languages come
// from the project's declaration.
func NewPipeline(cfg config.SchemasConfig, prj *project.Project, registry *plugin.Registry) *Pipeline {
	return &Pipeline{cfg: cfg, prj: prj, registry: registry}
}

// SchemasDir returns the absolute path of the schema source directory.
func (p *Pipeline) SchemasDir() string {
	return filepath.Join(p.prj.Root, p.cfg.Dir)
}

// OutputDir returns the absolute path of the generated-code root. Each
// target language gets its own subdirectory.
func (p *Pipeline) OutputDir() string {
	return filepath.Join(p.prj.Root, p.cfg.OutputPath)
}

// ListSchemas returns the schema files in the schemas directory, sorted by
// name. A missing directory yields an empty list, not an error.
func (p *Pipeline) ListSchemas() ([]string, error) {
	entries, err := os.ReadDir(p.SchemasDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schemas directory %s: %w", p.SchemasDir(), err)
	}

	var schemas []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SchemaFileSuffix) {
			continue
		}
		schemas = append(schemas, filepath.Join(p.SchemasDir(), entry.Name()))
	}
	sort.Strings(schemas)
	return schemas, nil
}

// Generate compiles every schema file for every configured target language,
// then mounts the generated artifacts into each consuming service. Pairs
// missing a capable compiler are skipped with a warning. All (schema,
// language) pairs run concurrently and fail independently: one bad pair is
// logged, the rest compile, mounting still happens, and the returned error
// summarises the failures.
func (p *Pipeline) Generate(ctx context.Context) error {
	schemas, err := p.ListSchemas()
	if err != nil {
		return err
	}
	if len(schemas) == 0 {
		logging.Info("Schema", "No schema files found in %s, nothing to generate", p.SchemasDir())
		return nil
	}

	var (
		mu     sync.Mutex
		failed []string
	)
	var g errgroup.Group
	for _, schemaPath := range schemas {
		for _, language := range p.prj.Languages {
			comp := p.registry.SchemaCompiler(strings.ToLower(p.cfg.Format), strings.ToLower(language))
			if comp == nil {
				logging.Warn("Schema", "No compiler supports format '%s' for language '%s', skipping %s",
					p.cfg.Format, language, filepath.Base(schemaPath))
				continue
			}
			outputDir := filepath.Join(p.OutputDir(), strings.ToLower(language))
			g.Go(func() error {
				logging.Info("Schema", "Compiling %s for %s", filepath.Base(schemaPath), language)
				if err := comp.Compile(ctx, schemaPath, outputDir, p.prj.Root); err != nil {
					logging.Error("Schema", err, "Failed to compile %s for %s", filepath.Base(schemaPath), language)
					mu.Lock()
					failed = append(failed, fmt.Sprintf("%s/%s", schemaName(schemaPath), strings.ToLower(language)))
					mu.Unlock()
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	mountErr := p.Mount()

	if len(failed) > 0 {
		sort.Strings(failed)
		if mountErr != nil {
			return fmt.Errorf("failed to compile schemas: %s; %w", strings.Join(failed, ", "), mountErr)
		}
		return fmt.Errorf("failed to compile schemas: %s", strings.Join(failed, ", "))
	}
	return mountErr
}

// Mount links the generated artifacts into every service that declares a
// mount directory. Mount failures are isolated per service; all services
// are attempted and the failures reported together.
func (p *Pipeline) Mount() error {
	var failed []string
	for _, name := range p.prj.Services() {
		svc, err := p.prj.Get(name)
		if err != nil {
			continue
		}
		if svc.SchemasMountDir == "" {
			continue
		}
		if err := p.mountService(svc); err != nil {
			logging.Error("Schema", err, "Failed to mount schemas into service '%s'", svc.Name)
			failed = append(failed, svc.Name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to mount schemas for services: %s", strings.Join(failed, ", "))
	}
	return nil
}

// mountService points {service}/{mount_dir} at the generated code for the
// service's language, clearing stale links from earlier layouts first.
func (p *Pipeline) mountService(svc *project.Service) error {
	if err := symlink.RemoveBroken(svc.Path); err != nil {
		return err
	}

	source := filepath.Join(p.OutputDir(), strings.ToLower(svc.Language))
	if _, err := os.Stat(source); os.IsNotExist(err) {
		logging.Warn("Schema", "No generated code for language '%s', skipping mount for service '%s'",
			svc.Language, svc.Name)
		return nil
	}

	target := filepath.Join(svc.Path, svc.SchemasMountDir)
	if err := symlink.Ensure(source, target); err != nil {
		return err
	}
	logging.Debug("Schema", "Mounted %s -> %s", target, source)
	return nil
}
