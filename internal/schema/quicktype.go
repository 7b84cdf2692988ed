package schema

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lychee/internal/process"
)

// SchemaFileSuffix is the naming convention for schema files in the
// schemas directory.
const SchemaFileSuffix = ".schema.json"

// schemaName derives the logical schema name from a schema file path:
// "user.schema.json" -> "user".
func schemaName(schemaPath string) string {
	base := filepath.Base(schemaPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, ".schema")
}

// QuicktypePythonCompiler compiles JSON Schema to Python (Pydantic) types
// using quicktype via pnpm.
type QuicktypePythonCompiler struct {
	supervisor process.Supervisor
}

// NewQuicktypePythonCompiler creates the built-in JSON Schema -> Python
// compiler.
func NewQuicktypePythonCompiler(supervisor process.Supervisor) *QuicktypePythonCompiler {
	return &QuicktypePythonCompiler{supervisor: supervisor}
}

func (c *QuicktypePythonCompiler) Name() string { return "quicktype_py" }

func (c *QuicktypePythonCompiler) Supports(format, language string) bool {
	return (format == "json_schema" || format == "json-schema") && language == "python"
}

// Compile generates {outputDir}/{name}.py. Re-running overwrites the
// previous artifact.
func (c *QuicktypePythonCompiler) Compile(ctx context.Context, schemaPath, outputDir, projectRoot string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	generated := filepath.Join(outputDir, schemaName(schemaPath)+".py")

	argv := []string{
		"pnpm", "quicktype",
		"-s", "schema", schemaPath,
		"-l", "python",
		"-o", generated,
		"--just-types",
		"--pydantic-base-model",
	}
	if err := c.supervisor.Run(ctx, argv, projectRoot); err != nil {
		return err
	}

	if _, err := os.Stat(generated); err != nil {
		return fmt.Errorf("empty output from quicktype for %s", schemaPath)
	}
	return nil
}

// QuicktypeTypeScriptCompiler compiles JSON Schema to TypeScript
// interfaces using quicktype via pnpm.
type QuicktypeTypeScriptCompiler struct {
	supervisor process.Supervisor
}

// NewQuicktypeTypeScriptCompiler creates the built-in JSON Schema ->
// TypeScript compiler.
func NewQuicktypeTypeScriptCompiler(supervisor process.Supervisor) *QuicktypeTypeScriptCompiler {
	return &QuicktypeTypeScriptCompiler{supervisor: supervisor}
}

func (c *QuicktypeTypeScriptCompiler) Name() string { return "quicktype_ts" }

func (c *QuicktypeTypeScriptCompiler) Supports(format, language string) bool {
	return (format == "json_schema" || format == "json-schema") && language == "typescript"
}

// Compile generates {outputDir}/{name}.ts. Re-running overwrites the
// previous artifact.
func (c *QuicktypeTypeScriptCompiler) Compile(ctx context.Context, schemaPath, outputDir, projectRoot string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	generated := filepath.Join(outputDir, schemaName(schemaPath)+".ts")

	argv := []string{
		"pnpm", "quicktype",
		"-s", "schema", schemaPath,
		"-l", "typescript",
		"-o", generated,
		"--just-types",
	}
	if err := c.supervisor.Run(ctx, argv, projectRoot); err != nil {
		return err
	}

	if _, err := os.Stat(generated); err != nil {
		return fmt.Errorf("empty output from quicktype for %s", schemaPath)
	}
	return nil
}
