package plugin

import (
	"context"

	"lychee/internal/process"
	"lychee/internal/project"
)

// LanguageRuntime knows how to install, start, stop, build and test a
// service of one language. Implementations are stateless or cheaply
// constructed; the registry keeps one logical instance per language.
type LanguageRuntime interface {
	// Language returns the language tag this runtime serves
	// (e.g. "python", "typescript"). Matching is case-insensitive.
	Language() string

	// DetectFramework inspects the service directory and returns the
	// framework it appears to use, or "" if none was recognised.
	DetectFramework(ctx context.Context, servicePath string) (string, error)

	// Install prepares the service's dependencies so it can start.
	Install(ctx context.Context, svc *project.Service) error

	// Start spawns the service's process and returns a live handle.
	Start(ctx context.Context, svc *project.Service, env []string) (*process.Handle, error)

	// Stop terminates a process previously returned by Start.
	Stop(ctx context.Context, h *process.Handle) error

	// Build builds the service.
	Build(ctx context.Context, svc *project.Service) error

	// Test runs the service's test suite.
	Test(ctx context.Context, svc *project.Service) error

	// Environment returns language-specific default environment entries
	// for the service's process.
	Environment(svc *project.Service) map[string]string
}

// SchemaCompiler generates source code for one target language from one
// schema file.
type SchemaCompiler interface {
	// Name identifies the compiler for listings and allowlisting.
	Name() string

	// Supports reports whether the compiler handles the exact
	// (schema format, target language) pair. Both arguments arrive
	// lowercased.
	Supports(format, language string) bool

	// Compile generates code for schemaPath into outputDir. Re-running
	// with the same schema fully overwrites the prior artifacts.
	Compile(ctx context.Context, schemaPath, outputDir, projectRoot string) error
}
