package config

// Config is the top-level resolved configuration for a lychee workspace,
// loaded from lychee.yaml at the project root. File merging, includes and
// environment-variable substitution happen before this structure is built;
// the core consumes it as-is.
type Config struct {
	Version     float64                  `yaml:"version"`
	Project     ProjectConfig            `yaml:"project"`
	Schemas     SchemasConfig            `yaml:"schemas"`
	Environment map[string]string        `yaml:"environment,omitempty"`
	Services    map[string]ServiceConfig `yaml:"services,omitempty"`
	Plugins     []PluginRef              `yaml:"plugins,omitempty"`
}

// ProjectConfig holds project-level settings.
type ProjectConfig struct {
	// Languages are the target languages for generated schema types.
	Languages []string `yaml:"languages,omitempty"`
}

// SchemasConfig configures schema compilation and mounting.
type SchemasConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
	// Format of the schema files (default: json_schema).
	Format string `yaml:"format,omitempty"`
	// Dir is the project-relative directory holding schema files (default: schemas).
	Dir string `yaml:"dir,omitempty"`
	// OutputPath is the project-relative root of generated code
	// (default: generated/schemas). One subdirectory per target language.
	OutputPath string `yaml:"output_path,omitempty"`
}

// RuntimeConfig is the runtime descriptor of one service.
type RuntimeConfig struct {
	Port          int    `yaml:"port,omitempty"`
	EntryPoint    string `yaml:"entry_point,omitempty"`
	PythonVersion string `yaml:"python_version,omitempty"`
	NodeVersion   string `yaml:"node_version,omitempty"`
}

// DependenciesConfig lists what a service depends on.
type DependenciesConfig struct {
	Services []string `yaml:"services,omitempty"`
	Schemas  []string `yaml:"schemas,omitempty"`
}

// ServiceSchemasConfig configures where generated types are mounted inside
// a service.
type ServiceSchemasConfig struct {
	MountDir string `yaml:"mount_dir,omitempty"`
}

// ServiceConfig is the resolved configuration of a single service.
type ServiceConfig struct {
	// Type is the language tag ("python", "typescript", ...).
	Type string `yaml:"type"`
	// Path is relative to the project root.
	Path         string               `yaml:"path"`
	Framework    string               `yaml:"framework,omitempty"`
	Runtime      RuntimeConfig        `yaml:"runtime,omitempty"`
	Dependencies DependenciesConfig   `yaml:"dependencies,omitempty"`
	Schemas      ServiceSchemasConfig `yaml:"schemas,omitempty"`
	Environment  map[string]string    `yaml:"environment,omitempty"`
}

// PluginRef declares a plugin by name. Non-empty Plugins acts as an
// allowlist for discovered (non-built-in) plugins.
type PluginRef struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

const (
	// DefaultSchemaFormat is assumed when schemas.format is unset.
	DefaultSchemaFormat = "json_schema"
	// DefaultSchemasDir is assumed when schemas.dir is unset.
	DefaultSchemasDir = "schemas"
	// DefaultSchemasOutputPath is assumed when schemas.output_path is unset.
	DefaultSchemasOutputPath = "generated/schemas"
)

// applyDefaults fills unset schema settings with their defaults.
func (c *Config) applyDefaults() {
	if c.Schemas.Format == "" {
		c.Schemas.Format = DefaultSchemaFormat
	}
	if c.Schemas.Dir == "" {
		c.Schemas.Dir = DefaultSchemasDir
	}
	if c.Schemas.OutputPath == "" {
		c.Schemas.OutputPath = DefaultSchemasOutputPath
	}
}
