package project

// Runtime holds the runtime descriptor of a service: where it listens, how
// it is entered, and free-form version pins (python_version, node_version).
type Runtime struct {
	Port        int
	EntryPoint  string
	VersionInfo map[string]string
}

// Service is one independently runnable unit in the workspace. Instances are
// built once from the resolved configuration and treated as read-only.
type Service struct {
	// Name uniquely identifies the service within the project.
	Name string

	// Path is the absolute filesystem path of the service directory.
	Path string

	// Language is the language tag used to resolve a runtime plugin
	// (e.g. "python", "typescript").
	Language string

	// Framework is the declared framework, or empty to auto-detect.
	Framework string

	Runtime Runtime

	// DependsOnServices lists service names that must start before this one.
	DependsOnServices []string

	// DependsOnSchemas lists schema names this service consumes.
	DependsOnSchemas []string

	// SchemasMountDir is the service-relative path where generated types
	// are linked, or empty if the service mounts no schemas.
	SchemasMountDir string

	// Environment holds per-service environment overrides. They win over
	// project-level entries on key collision.
	Environment map[string]string
}
