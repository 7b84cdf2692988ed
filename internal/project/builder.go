package project

import (
	"path/filepath"
	"sort"

	"lychee/internal/config"
)

// FromConfig builds the service graph from a resolved configuration.
// Service paths are resolved against root. Services are added in sorted
// name order so the graph (and with it the start order) is deterministic
// for a fixed configuration. The graph is not validated for cycles or
// unknown dependencies here; TopoOrder surfaces those when a start order
// is requested.
func FromConfig(cfg *config.Config, root string) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	proj := New(absRoot, append([]string(nil), cfg.Project.Languages...))

	names := make([]string, 0, len(cfg.Services))
	for name := range cfg.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		svcCfg := cfg.Services[name]
		rel := svcCfg.Path
		if rel == "" {
			rel = name
		}

		versionInfo := make(map[string]string)
		if svcCfg.Runtime.PythonVersion != "" {
			versionInfo["python_version"] = svcCfg.Runtime.PythonVersion
		}
		if svcCfg.Runtime.NodeVersion != "" {
			versionInfo["node_version"] = svcCfg.Runtime.NodeVersion
		}

		proj.AddService(&Service{
			Name:      name,
			Path:      filepath.Join(absRoot, rel),
			Language:  svcCfg.Type,
			Framework: svcCfg.Framework,
			Runtime: Runtime{
				Port:        svcCfg.Runtime.Port,
				EntryPoint:  svcCfg.Runtime.EntryPoint,
				VersionInfo: versionInfo,
			},
			DependsOnServices: append([]string(nil), svcCfg.Dependencies.Services...),
			DependsOnSchemas:  append([]string(nil), svcCfg.Dependencies.Schemas...),
			SchemasMountDir:   svcCfg.Schemas.MountDir,
			Environment:       svcCfg.Environment,
		})
	}

	return proj, nil
}
