// Package app assembles the workspace use cases. It owns construction
// order (settings, config, graph, plugins, orchestrator, schema pipeline)
// and exposes one method per user-facing operation so that cmd/ stays a
// thin argument-parsing layer.
package app
