// Package project models the workspace as a dependency graph of services.
//
// A Project is built once per invocation from the resolved configuration
// and is read-only afterwards. It answers dependency queries and produces
// a deterministic topological start order; structural problems in the
// graph (cycles, references to undefined services) surface as typed
// errors because no valid order exists for such a graph.
package project
