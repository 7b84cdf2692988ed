// Package plugin defines the capability contracts services are driven
// through (language runtimes, schema compilers) and the registry that
// resolves a declared capability to an implementation.
//
// Third-party implementations register themselves into named
// extension-point groups; the registry validates each candidate at
// construction time and is immutable afterwards. The rest of the system
// only ever asks the registry for "a runtime for language X" or "a
// compiler for (format, language)" and never depends on how a plugin was
// located.
package plugin
