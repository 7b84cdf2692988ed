// Package process spawns, observes and terminates the external OS
// processes that back running services.
//
// Termination escalates: every descendant of the process (enumerated via
// OS process introspection) and then the process itself receive a graceful
// termination signal; if the process has not exited within the timeout the
// whole process group is force-killed and the final wait is unconditional,
// so a stopped handle never leaves a zombie behind. Platform-specific
// signal semantics are confined to this package so everything above it can
// be tested against the Supervisor interface.
package process
