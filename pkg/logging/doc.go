// Package logging provides a thin wrapper around log/slog that tags every
// entry with the subsystem it originated from. All packages in this
// repository log through it so that output stays uniform and filterable.
package logging
