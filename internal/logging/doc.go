// Package logging constructs the slog loggers used across cadenza and
// provides shared attribute helpers and field names so log output stays
// consistent between the pipeline and the CLI.
package logging
