// Package notifications delivers run milestones via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The pipeline emits a fixed set of events (run started, run
// completed, error) so operators can follow unattended tagging runs without
// tailing logs.
//
// Extend this package if you need alternative transports; pipeline code
// depends only on the Service interface.
package notifications
