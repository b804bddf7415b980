// Package services defines shared utilities consumed by the pipeline and
// external integrations: context helpers that stamp item IDs, pass names,
// and correlation identifiers for logging, plus structured error markers and
// the Wrap helper that translate failures into consistent catalog statuses
// (failed vs review).
package services
