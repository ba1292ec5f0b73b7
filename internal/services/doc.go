// Package services defines shared utilities consumed by the enrichment engine
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, pass numbers, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the engine tell a
//     fatal configuration problem apart from a transient lookup failure.
//
// Use these helpers when wiring new components so failure handling and
// observability stay uniform across the fetch pipeline.
package services
