// Package main hosts the moviemeta CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, applies flag overrides and
// hands a normalized candidate list to the enrichment engine. Rendering
// (progress bar, verbose lines, tables) lives here; everything that touches
// the network, the journal or result files lives in internal packages.
package main
