// Package output resolves where enrichment results are written and persists
// them as tab-indented JSON. It also reads earlier output files back so a
// partially enriched catalog can seed a new run.
package output
