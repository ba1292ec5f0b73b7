// Package omdb provides the minimal Open Movie Database client used by the
// enrichment engine.
//
// It issues one title lookup per call (`?t=<title>&type=movie&apikey=<key>`,
// plus `&y=<year>` when a year is known) and decodes the full payload. OMDb
// reports misses in-band with `"Response": "False"`, so a miss is a normal
// result rather than an error. Options allow tests to supply custom HTTP
// clients without modifying production code.
package omdb
