// Package catalog turns raw title lists into normalized lookup candidates.
//
// A source is a JSON or YAML array, a plain text file, or an inline delimited
// string. Each entry is either a bare title or an object whose title and year
// live under configurable keys. Normalization never fails: malformed entries
// pass through best-effort and simply miss upstream.
package catalog
