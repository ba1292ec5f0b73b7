// Package config loads, normalizes, and validates moviemeta configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OMDB_API_KEY. The Config type centralizes every knob the CLI and the
// enrichment engine need: upstream API credentials and timeouts, the shape of
// object-based source lists, output file templates, and display options.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
