// Package textutil provides the text normalization used by title matching.
//
// Titles are compared with Unicode case folding rather than plain lowercasing
// so "STRASSE" and "straße" style variants collapse to the same identity.
package textutil
