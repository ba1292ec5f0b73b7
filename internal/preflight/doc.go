// Package preflight provides readiness checks for the filesystem paths and
// the OMDb endpoint moviemeta depends on.
//
// These checks run in two contexts:
//   - The fetch command calls RunLocal before opening the journal so an
//     unwritable state directory fails before any lookup is made.
//   - The CLI "moviemeta status" command calls RunAll, which adds an OMDb
//     probe lookup to verify the endpoint and the API key.
package preflight
