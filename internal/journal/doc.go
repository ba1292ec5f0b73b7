// Package journal records enrichment runs in a SQLite database so an
// interrupted run can be resumed without refetching what it already
// classified.
//
// Open applies embedded migrations and takes an exclusive file lock next to
// the database; only one moviemeta process may write a journal at a time.
// Recorder adapts a journal run to enrich.Observer.
package journal
