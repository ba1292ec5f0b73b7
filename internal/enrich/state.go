package enrich

import (
	"bytes"
	"encoding/json"
	"fmt"

	"moviemeta/internal/catalog"
	"moviemeta/internal/omdb"
)

// FoundRecord is the metadata returned for a matched candidate. It serializes
// as the bare upstream payload.
type FoundRecord struct {
	// Query is the candidate that produced the record. It is empty for records
	// decoded from earlier output files.
	Query catalog.Candidate
	Movie omdb.Movie

	// payloadOnly marks records decoded from a bare payload, which carry no
	// query to match against.
	payloadOnly bool
}

// Represents reports whether the record covers candidate c.
func (r FoundRecord) Represents(c catalog.Candidate) bool {
	if !r.payloadOnly && c.Matches(r.Query.Title, r.Query.Year) {
		return true
	}
	return c.Matches(r.Movie.Title, r.Movie.Year)
}

// identities returns the candidates a state must already represent for the
// record to be redundant.
func (r FoundRecord) identities() []catalog.Candidate {
	payload := catalog.Candidate{Title: r.Movie.Title, Year: r.Movie.Year}
	if r.payloadOnly {
		return []catalog.Candidate{payload}
	}
	return []catalog.Candidate{r.Query, payload}
}

func (r FoundRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Movie)
}

func (r *FoundRecord) UnmarshalJSON(data []byte) error {
	var movie omdb.Movie
	if err := json.Unmarshal(data, &movie); err != nil {
		return err
	}
	*r = FoundRecord{Movie: movie, payloadOnly: true}
	return nil
}

// NotFoundRecord mirrors the candidate that missed upstream. It serializes as
// a bare title string, or as {"title", "year"} when a year was supplied.
type NotFoundRecord struct {
	Title string
	Year  string
}

// Candidate returns the record as a lookup candidate.
func (r NotFoundRecord) Candidate() catalog.Candidate {
	return catalog.Candidate{Title: r.Title, Year: r.Year}
}

// Represents reports whether the record covers candidate c.
func (r NotFoundRecord) Represents(c catalog.Candidate) bool {
	return c.Matches(r.Title, r.Year)
}

func (r NotFoundRecord) MarshalJSON() ([]byte, error) {
	if r.Year == "" {
		return json.Marshal(r.Title)
	}
	return json.Marshal(catalog.Candidate{Title: r.Title, Year: r.Year})
}

func (r *NotFoundRecord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var title string
		if err := json.Unmarshal(data, &title); err != nil {
			return err
		}
		*r = NotFoundRecord{Title: title}
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode not-found record: %w", err)
	}
	c := catalog.Normalize(raw, catalog.DefaultKeys())
	*r = NotFoundRecord{Title: c.Title, Year: c.Year}
	return nil
}

// RunState holds the results of one engine run. Both collections are
// append-only; callers receive copies.
type RunState struct {
	found    []FoundRecord
	notFound []NotFoundRecord
}

// NewRunState returns an empty state.
func NewRunState() *RunState {
	return &RunState{}
}

// Seed appends previously known results without emitting events. It is used
// to resume a run from the journal or from earlier output files. Records the
// state already represents are dropped, so seeding from several sources never
// classifies a title twice.
func (s *RunState) Seed(found []FoundRecord, notFound []NotFoundRecord) {
	for _, rec := range found {
		if s.representsAny(rec.identities()) {
			continue
		}
		s.found = append(s.found, rec)
	}
	for _, rec := range notFound {
		if s.Represents(rec.Candidate()) {
			continue
		}
		s.notFound = append(s.notFound, rec)
	}
}

func (s *RunState) representsAny(candidates []catalog.Candidate) bool {
	for _, c := range candidates {
		if s.Represents(c) {
			return true
		}
	}
	return false
}

// Found returns a copy of the found records in classification order.
func (s *RunState) Found() []FoundRecord {
	return append([]FoundRecord(nil), s.found...)
}

// NotFound returns a copy of the not-found records in classification order.
func (s *RunState) NotFound() []NotFoundRecord {
	return append([]NotFoundRecord(nil), s.notFound...)
}

// Len returns the number of classified records.
func (s *RunState) Len() int {
	return len(s.found) + len(s.notFound)
}

// Represents reports whether c is already classified.
func (s *RunState) Represents(c catalog.Candidate) bool {
	for _, r := range s.found {
		if r.Represents(c) {
			return true
		}
	}
	for _, r := range s.notFound {
		if r.Represents(c) {
			return true
		}
	}
	return false
}

func (s *RunState) appendFound(query catalog.Candidate, movie omdb.Movie) FoundRecord {
	rec := FoundRecord{Query: query, Movie: movie}
	s.found = append(s.found, rec)
	return rec
}

func (s *RunState) appendNotFound(query catalog.Candidate) NotFoundRecord {
	rec := NotFoundRecord{Title: query.Title, Year: query.Year}
	s.notFound = append(s.notFound, rec)
	return rec
}
