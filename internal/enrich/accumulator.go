package enrich

import (
	"moviemeta/internal/catalog"
	"moviemeta/internal/omdb"
)

// Event is emitted once per classified candidate.
type Event struct {
	Candidate catalog.Candidate
	Found     bool
	// Movie is set for found candidates.
	Movie *omdb.Movie
}

// Label returns the display title: the upstream title when found, else the
// candidate title.
func (e Event) Label() string {
	if e.Found && e.Movie != nil && e.Movie.Title != "" {
		return e.Movie.Title
	}
	return e.Candidate.Title
}

// Progress carries running totals alongside each event.
type Progress struct {
	// Classified counts events emitted by this run.
	Classified int
	// Total is the number of candidates that need classification. It starts
	// at the count passed to OnStart and shrinks when a classification covers
	// a later candidate as well.
	Total    int
	Found    int
	NotFound int
}

// accumulator appends to the run state and fires exactly one observer event
// per classification.
type accumulator struct {
	state      *RunState
	observer   Observer
	total      int
	classified int
}

func (a *accumulator) recordFound(query catalog.Candidate, movie omdb.Movie) Event {
	rec := a.state.appendFound(query, movie)
	return a.emit(Event{Candidate: query, Found: true, Movie: &rec.Movie})
}

func (a *accumulator) recordNotFound(query catalog.Candidate) Event {
	a.state.appendNotFound(query)
	return a.emit(Event{Candidate: query})
}

func (a *accumulator) emit(ev Event) Event {
	a.classified++
	a.observer.OnClassified(ev, Progress{
		Classified: a.classified,
		Total:      a.total,
		Found:      len(a.state.found),
		NotFound:   len(a.state.notFound),
	})
	return ev
}
