package enrich

import (
	"context"
	"errors"

	"moviemeta/internal/catalog"
	"moviemeta/internal/omdb"
)

// Outcome classifies a single lookup.
type Outcome int

const (
	// OutcomeAborted means the lookup did not resolve: it timed out, was
	// cancelled, or failed below the API level.
	OutcomeAborted Outcome = iota
	OutcomeFound
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "aborted"
	}
}

// Result is the outcome of one lookup. Movie is only meaningful when Found.
type Result struct {
	Outcome Outcome
	Movie   omdb.Movie
}

// Fetcher performs one lookup per call. Implementations must return promptly
// once ctx is done. Any returned error is treated as OutcomeAborted unless it
// carries services.ErrConfiguration.
type Fetcher interface {
	Fetch(ctx context.Context, c catalog.Candidate) (Result, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, c catalog.Candidate) (Result, error)

func (f FetcherFunc) Fetch(ctx context.Context, c catalog.Candidate) (Result, error) {
	return f(ctx, c)
}

// OMDbFetcher classifies OMDb lookups.
type OMDbFetcher struct {
	Client omdb.Looker
}

// NewOMDbFetcher wraps an OMDb client.
func NewOMDbFetcher(client omdb.Looker) *OMDbFetcher {
	return &OMDbFetcher{Client: client}
}

// Fetch looks up c and maps the payload's Response flag onto an Outcome.
func (f *OMDbFetcher) Fetch(ctx context.Context, c catalog.Candidate) (Result, error) {
	if f == nil || f.Client == nil {
		return Result{}, errors.New("omdb fetcher has no client")
	}
	res, err := f.Client.Lookup(ctx, c.Title, c.Year)
	if err != nil {
		return Result{Outcome: OutcomeAborted}, err
	}
	if res.Found {
		return Result{Outcome: OutcomeFound, Movie: res.Movie}, nil
	}
	return Result{Outcome: OutcomeNotFound}, nil
}
