package preflight

import (
	"context"

	"moviemeta/internal/config"
	"moviemeta/internal/omdb"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunLocal executes the checks that need no network access.
func RunLocal(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if cfg.Journal.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// RunAll executes the local checks plus the API key and OMDb checks. When
// looker is nil a client is built from cfg.
func RunAll(ctx context.Context, cfg *config.Config, looker omdb.Looker) []Result {
	if cfg == nil {
		return nil
	}

	results := RunLocal(cfg)
	key := CheckAPIKey(cfg)
	results = append(results, key)
	if !key.Passed {
		return results
	}

	if looker == nil {
		client, err := omdb.New(cfg.OMDb.APIKey, cfg.OMDb.BaseURL, omdb.WithMediaType(cfg.OMDb.MediaType))
		if err != nil {
			return append(results, Result{Name: "OMDb", Detail: err.Error()})
		}
		looker = client
	}
	return append(results, CheckOMDb(ctx, looker, cfg.RequestTimeout()))
}
