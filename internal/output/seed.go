package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"moviemeta/internal/enrich"
)

// LoadExisting reads result files from an earlier run. Missing files yield
// empty lists. A found file that is really the source list (overwrite mode
// before the first run) contributes only entries that carry an OMDb payload.
func LoadExisting(paths Paths) ([]enrich.FoundRecord, []enrich.NotFoundRecord, error) {
	found, err := readFound(paths.Found)
	if err != nil {
		return nil, nil, err
	}
	notFound, err := readNotFound(paths.NotFound)
	if err != nil {
		return nil, nil, err
	}
	return found, notFound, nil
}

func readFound(path string) ([]enrich.FoundRecord, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out := make([]enrich.FoundRecord, 0, len(raw))
	for _, item := range raw {
		var rec enrich.FoundRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			// Bare title strings from an un-enriched list.
			continue
		}
		if rec.Movie.Title == "" || rec.Movie.Response == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func readNotFound(path string) ([]enrich.NotFoundRecord, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}
	var out []enrich.NotFoundRecord
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
