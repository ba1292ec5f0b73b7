package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"moviemeta/internal/enrich"
	"moviemeta/internal/fileutil"
)

// Written reports which files a Write call produced.
type Written struct {
	Found    string
	NotFound string
}

// Write persists the found records to paths.Found and, only when there are
// any, the not-found records to paths.NotFound.
func Write(paths Paths, state *enrich.RunState) (Written, error) {
	var written Written
	if state == nil {
		return written, fmt.Errorf("write results: nil state")
	}

	found := state.Found()
	if found == nil {
		found = []enrich.FoundRecord{}
	}
	data, err := Encode(found)
	if err != nil {
		return written, fmt.Errorf("encode found records: %w", err)
	}
	if err := fileutil.WriteAtomic(paths.Found, data, 0o644); err != nil {
		return written, fmt.Errorf("write %s: %w", paths.Found, err)
	}
	written.Found = paths.Found

	notFound := state.NotFound()
	if len(notFound) == 0 || paths.NotFound == "" {
		return written, nil
	}
	data, err = Encode(notFound)
	if err != nil {
		return written, fmt.Errorf("encode not-found records: %w", err)
	}
	if err := fileutil.WriteAtomic(paths.NotFound, data, 0o644); err != nil {
		return written, fmt.Errorf("write %s: %w", paths.NotFound, err)
	}
	written.NotFound = paths.NotFound
	return written, nil
}

// Encode renders v as tab-indented JSON with a trailing newline. HTML
// characters are left unescaped.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
