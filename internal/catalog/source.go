package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"moviemeta/internal/logging"
	"moviemeta/internal/services"
)

// Source format labels.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatText   = "text"
	FormatInline = "inline"
)

// SourceOptions configures LoadSource.
type SourceOptions struct {
	Splitter string
	Logger   *slog.Logger
}

// Source is a loaded title list.
type Source struct {
	// Path is the absolute file path, or "" for inline lists.
	Path   string
	Format string
	Items  []any
}

// IsFile reports whether the list was read from a file.
func (s *Source) IsFile() bool {
	return s != nil && s.Path != ""
}

// IsStructured reports whether the list came from a JSON or YAML file, the
// only sources that may be overwritten with fetched metadata.
func (s *Source) IsStructured() bool {
	return s != nil && (s.Format == FormatJSON || s.Format == FormatYAML)
}

// LoadSource reads a title list. JSON and YAML paths are decoded as arrays,
// other existing files are split as text, and anything else is treated as an
// inline delimited list. Read and decode failures are logged and produce an
// empty list; only a missing source is an error.
func LoadSource(source string, opts SourceOptions) (*Source, error) {
	logger := logging.NewComponentLogger(opts.Logger, "catalog")
	if strings.TrimSpace(source) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "load source", "a source list is required", nil)
	}
	splitter := opts.Splitter
	if splitter == "" {
		splitter = "\n"
	}

	format := formatForPath(source)
	if format == "" {
		if info, err := os.Stat(source); err == nil && info.Mode().IsRegular() {
			format = FormatText
		}
	}
	if format == "" {
		return &Source{Format: FormatInline, Items: splitItems(source, splitter)}, nil
	}

	path, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("resolve source path: %w", err)
	}
	out := &Source{Path: path, Format: format}
	items, err := readItems(path, format, splitter)
	if err != nil {
		logging.WarnWithContext(logger, "source list unreadable", "source_read_failed",
			logging.String("path", path),
			logging.String("format", format),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the file exists and contains a JSON/YAML array"),
			logging.String(logging.FieldImpact, "no titles will be fetched"))
		return out, nil
	}
	out.Items = items
	logger.Debug("source list loaded",
		logging.String("path", path),
		logging.String("format", format),
		logging.Int("items", len(items)))
	return out, nil
}

func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(path))) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

func readItems(path, format, splitter string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return splitItems(string(data), splitter), nil
	}
}

func decodeJSON(data []byte) ([]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var items []any
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("decode json source: %w", err)
	}
	return items, nil
}

func decodeYAML(data []byte) ([]any, error) {
	var items []any
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode yaml source: %w", err)
	}
	for i, item := range items {
		items[i] = stringKeys(item)
	}
	return items, nil
}

// stringKeys converts map[any]any nodes that yaml may produce for non-string
// keys into map[string]any so Normalize can read them.
func stringKeys(item any) any {
	m, ok := item.(map[any]any)
	if !ok {
		return item
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = v
	}
	return out
}

func splitItems(raw, splitter string) []any {
	parts := strings.Split(raw, splitter)
	items := make([]any, 0, len(parts))
	for _, part := range parts {
		title := strings.TrimSpace(part)
		if title == "" {
			continue
		}
		items = append(items, title)
	}
	return items
}
