package output

import (
	"os"
	"path/filepath"
	"strings"

	"moviemeta/internal/config"
	"moviemeta/internal/services"
)

// SourcePlaceholder expands to the source file name without its extension.
const SourcePlaceholder = "%source%"

// InlineSourceName replaces SourcePlaceholder when titles were passed inline.
const InlineSourceName = "movies"

// Paths are the resolved result files of one run.
type Paths struct {
	Found    string
	NotFound string
}

// Resolve expands the output templates for source. Relative paths resolve
// against the source file's directory, or the working directory for inline
// sources. Overwrite replaces the found destination with the source file.
func Resolve(cfg config.Output, sourcePath string) (Paths, error) {
	baseDir, name, err := sourceContext(sourcePath)
	if err != nil {
		return Paths{}, err
	}

	found := expand(cfg.Destination, name, baseDir)
	if cfg.Overwrite {
		if sourcePath == "" {
			return Paths{}, services.Wrap(services.ErrValidation, "output", "resolve",
				"overwrite requires a source file", nil)
		}
		found = sourcePath
	}
	paths := Paths{
		Found:    found,
		NotFound: expand(cfg.NotFound, name, baseDir),
	}
	if paths.Found == "" {
		return Paths{}, services.Wrap(services.ErrValidation, "output", "resolve", "destination is empty", nil)
	}
	if paths.NotFound == paths.Found {
		return Paths{}, services.Wrap(services.ErrValidation, "output", "resolve",
			"destination and not-found file must differ", nil)
	}
	return paths, nil
}

func sourceContext(sourcePath string) (string, string, error) {
	if sourcePath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return wd, InlineSourceName, nil
	}
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", "", err
	}
	base := filepath.Base(abs)
	return filepath.Dir(abs), strings.TrimSuffix(base, filepath.Ext(base)), nil
}

func expand(template, name, baseDir string) string {
	template = strings.TrimSpace(template)
	if template == "" {
		return ""
	}
	resolved := strings.ReplaceAll(template, SourcePlaceholder, name)
	if strings.HasPrefix(resolved, "~") {
		if expanded, err := config.ExpandPath(resolved); err == nil {
			return expanded
		}
	}
	if filepath.IsAbs(resolved) {
		return filepath.Clean(resolved)
	}
	return filepath.Join(baseDir, resolved)
}
