package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOMDb()
	c.normalizeSource()
	c.normalizeOutput()
	c.normalizeDisplay()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOMDb() {
	if c.OMDb.APIKey == "" {
		if value, ok := os.LookupEnv("OMDB_API_KEY"); ok {
			c.OMDb.APIKey = value
		}
	}
	c.OMDb.APIKey = strings.TrimSpace(c.OMDb.APIKey)
	c.OMDb.BaseURL = strings.TrimSpace(c.OMDb.BaseURL)
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = defaultOMDbBaseURL
	}
	c.OMDb.MediaType = strings.ToLower(strings.TrimSpace(c.OMDb.MediaType))
	if c.OMDb.MediaType == "" {
		c.OMDb.MediaType = defaultOMDbMediaType
	}
	if c.OMDb.RequestTimeout == 0 {
		c.OMDb.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeSource() {
	// The splitter is used verbatim; only an unset value falls back.
	if c.Source.Splitter == "" {
		c.Source.Splitter = defaultSplitter
	}
	c.Source.TitleKey = strings.TrimSpace(c.Source.TitleKey)
	if c.Source.TitleKey == "" {
		c.Source.TitleKey = defaultTitleKey
	}
	c.Source.YearKey = strings.TrimSpace(c.Source.YearKey)
	if c.Source.YearKey == "" {
		c.Source.YearKey = defaultYearKey
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Destination = strings.TrimSpace(c.Output.Destination)
	if c.Output.Destination == "" {
		c.Output.Destination = defaultDestinationTemplate
	}
	c.Output.NotFound = strings.TrimSpace(c.Output.NotFound)
	if c.Output.NotFound == "" {
		c.Output.NotFound = defaultNotFoundTemplate
	}
}

// normalizeDisplay enforces that only one of verbose or progress is active.
func (c *Config) normalizeDisplay() {
	if c.Display.Verbose {
		c.Display.Progress = false
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// Finalize re-applies normalization after command-line overrides.
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}
