package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"moviemeta/internal/services"
)

// Validate ensures the configuration is usable. The API key is checked
// separately by RequireAPIKey so commands that never reach the network can
// run without one.
func (c *Config) Validate() error {
	if err := c.validateOMDb(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// RequireAPIKey reports a configuration error when no OMDb API key is set.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.OMDb.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return services.Wrap(services.ErrConfiguration, "config", "omdb.api_key",
		fmt.Sprintf("the OMDb API key is required; pass --key, set OMDB_API_KEY, or edit %s (create with 'moviemeta config init')", defaultPath), nil)
}

func (c *Config) validateOMDb() error {
	parsed, err := url.Parse(c.OMDb.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("omdb.base_url must be an absolute URL, got %q", c.OMDb.BaseURL)
	}
	if c.OMDb.RequestTimeout <= 0 {
		return errors.New("omdb.request_timeout must be positive (seconds)")
	}
	switch c.OMDb.MediaType {
	case "movie", "series", "episode":
	default:
		return fmt.Errorf("omdb.media_type must be movie, series, or episode, got %q", c.OMDb.MediaType)
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.TitleKey == c.Source.YearKey {
		return errors.New("source.title_key and source.year_key must differ")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
