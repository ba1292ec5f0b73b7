package config

const (
	defaultConfigPath          = "~/.config/moviemeta/config.toml"
	defaultLogDir              = "~/.local/state/moviemeta/logs"
	defaultOMDbBaseURL         = "http://www.omdbapi.com/"
	defaultOMDbMediaType       = "movie"
	defaultRequestTimeout      = 30
	defaultSplitter            = "\n"
	defaultTitleKey            = "title"
	defaultYearKey             = "year"
	defaultDestinationTemplate = "%source%-metadata.json"
	defaultNotFoundTemplate    = "%source%-notFound.json"
	defaultLogFormat           = "console"
	defaultLogLevel            = "warn"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
			LogDir:   defaultLogDir,
		},
		OMDb: OMDb{
			BaseURL:        defaultOMDbBaseURL,
			MediaType:      defaultOMDbMediaType,
			RequestTimeout: defaultRequestTimeout,
		},
		Source: Source{
			Splitter: defaultSplitter,
			TitleKey: defaultTitleKey,
			YearKey:  defaultYearKey,
		},
		Output: Output{
			Destination: defaultDestinationTemplate,
			NotFound:    defaultNotFoundTemplate,
		},
		Display: Display{
			Progress: true,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
