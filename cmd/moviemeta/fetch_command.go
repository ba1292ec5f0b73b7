package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"moviemeta/internal/catalog"
	"moviemeta/internal/config"
	"moviemeta/internal/enrich"
	"moviemeta/internal/journal"
	"moviemeta/internal/logging"
	"moviemeta/internal/omdb"
	"moviemeta/internal/output"
	"moviemeta/internal/preflight"
	"moviemeta/internal/services"
)

type fetchOptions struct {
	source         string
	key            string
	timeout        int
	verbose        bool
	progress       bool
	overwrite      bool
	destination    string
	notFound       string
	splitter       string
	titleKey       string
	yearKey        string
	resume         string
	seedFromOutput bool
	noJournal      bool
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch OMDb metadata for every title in a source list",
		Long: `Fetch OMDb metadata for every title in a source list.

The source is a JSON or YAML file holding an array of titles or
{"title", "year"} objects, a plain text file, or an inline list split
by --splitter. Titles already present in the result files (with
--seed-from-output) or in a journaled run (with --resume) are skipped.`,
		Example: `  moviemeta fetch -s movies.json -k $OMDB_API_KEY
  moviemeta fetch -s "Heat,Alien" --splitter , -v
  moviemeta fetch --resume 3f2a9c`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return runFetch(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.source, "source", "s", "", "Source list: JSON/YAML/text file or inline titles")
	flags.StringVarP(&opts.key, "key", "k", "", "OMDb API key (overrides config and OMDB_API_KEY)")
	flags.IntVarP(&opts.timeout, "timeout", "t", 0, "Seconds before a lookup is aborted and the batch restarts")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print every title as it is classified")
	flags.BoolVarP(&opts.progress, "progress", "p", false, "Show a progress bar (ignored with --verbose)")
	flags.BoolVarP(&opts.overwrite, "overwrite", "o", false, "Write fetched metadata back over the source file")
	flags.StringVarP(&opts.destination, "destination", "d", "", "Found metadata file (%source% expands to the source name)")
	flags.StringVarP(&opts.notFound, "notfound", "n", "", "Not-found titles file (%source% expands to the source name)")
	flags.StringVar(&opts.splitter, "splitter", "", "Separator for text and inline sources")
	flags.StringVar(&opts.titleKey, "title-key", "", "Object key holding the title")
	flags.StringVar(&opts.yearKey, "year-key", "", "Object key holding the year")
	flags.StringVar(&opts.resume, "resume", "", "Resume a journaled run by id (or unique id prefix)")
	flags.BoolVar(&opts.seedFromOutput, "seed-from-output", false, "Skip titles already present in the result files")
	flags.BoolVar(&opts.noJournal, "no-journal", false, "Do not record this run in the journal")
	return cmd
}

// apply copies explicitly set flags over the loaded configuration.
func (o *fetchOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("key") {
		cfg.OMDb.APIKey = o.key
	}
	if flags.Changed("timeout") {
		cfg.OMDb.RequestTimeout = o.timeout
	}
	if flags.Changed("verbose") {
		cfg.Display.Verbose = o.verbose
	}
	if flags.Changed("progress") {
		cfg.Display.Progress = o.progress
	}
	if flags.Changed("overwrite") {
		cfg.Output.Overwrite = o.overwrite
	}
	if flags.Changed("destination") {
		cfg.Output.Destination = o.destination
	}
	if flags.Changed("notfound") {
		cfg.Output.NotFound = o.notFound
	}
	if flags.Changed("splitter") {
		cfg.Source.Splitter = o.splitter
	}
	if flags.Changed("title-key") {
		cfg.Source.TitleKey = o.titleKey
	}
	if flags.Changed("year-key") {
		cfg.Source.YearKey = o.yearKey
	}
	if o.noJournal {
		cfg.Journal.Enabled = false
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}
	if o.resume != "" && !cfg.Journal.Enabled {
		return services.Wrap(services.ErrValidation, "fetch", "resume", "--resume requires the journal", nil)
	}
	return nil
}

func runFetch(ctx context.Context, out io.Writer, cfg *config.Config, opts *fetchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if failed := preflight.Failed(preflight.RunLocal(cfg)); len(failed) > 0 {
		return services.Wrap(services.ErrConfiguration, "fetch", "preflight",
			fmt.Sprintf("%s: %s", failed[0].Name, failed[0].Detail), nil)
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.Open(cfg)
		if err != nil {
			if journal.IsLocked(err) {
				return fmt.Errorf("%w; wait for the other run to finish or pass --no-journal", err)
			}
			return fmt.Errorf("open journal: %w", err)
		}
		defer store.Close()
	}

	var resumed *journal.Run
	source := strings.TrimSpace(opts.source)
	if opts.resume != "" {
		resumed, err = store.GetRun(ctx, opts.resume)
		if err != nil {
			return err
		}
		if source == "" {
			source = resumed.Source
		}
	}
	if source == "" {
		return services.Wrap(services.ErrConfiguration, "fetch", "source",
			"a source list is required; pass --source", nil)
	}

	src, err := catalog.LoadSource(source, catalog.SourceOptions{Splitter: cfg.Source.Splitter, Logger: logger})
	if err != nil {
		return err
	}
	if cfg.Output.Overwrite && !src.IsStructured() {
		return services.Wrap(services.ErrValidation, "fetch", "overwrite",
			"--overwrite needs a JSON or YAML source file", nil)
	}
	candidates := catalog.NormalizeAll(src.Items, catalog.Keys{Title: cfg.Source.TitleKey, Year: cfg.Source.YearKey})

	paths, err := output.Resolve(cfg.Output, src.Path)
	if err != nil {
		return err
	}

	state := enrich.NewRunState()
	if opts.seedFromOutput {
		found, notFound, err := output.LoadExisting(paths)
		if err != nil {
			return fmt.Errorf("seed from output: %w", err)
		}
		state.Seed(found, notFound)
	}

	var run *journal.Run
	if store != nil {
		runSource := source
		if src.IsFile() {
			runSource = src.Path
		}
		run, err = beginRun(ctx, store, resumed, runSource, candidates, state)
		if err != nil {
			return err
		}
		ctx = services.WithRunID(ctx, run.ID)
	}

	client, err := omdb.New(cfg.OMDb.APIKey, cfg.OMDb.BaseURL,
		omdb.WithMediaType(cfg.OMDb.MediaType),
		omdb.WithHTTPClient(&http.Client{}))
	if err != nil {
		return err
	}

	display := newFetchDisplay(out, chooseDisplay(cfg.Display.Verbose, cfg.Display.Progress, out))
	observers := []enrich.Observer{display}
	var recorder *journal.Recorder
	if run != nil {
		recorder = journal.NewRecorder(ctx, store, run.ID, logger)
		observers = append(observers, recorder)
	}

	engine, err := enrich.New(enrich.NewOMDbFetcher(client), enrich.Options{
		Timeout:  cfg.RequestTimeout(),
		Observer: enrich.MultiObserver(observers...),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	summary, runErr := engine.Run(ctx, candidates, state)

	var (
		written  output.Written
		writeErr error
	)
	if runErr == nil || state.Len() > 0 {
		written, writeErr = output.Write(paths, state)
	}

	if run != nil {
		finishRun(store, run.ID, summary, runErr, logging.WithContext(ctx, logger))
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) && run != nil {
			fmt.Fprintf(out, "Interrupted; resume with: moviemeta fetch --resume %s\n", shortID(run.ID))
		}
		return runErr
	}
	if writeErr != nil {
		return writeErr
	}

	display.printSummary(len(state.Found()), len(state.NotFound()), len(candidates), summary)
	logger.Info("results written",
		logging.String("found_file", written.Found),
		logging.String("not_found_file", written.NotFound))
	return nil
}

// beginRun starts a journal run, or reopens a resumed one after seeding state
// with its classifications.
func beginRun(ctx context.Context, store *journal.Store, resumed *journal.Run, source string, candidates []catalog.Candidate, state *enrich.RunState) (*journal.Run, error) {
	if resumed == nil {
		return store.StartRun(ctx, source, len(enrich.Remaining(candidates, state)))
	}
	found, notFound, err := store.LoadState(ctx, resumed.ID)
	if err != nil {
		return nil, err
	}
	state.Seed(found, notFound)
	return store.ResumeRun(ctx, resumed.ID, len(enrich.Remaining(candidates, state)))
}

func finishRun(store *journal.Store, runID string, summary enrich.Summary, runErr error, logger *slog.Logger) {
	status := journal.StatusCompleted
	switch {
	case errors.Is(runErr, context.Canceled):
		status = journal.StatusCancelled
	case runErr != nil:
		status = journal.StatusFailed
	}
	if err := store.FinishRun(context.Background(), runID, status, summary, runErr); err != nil {
		logging.WarnWithContext(logger, "journal update failed", "journal_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the run stays listed as running"),
			logging.String(logging.FieldImpact, "results were still written to disk"))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
