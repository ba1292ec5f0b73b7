package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moviemeta/internal/catalog"
	"moviemeta/internal/config"
	"moviemeta/internal/enrich"
	"moviemeta/internal/journal"
	"moviemeta/internal/omdb"
	"moviemeta/internal/services"
)

func TestFetchVerboseWritesResults(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	source := env.writeSource(t, "movies.json", `["Ocean's Eleven", {"title": "Xyzzy Nonexistent"}]`)

	out, _, err := runCLI(t, []string{"fetch", "--source", source, "--verbose"}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, bannerRule+"\n--------------- FETCHING METADATA FOR 2 MOVIES ---------------\n"+bannerRule+"\n")
	requireContains(t, out, "1/2 - \tUpdated:\t\"Ocean's Eleven\"")
	requireContains(t, out, "2/2 - \tNot Found:\t\"Xyzzy Nonexistent\"")
	requireContains(t, out, "Fetched metadata for 1 of 2 movies")
	requireContains(t, out, "1 movies were not found")

	found := readFile(t, filepath.Join(env.workDir, "movies-metadata.json"))
	requireContains(t, found, "\t\t\"imdbID\": \"tt0240772\"")
	notFound := readFile(t, filepath.Join(env.workDir, "movies-notFound.json"))
	if notFound != "[\n\t\"Xyzzy Nonexistent\"\n]\n" {
		t.Fatalf("unexpected not-found file %q", notFound)
	}
}

func TestFetchQuietWhenNotTerminal(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	source := env.writeSource(t, "list.txt", "Ocean's Eleven\n\n")

	out, _, err := runCLI(t, []string{"fetch", "-s", source}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no output without a terminal, got %q", out)
	}
	if _, err := os.Stat(filepath.Join(env.workDir, "list-notFound.json")); !os.IsNotExist(err) {
		t.Fatalf("not-found file should be skipped when empty, stat err=%v", err)
	}
}

func TestFetchRequiresKeyBeforeNetwork(t *testing.T) {
	env := setupCLITestEnv(t, "")
	source := env.writeSource(t, "movies.json", `["Heat"]`)

	_, _, err := runCLI(t, []string{"fetch", "-s", source}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if env.hitCount("") != 0 {
		t.Fatal("expected no network activity")
	}
}

func TestFetchRequiresSource(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	_, _, err := runCLI(t, []string{"fetch", "--no-journal"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if env.hitCount("") != 0 {
		t.Fatal("expected no network activity")
	}
}

func TestFetchInvalidKeyStopsRun(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	source := env.writeSource(t, "movies.json", `["Heat", "Alien"]`)

	_, _, err := runCLI(t, []string{"fetch", "-s", source, "--key", "wrong"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if env.hitCount("") != 1 {
		t.Fatalf("expected a single rejected request, got %d", env.hitCount(""))
	}
}

func TestFetchSeedFromOutputSkipsKnownTitles(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	source := env.writeSource(t, "movies.json", `["Ocean's Eleven", "Xyzzy Nonexistent"]`)

	if _, _, err := runCLI(t, []string{"fetch", "-s", source}, env.configPath); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, _, err := runCLI(t, []string{"fetch", "-s", source, "--seed-from-output"}, env.configPath); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if env.hitCount("Ocean's Eleven") != 1 || env.hitCount("Xyzzy Nonexistent") != 1 {
		t.Fatalf("expected each title fetched once, hits=%v", env.hits)
	}
	found := readFile(t, filepath.Join(env.workDir, "movies-metadata.json"))
	if strings.Count(found, "tt0240772") != 1 {
		t.Fatalf("expected seeded record written once, got %s", found)
	}
}

func TestFetchOverwriteReplacesSource(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	source := env.writeSource(t, "movies.json", `["Ocean's Eleven"]`)

	if _, _, err := runCLI(t, []string{"fetch", "-s", source, "--overwrite"}, env.configPath); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, readFile(t, source), "\"Response\": \"True\"")

	text := env.writeSource(t, "movies.txt", "Heat")
	if _, _, err := runCLI(t, []string{"fetch", "-s", text, "--overwrite"}, env.configPath); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected overwrite of a text source to be rejected, got %v", err)
	}
}

func TestFetchInlineSourceWithSplitter(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	t.Chdir(env.workDir)

	out, _, err := runCLI(t, []string{"fetch", "-s", "Ocean's Eleven|Heat", "--splitter", "|", "-v", "--no-journal"}, env.configPath)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	requireContains(t, out, bannerRule+"\n--------------- FETCHING METADATA FOR 2 MOVIES ---------------\n"+bannerRule+"\n")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, readFile(t, filepath.Join(wd, "movies-metadata.json")), "Ocean's Eleven")
}

func TestFetchResumeSkipsJournaledTitles(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	source := env.writeSource(t, "movies.json", `["Ocean's Eleven", "Xyzzy Nonexistent"]`)

	cfg := config.Default()
	cfg.Paths.StateDir = env.stateDir
	cfg.Paths.LogDir = ""
	store, err := journal.Open(&cfg)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	ctx := context.Background()
	run, err := store.StartRun(ctx, source, 2)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := store.RecordClassification(ctx, run.ID, enrich.Event{
		Candidate: catalog.Candidate{Title: "Ocean's Eleven"},
		Found:     true,
		Movie:     &omdb.Movie{Title: "Ocean's Eleven", Year: "2001", IMDbID: "tt0240772", Response: "True"},
	}); err != nil {
		t.Fatalf("RecordClassification: %v", err)
	}
	if err := store.FinishRun(ctx, run.ID, journal.StatusCancelled, enrich.Summary{Passes: 1}, context.Canceled); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close journal: %v", err)
	}

	if _, _, err := runCLI(t, []string{"fetch", "--resume", run.ID[:8]}, env.configPath); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if env.hitCount("Ocean's Eleven") != 0 {
		t.Fatal("resumed run refetched a journaled title")
	}
	if env.hitCount("Xyzzy Nonexistent") != 1 {
		t.Fatalf("expected the remaining title fetched once, hits=%v", env.hits)
	}

	out, _, err := runCLI(t, []string{"runs", "show", run.ID}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, "Status:     completed")
	requireContains(t, out, "Classified: 2 of 2 (found 1, not found 1)")
	requireContains(t, readFile(t, filepath.Join(env.workDir, "movies-metadata.json")), "tt0240772")
}

func TestFetchResumeWithSeedFromOutputWritesEachTitleOnce(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	source := env.writeSource(t, "movies.json", `["Ocean's Eleven", "Xyzzy"]`)

	if _, _, err := runCLI(t, []string{"fetch", "-s", source}, env.configPath); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	cfg := config.Default()
	cfg.Paths.StateDir = env.stateDir
	cfg.Paths.LogDir = ""
	store, err := journal.Open(&cfg)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	runs, err := store.ListRuns(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns: %v (%d runs)", err, len(runs))
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close journal: %v", err)
	}

	args := []string{"fetch", "-s", source, "--resume", runs[0].ID, "--seed-from-output"}
	if _, _, err := runCLI(t, args, env.configPath); err != nil {
		t.Fatalf("resumed fetch: %v", err)
	}
	if env.hitCount("") != 2 {
		t.Fatalf("expected no lookups on the resumed run, hits=%v", env.hits)
	}

	found := readFile(t, filepath.Join(env.workDir, "movies-metadata.json"))
	if strings.Count(found, "tt0240772") != 1 {
		t.Fatalf("expected found record written once, got %s", found)
	}
	notFound := readFile(t, filepath.Join(env.workDir, "movies-notFound.json"))
	if strings.Count(notFound, "Xyzzy") != 1 {
		t.Fatalf("expected not-found title written once, got %s", notFound)
	}
}

func TestFetchResumeRequiresJournal(t *testing.T) {
	env := setupCLITestEnv(t, "test-key")
	_, _, err := runCLI(t, []string{"fetch", "--resume", "abc", "--no-journal"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
