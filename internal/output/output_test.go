package output_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"moviemeta/internal/catalog"
	"moviemeta/internal/config"
	"moviemeta/internal/enrich"
	"moviemeta/internal/omdb"
	"moviemeta/internal/output"
)

func sampleState() *enrich.RunState {
	state := enrich.NewRunState()
	state.Seed(
		[]enrich.FoundRecord{{
			Query: catalog.Candidate{Title: "Ocean's Eleven"},
			Movie: omdb.Movie{
				Title:      "Ocean's Eleven",
				Year:       "2001",
				Rated:      "PG-13",
				Genre:      "Crime, Thriller",
				Ratings:    []omdb.Rating{{Source: "Internet Movie Database", Value: "7.7/10"}},
				IMDbRating: "7.7",
				IMDbID:     "tt0240772",
				Type:       "movie",
				Response:   "True",
			},
		}},
		[]enrich.NotFoundRecord{{Title: "Xyzzy Nonexistent"}, {Title: "Solaris & Co", Year: "1972"}},
	)
	return state
}

func defaultOutput() config.Output {
	return config.Default().Output
}

func TestResolveRelativeToSource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "movies.json")

	paths, err := output.Resolve(defaultOutput(), source)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if paths.Found != filepath.Join(dir, "movies-metadata.json") {
		t.Fatalf("unexpected found path %q", paths.Found)
	}
	if paths.NotFound != filepath.Join(dir, "movies-notFound.json") {
		t.Fatalf("unexpected not-found path %q", paths.NotFound)
	}
}

func TestResolveOverwriteAndAbsolute(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "list.yaml")
	cfg := defaultOutput()
	cfg.Overwrite = true
	cfg.NotFound = filepath.Join(dir, "elsewhere", "%source%.missing.json")

	paths, err := output.Resolve(cfg, source)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if paths.Found != source {
		t.Fatalf("overwrite should target the source, got %q", paths.Found)
	}
	if paths.NotFound != filepath.Join(dir, "elsewhere", "list.missing.json") {
		t.Fatalf("unexpected not-found path %q", paths.NotFound)
	}
}

func TestResolveInlineSource(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	paths, err := output.Resolve(defaultOutput(), "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if paths.Found != filepath.Join(wd, "movies-metadata.json") {
		t.Fatalf("unexpected found path %q", paths.Found)
	}

	cfg := defaultOutput()
	cfg.Overwrite = true
	if _, err := output.Resolve(cfg, ""); err == nil {
		t.Fatal("expected overwrite of inline source to fail")
	}
}

func TestWriteMatchesGolden(t *testing.T) {
	dir := t.TempDir()
	paths := output.Paths{
		Found:    filepath.Join(dir, "movies-metadata.json"),
		NotFound: filepath.Join(dir, "movies-notFound.json"),
	}
	written, err := output.Write(paths, sampleState())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if written.Found != paths.Found || written.NotFound != paths.NotFound {
		t.Fatalf("unexpected written %+v", written)
	}

	found, err := os.ReadFile(paths.Found)
	if err != nil {
		t.Fatal(err)
	}
	notFound, err := os.ReadFile(paths.NotFound)
	if err != nil {
		t.Fatal(err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "found", found)
	g.Assert(t, "not_found", notFound)
}

func TestWriteSkipsEmptyNotFound(t *testing.T) {
	dir := t.TempDir()
	paths := output.Paths{
		Found:    filepath.Join(dir, "out.json"),
		NotFound: filepath.Join(dir, "missing.json"),
	}
	written, err := output.Write(paths, enrich.NewRunState())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if written.NotFound != "" {
		t.Fatalf("expected no not-found file, got %q", written.NotFound)
	}
	if _, err := os.Stat(paths.NotFound); !os.IsNotExist(err) {
		t.Fatalf("not-found file should not exist, stat err=%v", err)
	}
	data, err := os.ReadFile(paths.Found)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]\n" {
		t.Fatalf("expected empty array, got %q", data)
	}
}

func TestLoadExistingSeedsState(t *testing.T) {
	dir := t.TempDir()
	paths := output.Paths{
		Found:    filepath.Join(dir, "movies-metadata.json"),
		NotFound: filepath.Join(dir, "movies-notFound.json"),
	}
	if _, err := output.Write(paths, sampleState()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	found, notFound, err := output.LoadExisting(paths)
	if err != nil {
		t.Fatalf("LoadExisting: %v", err)
	}
	if len(found) != 1 || found[0].Movie.IMDbID != "tt0240772" {
		t.Fatalf("unexpected found %+v", found)
	}
	if len(notFound) != 2 || notFound[1].Year != "1972" {
		t.Fatalf("unexpected not found %+v", notFound)
	}

	state := enrich.NewRunState()
	state.Seed(found, notFound)
	candidates := []catalog.Candidate{
		{Title: "ocean's eleven", Year: "2001"},
		{Title: "Xyzzy Nonexistent"},
		{Title: "Heat"},
	}
	rem := enrich.Remaining(candidates, state)
	if len(rem) != 1 || rem[0].Title != "Heat" {
		t.Fatalf("expected only Heat remaining, got %v", rem)
	}
}

func TestLoadExistingIgnoresUnenrichedSource(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "movies.json")
	if err := os.WriteFile(source, []byte(`["Heat", {"title": "Alien"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	found, notFound, err := output.LoadExisting(output.Paths{Found: source, NotFound: filepath.Join(dir, "none.json")})
	if err != nil {
		t.Fatalf("LoadExisting: %v", err)
	}
	if len(found) != 0 || len(notFound) != 0 {
		t.Fatalf("expected nothing seeded, got %d/%d", len(found), len(notFound))
	}
}
