package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type cliTestEnv struct {
	server     *httptest.Server
	configPath string
	stateDir   string
	workDir    string

	mu   sync.Mutex
	hits []string
}

// fakeOMDb knows a single title.
func (e *cliTestEnv) handle(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("t")
	e.mu.Lock()
	e.hits = append(e.hits, title)
	e.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("apikey") != "test-key" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
		return
	}
	if strings.EqualFold(title, "Ocean's Eleven") {
		_, _ = w.Write([]byte(`{"Title":"Ocean's Eleven","Year":"2001","imdbID":"tt0240772","Type":"movie","Response":"True"}`))
		return
	}
	_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
}

func (e *cliTestEnv) hitCount(title string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, h := range e.hits {
		if title == "" || h == title {
			n++
		}
	}
	return n
}

func setupCLITestEnv(t *testing.T, apiKey string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("OMDB_API_KEY", "")

	env := &cliTestEnv{
		stateDir: filepath.Join(base, "state"),
		workDir:  filepath.Join(base, "work"),
	}
	if err := os.MkdirAll(env.workDir, 0o755); err != nil {
		t.Fatalf("mkdir work: %v", err)
	}
	env.server = httptest.NewServer(http.HandlerFunc(env.handle))
	t.Cleanup(env.server.Close)

	env.configPath = filepath.Join(homeDir, ".config", "moviemeta", "config.toml")
	if err := os.MkdirAll(filepath.Dir(env.configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(`[omdb]
api_key = %q
base_url = %q
request_timeout = 5

[paths]
state_dir = %q
log_dir = ""

[logging]
level = "error"
`, apiKey, env.server.URL+"/", env.stateDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliTestEnv) writeSource(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(e.workDir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
