package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitValidateAndShow(t *testing.T) {
	env := setupCLITestEnv(t, "test-key-1234")

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "API key set: yes")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "*********1234")
	if strings.Contains(out, "test-key-1234") {
		t.Fatalf("config show leaked the api key: %s", out)
	}

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}
}

func TestMaskKey(t *testing.T) {
	cases := map[string]string{"": "", "abc": "***", "abcdef": "**cdef"}
	for in, want := range cases {
		if got := maskKey(in); got != want {
			t.Fatalf("maskKey(%q) = %q, want %q", in, got, want)
		}
	}
}
