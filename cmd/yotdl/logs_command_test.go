package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogsCommandShowsTrailingLines(t *testing.T) {
	env := setupCLITestEnv(t)

	logPath := filepath.Join(env.cfg.Paths.LogDir, "yotdld.log")
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--lines", "2"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs --lines: %v", err)
	}
	if strings.Contains(out, "first") {
		t.Fatalf("expected first line to be trimmed, got:\n%s", out)
	}
	requireContains(t, out, "second")
	requireContains(t, out, "third")
}

func TestLogsCommandMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"logs"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no output for missing log file, got:\n%s", out)
	}
}
