package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"oficina/internal/config"
	"oficina/internal/journal"
	"oficina/internal/testsupport"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
}

func TestStatusStaticModeReady(t *testing.T) {
	skipWithoutShell(t)
	bundler := testsupport.WriteScript(t, t.TempDir(), "bundler", "exit 0")
	env := setupCLITestEnv(t,
		testsupport.WithMode(config.ModeStatic),
		testsupport.WithMutator(func(cfg *config.Config) { cfg.Packager.Command = bundler }),
	)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "== Environment ==")
	requireContains(t, out, "Mode:")
	requireContains(t, out, "[OK] no launcher running")
	requireContains(t, out, "[WARN] offline")
	requireContains(t, out, "Build output:")
}

func TestStatusFailsWithoutRuntime(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDevCommands("definitely-missing-node --version", "", "definitely-missing-npx vite"))

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err == nil {
		t.Fatalf("expected status to fail without a runtime:\n%s", out)
	}
	requireContains(t, err.Error(), "readiness check(s) failed")
	requireContains(t, out, "[ERROR]")
	requireContains(t, out, env.cfg.Dev.RuntimeHint)
}

func TestHistoryEmptyAndPopulated(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No history recorded yet.")
	if _, err := os.Stat(env.cfg.JournalPath()); !os.IsNotExist(err) {
		t.Fatalf("history must not create the journal, stat err=%v", err)
	}

	ctx := context.Background()
	store := testsupport.MustOpenJournal(t, env.cfg)
	started := time.Now().Add(-time.Hour)
	if err := store.BeginSession(ctx, journal.Session{ID: "0123456789abcdef", StartedAt: started, Mode: "static", URL: "http://127.0.0.1:8080", InitialOnline: true}); err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if err := store.RecordTransition(ctx, "0123456789abcdef", false, started.Add(10*time.Minute)); err != nil {
		t.Fatalf("RecordTransition: %v", err)
	}
	if err := store.EndSession(ctx, "0123456789abcdef", journal.OutcomeInterrupted, nil, started.Add(30*time.Minute)); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"Recent sessions", "http://127.0.0.1:8080", "30m0s", "interrupted", "Connectivity changes", "01234567", "offline"} {
		requireContains(t, out, want)
	}

	if _, _, err := runCLI(t, []string{"history", "--limit", "0"}, env.configPath); err == nil {
		t.Fatal("expected error for non-positive limit")
	}
}

func TestPackageInvokesBundler(t *testing.T) {
	skipWithoutShell(t)
	bundler := testsupport.WriteScript(t, t.TempDir(), "bundler", `echo "$@" > bundler-args.txt`)
	env := setupCLITestEnv(t, testsupport.WithMutator(func(cfg *config.Config) {
		cfg.Packager.Command = bundler
		cfg.Packager.Name = "sistema_oficina"
	}))

	out, _, err := runCLI(t, []string{"package"}, env.configPath)
	if err != nil {
		t.Fatalf("package: %v", err)
	}
	requireContains(t, out, "Executable 'sistema_oficina")
	requireContains(t, out, filepath.Join(env.cfg.Project.Dir, "dist"))

	args, err := os.ReadFile(filepath.Join(env.cfg.Project.Dir, "bundler-args.txt"))
	if err != nil {
		t.Fatalf("read bundler args: %v", err)
	}
	if !strings.Contains(string(args), "start_sistema.py --onefile --console --name=sistema_oficina") {
		t.Fatalf("unexpected bundler args %q", args)
	}
}

func TestPackageMissingBundler(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithMutator(func(cfg *config.Config) {
		cfg.Packager.Command = "definitely-missing-bundler"
	}))
	if _, _, err := runCLI(t, []string{"package"}, env.configPath); err == nil {
		t.Fatal("expected error when the bundler is missing")
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"run", "--mode", "bogus"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
	requireContains(t, err.Error(), "server.mode")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "oficina ")
}

func TestUnknownCommand(t *testing.T) {
	if _, _, err := runCLI(t, []string{"nonsense"}, ""); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
