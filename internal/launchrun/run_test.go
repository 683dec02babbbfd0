package launchrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oficina/internal/config"
	"oficina/internal/connectivity"
	"oficina/internal/journal"
	"oficina/internal/launcher"
	"oficina/internal/supervisor"
	"oficina/internal/testsupport"
)

func staticProber(online bool) connectivity.Prober {
	return connectivity.ProbeFunc(func(context.Context) bool { return online })
}

func TestRunStaticServesBuildAndRecordsSession(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithMode(config.ModeStatic),
		testsupport.WithBuildOutput("<h1>oficina</h1>"),
	)
	cfg.Browser.Enabled = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var openedURL, body string
	var out bytes.Buffer
	err := Run(ctx, cfg, Options{
		Stdout: &out,
		Prober: staticProber(true),
		OpenBrowser: func(url string) error {
			defer cancel()
			openedURL = url
			resp, err := http.Get(url)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			data, err := io.ReadAll(resp.Body)
			body = string(data)
			return err
		},
	})
	if err != nil {
		t.Fatalf("Run returned %v, want nil after interrupt", err)
	}
	if !strings.Contains(body, "<h1>oficina</h1>") {
		t.Fatalf("expected build output to be served, got %q", body)
	}

	output := out.String()
	for _, want := range []string{"Workshop Management System", "Server started at " + openedURL} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in console output:\n%s", want, output)
		}
	}

	store := testsupport.MustOpenJournal(t, cfg)
	sessions, err := store.RecentSessions(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	session := sessions[0]
	if session.Outcome != journal.OutcomeInterrupted || session.URL != openedURL || !session.InitialOnline || session.Mode != config.ModeStatic {
		t.Fatalf("unexpected session %+v", session)
	}

	if _, err := os.Lstat(filepath.Join(cfg.Paths.LogDir, "oficina.log")); err != nil {
		t.Fatalf("expected log pointer: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(cfg.Paths.LogDir, "oficina-*.log"))
	if len(matches) != 1 {
		t.Fatalf("expected one run log, got %v", matches)
	}
}

func TestRunMissingRuntimeFails(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDevCommands("definitely-missing-node --version", "", "npx vite"))

	var out bytes.Buffer
	err := Run(context.Background(), cfg, Options{Stdout: &out, Prober: staticProber(false)})
	if !errors.Is(err, launcher.ErrRuntimeMissing) {
		t.Fatalf("Run returned %v, want ErrRuntimeMissing", err)
	}
	if !strings.Contains(out.String(), cfg.Dev.RuntimeHint) {
		t.Fatalf("expected runtime hint in output:\n%s", out.String())
	}

	sessions, err := testsupport.MustOpenJournal(t, cfg).RecentSessions(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Outcome != journal.OutcomeFailed || sessions[0].ErrorMessage == "" {
		t.Fatalf("unexpected sessions %+v", sessions)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, journal.OutcomeInterrupted},
		{supervisor.ErrAlreadyRunning, journal.OutcomeAlreadyActive},
		{fmt.Errorf("%w: exit status 1", supervisor.ErrServerExited), journal.OutcomeServerExited},
		{errors.New("boom"), journal.OutcomeFailed},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
