package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"oficina/internal/connectivity"
)

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
	}{
		{"", language.BrazilianPortuguese},
		{"pt-BR", language.BrazilianPortuguese},
		{"en", language.English},
		{"en-US", language.English},
		{"not a tag", language.BrazilianPortuguese},
	}
	for _, tt := range tests {
		if got := ResolveLanguage(tt.in); got != tt.want {
			t.Fatalf("ResolveLanguage(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestBannerPortugueseDefault(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, "pt-BR")
	p.Banner()
	p.ConnectivityBanner(false)

	out := buf.String()
	for _, want := range []string{
		"Sistema de Gestão de Oficina",
		"Iniciando o Sistema de Gestão de Oficina...",
		"[AVISO] Você está offline! O sistema funcionará em modo local.",
		"sincronizadas quando a internet for restabelecida",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI codes for non-terminal writer: %q", out)
	}
}

func TestEnglishCatalog(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, "en")
	p.ConnectivityBanner(true)
	p.ServerStarted("http://localhost:8080")
	p.ShuttingDown()

	out := buf.String()
	for _, want := range []string{
		"[INFO] Internet connection detected.",
		"Server started at http://localhost:8080",
		"Shutting down the Workshop Management System...",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestConnectivityChangedMessages(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, "pt-BR")
	var observer connectivity.Observer = p

	observer.ConnectivityChanged(context.Background(), connectivity.Transition{Online: false, Previous: true, At: time.Now()})
	observer.ConnectivityChanged(context.Background(), connectivity.Transition{Online: true, Previous: false, At: time.Now()})

	out := buf.String()
	lost := strings.Index(out, "Conexão com a internet perdida")
	restored := strings.Index(out, "Conexão com a internet restabelecida")
	if lost < 0 || restored < 0 || lost > restored {
		t.Fatalf("expected lost then restored notices, got:\n%s", out)
	}
}

func TestColorizedOutput(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, "en")
	p.SetColor(true)
	p.ServerFailed(errors.New("address already in use"), "http://localhost:8080")

	out := buf.String()
	if !strings.Contains(out, ansiRed+"Error starting HTTP server: address already in use"+ansiReset) {
		t.Fatalf("expected red error line, got %q", out)
	}
	if !strings.Contains(out, "http://localhost:8080") {
		t.Fatalf("expected degraded url notice, got %q", out)
	}
}

func TestRuntimeMissingHint(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "pt-BR").RuntimeMissing("Node.js", "https://nodejs.org/")
	if !strings.Contains(buf.String(), "Node.js não foi encontrado! Instale a partir de https://nodejs.org/") {
		t.Fatalf("unexpected hint: %q", buf.String())
	}
}

func TestStatusLine(t *testing.T) {
	got := StatusLine("Runtime", StatusOK, "v20.11.1", false)
	want := "  Runtime:             [OK] v20.11.1"
	if got != want {
		t.Fatalf("StatusLine = %q, want %q", got, want)
	}
	colored := StatusLine("Port 8080", StatusError, "in use", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red status line, got %q", colored)
	}
}

func TestRenderTablePadsRows(t *testing.T) {
	out := RenderTable([]string{"Session", "Mode", "Exit"}, [][]string{{"abc", "dev"}}, []Alignment{AlignLeft, AlignLeft, AlignRight})
	if !strings.Contains(out, "Session") || !strings.Contains(out, "abc") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if RenderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty render without headers")
	}
}

func TestSectionsAndHeadersFollowLanguage(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, "pt-BR")
	p.StatusSection()
	p.Status("Porta 8080", StatusWarn, "em uso")
	p.HistoryEmpty()

	out := buf.String()
	for _, want := range []string{"== Ambiente ==", "[WARN] em uso", "Nenhum histórico registrado ainda."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if got := p.SessionHeaders(); len(got) != 6 || got[0] != "Início" {
		t.Fatalf("unexpected session headers %v", got)
	}
	if got := New(nil, "en").TransitionHeaders(); strings.Join(got, ",") != "At,Session,State" {
		t.Fatalf("unexpected transition headers %v", got)
	}
}
