package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func fetch(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestServeRootPrefersBuildDir(t *testing.T) {
	project := t.TempDir()
	build := filepath.Join(project, "dist")

	l := NewStatic(StaticOptions{ProjectDir: project, BuildDir: build})
	if got := l.ServeRoot(); got != project {
		t.Fatalf("expected project dir without build output, got %q", got)
	}

	if err := os.Mkdir(build, 0o755); err != nil {
		t.Fatalf("mkdir dist: %v", err)
	}
	if got := l.ServeRoot(); got != build {
		t.Fatalf("expected build dir, got %q", got)
	}
}

func TestStaticServesBuildOutput(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, "index.html"), "source")
	writeFile(t, filepath.Join(project, "dist", "index.html"), "built")

	l := NewStatic(StaticOptions{
		ProjectDir: project,
		BuildDir:   filepath.Join(project, "dist"),
		Host:       "127.0.0.1",
		Port:       0,
		Mount: func(mux *http.ServeMux) {
			mux.HandleFunc("/__oficina/status", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"online":true}`))
			})
		},
	})
	srv, err := l.Start(context.Background())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer srv.Stop(context.Background())

	if !strings.HasPrefix(srv.URL(), "http://127.0.0.1:") {
		t.Fatalf("unexpected url %q", srv.URL())
	}
	if code, body := fetch(t, srv.URL()+"/index.html"); code != http.StatusOK || body != "built" {
		t.Fatalf("expected built index, got %d %q", code, body)
	}
	if code, body := fetch(t, srv.URL()+"/__oficina/status"); code != http.StatusOK || !strings.Contains(body, "online") {
		t.Fatalf("expected mounted handler, got %d %q", code, body)
	}
}

func TestStaticBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	l := NewStatic(StaticOptions{ProjectDir: t.TempDir(), Host: "127.0.0.1", Port: port})
	srv, err := l.Start(context.Background())
	if !errors.Is(err, ErrBind) {
		t.Fatalf("expected ErrBind, got %v", err)
	}
	if srv != nil {
		t.Fatal("expected nil server on bind failure")
	}
	if want := fmt.Sprintf("http://127.0.0.1:%d", port); l.DefaultURL() != want {
		t.Fatalf("unexpected default url %q", l.DefaultURL())
	}
}

func TestStaticStopClosesDone(t *testing.T) {
	l := NewStatic(StaticOptions{ProjectDir: t.TempDir(), Host: "127.0.0.1"})
	srv, err := l.Start(context.Background())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	select {
	case <-srv.Done():
	default:
		t.Fatal("expected Done to be closed after Stop")
	}
	if srv.Err() != nil {
		t.Fatalf("expected nil Err after requested stop, got %v", srv.Err())
	}
}
