package launcher

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestExtractLocalURL(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
		ok   bool
	}{
		{"plain", "Local: http://localhost:5173/", "http://localhost:5173/", true},
		{"vite arrow", "  ➜  Local:   http://localhost:5174/", "http://localhost:5174/", true},
		{"ansi colored", "  \x1b[32m➜\x1b[39m  \x1b[1mLocal\x1b[22m:   \x1b[36mhttp://localhost:\x1b[1m5173\x1b[22m/\x1b[39m", "http://localhost:5173/", true},
		{"network line", "  ➜  Network: http://192.168.0.10:5173/", "", false},
		{"marker without url", "Local: use --host to expose", "", false},
		{"https", "Local: https://127.0.0.1:3000", "https://127.0.0.1:3000", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractLocalURL(tt.line)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ExtractLocalURL(%q) = %q, %v; want %q, %v", tt.line, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestForwardOutputReportsFirstURL(t *testing.T) {
	output := "\n  VITE v5.0.0  ready in 300 ms\n\n  ➜  Local:   http://localhost:5173/\n  ➜  Network: use --host to expose\n  ➜  Local:   http://localhost:9999/\n"
	var out bytes.Buffer
	var urls, lines []string
	err := ForwardOutput(strings.NewReader(output), &out,
		func(line string) { lines = append(lines, line) },
		func(url string) { urls = append(urls, url) },
	)
	if err != nil {
		t.Fatalf("ForwardOutput returned error: %v", err)
	}
	if len(urls) != 1 || urls[0] != "http://localhost:5173/" {
		t.Fatalf("expected first url only, got %v", urls)
	}
	if out.String() != output {
		t.Fatalf("output not forwarded verbatim: %q", out.String())
	}
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
}

func TestForwardOutputWithoutURL(t *testing.T) {
	called := false
	var out bytes.Buffer
	if err := ForwardOutput(strings.NewReader("compiling...\nready\n"), &out, nil, func(string) { called = true }); err != nil {
		t.Fatalf("ForwardOutput returned error: %v", err)
	}
	if called {
		t.Fatal("found should not be called without a Local: line")
	}
}

func TestForwardOutputDrainsAfterOverlongLine(t *testing.T) {
	long := strings.Repeat("x", maxOutputLine+10)
	input := long + "\nafter the long line\n"
	var out bytes.Buffer
	err := ForwardOutput(strings.NewReader(input), &out, nil, nil)
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("expected bufio.ErrTooLong, got %v", err)
	}
	if !strings.HasSuffix(out.String(), "after the long line\n") {
		t.Fatalf("expected the rest of the stream to be copied through, got %d bytes ending %q",
			out.Len(), out.String()[max(0, out.Len()-40):])
	}
}
