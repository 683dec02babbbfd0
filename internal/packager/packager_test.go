package packager

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

func TestArgsFixedOrder(t *testing.T) {
	opts := Options{Entry: "start_sistema.py", Name: "sistema_oficina", GOOS: "linux"}
	want := []string{"start_sistema.py", "--onefile", "--console", "--name=sistema_oficina"}
	if got := opts.Args(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Args() = %v, want %v", got, want)
	}
}

func TestArgsWindowsSuffix(t *testing.T) {
	opts := Options{Entry: "start_sistema.py", Name: "sistema_oficina", GOOS: "windows"}
	args := opts.Args()
	if args[len(args)-1] != "--name=sistema_oficina.exe" {
		t.Fatalf("expected .exe suffix, got %v", args)
	}
	opts.Name = "sistema_oficina.EXE"
	if opts.ExecutableName() != "sistema_oficina.EXE" {
		t.Fatalf("expected existing suffix to be kept, got %q", opts.ExecutableName())
	}
}

func TestArgsIconOnlyWhenPresent(t *testing.T) {
	dir := t.TempDir()
	opts := Options{Entry: "start_sistema.py", Name: "app", GOOS: "linux", Dir: dir, Icon: "app.ico"}
	for _, arg := range opts.Args() {
		if strings.HasPrefix(arg, "--icon=") {
			t.Fatalf("expected no icon arg for missing file, got %v", opts.Args())
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "app.ico"), []byte("ico"), 0o644); err != nil {
		t.Fatalf("write icon: %v", err)
	}
	args := opts.Args()
	if args[len(args)-1] != "--icon=app.ico" {
		t.Fatalf("expected icon arg, got %v", args)
	}
}

func TestRunInvokesBundler(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	bin := t.TempDir()
	project := t.TempDir()
	stub := filepath.Join(bin, "pyinstaller")
	script := "#!/bin/sh\necho \"$@\" > args.txt\necho bundling\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	var stdout bytes.Buffer
	result, err := Run(context.Background(), Options{
		Command: "pyinstaller",
		Entry:   "start_sistema.py",
		Name:    "sistema_oficina",
		Dir:     project,
		Stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.OutputDir != filepath.Join(project, "dist") {
		t.Fatalf("unexpected output dir %q", result.OutputDir)
	}
	recorded, err := os.ReadFile(filepath.Join(project, "args.txt"))
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	if got := strings.TrimSpace(string(recorded)); got != "start_sistema.py --onefile --console --name="+result.Executable {
		t.Fatalf("unexpected bundler args %q", got)
	}
	if !strings.Contains(stdout.String(), "bundling") {
		t.Fatalf("expected bundler output forwarded, got %q", stdout.String())
	}
}

func TestRunMissingBundler(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := Run(context.Background(), Options{Command: "pyinstaller", Entry: "x.py", Name: "x"})
	if !errors.Is(err, ErrBundlerMissing) {
		t.Fatalf("expected ErrBundlerMissing, got %v", err)
	}
}

func TestRunFailurePropagates(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	bin := t.TempDir()
	if err := os.WriteFile(filepath.Join(bin, "pyinstaller"), []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", bin)
	if _, err := Run(context.Background(), Options{Command: "pyinstaller", Entry: "x.py", Name: "x", Dir: t.TempDir()}); err == nil {
		t.Fatal("expected bundler failure to propagate")
	}
}
