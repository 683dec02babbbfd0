package preflight

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"oficina/internal/config"
	"oficina/internal/connectivity"
	"oficina/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("State", dir)
	if !result.Passed {
		t.Fatalf("expected passed, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("State", "/nonexistent/path/that/does/not/exist")
	if result.Passed {
		t.Fatal("expected failure for nonexistent dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("State", f)
	if result.Passed {
		t.Fatal("expected failure for non-directory")
	}
	if !strings.Contains(result.Detail, "not a directory") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckMarker(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	missing := CheckMarker(cfg)
	if missing.Passed || !missing.Optional {
		t.Fatalf("expected optional failure for missing marker, got %+v", missing)
	}

	if err := os.MkdirAll(cfg.MarkerDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	present := CheckMarker(cfg)
	if !present.Passed {
		t.Fatalf("expected marker to pass, got %+v", present)
	}
}

func TestCheckBuildOutputFallsBackToProject(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMode(config.ModeStatic))
	result := CheckBuildOutput(cfg)
	if result.Passed || !result.Optional {
		t.Fatalf("expected optional result without build output, got %+v", result)
	}
	if !strings.Contains(result.Detail, cfg.Project.Dir) {
		t.Fatalf("expected project dir in detail, got %s", result.Detail)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithMode(config.ModeStatic), testsupport.WithBuildOutput("<html></html>"))
	if result := CheckBuildOutput(cfg); !result.Passed {
		t.Fatalf("expected build output to pass, got %+v", result)
	}
}

func TestCheckPortDetectsConflict(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()
	port := listener.Addr().(*net.TCPAddr).Port

	result := CheckPort("127.0.0.1", port)
	if result.Passed {
		t.Fatalf("expected busy port to fail, got %+v", result)
	}
	if result.Name != "Port "+strconv.Itoa(port) {
		t.Fatalf("unexpected name %q", result.Name)
	}

	if free := CheckPort("127.0.0.1", 0); !free.Passed {
		t.Fatalf("expected ephemeral port to pass, got %+v", free)
	}
}

func TestCheckConnectivity(t *testing.T) {
	online := CheckConnectivity(context.Background(), connectivity.ProbeFunc(func(context.Context) bool { return true }), "8.8.8.8:53")
	if !online.Passed {
		t.Fatalf("expected online result, got %+v", online)
	}
	offline := CheckConnectivity(context.Background(), connectivity.ProbeFunc(func(context.Context) bool { return false }), "8.8.8.8:53")
	if offline.Passed || !offline.Optional {
		t.Fatalf("expected optional offline result, got %+v", offline)
	}
}

func TestCheckInstanceLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oficina.lock")
	if result := CheckInstanceLock(path); !result.Passed {
		t.Fatalf("expected free lock, got %+v", result)
	}

	holder := flock.New(path)
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("hold lock: locked=%v err=%v", locked, err)
	}
	defer holder.Unlock()

	result := CheckInstanceLock(path)
	if result.Passed || !result.Optional {
		t.Fatalf("expected held lock to report a running launcher, got %+v", result)
	}
}

func TestRunAllDevMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	testsupport.WithStubbedBinaries(t, map[string]string{
		"fakenode": `echo "v20.11.0"`,
		"fakenpm":  "exit 0",
		"fakenpx":  "exit 0",
	})
	cfg := testsupport.NewConfig(t, testsupport.WithDevCommands("fakenode --version", "fakenpm install", "fakenpx vite"))
	cfg.Packager.Command = "definitely-missing-bundler"

	results := RunAll(context.Background(), cfg, connectivity.ProbeFunc(func(context.Context) bool { return false }))
	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}

	runtimeResult, ok := byName[cfg.Dev.RuntimeName]
	if !ok || !runtimeResult.Passed || runtimeResult.Detail != "v20.11.0" {
		t.Fatalf("unexpected runtime result: %+v (present=%v)", runtimeResult, ok)
	}
	for _, name := range []string{"Dev server", "Installer", "State directory", "Instance"} {
		if !byName[name].Passed {
			t.Fatalf("expected %s to pass, got %+v", name, byName[name])
		}
	}
	if _, ok := byName["Build output"]; ok {
		t.Fatal("build output check should not run in dev mode")
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected only optional failures, got %+v", failed)
	}
}

func TestRunAllReportsMissingRuntime(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDevCommands("definitely-missing-node --version", "", "definitely-missing-npx vite"))
	results := RunAll(context.Background(), cfg, nil)

	failed := Failed(results)
	if len(failed) != 2 {
		t.Fatalf("expected runtime and dev server failures, got %+v", failed)
	}
	if !strings.Contains(failed[0].Detail, cfg.Dev.RuntimeHint) {
		t.Fatalf("expected install hint in detail, got %q", failed[0].Detail)
	}
	for _, r := range results {
		if r.Name == "Internet" {
			t.Fatal("nil prober should skip the connectivity check")
		}
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatalf("expected nil results, got %+v", results)
	}
}

func occupiedAddress(t *testing.T) (string, int) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = listener.Close() })
	return listener.Addr().String(), listener.Addr().(*net.TCPAddr).Port
}

func TestRunAllStaticModeFlagsBusyPort(t *testing.T) {
	_, port := occupiedAddress(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithMode(config.ModeStatic),
		testsupport.WithBuildOutput("<html></html>"),
		testsupport.WithPort(port),
	)

	var portResult *Result
	results := RunAll(context.Background(), cfg, nil)
	for i := range results {
		if results[i].Name == "Port "+strconv.Itoa(port) {
			portResult = &results[i]
		}
	}
	if portResult == nil || portResult.Passed {
		t.Fatalf("expected failing port check, got %+v", results)
	}
	if !strings.Contains(portResult.Detail, "in use") {
		t.Fatalf("unexpected detail %q", portResult.Detail)
	}
}

func TestRunAllDevModeChecksStatusEndpoint(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	testsupport.WithStubbedBinaries(t, map[string]string{
		"fakenode": `echo "v20.11.0"`,
		"fakenpx":  "exit 0",
	})
	busy, _ := occupiedAddress(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithDevCommands("fakenode --version", "", "fakenpx vite"),
		testsupport.WithStatusListen(busy),
	)

	failed := Failed(RunAll(context.Background(), cfg, nil))
	if len(failed) != 1 || failed[0].Name != "Status endpoint" {
		t.Fatalf("expected only the status endpoint to fail, got %+v", failed)
	}
}
