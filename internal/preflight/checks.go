package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/gofrs/flock"

	"oficina/internal/config"
	"oficina/internal/connectivity"
	"oficina/internal/deps"
)

// CheckRuntime invokes the configured runtime check command.
func CheckRuntime(ctx context.Context, cfg *config.Config) Result {
	name := cfg.Dev.RuntimeName
	if name == "" {
		name = "Runtime"
	}
	status := deps.CheckCommand(ctx, deps.Requirement{Name: name, Command: cfg.Dev.RuntimeCheck})
	if !status.Available {
		detail := status.Detail
		if cfg.Dev.RuntimeHint != "" {
			detail += "; install from " + cfg.Dev.RuntimeHint
		}
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: status.Detail}
}

// CheckTools resolves the dev-server and install commands on PATH.
func CheckTools(cfg *config.Config) []Result {
	requirements := []deps.Requirement{
		{Name: "Dev server", Command: cfg.Dev.Command},
	}
	if cfg.Dev.InstallCommand != "" {
		requirements = append(requirements, deps.Requirement{Name: "Installer", Command: cfg.Dev.InstallCommand})
	}
	statuses := deps.CheckBinaries(requirements)
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		detail := status.Command
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}
	return results
}

// CheckMarker reports whether dependencies are installed.
func CheckMarker(cfg *config.Config) Result {
	const name = "Dependencies"
	dir := cfg.MarkerDir()
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return Result{Name: name, Passed: true, Detail: dir}
	case err == nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", dir)}
	case errors.Is(err, os.ErrNotExist):
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s missing; installed on next start", dir)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", dir, err)}
	}
}

// CheckBuildOutput reports which directory the static server will serve.
func CheckBuildOutput(cfg *config.Config) Result {
	const name = "Build output"
	dir := cfg.BuildOutputDir()
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return Result{Name: name, Passed: true, Detail: dir}
	}
	return Result{Name: name, Optional: true, Detail: fmt.Sprintf("%s missing; serving %s", dir, cfg.Project.Dir)}
}

// CheckPort verifies that host:port can be bound.
func CheckPort(host string, port int) Result {
	name := "Port " + strconv.Itoa(port)
	return checkBind(name, net.JoinHostPort(host, strconv.Itoa(port)))
}

// CheckListenAddress verifies that address can be bound.
func CheckListenAddress(name, address string) Result {
	return checkBind(name, address)
}

func checkBind(name, address string) Result {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s in use or unavailable (%v)", address, err)}
	}
	_ = listener.Close()
	return Result{Name: name, Passed: true, Detail: address + " available"}
}

// CheckConnectivity probes the internet once.
func CheckConnectivity(ctx context.Context, prober connectivity.Prober, target string) Result {
	const name = "Internet"
	if prober.Online(ctx) {
		return Result{Name: name, Passed: true, Detail: "reachable via " + target}
	}
	return Result{Name: name, Optional: true, Detail: "offline; the system runs in local mode"}
}

// CheckInstanceLock reports whether another launcher holds the lock.
func CheckInstanceLock(path string) Result {
	const name = "Instance"
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("lock %s: %v", path, err)}
	}
	if !locked {
		return Result{Name: name, Optional: true, Detail: "another launcher is running"}
	}
	_ = lock.Unlock()
	return Result{Name: name, Passed: true, Detail: "no launcher running"}
}

// CheckBundler reports whether the packaging tool is available.
func CheckBundler(cfg *config.Config) Result {
	statuses := deps.CheckBinaries([]deps.Requirement{{Name: "Bundler", Command: cfg.Packager.Command}})
	status := statuses[0]
	if !status.Available {
		return Result{Name: status.Name, Optional: true, Detail: status.Detail + "; needed only for oficina package"}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Command}
}
