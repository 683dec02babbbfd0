package launchrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"oficina/internal/browser"
	"oficina/internal/config"
	"oficina/internal/connectivity"
	"oficina/internal/console"
	"oficina/internal/journal"
	"oficina/internal/launcher"
	"oficina/internal/logging"
	"oficina/internal/procctl"
	"oficina/internal/statushub"
	"oficina/internal/supervisor"
)

// CurrentLogName is the pointer in the log directory that follows the newest
// run log.
const CurrentLogName = "oficina.log"

// Options configures one launcher run.
type Options struct {
	Verbose   bool
	NoBrowser bool
	// Stdout receives console notices and child output. Nil means os.Stdout.
	Stdout io.Writer
	// Prober replaces the TCP connectivity probe.
	Prober connectivity.Prober
	// OpenBrowser replaces the platform browser launcher.
	OpenBrowser func(url string) error
}

// Run wires logging, the journal, the status hub, and the selected launcher
// into a supervisor and runs it until SIGINT/SIGTERM or server exit.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	// After the first signal, restore default handling so a second Ctrl+C
	// exits immediately.
	context.AfterFunc(signalCtx, cancel)

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("oficina-%s.log", runID))
	sessionID := uuid.NewString()

	logger, err := logging.NewFromConfig(cfg, logPath, opts.Verbose, sessionID)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update oficina.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, logging.RetentionPolicy{
		Dir:     cfg.Paths.LogDir,
		Pattern: "oficina-*.log",
		Days:    cfg.Logging.RetentionDays,
		Keep:    logPath,
	})
	logger.Info("oficina launcher starting",
		logging.String(logging.FieldEventType, "launcher_starting"),
		logging.String(logging.FieldMode, cfg.Server.Mode),
		logging.String("project_dir", cfg.Project.Dir),
		logging.String("log_path", logPath),
		logging.Int("pid", os.Getpid()),
	)

	printer := console.New(stdout, cfg.UI.Language)

	prober := opts.Prober
	if prober == nil {
		prober = connectivity.NewTCPProber(cfg.Connectivity.Target, cfg.ProbeTimeout())
	}
	monitor := connectivity.NewMonitor(prober, cfg.ProbeInterval(), logger)
	monitor.AddObserver(printer)

	journalCtx := context.WithoutCancel(signalCtx)
	store := openJournal(signalCtx, cfg, logger)
	if store != nil {
		defer store.Close()
		if err := store.BeginSession(journalCtx, journal.Session{
			ID:        sessionID,
			StartedAt: time.Now(),
			Mode:      cfg.Server.Mode,
			PID:       os.Getpid(),
		}); err != nil {
			journalWarning(logger, "journal session start failed", err)
			store = nil
		} else {
			monitor.AddObserver(journal.NewRecorder(store, sessionID, logger))
		}
	}

	var hub *statushub.Hub
	if cfg.Status.Enabled {
		hub = statushub.New(monitor, logger)
		hub.SetSession(sessionID)
		monitor.AddObserver(hub)
		defer hub.Close()
	}

	var background sync.WaitGroup
	defer background.Wait()
	hubCtx, stopHub := context.WithCancel(signalCtx)
	defer stopHub()
	if hub != nil && cfg.Server.Mode == config.ModeDev && cfg.Status.Listen != "" {
		serveStatus(hubCtx, &background, hub, cfg.Status.Listen, logger)
	}

	srvLauncher := newLauncher(cfg, printer, hub, stdout, logger)

	var opener supervisor.Browser
	if cfg.Browser.Enabled && !opts.NoBrowser {
		o := browser.New(cfg.BrowserDelay(), logger)
		if opts.OpenBrowser != nil {
			o.Open = opts.OpenBrowser
			o.HasDisplay = nil
		}
		opener = o
	}

	sup, err := supervisor.New(supervisor.Options{
		Launcher:    srvLauncher,
		Monitor:     monitor,
		Console:     printer,
		Browser:     opener,
		Logger:      logger,
		StopTimeout: cfg.StopTimeout(),
		LockPath:    cfg.LockPath(),
		ClearScreen: cfg.UI.ClearScreen && printer.Colorize(),
		OnProbed: func(online bool) {
			if store == nil {
				return
			}
			if err := store.SetInitialOnline(journalCtx, sessionID, online); err != nil {
				journalWarning(logger, "journal update failed", err)
			}
		},
		OnServerReady: func(url string, _ bool) {
			if hub != nil {
				hub.SetServer(srvLauncher.Name(), url)
			}
			if store == nil {
				return
			}
			if err := store.SetSessionURL(journalCtx, sessionID, url); err != nil {
				journalWarning(logger, "journal update failed", err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("create supervisor: %w", err)
	}

	runErr := sup.Run(signalCtx)
	stopHub()

	outcome := Outcome(runErr)
	if store != nil {
		if err := store.EndSession(journalCtx, sessionID, outcome, runErr, time.Now()); err != nil {
			journalWarning(logger, "journal session end failed", err)
		}
	}
	logger.Info("oficina launcher stopped",
		logging.String(logging.FieldEventType, "launcher_stopped"),
		logging.String("outcome", outcome),
		logging.String("state", sup.State().String()),
	)
	return runErr
}

// Outcome maps a supervisor result to the journal outcome recorded for it.
func Outcome(err error) string {
	switch {
	case err == nil:
		return journal.OutcomeInterrupted
	case errors.Is(err, supervisor.ErrAlreadyRunning):
		return journal.OutcomeAlreadyActive
	case errors.Is(err, supervisor.ErrServerExited):
		return journal.OutcomeServerExited
	default:
		return journal.OutcomeFailed
	}
}

func newLauncher(cfg *config.Config, printer *console.Printer, hub *statushub.Hub, output io.Writer, logger *slog.Logger) launcher.Launcher {
	if cfg.Server.Mode == config.ModeStatic {
		opts := launcher.StaticOptions{
			ProjectDir: cfg.Project.Dir,
			BuildDir:   cfg.BuildOutputDir(),
			Host:       cfg.Server.Host,
			Port:       cfg.Server.Port,
			Logger:     logger,
		}
		if hub != nil {
			opts.Mount = hub.Mount
		}
		return launcher.NewStatic(opts)
	}
	return launcher.NewDev(launcher.DevOptions{
		ProjectDir:        cfg.Project.Dir,
		RuntimeCheck:      cfg.Dev.RuntimeCheck,
		RuntimeName:       cfg.Dev.RuntimeName,
		RuntimeHint:       cfg.Dev.RuntimeHint,
		MarkerDir:         cfg.MarkerDir(),
		InstallCommand:    cfg.Dev.InstallCommand,
		InstallWhenOnline: cfg.Dev.InstallWhenOnline,
		Command:           cfg.Dev.Command,
		DefaultURL:        cfg.Dev.DefaultURL,
		URLTimeout:        cfg.URLTimeout(),
		StopTimeout:       cfg.StopTimeout(),
		Output:            output,
		Terminator:        procctl.Default(),
		OnInstall:         printer.Installing,
		Logger:            logger,
	})
}

func openJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) *journal.Store {
	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		journalWarning(logger, "journal unavailable", err)
		return nil
	}
	if cfg.Logging.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cfg.Logging.RetentionDays)
		if removed, err := store.PruneBefore(ctx, cutoff); err != nil {
			logger.Debug("journal prune failed", logging.Error(err))
		} else if removed > 0 {
			logger.Debug("journal pruned", logging.Int("sessions", int(removed)))
		}
	}
	return store
}

func journalWarning(logger *slog.Logger, msg string, err error) {
	logging.WarnWithContext(logger, msg, "journal_unavailable",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
		logging.String(logging.FieldImpact, "session missing from oficina history"),
	)
}

func serveStatus(ctx context.Context, wg *sync.WaitGroup, hub *statushub.Hub, address string, logger *slog.Logger) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		logging.WarnWithContext(logger, "status endpoint unavailable", "status_listen_failed",
			logging.Error(err),
			logging.String("address", address),
			logging.String(logging.FieldErrorHint, "choose a free status.listen address"),
			logging.String(logging.FieldImpact, "frontend cannot follow launcher connectivity"),
		)
		return
	}
	logger.Info("status endpoint listening", logging.String("address", listener.Addr().String()))
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hub.Serve(ctx, listener); err != nil {
			logger.Debug("status endpoint stopped", logging.Error(err))
		}
	}()
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, CurrentLogName)
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}
