package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// RetentionPolicy selects the per-run log files eligible for pruning.
type RetentionPolicy struct {
	Dir     string
	Pattern string
	Days    int
	// Keep is never removed, whatever its age. It is normally the log of the
	// run doing the pruning.
	Keep string
}

// CleanupOldLogs deletes files in policy.Dir matching policy.Pattern that were
// last modified more than policy.Days ago, and returns how many went away.
// Days <= 0 disables pruning.
func CleanupOldLogs(logger *slog.Logger, policy RetentionPolicy) int {
	if policy.Days <= 0 || policy.Dir == "" {
		return 0
	}
	pattern := policy.Pattern
	if pattern == "" {
		pattern = "*"
	}
	matches, err := filepath.Glob(filepath.Join(policy.Dir, pattern))
	if err != nil {
		return 0
	}

	keep := absOrSelf(policy.Keep)
	cutoff := time.Now().AddDate(0, 0, -policy.Days)
	removed := 0
	for _, path := range matches {
		if policy.Keep != "" && absOrSelf(path) == keep {
			continue
		}
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "old run log could not be removed", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on paths.log_dir"),
				String(FieldImpact, "old log file stays on disk"),
			)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Debug("old run logs pruned",
			Int("removed", removed),
			String(FieldEventType, "log_pruned"),
		)
	}
	return removed
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
