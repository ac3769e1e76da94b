package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxAge is how long audit files are kept when no age is given.
const DefaultMaxAge = 30 * 24 * time.Hour

// PruneOptions configures Prune.
type PruneOptions struct {
	Dir    string
	MaxAge time.Duration // zero means DefaultMaxAge
	DryRun bool          // count what would be removed without removing it
}

// PruneResult reports what Prune did.
type PruneResult struct {
	Deleted int
	// Errors holds non-fatal per-file failures.
	Errors []string
}

// Prune deletes audit-*.jsonl and audit-*.jsonl.old files in opts.Dir whose
// modification time is older than MaxAge. A missing directory is not an
// error. Only a failure to read the directory itself is returned.
func Prune(opts PruneOptions) (PruneResult, error) {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	var result PruneResult
	cutoff := time.Now().Add(-opts.MaxAge)

	if _, err := os.Stat(opts.Dir); err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, fmt.Errorf("stat audit directory: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(opts.Dir, "audit-*.jsonl*"))
	if err != nil {
		return result, fmt.Errorf("glob audit files: %w", err)
	}

	for _, path := range matches {
		base := filepath.Base(path)
		if !strings.HasSuffix(base, ".jsonl") && !strings.HasSuffix(base, ".jsonl.old") {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				// Removed between glob and stat by another session.
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("stat %s: %v", path, err))
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if opts.DryRun {
			result.Deleted++
			continue
		}
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("remove %s: %v", path, err))
			continue
		}
		result.Deleted++
	}

	return result, nil
}
