package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SetupLogFile opens a fresh timestamped log file under dir and prunes
// older ones down to maxFiles. The caller owns the returned handle.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := fmt.Sprintf("server-%s.log", time.Now().Format("2006-01-02T15-04-05"))

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneLogFiles(dir, maxFiles); err != nil {
		// The new file is already open; a failed prune only leaves
		// extra files behind.
		fmt.Fprintf(os.Stderr, "warning: could not prune old logs: %v\n", err)
	}

	return f, nil
}

// pruneLogFiles keeps at most maxFiles log files in dir, dropping the
// oldest first. The timestamp in the name sorts lexically by age.
func pruneLogFiles(dir string, maxFiles int) error {
	files, err := filepath.Glob(filepath.Join(dir, "server-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= maxFiles {
		return nil
	}

	sort.Strings(files)

	for _, stale := range files[:len(files)-maxFiles] {
		if err := os.Remove(stale); err != nil {
			return fmt.Errorf("remove %s: %w", stale, err)
		}
	}

	return nil
}
