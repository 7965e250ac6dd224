// Package cleanup implements pruning of stored session snapshot directories.
package cleanup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// PruneByAge removes snapshot directories older than maxAgeDays, judged by
// directory modification time. If dryRun is true, no directories are
// deleted; the function only returns the names that would be removed.
// Returns the list of pruned directory names.
func PruneByAge(sessionsDir string, maxAgeDays int, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	var pruned []string

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if !dryRun {
				path := filepath.Join(sessionsDir, entry.Name())
				if rmErr := os.RemoveAll(path); rmErr != nil {
					return pruned, fmt.Errorf("removing %s: %w", entry.Name(), rmErr)
				}
			}
			pruned = append(pruned, entry.Name())
		}
	}

	return pruned, nil
}

// PruneKeepRecent removes all snapshot directories except the most recently
// modified keep directories. If dryRun is true, no directories are deleted.
// Returns the list of pruned directory names.
func PruneKeepRecent(sessionsDir string, keep int, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sessions directory: %w", err)
	}

	type dirInfo struct {
		name    string
		modTime time.Time
	}
	var dirs []dirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		dirs = append(dirs, dirInfo{name: entry.Name(), modTime: info.ModTime()})
	}

	// Oldest first.
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].modTime.Before(dirs[j].modTime) })

	if len(dirs) <= keep {
		return nil, nil
	}

	toRemove := dirs[:len(dirs)-keep]
	var pruned []string

	for _, d := range toRemove {
		if !dryRun {
			path := filepath.Join(sessionsDir, d.name)
			if rmErr := os.RemoveAll(path); rmErr != nil {
				return pruned, fmt.Errorf("removing %s: %w", d.name, rmErr)
			}
		}
		pruned = append(pruned, d.name)
	}

	return pruned, nil
}
