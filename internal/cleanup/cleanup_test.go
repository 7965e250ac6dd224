package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// createMockSession creates a snapshot directory with the given mod time.
func createMockSession(t *testing.T, sessionsDir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(sessionsDir, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("creating mock session %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("setting mod time on %s: %v", name, err)
	}
	return name
}

func TestPruneByAge_RemovesOldSessions(t *testing.T) {
	sessionsDir := t.TempDir()

	now := time.Now()
	old := createMockSession(t, sessionsDir, "aaaa-old", now.AddDate(0, 0, -60))
	recent := createMockSession(t, sessionsDir, "bbbb-recent", now.AddDate(0, 0, -5))

	pruned, err := PruneByAge(sessionsDir, 30, false)
	if err != nil {
		t.Fatalf("PruneByAge failed: %v", err)
	}

	if len(pruned) != 1 || pruned[0] != old {
		t.Errorf("expected pruned=[%s], got %v", old, pruned)
	}

	// Old directory should be gone.
	if _, err := os.Stat(filepath.Join(sessionsDir, old)); !os.IsNotExist(err) {
		t.Errorf("expected %s to be deleted", old)
	}

	// Recent directory should still exist.
	if _, err := os.Stat(filepath.Join(sessionsDir, recent)); err != nil {
		t.Errorf("expected %s to still exist: %v", recent, err)
	}
}

func TestPruneByAge_DryRun(t *testing.T) {
	sessionsDir := t.TempDir()

	now := time.Now()
	old := createMockSession(t, sessionsDir, "aaaa-old", now.AddDate(0, 0, -60))

	pruned, err := PruneByAge(sessionsDir, 30, true)
	if err != nil {
		t.Fatalf("PruneByAge dry-run failed: %v", err)
	}

	if len(pruned) != 1 || pruned[0] != old {
		t.Errorf("expected pruned=[%s], got %v", old, pruned)
	}

	// Directory should still exist in dry-run mode.
	if _, err := os.Stat(filepath.Join(sessionsDir, old)); err != nil {
		t.Errorf("expected %s to still exist in dry-run: %v", old, err)
	}
}

func TestPruneByAge_SkipsFiles(t *testing.T) {
	sessionsDir := t.TempDir()

	// A stray file next to the snapshot directories is left alone.
	if err := os.WriteFile(filepath.Join(sessionsDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("creating stray file: %v", err)
	}

	pruned, err := PruneByAge(sessionsDir, 1, false)
	if err != nil {
		t.Fatalf("PruneByAge failed: %v", err)
	}

	if len(pruned) != 0 {
		t.Errorf("expected no pruned dirs, got %v", pruned)
	}
}

func TestPruneByAge_NonexistentDir(t *testing.T) {
	pruned, err := PruneByAge("/nonexistent/path", 30, false)
	if err != nil {
		t.Fatalf("expected nil error for nonexistent dir, got: %v", err)
	}
	if len(pruned) != 0 {
		t.Errorf("expected empty pruned list, got %v", pruned)
	}
}

func TestPruneKeepRecent_KeepsCorrectCount(t *testing.T) {
	sessionsDir := t.TempDir()

	now := time.Now()
	d1 := createMockSession(t, sessionsDir, "s1", now.AddDate(0, 0, -4))
	d2 := createMockSession(t, sessionsDir, "s2", now.AddDate(0, 0, -3))
	_ = createMockSession(t, sessionsDir, "s3", now.AddDate(0, 0, -2))
	_ = createMockSession(t, sessionsDir, "s4", now.AddDate(0, 0, -1))

	pruned, err := PruneKeepRecent(sessionsDir, 2, false)
	if err != nil {
		t.Fatalf("PruneKeepRecent failed: %v", err)
	}

	if len(pruned) != 2 {
		t.Fatalf("expected 2 pruned, got %d: %v", len(pruned), pruned)
	}

	// The two oldest should be removed.
	if pruned[0] != d1 || pruned[1] != d2 {
		t.Errorf("expected pruned=[%s, %s], got %v", d1, d2, pruned)
	}

	// Check filesystem state.
	entries, _ := os.ReadDir(sessionsDir)
	if len(entries) != 2 {
		t.Errorf("expected 2 remaining dirs, got %d", len(entries))
	}
}

func TestPruneKeepRecent_KeepMoreThanExist(t *testing.T) {
	sessionsDir := t.TempDir()

	createMockSession(t, sessionsDir, "s1", time.Now().AddDate(0, 0, -1))

	pruned, err := PruneKeepRecent(sessionsDir, 5, false)
	if err != nil {
		t.Fatalf("PruneKeepRecent failed: %v", err)
	}

	if len(pruned) != 0 {
		t.Errorf("expected no pruned dirs, got %v", pruned)
	}
}

func TestPruneKeepRecent_DryRun(t *testing.T) {
	sessionsDir := t.TempDir()

	now := time.Now()
	d1 := createMockSession(t, sessionsDir, "s1", now.AddDate(0, 0, -3))
	createMockSession(t, sessionsDir, "s2", now.AddDate(0, 0, -1))

	pruned, err := PruneKeepRecent(sessionsDir, 1, true)
	if err != nil {
		t.Fatalf("PruneKeepRecent dry-run failed: %v", err)
	}

	if len(pruned) != 1 || pruned[0] != d1 {
		t.Errorf("expected pruned=[%s], got %v", d1, pruned)
	}

	// Both should still exist in dry-run.
	entries, _ := os.ReadDir(sessionsDir)
	if len(entries) != 2 {
		t.Errorf("expected 2 dirs to remain in dry-run, got %d", len(entries))
	}
}

func TestPruneKeepRecent_NonexistentDir(t *testing.T) {
	pruned, err := PruneKeepRecent("/nonexistent/path", 5, false)
	if err != nil {
		t.Fatalf("expected nil error for nonexistent dir, got: %v", err)
	}
	if len(pruned) != 0 {
		t.Errorf("expected empty pruned list, got %v", pruned)
	}
}
