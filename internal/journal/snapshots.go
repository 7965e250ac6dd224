package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// snapshotTimestampLayout names snapshot files so they sort chronologically.
const snapshotTimestampLayout = "20060102-150405.000"

// Snapshots writes uploaded frame images under sessions/<id>/ for local
// review. Failures are reported but callers treat them as non-fatal; a full
// disk must not interrupt an interview.
type Snapshots struct {
	root string
}

// NewSnapshots returns a snapshot store rooted at the sessions directory.
func NewSnapshots(sessionsDir string) *Snapshots {
	return &Snapshots{root: sessionsDir}
}

// Dir returns the directory for one session's snapshots.
func (s *Snapshots) Dir(sessionID string) string {
	return filepath.Join(s.root, sessionID)
}

// Save writes one frame image, named by event type and capture time.
func (s *Snapshots) Save(sessionID, eventType string, capturedAt time.Time, image []byte) (string, error) {
	dir := s.Dir(sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.jpg", capturedAt.Format(snapshotTimestampLayout), eventType)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, image, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}
