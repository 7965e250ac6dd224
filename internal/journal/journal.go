// Package journal records the client-side audit trail of an interview run:
// sessions, submitted answers, and monitoring events, in SQLite under the
// state directory. The journal is strictly local; the backend keeps its own
// records, and nothing here is uploaded.
package journal

import "time"

// SessionRecord is one interview run.
type SessionRecord struct {
	ID        string
	Variant   string // "progressive" or "fixed"
	ServerID  string // backend session/interview id
	Status    string // active, completed, error
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AnswerRecord is one submitted answer.
type AnswerRecord struct {
	ID             int64
	SessionID      string
	QuestionID     int64
	QuestionText   string
	AnswerText     string
	Skipped        bool
	Forced         bool
	Weak           bool
	ElapsedSeconds int
	Timestamp      time.Time
}

// EventRecord is one monitoring event as it was uploaded (or dropped).
type EventRecord struct {
	ID          int64
	SessionID   string
	EventType   string
	MotionScore float64
	FacesCount  int
	Flags       string // comma-joined
	Uploaded    bool
	Timestamp   time.Time
}

// Summary is a per-session digest for listings.
type Summary struct {
	ID         string
	Variant    string
	Status     string
	UpdatedAt  time.Time
	Answers    int
	Suspicious int
}
