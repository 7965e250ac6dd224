package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store provides SQLite-backed persistence for the audit journal.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they
// don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		variant TEXT NOT NULL,
		server_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		question_id INTEGER NOT NULL,
		question_text TEXT NOT NULL,
		answer_text TEXT NOT NULL,
		skipped INTEGER NOT NULL DEFAULT 0,
		forced INTEGER NOT NULL DEFAULT 0,
		weak INTEGER NOT NULL DEFAULT 0,
		elapsed_seconds INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS proctor_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		motion_score REAL NOT NULL DEFAULT 0,
		faces_count INTEGER NOT NULL DEFAULT -1,
		flags TEXT NOT NULL DEFAULT '',
		uploaded INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateSession records a new interview run and returns it.
func (s *Store) CreateSession(variant, serverID string) (*SessionRecord, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, variant, server_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, 'active', ?, ?)`,
		id, variant, serverID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &SessionRecord{
		ID:        id,
		Variant:   variant,
		ServerID:  serverID,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SetSessionStatus moves a session to completed or error.
func (s *Store) SetSessionStatus(id, status string) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, nil when absent.
func (s *Store) GetSession(id string) (*SessionRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, variant, server_id, status, created_at, updated_at
		 FROM sessions WHERE id = ?`,
		id,
	)

	var rec SessionRecord
	err := row.Scan(&rec.ID, &rec.Variant, &rec.ServerID, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return &rec, nil
}

// SaveAnswer appends a submitted answer to the journal.
func (s *Store) SaveAnswer(rec AnswerRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO answers (session_id, question_id, question_text, answer_text,
		                      skipped, forced, weak, elapsed_seconds, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.QuestionID, rec.QuestionText, rec.AnswerText,
		rec.Skipped, rec.Forced, rec.Weak, rec.ElapsedSeconds, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

// GetAnswers retrieves all answers for a session in submission order.
func (s *Store) GetAnswers(sessionID string) ([]AnswerRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, question_id, question_text, answer_text,
		        skipped, forced, weak, elapsed_seconds, timestamp
		 FROM answers
		 WHERE session_id = ?
		 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var answers []AnswerRecord
	for rows.Next() {
		var rec AnswerRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.QuestionID, &rec.QuestionText, &rec.AnswerText,
			&rec.Skipped, &rec.Forced, &rec.Weak, &rec.ElapsedSeconds, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return answers, nil
}

// SaveEvent appends a monitoring event to the journal.
func (s *Store) SaveEvent(rec EventRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO proctor_events (session_id, event_type, motion_score, faces_count, flags, uploaded, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.EventType, rec.MotionScore, rec.FacesCount, rec.Flags, rec.Uploaded, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetEvents retrieves all monitoring events for a session in capture order.
func (s *Store) GetEvents(sessionID string) ([]EventRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, event_type, motion_score, faces_count, flags, uploaded, timestamp
		 FROM proctor_events
		 WHERE session_id = ?
		 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []EventRecord
	for rows.Next() {
		var rec EventRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.EventType, &rec.MotionScore,
			&rec.FacesCount, &rec.Flags, &rec.Uploaded, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return events, nil
}

// ListSessions returns digests of the most recent sessions.
func (s *Store) ListSessions(limit int) ([]Summary, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.variant, s.status, s.updated_at,
		        (SELECT COUNT(*) FROM answers a WHERE a.session_id = s.id) as answers,
		        (SELECT COUNT(*) FROM proctor_events e
		         WHERE e.session_id = s.id AND e.event_type = 'suspicious') as suspicious
		 FROM sessions s
		 ORDER BY s.updated_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Variant, &sum.Status, &sum.UpdatedAt, &sum.Answers, &sum.Suspicious); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return summaries, nil
}
