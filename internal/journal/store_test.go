package journal

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSessionLifecycle(t *testing.T) {
	store := openTestStore(t)

	rec, err := store.CreateSession("progressive", "s-remote-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if rec.ID == "" || rec.Status != "active" {
		t.Fatalf("unexpected session record: %+v", rec)
	}

	if err := store.SetSessionStatus(rec.ID, "completed"); err != nil {
		t.Fatalf("SetSessionStatus: %v", err)
	}

	got, err := store.GetSession(rec.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil || got.Status != "completed" || got.ServerID != "s-remote-1" {
		t.Fatalf("unexpected session after update: %+v", got)
	}

	missing, err := store.GetSession("no-such-id")
	if err != nil {
		t.Fatalf("GetSession missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}
}

func TestStoreAnswers(t *testing.T) {
	store := openTestStore(t)
	sess, err := store.CreateSession("fixed", "iv-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	records := []AnswerRecord{
		{SessionID: sess.ID, QuestionID: 1, QuestionText: "q1", AnswerText: "a substantial answer", ElapsedSeconds: 30},
		{SessionID: sess.ID, QuestionID: 2, QuestionText: "q2", AnswerText: "idk", Weak: true, Forced: true, ElapsedSeconds: 45},
		{SessionID: sess.ID, QuestionID: 3, QuestionText: "q3", Skipped: true, ElapsedSeconds: 45},
	}
	for _, rec := range records {
		if err := store.SaveAnswer(rec); err != nil {
			t.Fatalf("SaveAnswer(%d): %v", rec.QuestionID, err)
		}
	}

	answers, err := store.GetAnswers(sess.ID)
	if err != nil {
		t.Fatalf("GetAnswers: %v", err)
	}
	if len(answers) != 3 {
		t.Fatalf("got %d answers, want 3", len(answers))
	}
	if !answers[1].Weak || !answers[1].Forced {
		t.Errorf("answer 2 should keep weak and forced flags: %+v", answers[1])
	}
	if !answers[2].Skipped || answers[2].ElapsedSeconds != 45 {
		t.Errorf("answer 3 should keep skip and elapsed: %+v", answers[2])
	}
}

func TestStoreEventsAndSummaries(t *testing.T) {
	store := openTestStore(t)
	sess, err := store.CreateSession("progressive", "s-1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	events := []EventRecord{
		{SessionID: sess.ID, EventType: "baseline", MotionScore: 0.01, FacesCount: 1, Uploaded: true},
		{SessionID: sess.ID, EventType: "suspicious", MotionScore: 0.31, FacesCount: 0, Flags: "no_face,high_motion", Uploaded: true},
		{SessionID: sess.ID, EventType: "suspicious", MotionScore: 0.05, FacesCount: 2, Flags: "multi_face", Uploaded: false},
	}
	for _, rec := range events {
		if err := store.SaveEvent(rec); err != nil {
			t.Fatalf("SaveEvent: %v", err)
		}
	}
	if err := store.SaveAnswer(AnswerRecord{SessionID: sess.ID, QuestionID: 1, AnswerText: "a"}); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}

	got, err := store.GetEvents(sess.ID)
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	if got[1].Flags != "no_face,high_motion" || !got[1].Uploaded {
		t.Errorf("unexpected event record: %+v", got[1])
	}
	if got[2].Uploaded {
		t.Errorf("dropped event should not be marked uploaded: %+v", got[2])
	}

	summaries, err := store.ListSessions(10)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if summaries[0].Answers != 1 || summaries[0].Suspicious != 2 {
		t.Errorf("summary = %+v, want 1 answer and 2 suspicious events", summaries[0])
	}
}
