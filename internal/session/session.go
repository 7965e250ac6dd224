// Package session implements the interview session core: the question and
// answer model, the per-question countdown with forced submission, the
// question source variants, and the controller state machine that ties them
// together.
package session

import "strings"

// weakAnswerChars is the length under which a non-skipped answer is flagged
// as weak for reviewer attention.
const weakAnswerChars = 15

// Question is one interview question. Immutable once revealed.
type Question struct {
	ID              int64
	Text            string
	Difficulty      string
	Topic           string
	AllottedSeconds int
}

// Answer is the outcome of one question: produced exactly once, sent to the
// external scoring collaborator.
type Answer struct {
	QuestionID     int64
	Text           string
	Skipped        bool
	ElapsedSeconds int
}

// Weak reports whether a non-skipped answer is too short to be meaningful.
func (a Answer) Weak() bool {
	return !a.Skipped && len(strings.TrimSpace(a.Text)) < weakAnswerChars
}

// Progress describes where the session stands in its question sequence.
type Progress struct {
	QuestionNumber int
	MaxQuestions   int
}
