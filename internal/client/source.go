package client

import (
	"context"
	"fmt"

	"github.com/vigil-dev/vigil/internal/session"
)

// ProgressiveSource drives a server-generated session: every answer round
// trip may mint a new question, and the server alone decides when the
// session is over.
type ProgressiveSource struct {
	client    *Client
	start     StartRequest
	sessionID string
}

// NewProgressiveSource builds a source that will open a session with the
// given parameters on Start.
func NewProgressiveSource(c *Client, start StartRequest) *ProgressiveSource {
	return &ProgressiveSource{client: c, start: start}
}

// SessionID returns the server-assigned id, empty before Start.
func (s *ProgressiveSource) SessionID() string { return s.sessionID }

// Start implements session.Source.
func (s *ProgressiveSource) Start(ctx context.Context) (*session.Question, int, session.Progress, error) {
	state, err := s.client.StartSession(ctx, s.start)
	if err != nil {
		return nil, 0, session.Progress{}, err
	}
	s.sessionID = state.SessionID
	if state.InterviewCompleted || state.CurrentQuestion == nil {
		return nil, 0, session.Progress{}, fmt.Errorf("%w: session completed before first question", ErrProtocol)
	}
	q := toQuestion(state.CurrentQuestion, state.TimeLimitSeconds)
	progress := session.Progress{QuestionNumber: state.QuestionNumber, MaxQuestions: state.MaxQuestions}
	return q, state.RemainingTotalSeconds, progress, nil
}

// Submit implements session.Source. Completion comes only from the server:
// an explicit interview_completed, or an answer response with no next
// question.
func (s *ProgressiveSource) Submit(ctx context.Context, ans session.Answer) (session.Advance, error) {
	state, err := s.client.SubmitAnswer(ctx, AnswerRequest{
		SessionID:    s.sessionID,
		QuestionID:   ans.QuestionID,
		AnswerText:   ans.Text,
		Skipped:      ans.Skipped,
		TimeTakenSec: ans.ElapsedSeconds,
	})
	if err != nil {
		return session.Advance{}, err
	}
	adv := session.Advance{
		TimeLimitSeconds:      state.TimeLimitSeconds,
		RemainingTotalSeconds: state.RemainingTotalSeconds,
		Progress:              session.Progress{QuestionNumber: state.QuestionNumber, MaxQuestions: state.MaxQuestions},
	}
	if state.InterviewCompleted || state.NextQuestion == nil {
		adv.Completed = true
		return adv, nil
	}
	if state.NextQuestion.ID == 0 {
		return session.Advance{}, fmt.Errorf("%w: next question without id", ErrProtocol)
	}
	adv.Next = toQuestion(state.NextQuestion, state.TimeLimitSeconds)
	return adv, nil
}

// FixedSource drives a pre-assigned question list: the full list arrives at
// bootstrap, the client walks it in order, and answers are acknowledged
// without advancing server state. Walking past the last question completes
// the session.
type FixedSource struct {
	client *Client
	token  string

	interviewID string
	questions   []session.Question
	index       int
}

// NewFixedSource builds a source for the access token's assigned list.
func NewFixedSource(c *Client, token string) *FixedSource {
	return &FixedSource{client: c, token: token}
}

// SessionID returns the interview id, empty before Start.
func (s *FixedSource) SessionID() string { return s.interviewID }

// Start implements session.Source.
func (s *FixedSource) Start(ctx context.Context) (*session.Question, int, session.Progress, error) {
	fs, err := s.client.StartFixed(ctx, s.token)
	if err != nil {
		return nil, 0, session.Progress{}, err
	}
	s.interviewID = fs.InterviewID
	s.questions = make([]session.Question, len(fs.Questions))
	for i, wq := range fs.Questions {
		// time_limit_seconds is the flat per-question limit for the whole
		// list; fixed interviews carry no overall session budget.
		s.questions[i] = *toQuestion(&wq, fs.TimeLimitSeconds)
	}
	s.index = 0
	progress := session.Progress{QuestionNumber: 1, MaxQuestions: len(s.questions)}
	return &s.questions[0], 0, progress, nil
}

// Submit implements session.Source.
func (s *FixedSource) Submit(ctx context.Context, ans session.Answer) (session.Advance, error) {
	err := s.client.SubmitFixedAnswer(ctx, s.token, FixedAnswerRequest{
		QuestionID:   ans.QuestionID,
		AnswerText:   ans.Text,
		Skipped:      ans.Skipped,
		TimeTakenSec: ans.ElapsedSeconds,
	})
	if err != nil {
		return session.Advance{}, err
	}
	s.index++
	if s.index >= len(s.questions) {
		return session.Advance{Completed: true}, nil
	}
	return session.Advance{
		Next:     &s.questions[s.index],
		Progress: session.Progress{QuestionNumber: s.index + 1, MaxQuestions: len(s.questions)},
	}, nil
}

func toQuestion(wq *WireQuestion, timeLimit int) *session.Question {
	allotted := wq.AllottedSeconds
	if allotted == 0 {
		allotted = timeLimit
	}
	return &session.Question{
		ID:              wq.ID,
		Text:            wq.Text,
		Difficulty:      wq.Difficulty,
		Topic:           wq.Topic,
		AllottedSeconds: session.ClampAllotted(allotted),
	}
}
