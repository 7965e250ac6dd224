// Package client provides the HTTP client for the interview backend: session
// bootstrap and answer submission for both session variants, plus multipart
// monitoring-frame upload.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrProtocol marks a structurally invalid backend response: a missing
// session id, an ok=false body with no error detail, or a next-question
// object without an id. Wrapped errors carry the specifics.
var ErrProtocol = errors.New("backend protocol violation")

const defaultTimeout = 30 * time.Second

// Client talks to the interview backend.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAuthToken attaches a bearer token to every request.
func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WireQuestion is a question as the backend sends it.
type WireQuestion struct {
	ID              int64  `json:"id"`
	Text            string `json:"text"`
	Difficulty      string `json:"difficulty,omitempty"`
	Topic           string `json:"topic,omitempty"`
	AllottedSeconds int    `json:"allotted_seconds,omitempty"`
}

// StartRequest opens a server-generated session.
type StartRequest struct {
	ResultID           string `json:"result_id,omitempty"`
	PerQuestionSeconds int    `json:"per_question_seconds,omitempty"`
	TotalTimeSeconds   int    `json:"total_time_seconds,omitempty"`
	MaxQuestions       int    `json:"max_questions,omitempty"`
}

// AnswerRequest submits one answer in a server-generated session.
type AnswerRequest struct {
	SessionID    string `json:"session_id"`
	QuestionID   int64  `json:"question_id"`
	AnswerText   string `json:"answer_text"`
	Skipped      bool   `json:"skipped"`
	TimeTakenSec int    `json:"time_taken_sec"`
}

// SessionState is the backend's view of the session after bootstrap or an
// answer. The same shape comes back from both calls; after an answer,
// NextQuestion replaces CurrentQuestion.
type SessionState struct {
	OK                    bool          `json:"ok"`
	Error                 string        `json:"error,omitempty"`
	SessionID             string        `json:"session_id"`
	InterviewCompleted    bool          `json:"interview_completed"`
	CurrentQuestion       *WireQuestion `json:"current_question,omitempty"`
	NextQuestion          *WireQuestion `json:"next_question,omitempty"`
	QuestionNumber        int           `json:"question_number"`
	MaxQuestions          int           `json:"max_questions"`
	TimeLimitSeconds      int           `json:"time_limit_seconds"`
	RemainingTotalSeconds int           `json:"remaining_total_seconds"`
}

// FixedSession is the bootstrap response for a pre-assigned question list.
type FixedSession struct {
	InterviewID      string         `json:"interview_id"`
	TimeLimitSeconds int            `json:"time_limit_seconds"`
	Questions        []WireQuestion `json:"questions"`
}

// FixedAnswerRequest submits one answer in a fixed-list session.
type FixedAnswerRequest struct {
	QuestionID   int64  `json:"question_id"`
	AnswerText   string `json:"answer_text"`
	Skipped      bool   `json:"skipped"`
	TimeTakenSec int    `json:"time_taken_sec"`
}

// UploadResult is the backend's verdict on an uploaded monitoring frame. The
// server may re-classify the event; the UI surfaces that verdict.
type UploadResult struct {
	OK          bool    `json:"ok"`
	Stored      bool    `json:"stored"`
	EventType   string  `json:"event_type"`
	Suspicious  bool    `json:"suspicious"`
	MotionScore float64 `json:"motion_score"`
	FacesCount  int     `json:"faces_count"`
}

// FrameUpload is one monitoring event bound for the backend.
type FrameUpload struct {
	SessionID   string
	EventType   string
	MotionScore float64
	FacesCount  int
	Flags       []string
	Image       []byte
}

// StartSession calls POST /interview/start.
func (c *Client) StartSession(ctx context.Context, req StartRequest) (*SessionState, error) {
	var state SessionState
	if err := c.postJSON(ctx, "/interview/start", req, &state); err != nil {
		return nil, err
	}
	if err := checkState(&state); err != nil {
		return nil, err
	}
	if state.CurrentQuestion == nil && !state.InterviewCompleted {
		return nil, fmt.Errorf("%w: bootstrap carried no question", ErrProtocol)
	}
	return &state, nil
}

// SubmitAnswer calls POST /interview/answer.
func (c *Client) SubmitAnswer(ctx context.Context, req AnswerRequest) (*SessionState, error) {
	var state SessionState
	if err := c.postJSON(ctx, "/interview/answer", req, &state); err != nil {
		return nil, err
	}
	if err := checkState(&state); err != nil {
		return nil, err
	}
	return &state, nil
}

// StartFixed calls GET /interview/{token}/start.
func (c *Client) StartFixed(ctx context.Context, token string) (*FixedSession, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/interview/"+token+"/start", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(httpReq)

	var fs FixedSession
	if err := c.do(httpReq, &fs); err != nil {
		return nil, err
	}
	if fs.InterviewID == "" {
		return nil, fmt.Errorf("%w: missing interview_id", ErrProtocol)
	}
	if len(fs.Questions) == 0 {
		return nil, fmt.Errorf("%w: fixed session carried no questions", ErrProtocol)
	}
	return &fs, nil
}

// SubmitFixedAnswer calls POST /interview/{token}/answer. The fixed-list
// backend acknowledges without advancing; question order is client-local.
func (c *Client) SubmitFixedAnswer(ctx context.Context, token string, req FixedAnswerRequest) error {
	var ack struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}
	if err := c.postJSON(ctx, "/interview/"+token+"/answer", req, &ack); err != nil {
		return err
	}
	if !ack.OK {
		if ack.Error != "" {
			return fmt.Errorf("backend rejected answer: %s", ack.Error)
		}
		return fmt.Errorf("%w: answer not acknowledged", ErrProtocol)
	}
	return nil
}

// UploadFrame calls POST /proctor/frame with a multipart body.
func (c *Client) UploadFrame(ctx context.Context, up FrameUpload) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(up.Image); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	fields := map[string]string{
		"session_id":   up.SessionID,
		"event_type":   up.EventType,
		"motion_score": strconv.FormatFloat(up.MotionScore, 'f', 4, 64),
		"faces_count":  strconv.Itoa(up.FacesCount),
	}
	if len(up.Flags) > 0 {
		fields["flags"] = strings.Join(up.Flags, ",")
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/proctor/frame", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(httpReq)

	var result UploadResult
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	if !result.OK {
		return nil, fmt.Errorf("backend refused frame for session %s", up.SessionID)
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)
	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("backend error: %s", errResp.Error)
		}
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

func checkState(state *SessionState) error {
	if !state.OK {
		if state.Error != "" {
			return fmt.Errorf("backend error: %s", state.Error)
		}
		return fmt.Errorf("%w: ok=false with no error detail", ErrProtocol)
	}
	if state.SessionID == "" {
		return fmt.Errorf("%w: missing session_id", ErrProtocol)
	}
	return nil
}
