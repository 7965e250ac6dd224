package proctor

import (
	"errors"
	"time"
)

// DefaultCadence is the interval between sampling ticks. A legacy capture
// path used 1.5s; both are valid config values.
const (
	DefaultCadence = 2 * time.Second
	LegacyCadence  = 1500 * time.Millisecond
)

// Monitor drives one session's sample→classify→upload pipeline. It owns the
// sampler and classifier state, the single-submission busy flag, and the
// upload breaker. All methods are called from the session's event loop; the
// Monitor itself is not safe for concurrent use.
type Monitor struct {
	sampler    *Sampler
	classifier *Classifier
	faces      FaceCounter // nil when the capability is unavailable

	sessionID  string
	questionID int64

	uploadBusy bool
	breaker    *UploadBreaker
	stopped    bool
}

// NewMonitor creates a Monitor for one session. faces may be nil.
func NewMonitor(src FrameSource, faces FaceCounter, thresholds Thresholds) *Monitor {
	return &Monitor{
		sampler:    NewSampler(src),
		classifier: NewClassifier(thresholds),
		faces:      faces,
		breaker:    NewUploadBreaker(thresholds.UploadFailureLimit, thresholds.UploadRetryCooldown),
	}
}

// SetSession binds subsequent events to a session identifier.
func (m *Monitor) SetSession(sessionID string) { m.sessionID = sessionID }

// SetQuestion binds subsequent events to the active question.
func (m *Monitor) SetQuestion(questionID int64) { m.questionID = questionID }

// Calibrating reports whether baseline shots are still being collected.
func (m *Monitor) Calibrating() bool { return m.classifier.Calibrating() }

// Breaker exposes the upload breaker for status display.
func (m *Monitor) Breaker() *UploadBreaker { return m.breaker }

// Stop marks the monitor as torn down. Subsequent ticks return no events.
func (m *Monitor) Stop() { m.stopped = true }

// Stopped reports whether Stop has been called.
func (m *Monitor) Stopped() bool { return m.stopped }

// Tick runs one sampling tick: grab a frame, count faces, classify.
// It returns nil when nothing is reportable: source not warmed up yet
// (fails soft), event classified as none, or monitor stopped.
//
// Tick never schedules network work itself; the caller decides whether the
// returned event can actually be submitted (see BeginUpload).
func (m *Monitor) Tick(now time.Time) (*MonitoringEvent, error) {
	if m.stopped {
		return nil, nil
	}

	sample, err := m.sampler.Sample()
	if err != nil {
		if errors.Is(err, ErrSourceNotReady) {
			return nil, nil
		}
		return nil, err
	}

	faceCount := -1
	if m.faces != nil {
		if n, err := m.faces.CountFaces(sample.Frame); err == nil {
			faceCount = n
		}
	}

	flags, eventType := m.classifier.Classify(sample.MotionScore, faceCount, now)
	if eventType == EventNone {
		return nil, nil
	}

	return &MonitoringEvent{
		SessionID:   m.sessionID,
		QuestionID:  m.questionID,
		Type:        eventType,
		MotionScore: sample.MotionScore,
		FaceCount:   faceCount,
		Flags:       flags,
		Image:       sample.Frame.Pixels,
		Width:       sample.Frame.Width,
		Height:      sample.Frame.Height,
		CapturedAt:  sample.Frame.CapturedAt,
	}, nil
}

// BeginUpload claims the single submission slot. It returns false when a
// submission is already in flight or the breaker refuses the attempt; the
// caller then drops the newer event rather than queuing it. An open breaker
// still lets a retry attempt through once per cooldown, so a transient
// outage does not disable monitoring for the rest of the session.
func (m *Monitor) BeginUpload(now time.Time) bool {
	if m.uploadBusy || !m.breaker.Allow(now) {
		return false
	}
	m.uploadBusy = true
	m.classifier.MarkUploaded(now)
	return true
}

// FinishUpload releases the submission slot and feeds the breaker.
func (m *Monitor) FinishUpload(ok bool) {
	m.uploadBusy = false
	if ok {
		m.breaker.RecordSuccess()
	} else {
		m.breaker.RecordFailure()
	}
}
