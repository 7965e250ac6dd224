package proctor

import "time"

// EventType tags a classified sample.
type EventType string

const (
	EventNone       EventType = "none"
	EventBaseline   EventType = "baseline"
	EventPeriodic   EventType = "periodic"
	EventSuspicious EventType = "suspicious"
)

// FaceCounter counts faces in a still frame. Implementations are optional
// capabilities; a nil FaceCounter means the detector is unavailable.
type FaceCounter interface {
	CountFaces(frame Frame) (int, error)
}

// Flags are the per-sample anomaly indicators derived by the classifier.
type Flags struct {
	NoFace     bool `json:"no_face"`
	MultiFace  bool `json:"multi_face"`
	HighMotion bool `json:"high_motion"`
}

// Any reports whether any anomaly flag is set.
func (f Flags) Any() bool {
	return f.NoFace || f.MultiFace || f.HighMotion
}

// Names lists the set flags as wire identifiers.
func (f Flags) Names() []string {
	var names []string
	if f.NoFace {
		names = append(names, "no_face")
	}
	if f.MultiFace {
		names = append(names, "multi_face")
	}
	if f.HighMotion {
		names = append(names, "high_motion")
	}
	return names
}

// Thresholds are the tunable monitoring parameters.
type Thresholds struct {
	// Motion is the score above which a sample counts as high motion.
	Motion float64
	// PeriodicInterval is the minimum gap between periodic uploads.
	PeriodicInterval time.Duration
	// BaselineShots is the number of calibration frames captured before
	// live questioning begins.
	BaselineShots int
	// UploadFailureLimit is the consecutive-failure count that pauses
	// uploads.
	UploadFailureLimit int
	// UploadRetryCooldown is how long uploads stay paused before a retry
	// attempt is allowed.
	UploadRetryCooldown time.Duration
}

// DefaultThresholds returns the reference thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Motion:              0.18,
		PeriodicInterval:    10 * time.Second,
		BaselineShots:       3,
		UploadFailureLimit:  defaultFailureLimit,
		UploadRetryCooldown: defaultRetryCooldown,
	}
}

// Classifier decides whether a sample is reportable and how to tag it.
// It is stateful per session: it tracks calibration progress and the time
// of the last upload, and must not be shared across sessions.
type Classifier struct {
	thresholds    Thresholds
	baselineTaken int
	lastUpload    time.Time
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// Calibrating reports whether baseline shots are still being collected.
func (c *Classifier) Calibrating() bool {
	return c.baselineTaken < c.thresholds.BaselineShots
}

// MarkUploaded records that a sample was handed to the uploader at the
// given time. Periodic cadence is measured from this point.
func (c *Classifier) MarkUploaded(now time.Time) {
	c.lastUpload = now
}

// Classify derives anomaly flags and an event type for one sample.
//
// faceCount < 0 means the detector capability is unavailable; the sample is
// then treated as if exactly one face were present, so a missing capability
// never manufactures anomalies.
//
// Baseline shots (calibration phase, before live questioning) are always
// reportable regardless of flags: they seed the external identity reference.
// After calibration, suspicious samples are reported immediately and
// unconditionally; otherwise a periodic sample is emitted once the interval
// since the last upload elapses.
func (c *Classifier) Classify(motion float64, faceCount int, now time.Time) (Flags, EventType) {
	if faceCount < 0 {
		faceCount = 1
	}

	flags := Flags{
		NoFace:     faceCount == 0,
		MultiFace:  faceCount > 1,
		HighMotion: motion > c.thresholds.Motion,
	}

	if c.Calibrating() {
		c.baselineTaken++
		return flags, EventBaseline
	}
	if flags.Any() {
		return flags, EventSuspicious
	}
	if now.Sub(c.lastUpload) >= c.thresholds.PeriodicInterval {
		return flags, EventPeriodic
	}
	return flags, EventNone
}
