package proctor

import "time"

// MonitoringEvent is one reportable classified sample. It is created by the
// classifier, handed to the uploader, and discarded once delivery succeeds
// or is permanently abandoned.
type MonitoringEvent struct {
	SessionID   string
	QuestionID  int64
	Type        EventType
	MotionScore float64
	// FaceCount is -1 when the detector capability is unavailable.
	FaceCount  int
	Flags      Flags
	Image      []byte // raw grayscale pixels, row-major
	Width      int
	Height     int
	CapturedAt time.Time
}

// Suspicious reports whether the event carries any anomaly flag. Baseline
// shots keep their flags so a reviewer can see a bad calibration frame.
func (e MonitoringEvent) Suspicious() bool {
	return e.Flags.Any()
}
