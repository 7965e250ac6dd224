// Package proctor implements the camera monitoring core: frame sampling,
// motion scoring, anomaly classification, and the upload scheduling state
// for a single interview session.
package proctor

import (
	"errors"
	"time"
)

// ErrSourceNotReady is returned by a FrameSource that has no decoded frame
// available yet. The caller skips the tick; no motion score is produced.
var ErrSourceNotReady = errors.New("frame source not ready")

// motionStride is the byte stride used when comparing frames. Sampling every
// 16th byte keeps the comparison cheap without losing sensitivity to
// whole-body movement.
const motionStride = 16

// Frame is one still image read from the live video source. Frames are
// transient: they live for a single sampling tick, and only reportable
// samples carry their encoded image onward to the uploader.
type Frame struct {
	Pixels     []byte // raw pixel buffer, layout opaque to this package
	Width      int
	Height     int
	CapturedAt time.Time
}

// FrameSource exposes a readable video surface.
type FrameSource interface {
	// ReadFrame returns the current still frame, or ErrSourceNotReady if
	// no decoded frame is available yet.
	ReadFrame() (Frame, error)
}

// MotionScore computes a normalized [0,1] difference between two pixel
// buffers by averaging absolute channel deltas over a fixed byte stride.
// A nil prev (first sample of a session) scores 0.
func MotionScore(prev, curr []byte) float64 {
	if prev == nil || len(curr) == 0 {
		return 0
	}
	n := len(prev)
	if len(curr) < n {
		n = len(curr)
	}
	if n == 0 {
		return 0
	}

	var total, samples int
	for i := 0; i < n; i += motionStride {
		d := int(prev[i]) - int(curr[i])
		if d < 0 {
			d = -d
		}
		total += d
		samples++
	}
	if samples == 0 {
		return 0
	}
	return float64(total) / float64(samples) / 255.0
}
