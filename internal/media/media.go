// Package media defines the capability boundary toward the candidate's
// camera and microphone. The interview core only requires camera acquisition;
// face counting and speech transcription are optional and degrade gracefully
// when absent.
package media

import (
	"context"
	"errors"

	"github.com/vigil-dev/vigil/internal/proctor"
)

// ErrCapabilityDenied is returned when the user refuses camera access.
// The interview cannot proceed without it; the denial is user-recoverable
// by retrying.
var ErrCapabilityDenied = errors.New("camera access denied")

// ErrUnsupportedCapability is returned for optional capabilities the
// platform does not provide. It degrades the one feature, never the session.
var ErrUnsupportedCapability = errors.New("capability not supported")

// Camera is a live video handle. It is owned exclusively by the active
// session; Release must be called on every exit path.
type Camera interface {
	proctor.FrameSource

	// Release stops capture and frees the underlying device.
	Release() error
}

// Capability is the full media surface offered to a session.
type Capability interface {
	// AcquireCamera obtains the live video handle. Returns
	// ErrCapabilityDenied when the user refuses.
	AcquireCamera(ctx context.Context) (Camera, error)

	// FaceCounter returns the face detection capability, or nil when
	// unavailable on this platform.
	FaceCounter() proctor.FaceCounter

	// Recognizer returns the incremental speech transcription capability,
	// or nil when unavailable.
	Recognizer() *Recognizer
}
