package media

import (
	"context"
	"sync"
	"time"

	"github.com/vigil-dev/vigil/internal/proctor"
)

// simFrameSize matches the 160x90 grayscale working resolution used by the
// backend's frame analysis.
const simFrameSize = 160 * 90

// SimCapability is a software camera for demo runs and tests. It synthesizes
// grayscale frames with a slow drifting gradient, optionally injecting
// motion bursts, and reports not-ready for a short warmup after acquisition.
type SimCapability struct {
	// WarmupReads is how many ReadFrame calls fail soft before the first
	// decoded frame is available.
	WarmupReads int
	// Faces, when non-negative, enables a face counter that always
	// reports this count. Negative leaves the capability absent.
	Faces int
	// Deny simulates the user refusing camera access.
	Deny bool
}

// NewSimCapability returns a simulator with one warmup read and no face
// detection capability.
func NewSimCapability() *SimCapability {
	return &SimCapability{WarmupReads: 1, Faces: -1}
}

// AcquireCamera implements Capability.
func (s *SimCapability) AcquireCamera(ctx context.Context) (Camera, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Deny {
		return nil, ErrCapabilityDenied
	}
	return &simCamera{warmup: s.WarmupReads}, nil
}

// FaceCounter implements Capability.
func (s *SimCapability) FaceCounter() proctor.FaceCounter {
	if s.Faces < 0 {
		return nil
	}
	return staticFaceCounter{count: s.Faces}
}

// Recognizer implements Capability. The simulator has no speech engine.
func (s *SimCapability) Recognizer() *Recognizer { return nil }

type staticFaceCounter struct{ count int }

func (c staticFaceCounter) CountFaces(proctor.Frame) (int, error) { return c.count, nil }

type simCamera struct {
	mu       sync.Mutex
	warmup   int
	tick     byte
	released bool
}

func (c *simCamera) ReadFrame() (proctor.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return proctor.Frame{}, ErrUnsupportedCapability
	}
	if c.warmup > 0 {
		c.warmup--
		return proctor.Frame{}, proctor.ErrSourceNotReady
	}

	c.tick++
	pixels := make([]byte, simFrameSize)
	for i := range pixels {
		pixels[i] = byte(i%255) ^ c.tick // slow drift between frames
	}
	return proctor.Frame{
		Pixels:     pixels,
		Width:      160,
		Height:     90,
		CapturedAt: time.Now(),
	}, nil
}

func (c *simCamera) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = true
	return nil
}
