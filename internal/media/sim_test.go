package media

import (
	"context"
	"errors"
	"testing"

	"github.com/vigil-dev/vigil/internal/proctor"
)

func TestSimCameraWarmupFailsSoft(t *testing.T) {
	cap := NewSimCapability()
	cam, err := cap.AcquireCamera(context.Background())
	if err != nil {
		t.Fatalf("AcquireCamera: %v", err)
	}
	defer func() { _ = cam.Release() }()

	if _, err := cam.ReadFrame(); !errors.Is(err, proctor.ErrSourceNotReady) {
		t.Fatalf("warmup read err = %v, want ErrSourceNotReady", err)
	}
	frame, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("post-warmup read: %v", err)
	}
	if len(frame.Pixels) != 160*90 {
		t.Errorf("frame size = %d, want %d", len(frame.Pixels), 160*90)
	}
}

func TestSimCapabilityDeny(t *testing.T) {
	cap := NewSimCapability()
	cap.Deny = true
	if _, err := cap.AcquireCamera(context.Background()); !errors.Is(err, ErrCapabilityDenied) {
		t.Fatalf("err = %v, want ErrCapabilityDenied", err)
	}
}

func TestSimFaceCounterAbsentByDefault(t *testing.T) {
	cap := NewSimCapability()
	if cap.FaceCounter() != nil {
		t.Error("default simulator should not offer face detection")
	}

	cap.Faces = 1
	fc := cap.FaceCounter()
	if fc == nil {
		t.Fatal("face counter should be available when configured")
	}
	n, err := fc.CountFaces(proctor.Frame{})
	if err != nil || n != 1 {
		t.Errorf("CountFaces = (%d, %v), want (1, nil)", n, err)
	}
}
