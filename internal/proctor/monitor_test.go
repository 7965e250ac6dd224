package proctor

import (
	"errors"
	"testing"
	"time"
)

// scriptedSource replays a fixed sequence of frames, optionally failing the
// first notReady reads with ErrSourceNotReady.
type scriptedSource struct {
	frames   [][]byte
	idx      int
	notReady int
}

func (s *scriptedSource) ReadFrame() (Frame, error) {
	if s.notReady > 0 {
		s.notReady--
		return Frame{}, ErrSourceNotReady
	}
	if s.idx >= len(s.frames) {
		return Frame{}, errors.New("script exhausted")
	}
	pixels := s.frames[s.idx]
	s.idx++
	return Frame{Pixels: pixels, Width: 16, Height: 1, CapturedAt: time.Now()}, nil
}

func flatFrame(value byte, size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = value
	}
	return buf
}

func liveThresholds() Thresholds {
	t := DefaultThresholds()
	t.BaselineShots = 0
	return t
}

func TestMonitorTickSkipsWhenSourceNotReady(t *testing.T) {
	src := &scriptedSource{notReady: 1, frames: [][]byte{flatFrame(0, 64)}}
	m := NewMonitor(src, nil, liveThresholds())

	event, err := m.Tick(time.Now())
	if err != nil {
		t.Fatalf("Tick returned error on warmup: %v", err)
	}
	if event != nil {
		t.Errorf("warmup tick produced event %+v, want nil", event)
	}
}

func TestMonitorFirstTickIsPeriodicNotSuspicious(t *testing.T) {
	src := &scriptedSource{frames: [][]byte{flatFrame(200, 64)}}
	m := NewMonitor(src, nil, liveThresholds())

	event, err := m.Tick(time.Now())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if event == nil {
		t.Fatal("first tick past the periodic interval should report")
	}
	if event.Type != EventPeriodic {
		t.Errorf("Type = %q, want periodic (first sample scores 0 motion)", event.Type)
	}
	if event.FaceCount != -1 {
		t.Errorf("FaceCount = %d, want -1 without detector", event.FaceCount)
	}
	if event.Flags.Any() {
		t.Errorf("flags set without detector or motion: %+v", event.Flags)
	}
}

func TestMonitorHighMotionSuspicious(t *testing.T) {
	src := &scriptedSource{frames: [][]byte{flatFrame(0, 64), flatFrame(255, 64)}}
	m := NewMonitor(src, nil, liveThresholds())
	now := time.Now()

	if _, err := m.Tick(now); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	event, err := m.Tick(now.Add(2 * time.Second))
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if event == nil || event.Type != EventSuspicious {
		t.Fatalf("event = %+v, want suspicious on max motion", event)
	}
	if !event.Flags.HighMotion {
		t.Error("HighMotion flag not set")
	}
	if event.MotionScore < 0.99 {
		t.Errorf("MotionScore = %v, want ~1.0", event.MotionScore)
	}
}

func TestMonitorBusyFlagDropsNewerTick(t *testing.T) {
	m := NewMonitor(&scriptedSource{}, nil, liveThresholds())
	now := time.Now()

	if !m.BeginUpload(now) {
		t.Fatal("first BeginUpload should claim the slot")
	}
	if m.BeginUpload(now.Add(2 * time.Second)) {
		t.Error("second BeginUpload while busy should be rejected")
	}

	m.FinishUpload(true)
	if !m.BeginUpload(now.Add(4 * time.Second)) {
		t.Error("BeginUpload after FinishUpload should succeed")
	}
}

func TestMonitorBreakerPausesAndRecovers(t *testing.T) {
	m := NewMonitor(&scriptedSource{}, nil, liveThresholds())
	now := time.Now()

	for i := 0; i < 5; i++ {
		if !m.BeginUpload(now) {
			t.Fatalf("attempt %d rejected before breaker opened", i)
		}
		m.FinishUpload(false)
	}
	if !m.Breaker().Paused() {
		t.Fatal("breaker should open after 5 consecutive failures")
	}
	if m.BeginUpload(now) {
		t.Error("BeginUpload should be rejected while breaker is open")
	}

	// After the cooldown a single retry goes out; its success resumes
	// normal uploads.
	retry := now.Add(31 * time.Second)
	if !m.BeginUpload(retry) {
		t.Fatal("BeginUpload should allow a retry after the cooldown")
	}
	m.FinishUpload(true)
	if m.Breaker().Paused() {
		t.Error("successful retry should close the breaker")
	}
	if !m.BeginUpload(retry.Add(time.Second)) {
		t.Error("uploads should flow again after recovery")
	}
}

func TestMonitorStoppedProducesNothing(t *testing.T) {
	src := &scriptedSource{frames: [][]byte{flatFrame(0, 64)}}
	m := NewMonitor(src, nil, liveThresholds())
	m.Stop()

	event, err := m.Tick(time.Now())
	if err != nil || event != nil {
		t.Errorf("stopped monitor tick = (%+v, %v), want (nil, nil)", event, err)
	}
}

type staticFaces struct{ n int }

func (f staticFaces) CountFaces(Frame) (int, error) { return f.n, nil }

func TestMonitorFaceCounterWired(t *testing.T) {
	src := &scriptedSource{frames: [][]byte{flatFrame(0, 64)}}
	m := NewMonitor(src, staticFaces{n: 2}, liveThresholds())

	event, err := m.Tick(time.Now())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if event == nil || event.Type != EventSuspicious {
		t.Fatalf("event = %+v, want suspicious for two faces", event)
	}
	if !event.Flags.MultiFace {
		t.Error("MultiFace flag not set")
	}
}
