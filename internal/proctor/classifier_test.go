package proctor

import (
	"testing"
	"time"
)

func testThresholds() Thresholds {
	return Thresholds{
		Motion:           0.18,
		PeriodicInterval: 10 * time.Second,
		BaselineShots:    0, // skip calibration unless a test opts in
	}
}

func TestClassifyDetectorUnavailableNeverFlagsFaces(t *testing.T) {
	c := NewClassifier(testThresholds())
	now := time.Now()

	flags, eventType := c.Classify(0.0, -1, now)
	if flags.NoFace || flags.MultiFace {
		t.Errorf("absent detector produced face flags: %+v", flags)
	}
	if eventType == EventSuspicious {
		t.Errorf("absent detector produced suspicious event")
	}
}

func TestClassifyFaceFlags(t *testing.T) {
	tests := []struct {
		name      string
		faceCount int
		noFace    bool
		multiFace bool
	}{
		{"zero faces", 0, true, false},
		{"one face", 1, false, false},
		{"two faces", 2, false, true},
		{"detector unavailable", -1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(testThresholds())
			flags, _ := c.Classify(0.0, tt.faceCount, time.Now())
			if flags.NoFace != tt.noFace {
				t.Errorf("NoFace = %v, want %v", flags.NoFace, tt.noFace)
			}
			if flags.MultiFace != tt.multiFace {
				t.Errorf("MultiFace = %v, want %v", flags.MultiFace, tt.multiFace)
			}
		})
	}
}

func TestClassifyHighMotion(t *testing.T) {
	c := NewClassifier(testThresholds())
	now := time.Now()

	flags, eventType := c.Classify(0.19, 1, now)
	if !flags.HighMotion {
		t.Error("score above threshold should set HighMotion")
	}
	if eventType != EventSuspicious {
		t.Errorf("eventType = %q, want %q", eventType, EventSuspicious)
	}

	flags, _ = c.Classify(0.18, 1, now)
	if flags.HighMotion {
		t.Error("score equal to threshold should not set HighMotion")
	}
}

func TestClassifySuspiciousBeatsPeriodic(t *testing.T) {
	c := NewClassifier(testThresholds())
	now := time.Now()
	c.MarkUploaded(now) // periodic interval has not elapsed

	_, eventType := c.Classify(0.5, 1, now.Add(time.Second))
	if eventType != EventSuspicious {
		t.Errorf("eventType = %q, want suspicious even inside periodic window", eventType)
	}
}

func TestClassifyPeriodicCadence(t *testing.T) {
	c := NewClassifier(testThresholds())
	start := time.Now()
	c.MarkUploaded(start)

	_, eventType := c.Classify(0.0, 1, start.Add(5*time.Second))
	if eventType != EventNone {
		t.Errorf("inside interval: eventType = %q, want none", eventType)
	}

	_, eventType = c.Classify(0.0, 1, start.Add(10*time.Second))
	if eventType != EventPeriodic {
		t.Errorf("at interval: eventType = %q, want periodic", eventType)
	}
}

func TestClassifyBaselineCalibration(t *testing.T) {
	thresholds := testThresholds()
	thresholds.BaselineShots = 3
	c := NewClassifier(thresholds)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !c.Calibrating() {
			t.Fatalf("shot %d: calibration ended early", i)
		}
		_, eventType := c.Classify(0.9, 0, now) // anomalies must not block baseline
		if eventType != EventBaseline {
			t.Errorf("shot %d: eventType = %q, want baseline", i, eventType)
		}
	}

	if c.Calibrating() {
		t.Error("calibration should be complete after 3 shots")
	}
	_, eventType := c.Classify(0.9, 0, now)
	if eventType != EventSuspicious {
		t.Errorf("post-calibration anomaly: eventType = %q, want suspicious", eventType)
	}
}
