package media

import "sync"

// TranscriptFunc receives incremental transcription text.
type TranscriptFunc func(text string)

// SpeechEngine is the platform transcription primitive. Engines stop
// spontaneously (silence, audio hiccups) and signal that via the end
// callback registered with SetOnEnd; callers are expected to restart them.
type SpeechEngine interface {
	Start() error
	Stop()
	SetOnEnd(fn func())
	SetOnText(fn TranscriptFunc)
}

// Recognizer wraps a SpeechEngine with restart-on-end resilience. The
// engine relaunches itself whenever it ends unexpectedly, which keeps
// transcription alive across transient drops — but it also means a plain
// engine Stop is immediately undone by the end handler. The desired-state
// latch is therefore consulted before any relaunch, and Stop flips the
// latch before touching the engine.
type Recognizer struct {
	mu      sync.Mutex
	engine  SpeechEngine
	running bool
	// desiredRunning is the two-state latch checked by the end handler.
	desiredRunning bool
}

// NewRecognizer wraps the given engine.
func NewRecognizer(engine SpeechEngine) *Recognizer {
	r := &Recognizer{engine: engine}
	engine.SetOnEnd(r.handleEnd)
	return r
}

// Start begins transcription, delivering text to fn.
func (r *Recognizer) Start(fn TranscriptFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}
	r.engine.SetOnText(fn)
	r.desiredRunning = true
	if err := r.engine.Start(); err != nil {
		r.desiredRunning = false
		return err
	}
	r.running = true
	return nil
}

// Stop halts transcription permanently. The latch is cleared before the
// engine is asked to stop: the engine's end callback fires during Stop,
// and must find the latch already cleared or it will relaunch the engine.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	r.desiredRunning = false
	r.running = false
	engine := r.engine
	r.mu.Unlock()

	engine.Stop()
}

// Running reports whether the engine is currently active.
func (r *Recognizer) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// handleEnd is invoked by the engine whenever capture ends, expected or not.
func (r *Recognizer) handleEnd() {
	r.mu.Lock()
	relaunch := r.desiredRunning
	r.running = false
	engine := r.engine
	r.mu.Unlock()

	if !relaunch {
		return
	}
	if err := engine.Start(); err != nil {
		return
	}
	r.mu.Lock()
	// Stop may have raced the relaunch; honor it.
	if !r.desiredRunning {
		r.mu.Unlock()
		engine.Stop()
		return
	}
	r.running = true
	r.mu.Unlock()
}
