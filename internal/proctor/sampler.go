package proctor

// Sample is the result of one successful sampling tick.
type Sample struct {
	Frame       Frame
	MotionScore float64
}

// Sampler grabs still frames from a video source on a fixed cadence and
// scores motion against the previous frame. The last-frame buffer is owned
// exclusively by one Sampler per session; Samplers must not be shared
// across concurrent sessions.
type Sampler struct {
	src  FrameSource
	prev []byte
}

// NewSampler creates a Sampler for the given source.
func NewSampler(src FrameSource) *Sampler {
	return &Sampler{src: src}
}

// Sample reads one frame and computes its motion score relative to the
// previous sample. If the source is not ready, the error is returned and
// no state is updated (the tick fails soft). The first sample of a session
// always scores 0.
func (s *Sampler) Sample() (Sample, error) {
	frame, err := s.src.ReadFrame()
	if err != nil {
		return Sample{}, err
	}

	score := MotionScore(s.prev, frame.Pixels)
	s.prev = frame.Pixels

	return Sample{Frame: frame, MotionScore: score}, nil
}
