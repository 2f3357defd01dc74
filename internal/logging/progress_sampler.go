package logging

// ProgressSampler suppresses repetitive frame progress logs. It emits on the
// first frame, every interval frames, and on the last frame.
type ProgressSampler struct {
	interval int
	last     int
}

// NewProgressSampler constructs a sampler; a non-positive interval uses 20.
func NewProgressSampler(interval int) *ProgressSampler {
	if interval <= 0 {
		interval = 20
	}
	return &ProgressSampler{interval: interval, last: -1}
}

// ShouldLog reports whether frame (0-based) out of total should be logged.
func (s *ProgressSampler) ShouldLog(frame, total int) bool {
	if s == nil {
		return true
	}
	if frame <= s.last {
		return false
	}
	if frame == 0 || frame == total-1 || frame-s.last >= s.interval || frame%s.interval == 0 {
		s.last = frame
		return true
	}
	return false
}
