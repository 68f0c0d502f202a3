package animtex

import "time"

// Scheduler advances through a cyclic frame sequence based on per-frame
// delays and a caller-provided clock. It is a pure state machine: callers
// feed it the current time on every render tick and it reports whether the
// current frame changed.
//
// Timing is measured from the moment a frame became current, so a late tick
// does not make subsequent frames run fast: the elapsed counter resets to
// the tick that performed the advance. At most one frame is advanced per
// tick, even when the elapsed time spans several delays or a delay is zero.
//
// Scheduler is not safe for concurrent use; the owning texture serializes
// access.
type Scheduler struct {
	delays     []time.Duration
	index      int
	frameStart time.Time
	started    bool

	loops    int
	maxLoops int
	done     bool
}

// NewScheduler creates a scheduler over the given per-frame delays.
// loopCount bounds how many times the sequence plays; zero means forever.
// It returns ErrEmptySequence when delays is empty.
func NewScheduler(delays []time.Duration, loopCount int) (*Scheduler, error) {
	if len(delays) == 0 {
		return nil, ErrEmptySequence
	}
	return &Scheduler{
		delays:   delays,
		maxLoops: loopCount,
	}, nil
}

// Start begins playback with frame 0 current as of now.
// Restarting a finished scheduler rewinds it to the first frame.
func (s *Scheduler) Start(now time.Time) {
	s.index = 0
	s.frameStart = now
	s.started = true
	s.loops = 0
	s.done = false
}

// Tick advances the scheduler if the current frame's delay has elapsed.
// It returns whether the current frame changed and the index of the frame
// that is now current. Before Start, and after a bounded playback finishes,
// Tick never advances.
func (s *Scheduler) Tick(now time.Time) (advanced bool, index int) {
	if !s.started || s.done {
		return false, s.index
	}
	if now.Sub(s.frameStart) < s.delays[s.index] {
		return false, s.index
	}
	s.index = (s.index + 1) % len(s.delays)
	s.frameStart = now
	if s.index == 0 {
		s.loops++
		if s.maxLoops > 0 && s.loops >= s.maxLoops {
			s.done = true
			s.index = len(s.delays) - 1
			return false, s.index
		}
	}
	return true, s.index
}

// Index returns the current frame index.
func (s *Scheduler) Index() int { return s.index }

// Done reports whether a bounded playback has shown its final frame.
// Schedulers with loopCount zero are never done.
func (s *Scheduler) Done() bool { return s.done }
