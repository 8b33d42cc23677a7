package sim

import "time"

// FrameScheduler queues tick callbacks until the host fires the next frame.
// Callbacks requested while a frame is firing run on the following frame.
type FrameScheduler struct {
	now     func() time.Time
	next    TickID
	order   []TickID
	pending map[TickID]TickFunc
}

// NewFrameScheduler returns a scheduler reading time from now. A nil now
// uses the wall clock.
func NewFrameScheduler(now func() time.Time) *FrameScheduler {
	if now == nil {
		now = time.Now
	}
	return &FrameScheduler{
		now:     now,
		pending: make(map[TickID]TickFunc),
	}
}

func (f *FrameScheduler) Now() time.Time { return f.now() }

func (f *FrameScheduler) RequestTick(fn TickFunc) TickID {
	f.next++
	id := f.next
	f.pending[id] = fn
	f.order = append(f.order, id)
	return id
}

// Cancel withdraws a pending callback. Unknown or already fired ids are ignored.
func (f *FrameScheduler) Cancel(id TickID) {
	delete(f.pending, id)
}

// Pending reports how many callbacks wait for the next frame.
func (f *FrameScheduler) Pending() int { return len(f.pending) }

// Fire runs every callback queued before the call and returns how many ran.
func (f *FrameScheduler) Fire() int {
	batch := f.order
	f.order = nil
	now := f.now()

	ran := 0
	for _, id := range batch {
		fn, ok := f.pending[id]
		if !ok {
			continue
		}
		delete(f.pending, id)
		fn(now)
		ran++
	}
	return ran
}

// FakeClock is a manually advanced clock for deterministic runs.
type FakeClock struct {
	t time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{t: start}
}

func (c *FakeClock) Now() time.Time { return c.t }

func (c *FakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// RunFrames advances clock by interval and fires sched, n times.
func RunFrames(clock *FakeClock, sched *FrameScheduler, interval time.Duration, n int) {
	for i := 0; i < n; i++ {
		clock.Advance(interval)
		sched.Fire()
	}
}
