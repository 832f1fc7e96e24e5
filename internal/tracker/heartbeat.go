package tracker

import "time"

// Tick asks the aggregator to flush the interval with the given id.
type Tick struct {
	Sequence uint32
}

// Scheduler arms a heartbeat for the interval with the given id.
type Scheduler interface {
	Schedule(sequence uint32)
}

// Heartbeat fires a single Tick per Schedule call once delay has passed.
// Earlier heartbeats are never cancelled; the aggregator drops any tick
// whose sequence no longer matches the open interval.
type Heartbeat struct {
	delay   time.Duration
	deliver func(Tick)
}

// NewHeartbeat creates a scheduler that hands ticks to deliver. deliver runs
// on the timer goroutine and may block until the aggregator accepts the tick.
func NewHeartbeat(delay time.Duration, deliver func(Tick)) *Heartbeat {
	return &Heartbeat{delay: delay, deliver: deliver}
}

func (h *Heartbeat) Schedule(sequence uint32) {
	time.AfterFunc(h.delay, func() {
		h.deliver(Tick{Sequence: sequence})
	})
}

// Delay returns the time between scheduling and firing.
func (h *Heartbeat) Delay() time.Duration {
	return h.delay
}
