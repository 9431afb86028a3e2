package sched

import "time"

// Timer is a cancellable, resettable delayed callback.
type Timer interface {
	// Stop cancels the timer; it reports whether the callback had not fired yet.
	Stop() bool
	// Reset re-arms the timer with a new delay; it reports whether the timer
	// was still pending.
	Reset(d time.Duration) bool
}

// Clock abstracts wall-clock reads and timer scheduling so stores and
// validators can run against virtual time in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

type realTimer struct {
	t *time.Timer
}

func (t realTimer) Stop() bool                    { return t.t.Stop() }
func (t realTimer) Reset(d time.Duration) bool    { return t.t.Reset(d) }
func (realClock) Now() time.Time                  { return time.Now() }
func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }
