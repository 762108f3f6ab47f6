package monitor

import "sync"

// BookingLock is the process-wide single-flight flag for reservation
// sessions. It is a flag, not a queue: a course found free while the lock is
// held is skipped for that polling cycle and re-evaluated on the next tick.
// A course can therefore be starved while another course stays perpetually
// free; this is a known limitation, kept deliberately.
type BookingLock struct {
	mu sync.Mutex
}

// TryAcquire attempts to take the lock without blocking.
func (l *BookingLock) TryAcquire() bool {
	return l.mu.TryLock()
}

// Release frees the lock. Must only be called after a successful TryAcquire.
func (l *BookingLock) Release() {
	l.mu.Unlock()
}
