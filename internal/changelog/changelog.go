// Package changelog implements the per-avatar ordered transition queue used
// to replay coarse-grained (vtime) place/guild presence as a stream of
// second-resolution transitions.
package changelog

import "fmt"

// entry is one (vtime, value) transition.
type entry[T comparable] struct {
	vtime int64
	value T
}

// Log is a per-avatar ordered queue of (vtime, value) transitions. It tracks
// a monotonically advancing virtual clock and exposes the value currently in
// effect. Entries are appended in file order during scene construction, then
// the log is locked and replayed one vtime per Advance call.
//
// Invariants: appended vtimes are non-decreasing; consecutive stored entries
// have strictly different values (equal values coalesce); at most one
// effective change is recorded per vtime (a second append at the same vtime
// is silently dropped, first writer wins).
type Log[T comparable] struct {
	queue       []entry[T]
	head        int
	locked      bool
	vclock      int64
	current     T
	lastAppend  int64
	hasAppended bool
}

// New creates a Log with vclock = -1 and the given initial current value
// (typically the zero value of T, used as "offline"/"none").
func New[T comparable](initial T) *Log[T] {
	return &Log[T]{
		vclock:     -1,
		current:    initial,
		lastAppend: -1,
	}
}

// Append records a transition to value at vtime. Precondition: vtime is not
// less than the vtime of the last append, and the log is not locked.
//
// If vtime equals the last append's vtime and value differs from the value
// last recorded, the new value is dropped (first-writer-wins for the vtime).
// If value equals the currently-last-recorded value, the append is a no-op
// (consecutive duplicates coalesce). Otherwise the transition is enqueued.
func (l *Log[T]) Append(vtime int64, value T) error {
	if l.locked {
		return fmt.Errorf("changelog: append at vtime %d after lock", vtime)
	}
	if l.hasAppended && vtime < l.lastAppend {
		return fmt.Errorf("changelog: append at vtime %d precedes last append vtime %d", vtime, l.lastAppend)
	}

	lastValue := l.current
	if n := len(l.queue); n > 0 {
		lastValue = l.queue[n-1].value
	}

	if l.hasAppended && vtime == l.lastAppend {
		// First writer wins: a second append at an already-recorded vtime is
		// dropped, whether or not its value differs.
		return nil
	}

	l.lastAppend = vtime
	l.hasAppended = true

	if value == lastValue {
		return nil
	}

	l.queue = append(l.queue, entry[T]{vtime: vtime, value: value})
	return nil
}

// Lock prevents any further Append calls. Advance locks implicitly on first
// call, but callers may lock earlier once scene construction is complete.
func (l *Log[T]) Lock() {
	l.locked = true
}

// Advance locks the log, increments vclock by one, and, if the head entry's
// vtime equals the new vclock, pops it and adopts its value as current.
// Returns the current value after the advance (possibly the zero value).
// This is the only way to observe a transition.
func (l *Log[T]) Advance() T {
	l.locked = true
	l.vclock++

	if l.head < len(l.queue) && l.queue[l.head].vtime == l.vclock {
		l.current = l.queue[l.head].value
		l.head++
	}

	return l.current
}

// VClock returns the log's current virtual-time clock.
func (l *Log[T]) VClock() int64 {
	return l.vclock
}

// Current returns the value currently in effect without advancing.
func (l *Log[T]) Current() T {
	return l.current
}
