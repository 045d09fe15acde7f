/*
debounce.go - Leading + trailing debouncer with a max-wait ceiling

BEHAVIOR:
  - The first Schedule of a burst invokes immediately (leading edge)
  - Later calls replace the pending payload and push the deadline out to
    wait after the last call (trailing edge)
  - A burst never suppresses invocation for longer than maxWait
  - Flush invokes a pending payload now and waits for it to finish
  - Stop drops anything pending; later calls are ignored

Invocations never overlap: each one takes callMu while still holding mu, so
they also run in the order they were decided.
*/
package vacation

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of Schedule calls into few invocations of fn.
type Debouncer[T any] struct {
	fn      func(T)
	wait    time.Duration
	maxWait time.Duration

	mu         sync.Mutex
	callMu     sync.Mutex
	timer      *time.Timer
	seq        uint64
	active     bool
	pending    bool
	payload    T
	lastCall   time.Time
	lastInvoke time.Time
	stopped    bool
}

// NewDebouncer returns a debouncer. maxWait <= 0 disables the ceiling.
func NewDebouncer[T any](wait, maxWait time.Duration, fn func(T)) *Debouncer[T] {
	if maxWait > 0 && maxWait < wait {
		maxWait = wait
	}
	return &Debouncer[T]{fn: fn, wait: wait, maxWait: maxWait}
}

// Schedule submits v. It blocks only while a leading-edge invocation runs.
func (d *Debouncer[T]) Schedule(v T) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	now := time.Now()
	d.lastCall = now

	if !d.active {
		d.active = true
		d.pending = false
		d.lastInvoke = now
		d.arm(d.wait)
		d.invokeLocked(v)
		return
	}

	d.payload = v
	d.pending = true
	d.arm(d.nextDelay(now))
	d.mu.Unlock()
}

// Pending reports whether a trailing invocation is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush runs the pending invocation, if any, and waits for in-flight work.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		d.callMu.Lock()
		d.callMu.Unlock()
		return
	}
	v := d.takeLocked(time.Now())
	d.endBurstLocked()
	d.invokeLocked(v)
}

// Stop cancels any pending invocation. The debouncer stays unusable.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	d.endBurstLocked()
}

// ===== internals (mu held) =====

func (d *Debouncer[T]) nextDelay(now time.Time) time.Duration {
	delay := d.lastCall.Add(d.wait).Sub(now)
	if d.maxWait > 0 {
		if ceiling := d.lastInvoke.Add(d.maxWait).Sub(now); ceiling < delay {
			delay = ceiling
		}
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

func (d *Debouncer[T]) arm(delay time.Duration) {
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, func() { d.fire(seq) })
}

func (d *Debouncer[T]) endBurstLocked() {
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.active = false
}

func (d *Debouncer[T]) takeLocked(now time.Time) T {
	v := d.payload
	var zero T
	d.payload = zero
	d.pending = false
	d.lastInvoke = now
	return v
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.stopped {
		d.mu.Unlock()
		return
	}
	now := time.Now()
	quiet := now.Sub(d.lastCall) >= d.wait
	overdue := d.maxWait > 0 && now.Sub(d.lastInvoke) >= d.maxWait

	if !d.pending || (!quiet && !overdue) {
		if quiet {
			d.endBurstLocked()
		} else {
			d.arm(d.nextDelay(now))
		}
		d.mu.Unlock()
		return
	}

	v := d.takeLocked(now)
	if quiet {
		d.endBurstLocked()
	} else {
		d.arm(d.nextDelay(now))
	}
	d.invokeLocked(v)
}

// invokeLocked is entered with mu held and returns with it released.
func (d *Debouncer[T]) invokeLocked(v T) {
	d.callMu.Lock()
	d.mu.Unlock()
	defer d.callMu.Unlock()
	d.fn(v)
}
