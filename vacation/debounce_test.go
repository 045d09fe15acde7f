package vacation_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pochivni/planner/vacation"
)

type recorder struct {
	mu    sync.Mutex
	calls []int
}

func (r *recorder) record(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.calls...)
}

func TestDebouncer_LeadingAndTrailing(t *testing.T) {
	rec := &recorder{}
	d := vacation.NewDebouncer(30*time.Millisecond, time.Second, rec.record)
	defer d.Stop()

	// WHEN: a burst of three calls
	d.Schedule(1)
	d.Schedule(2)
	d.Schedule(3)

	// THEN: the first fires at once, the last after the quiet period
	assert.Equal(t, []int{1}, rec.snapshot())
	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{1, 3}, rec.snapshot())
}

func TestDebouncer_NewBurstAfterQuiet(t *testing.T) {
	rec := &recorder{}
	d := vacation.NewDebouncer(20*time.Millisecond, time.Second, rec.record)
	defer d.Stop()

	d.Schedule(1)
	time.Sleep(80 * time.Millisecond)
	d.Schedule(2)

	assert.Equal(t, []int{1, 2}, rec.snapshot())
}

func TestDebouncer_MaxWaitBoundsSuppression(t *testing.T) {
	rec := &recorder{}
	d := vacation.NewDebouncer(50*time.Millisecond, 100*time.Millisecond, rec.record)
	defer d.Stop()

	// WHEN: calls keep arriving faster than the quiet period for 400ms
	deadline := time.Now().Add(400 * time.Millisecond)
	for i := 0; time.Now().Before(deadline); i++ {
		d.Schedule(i)
		time.Sleep(10 * time.Millisecond)
	}

	// THEN: writes went out during the burst, not only at its edges
	assert.GreaterOrEqual(t, len(rec.snapshot()), 3)
}

func TestDebouncer_FlushRunsPendingNow(t *testing.T) {
	rec := &recorder{}
	d := vacation.NewDebouncer(time.Hour, time.Hour, rec.record)
	defer d.Stop()

	d.Schedule(1)
	d.Schedule(2)
	assert.True(t, d.Pending())

	d.Flush()

	assert.Equal(t, []int{1, 2}, rec.snapshot())
	assert.False(t, d.Pending())

	d.Flush()
	assert.Equal(t, []int{1, 2}, rec.snapshot())
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	rec := &recorder{}
	d := vacation.NewDebouncer(20*time.Millisecond, time.Second, rec.record)

	d.Schedule(1)
	d.Schedule(2)
	d.Stop()
	d.Schedule(3)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []int{1}, rec.snapshot())
}

func TestDebouncer_InvocationsNeverOverlap(t *testing.T) {
	var running, maxRunning, total int32
	d := vacation.NewDebouncer(5*time.Millisecond, 10*time.Millisecond, func(int) {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		atomic.AddInt32(&total, 1)
	})
	defer d.Stop()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				d.Schedule(i)
				time.Sleep(3 * time.Millisecond)
			}
		}()
	}
	wg.Wait()
	d.Flush()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
	assert.Greater(t, atomic.LoadInt32(&total), int32(1))
}
