package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// fakeClock fires timers synchronously from Advance
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	fired   bool
	stopped bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()

		next.f()
	}
}

type firing struct {
	at    time.Duration
	value string
}

func newRecorder(clock *fakeClock, delay time.Duration) (*Func[string], *[]firing) {
	var fired []firing
	fn := NewFunc(delay, func(v string) {
		fired = append(fired, firing{at: clock.Now(), value: v})
	}, WithClock(clock))
	return fn, &fired
}

func TestFunc_BurstFiresOnceWithLastValue(t *testing.T) {
	clock := &fakeClock{}
	fn, fired := newRecorder(clock, 300*time.Millisecond)

	fn.Call("a")
	clock.Advance(50 * time.Millisecond)
	fn.Call("ab")
	clock.Advance(50 * time.Millisecond)
	fn.Call("abc")
	clock.Advance(50 * time.Millisecond)
	fn.Call("abcd")

	clock.Advance(299 * time.Millisecond)
	assert.Empty(t, *fired)
	assert.True(t, fn.Pending())

	clock.Advance(time.Millisecond)
	require.Len(t, *fired, 1)
	assert.Equal(t, firing{at: 450 * time.Millisecond, value: "abcd"}, (*fired)[0])
	assert.False(t, fn.Pending())

	clock.Advance(time.Second)
	assert.Len(t, *fired, 1)
}

func TestFunc_SingleCallFiresOnceAfterDelay(t *testing.T) {
	clock := &fakeClock{}
	fn, fired := newRecorder(clock, 700*time.Millisecond)

	fn.Call("only")
	clock.Advance(699 * time.Millisecond)
	assert.Empty(t, *fired)

	clock.Advance(10 * time.Second)
	require.Len(t, *fired, 1)
	assert.Equal(t, 700*time.Millisecond, (*fired)[0].at)
}

func TestFunc_SeparateQuietPeriodsFireSeparately(t *testing.T) {
	clock := &fakeClock{}
	fn, fired := newRecorder(clock, 100*time.Millisecond)

	fn.Call("first")
	clock.Advance(150 * time.Millisecond)
	fn.Call("second")
	clock.Advance(150 * time.Millisecond)

	require.Len(t, *fired, 2)
	assert.Equal(t, "first", (*fired)[0].value)
	assert.Equal(t, "second", (*fired)[1].value)
}

func TestFunc_StopCancelsPending(t *testing.T) {
	clock := &fakeClock{}
	fn, fired := newRecorder(clock, 300*time.Millisecond)

	fn.Call("pending")
	fn.Stop()
	assert.False(t, fn.Pending())

	fn.Call("after stop")
	clock.Advance(time.Second)
	assert.Empty(t, *fired)
}

func TestFunc_SupersededTimerThatAlreadyFiredIsDropped(t *testing.T) {
	clock := &fakeClock{}
	var got []string
	fn := NewFunc(100*time.Millisecond, func(v string) { got = append(got, v) }, WithClock(clock))

	fn.Call("old")
	clock.mu.Lock()
	stale := clock.timers[0]
	clock.mu.Unlock()

	fn.Call("new")
	// Simulate the runtime having already dispatched the old timer
	stale.f()
	assert.Empty(t, got)

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"new"}, got)
}

func TestFunc_StopWaitsForRunningCallback(t *testing.T) {
	clock := &fakeClock{}
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fn := NewFunc(10*time.Millisecond, func(string) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
	}, WithClock(clock))

	fn.Call("x")
	advanced := make(chan struct{})
	go func() {
		clock.Advance(10 * time.Millisecond)
		close(advanced)
	}()
	<-entered

	stopped := make(chan struct{})
	go func() {
		fn.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the callback was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the callback finished")
	}
	<-advanced

	fn.Call("y")
	clock.Advance(time.Second)
	assert.EqualValues(t, 1, calls.Load(), "nothing fires once Stop has returned")
}

func TestValue_DeliversSettledValue(t *testing.T) {
	clock := &fakeClock{}
	v := NewValue[string](300*time.Millisecond, WithClock(clock))

	v.Set("j")
	v.Set("jo")
	v.Set("joe")
	clock.Advance(300 * time.Millisecond)

	select {
	case got := <-v.C():
		assert.Equal(t, "joe", got)
	default:
		t.Fatal("expected a settled value")
	}

	select {
	case got := <-v.C():
		t.Fatalf("unexpected extra value %q", got)
	default:
	}
}

func TestValue_LaggingReaderSeesNewest(t *testing.T) {
	clock := &fakeClock{}
	v := NewValue[int](10*time.Millisecond, WithClock(clock))

	v.Set(1)
	clock.Advance(10 * time.Millisecond)
	v.Set(2)
	clock.Advance(10 * time.Millisecond)

	assert.Equal(t, 2, <-v.C())
}

func TestValue_StopClosesWithoutEmitting(t *testing.T) {
	clock := &fakeClock{}
	v := NewValue[string](300*time.Millisecond, WithClock(clock))

	v.Set("typed")
	v.Stop()
	clock.Advance(time.Second)

	_, ok := <-v.C()
	assert.False(t, ok)

	// Stop is idempotent and Set after Stop is ignored
	v.Stop()
	v.Set("ignored")
}

func TestValue_RealClock(t *testing.T) {
	v := NewValue[string](20 * time.Millisecond)
	defer v.Stop()

	v.Set("a")
	v.Set("ab")
	v.Set("abc")

	select {
	case got := <-v.C():
		assert.Equal(t, "abc", got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for settled value")
	}

	select {
	case got := <-v.C():
		t.Fatalf("unexpected extra value %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestProperty_BurstYieldsOneEmission(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		delay := time.Duration(rapid.IntRange(10, 1000).Draw(rt, "delay")) * time.Millisecond
		n := rapid.IntRange(1, 30).Draw(rt, "n")

		type emission struct {
			at    time.Duration
			value int
		}

		clock := &fakeClock{}
		var fired []emission
		fn := NewFunc(delay, func(v int) {
			fired = append(fired, emission{at: clock.Now(), value: v})
		}, WithClock(clock))

		var lastAt time.Duration
		for i := 0; i < n; i++ {
			if i > 0 {
				gap := time.Duration(rapid.Int64Range(0, int64(delay)-1).Draw(rt, "gap"))
				clock.Advance(gap)
			}
			fn.Call(i)
			lastAt = clock.Now()
		}
		clock.Advance(10 * delay)

		if len(fired) != 1 {
			rt.Fatalf("expected 1 emission, got %d", len(fired))
		}
		if fired[0].at != lastAt+delay {
			rt.Fatalf("emitted at %v, want %v", fired[0].at, lastAt+delay)
		}
		if fired[0].value != n-1 {
			rt.Fatalf("emitted %d, want last value %d", fired[0].value, n-1)
		}
	})
}
