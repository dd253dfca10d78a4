// Package debounce delays rapidly changing inputs so that downstream work
// runs once per quiet period with the most recent value.
package debounce

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a debouncer
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock replaces the wall clock, mainly for tests
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: realClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Func wraps fn so that a burst of calls results in a single invocation,
// delay after the last call, with the last call's argument.
type Func[T any] struct {
	delay time.Duration
	fn    func(T)
	clock Clock

	// firing is held while fn runs so Stop can wait it out
	firing sync.Mutex

	mu         sync.Mutex
	timer      Timer
	generation uint64
	stopped    bool
}

// NewFunc creates a debounced wrapper around fn
func NewFunc[T any](delay time.Duration, fn func(T), opts ...Option) *Func[T] {
	o := buildOptions(opts)
	return &Func[T]{
		delay: delay,
		fn:    fn,
		clock: o.clock,
	}
}

// Call schedules fn(v), cancelling any invocation still pending
func (d *Func[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.generation++
	gen := d.generation
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.fire(gen, v)
	})
}

// fire runs fn unless the timer was superseded or the debouncer stopped
// after it had already started firing.
func (d *Func[T]) fire(gen uint64, v T) {
	d.firing.Lock()
	defer d.firing.Unlock()

	d.mu.Lock()
	if d.stopped || gen != d.generation {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}

// Pending reports whether an invocation is scheduled
func (d *Func[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any pending invocation and waits for one already running.
// Later calls are ignored. fn must not call Stop.
func (d *Func[T]) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.firing.Lock()
	d.firing.Unlock()
}

// Value is the reactive form: Set feeds raw values and C delivers the
// settled value once the input has been quiet for the delay.
type Value[T any] struct {
	fn  *Func[T]
	out chan T

	mu     sync.Mutex
	closed bool
}

// NewValue creates a debounced value binding
func NewValue[T any](delay time.Duration, opts ...Option) *Value[T] {
	v := &Value[T]{out: make(chan T, 1)}
	v.fn = NewFunc(delay, v.deliver, opts...)
	return v
}

// Set records a new raw value
func (v *Value[T]) Set(val T) {
	v.fn.Call(val)
}

// C returns the channel of settled values. It is closed by Stop.
func (v *Value[T]) C() <-chan T {
	return v.out
}

// Pending reports whether a value is waiting for the quiet period to end
func (v *Value[T]) Pending() bool {
	return v.fn.Pending()
}

// Stop cancels any pending value and closes C
func (v *Value[T]) Stop() {
	v.fn.Stop()

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.closed {
		v.closed = true
		close(v.out)
	}
}

// deliver keeps only the newest settled value when the reader lags
func (v *Value[T]) deliver(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	select {
	case v.out <- val:
	default:
		select {
		case <-v.out:
		default:
		}
		v.out <- val
	}
}
