// Package progress shows a "Thinking... 1.23s" line while the pipeline waits
// on the model.
package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultInterval = 100 * time.Millisecond
	DefaultLabel    = "Thinking..."
)

// Indicator repaints the current terminal line with the elapsed time until
// stopped. It only ever writes; it never blocks the caller.
type Indicator struct {
	out      io.Writer
	label    string
	interval time.Duration

	stopped atomic.Bool
	wake    chan struct{}
	exited  chan struct{}
	start   sync.Once
}

type Option func(*Indicator)

func WithInterval(d time.Duration) Option {
	return func(i *Indicator) {
		if d > 0 {
			i.interval = d
		}
	}
}

func WithLabel(label string) Option {
	return func(i *Indicator) { i.label = label }
}

func New(out io.Writer, opts ...Option) *Indicator {
	i := &Indicator{
		out:      out,
		label:    DefaultLabel,
		interval: DefaultInterval,
		wake:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Start launches the repaint loop. Calls after the first are no-ops.
func (i *Indicator) Start() {
	i.start.Do(func() {
		go i.run(time.Now())
	})
}

// Stop raises the stop signal and waits for the loop to exit, so nothing is
// written after Stop returns. The signal goes false to true once; later calls
// only wait.
func (i *Indicator) Stop() {
	if i.stopped.CompareAndSwap(false, true) {
		close(i.wake)
	}
	started := true
	i.start.Do(func() {
		// Never started: nothing to wait for.
		started = false
		close(i.exited)
	})
	if started {
		<-i.exited
	}
}

// Stopped reports whether the stop signal has been raised.
func (i *Indicator) Stopped() bool {
	return i.stopped.Load()
}

func (i *Indicator) run(started time.Time) {
	defer close(i.exited)

	for !i.stopped.Load() {
		fmt.Fprintf(i.out, "\r%s %.2fs", i.label, time.Since(started).Seconds())

		select {
		case <-i.wake:
			return
		case <-time.After(i.interval):
		}
	}
}

// LockedWriter serialises writes so the indicator and the pipeline can share
// one stdout without interleaving inside a line.
type LockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLockedWriter(w io.Writer) *LockedWriter {
	return &LockedWriter{w: w}
}

func (l *LockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
