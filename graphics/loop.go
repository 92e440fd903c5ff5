package graphics

import (
	"context"
	"errors"
	"sync"
)

// FrameFunc is invoked once per display refresh with the host timestamp in
// milliseconds.
type FrameFunc func(now float64)

// Scheduler re-arms a frame callback for the next display refresh.
type Scheduler interface {
	RequestNextFrame(fn FrameFunc) error
}

// Dispatcher runs tasks on the execution context that owns the GPU context.
// Post may be called from any goroutine.
type Dispatcher interface {
	Post(task func())
}

var ErrFramePending = errors.New("graphics: a frame request is already pending")

// Loop is a single-threaded frame driver. It holds at most one pending frame
// callback and a queue of posted tasks; both only ever run on the goroutine
// calling Step or Run.
type Loop struct {
	mu      sync.Mutex
	pending FrameFunc
	tasks   []func()
}

func NewLoop() *Loop {
	return &Loop{}
}

func (l *Loop) RequestNextFrame(fn FrameFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending != nil {
		return ErrFramePending
	}
	l.pending = fn
	return nil
}

func (l *Loop) Post(task func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()
}

// Pending reports whether a frame callback is armed.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending != nil
}

// RunTasks drains the posted task queue and returns how many tasks ran.
// Tasks posted while draining run on the next call.
func (l *Loop) RunTasks() int {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

// Step runs posted tasks and then the pending frame callback, if any. It
// reports whether a frame callback ran.
func (l *Loop) Step(now float64) bool {
	l.RunTasks()

	l.mu.Lock()
	fn := l.pending
	l.pending = nil
	l.mu.Unlock()

	if fn == nil {
		return false
	}
	fn(now)
	return true
}

// Run drives the loop from a host until the host asks to close or ctx is
// done. A loop with nothing pending keeps presenting frames; it simply
// stalls.
func (l *Loop) Run(ctx context.Context, host Host) error {
	for !host.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Step(host.Time())
		host.EndFrame()
	}
	return nil
}
