package notificator

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sadaqapass/sadaqa/internal/models"
	"github.com/sadaqapass/sadaqa/pkg/logger"
)

// taskTimeout bounds a single side task.
const taskTimeout = 30 * time.Second

var _ models.Dispatcher = (*Dispatcher)(nil)

type task struct {
	name string
	fn   func(ctx context.Context)
}

// Dispatcher runs side tasks on a single worker fed by a bounded queue.
// Tasks are delivered at most once: a full queue drops the task.
type Dispatcher struct {
	logger *logger.Logger
	tasks  chan task

	mu      sync.RWMutex
	started bool
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(logger *logger.Logger, size int) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		logger: logger,
		tasks:  make(chan task, size),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the worker. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for t := range d.tasks {
			d.run(t)
		}
	}()
}

// Submit queues the task without blocking. It returns false when the queue
// is full or the dispatcher is stopped.
func (d *Dispatcher) Submit(name string, fn func(ctx context.Context)) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("Dispatcher stopped, task dropped", "task", name)
		return false
	}
	select {
	case d.tasks <- task{name: name, fn: fn}:
		return true
	default:
		d.logger.Warn("Dispatcher queue full, task dropped", "task", name, "capacity", cap(d.tasks))
		return false
	}
}

// Stop refuses new tasks and drains the queue until ctx is done. Tasks
// still running when ctx expires see their context cancelled.
func (d *Dispatcher) Stop(ctx context.Context) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.tasks)
	started := d.started
	d.mu.Unlock()

	if !started {
		d.cancel()
		return
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		d.logger.Warn("Dispatcher drain interrupted", "pending", len(d.tasks))
	}
	d.cancel()
}

func (d *Dispatcher) run(t task) {
	ctx, cancel := context.WithTimeout(d.ctx, taskTimeout)
	defer cancel()
	d.safeCall(func() { t.fn(ctx) }, t.name)
}

// safeCall runs a function with panic recovery
func (d *Dispatcher) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
