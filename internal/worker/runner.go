package worker

import (
	"sync"

	"go.uber.org/zap"
)

type task struct {
	name string
	run  func() error
}

// Runner executes fire-and-forget tasks on a fixed pool of goroutines. Task
// failures and panics are logged and dropped so background work can never
// surface an error into a request.
type Runner struct {
	tasks  chan task
	logger *zap.Logger

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewRunner starts size worker goroutines with a queue of queueDepth tasks.
func NewRunner(size, queueDepth int, logger *zap.Logger) *Runner {
	if size <= 0 {
		size = 1
	}
	if queueDepth <= 0 {
		queueDepth = 16
	}
	r := &Runner{
		tasks:  make(chan task, queueDepth),
		logger: logger,
	}
	for i := 0; i < size; i++ {
		r.wg.Add(1)
		go r.work()
	}
	return r
}

// Submit enqueues a task without blocking. Returns false when the queue is
// full and the task was dropped.
func (r *Runner) Submit(name string, run func() error) bool {
	select {
	case r.tasks <- task{name: name, run: run}:
		return true
	default:
		return false
	}
}

// Close stops accepting tasks and waits for in-flight work to finish.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.tasks)
	})
	r.wg.Wait()
}

func (r *Runner) work() {
	defer r.wg.Done()
	for t := range r.tasks {
		r.execute(t)
	}
}

func (r *Runner) execute(t task) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("background task panicked",
				zap.String("task", t.name), zap.Any("panic", rec))
		}
	}()
	if err := t.run(); err != nil {
		r.logger.Warn("background task failed",
			zap.String("task", t.name), zap.Error(err))
	}
}
