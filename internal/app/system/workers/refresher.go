// internal/app/system/workers/refresher.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Refresher runs a task once at start and then on a fixed interval until
// stopped. The feed proxy uses it to keep its cache warm.
type Refresher struct {
	name     string
	task     func(ctx context.Context) error
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// NewRefresher creates a worker. Each run of task gets its own context
// bounded by timeout.
func NewRefresher(name string, task func(ctx context.Context) error, logger *zap.Logger, interval, timeout time.Duration) *Refresher {
	return &Refresher{
		name:     name,
		task:     task,
		log:      logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the loop in a goroutine.
func (w *Refresher) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("worker started",
		zap.String("worker", w.name),
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for the current run to finish.
// It is safe to call more than once.
func (w *Refresher) Stop() {
	w.once.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("worker stopped", zap.String("worker", w.name))
	})
}

func (w *Refresher) run() {
	defer w.wg.Done()

	w.runOnce()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *Refresher) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	// Stop cancels an in-flight run.
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := w.task(ctx); err != nil {
		w.log.Warn("worker run failed", zap.String("worker", w.name), zap.Error(err))
	}
}
