package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"claimdesk/internal/domain"
	"claimdesk/internal/metrics"
)

// ErrFollowUpQueueFull is returned when the dispatcher buffer is exhausted.
var ErrFollowUpQueueFull = errors.New("follow-up queue is full")

// FollowUpHandler performs downstream work for one task.
type FollowUpHandler func(ctx context.Context, task domain.FollowUpTask) error

// FollowUpConfig holds settings for the follow-up dispatcher.
type FollowUpConfig struct {
	Workers    int
	Buffer     int
	MaxRetries int
	RetryDelay time.Duration
}

// FollowUpDispatcher runs follow-up tasks on a small worker pool. Handler
// failures are retried; tasks that exhaust their retries are kept and exposed
// through Failed.
type FollowUpDispatcher struct {
	cfg      FollowUpConfig
	tasks    chan domain.FollowUpTask
	mu       sync.RWMutex
	handlers map[domain.FollowUpKind][]FollowUpHandler
	failed   []domain.FollowUpTask
	stopped  bool
}

// NewFollowUpDispatcher creates a dispatcher. Start must be called before
// tasks are processed.
func NewFollowUpDispatcher(cfg FollowUpConfig) *FollowUpDispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	return &FollowUpDispatcher{
		cfg:      cfg,
		tasks:    make(chan domain.FollowUpTask, cfg.Buffer),
		handlers: map[domain.FollowUpKind][]FollowUpHandler{},
	}
}

// Register adds a handler for kind. Handlers run in registration order.
func (d *FollowUpDispatcher) Register(kind domain.FollowUpKind, h FollowUpHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], h)
}

// Dispatch queues a task without blocking.
func (d *FollowUpDispatcher) Dispatch(task domain.FollowUpTask) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return domain.ErrQueueStopped
	}
	select {
	case d.tasks <- task:
		return nil
	default:
		metrics.CaptureFollowUp(string(task.Kind), "dropped")
		return ErrFollowUpQueueFull
	}
}

// Failed returns the tasks whose handlers kept failing.
func (d *FollowUpDispatcher) Failed() []domain.FollowUpTask {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.FollowUpTask, len(d.failed))
	copy(out, d.failed)
	return out
}

// Start runs the workers until ctx is canceled and waits for running tasks to
// finish. Tasks still buffered at shutdown are dropped.
func (d *FollowUpDispatcher) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task := <-d.tasks:
					d.run(ctx, task)
				}
			}
		}()
	}
	zap.S().Infof("followUpDispatcher: started (workers=%d, maxRetries=%d)", d.cfg.Workers, d.cfg.MaxRetries)

	<-ctx.Done()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	wg.Wait()
	zap.S().Infof("followUpDispatcher: shutdown complete")
}

func (d *FollowUpDispatcher) run(ctx context.Context, task domain.FollowUpTask) {
	d.mu.RLock()
	handlers := d.handlers[task.Kind]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		zap.S().Debugf("followUpDispatcher.run: no handlers for %s", task.Kind)
		metrics.CaptureFollowUp(string(task.Kind), "unhandled")
		return
	}

	for _, h := range handlers {
		var err error
		for attempt := 0; attempt <= d.cfg.MaxRetries; attempt++ {
			task.Attempt = attempt + 1
			if err = h(ctx, task); err == nil {
				break
			}
			zap.S().Warnf("followUpDispatcher.run: %s for claim %s failed (attempt %d): %v",
				task.Kind, task.ClaimID, task.Attempt, err)
			if attempt < d.cfg.MaxRetries && !sleepCtx(ctx, d.cfg.RetryDelay) {
				break
			}
		}
		if err != nil {
			zap.S().Errorf("followUpDispatcher.run: giving up on %s for claim %s: %v", task.Kind, task.ClaimID, err)
			d.mu.Lock()
			d.failed = append(d.failed, task)
			d.mu.Unlock()
			metrics.CaptureFollowUp(string(task.Kind), "failed")
			return
		}
	}
	metrics.CaptureFollowUp(string(task.Kind), "succeeded")
}

// sleepCtx waits for d or until ctx is done. It reports whether the full
// delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
