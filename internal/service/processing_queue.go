package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"claimdesk/internal/domain"
	"claimdesk/internal/metrics"
	"claimdesk/internal/port"
)

const (
	defaultQueueWorkers = 4
	defaultMaxRetries   = 3
	defaultRetryDelay   = 5 * time.Second
	attemptTimeout      = 10 * time.Minute
)

// QueueConfig holds settings for the processing queue.
type QueueConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// Result is delivered once on the channel returned by Enqueue.
type Result struct {
	DocumentID uuid.UUID
	Status     domain.ProcessingStatus
	Attempts   int
	Err        error
}

// ProcessingQueue is an in-memory FIFO of document ids drained by a fixed
// worker pool. A document id is never queued twice nor processed by two
// workers at once. Queue state does not survive a restart; see Recover.
type ProcessingQueue struct {
	docRepo   port.DocumentRepository
	auditRepo port.DocumentAuditRepository
	processor DocumentProcessor
	alerts    port.AlertSender
	cfg       QueueConfig

	mu       sync.Mutex
	pending  []uuid.UUID
	queued   map[uuid.UUID]chan Result
	inFlight map[uuid.UUID]struct{}
	stopped  bool
	wake     chan struct{}
}

// NewProcessingQueue creates a new ProcessingQueue. A non-positive worker
// count means 4 workers; negative retry settings fall back to 3 retries
// 5 seconds apart.
func NewProcessingQueue(
	docRepo port.DocumentRepository,
	auditRepo port.DocumentAuditRepository,
	processor DocumentProcessor,
	alerts port.AlertSender,
	cfg QueueConfig,
) *ProcessingQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultQueueWorkers
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &ProcessingQueue{
		docRepo:   docRepo,
		auditRepo: auditRepo,
		processor: processor,
		alerts:    alerts,
		cfg:       cfg,
		queued:    map[uuid.UUID]chan Result{},
		inFlight:  map[uuid.UUID]struct{}{},
		wake:      make(chan struct{}, 1),
	}
}

// Enqueue appends docID to the queue. It returns false, and a nil channel,
// when the id is already queued or in flight or the queue has stopped.
func (q *ProcessingQueue) Enqueue(docID uuid.UUID) (<-chan Result, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return nil, false
	}
	if _, ok := q.queued[docID]; ok {
		return nil, false
	}
	if _, ok := q.inFlight[docID]; ok {
		return nil, false
	}

	future := make(chan Result, 1)
	q.queued[docID] = future
	q.pending = append(q.pending, docID)
	metrics.SetQueueDepth(len(q.pending))
	q.signal()
	return future, true
}

// Len returns the number of documents waiting for a worker.
func (q *ProcessingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// InFlight returns the number of documents currently being processed.
func (q *ProcessingQueue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inFlight)
}

// Recover re-enqueues documents left pending or processing by a previous run.
func (q *ProcessingQueue) Recover(ctx context.Context) (int, error) {
	docs, err := q.docRepo.ListByStatus(ctx, domain.ProcessingStatusPending, domain.ProcessingStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("processingQueue.Recover: %w", err)
	}
	n := 0
	for i := range docs {
		if _, ok := q.Enqueue(docs[i].ID); ok {
			n++
		}
	}
	zap.S().Infof("processingQueue.Recover: re-enqueued %d of %d unfinished documents", n, len(docs))
	return n, nil
}

// Start runs the worker pool until ctx is canceled. It blocks until all
// in-flight documents have finished their current attempt.
func (q *ProcessingQueue) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < q.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.work(ctx)
		}()
	}
	zap.S().Infof("processingQueue: started (workers=%d, maxRetries=%d, retryDelay=%s)",
		q.cfg.Workers, q.cfg.MaxRetries, q.cfg.RetryDelay)

	<-ctx.Done()
	zap.S().Infof("processingQueue: shutting down, waiting for in-flight documents...")
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	wg.Wait()
	zap.S().Infof("processingQueue: shutdown complete")
}

func (q *ProcessingQueue) work(ctx context.Context) {
	for {
		docID, future, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}
		if ctx.Err() != nil {
			q.finish(docID, future, Result{DocumentID: docID, Err: ctx.Err()})
			return
		}

		metrics.IncrementInFlight()
		res := q.run(ctx, docID)
		metrics.DecrementInFlight()
		q.finish(docID, future, res)
	}
}

// pop moves the oldest pending id to the in-flight set.
func (q *ProcessingQueue) pop() (uuid.UUID, chan Result, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return uuid.Nil, nil, false
	}
	docID := q.pending[0]
	q.pending = q.pending[1:]
	future := q.queued[docID]
	delete(q.queued, docID)
	q.inFlight[docID] = struct{}{}
	metrics.SetQueueDepth(len(q.pending))
	if len(q.pending) > 0 {
		q.signal()
	}
	return docID, future, true
}

func (q *ProcessingQueue) finish(docID uuid.UUID, future chan Result, res Result) {
	q.mu.Lock()
	delete(q.inFlight, docID)
	q.mu.Unlock()
	future <- res
	close(future)
}

// signal wakes one idle worker. Callers hold q.mu.
func (q *ProcessingQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// run processes one document with retries. Each attempt gets its own
// context so shutdown lets the current attempt finish; the retry delay
// honors ctx.
func (q *ProcessingQueue) run(ctx context.Context, docID uuid.UUID) Result {
	res := Result{DocumentID: docID}

	doc := q.load(ctx, docID, &res)
	if doc == nil {
		return res
	}

	var err error
	for {
		res.Attempts++
		if err := q.docRepo.MarkProcessing(ctx, doc.ID); err != nil {
			zap.S().Warnf("processingQueue.run: marking %s processing: %v", doc.ID, err)
		}
		action := domain.AuditProcessingStarted
		if res.Attempts > 1 {
			action = domain.AuditProcessingRetry
		}
		changes, _ := json.Marshal(map[string]interface{}{"attempt": res.Attempts})
		auditEntry(ctx, q.auditRepo, doc.OrganizationID, doc.ID, action, changes)

		attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), attemptTimeout)
		err = q.processor.Process(attemptCtx, doc)
		cancel()

		if err == nil {
			res.Status = domain.ProcessingStatusCompleted
			metrics.CaptureDocumentOutcome(string(doc.DocumentClass), "completed")
			return res
		}

		if !domain.IsTransient(err) || res.Attempts > q.cfg.MaxRetries {
			q.fail(ctx, doc, err, res.Attempts)
			res.Status = domain.ProcessingStatusFailed
			res.Err = err
			return res
		}

		zap.S().Warnf("processingQueue.run: document %s attempt %d failed, retrying in %s: %v",
			doc.ID, res.Attempts, q.cfg.RetryDelay, err)
		metrics.IncrementRetries()
		if !sleepCtx(ctx, q.cfg.RetryDelay) {
			// Left in processing; Recover picks it up on the next start.
			res.Status = domain.ProcessingStatusProcessing
			res.Err = errors.Join(err, ctx.Err())
			return res
		}
	}
}

// load reads the document, retrying lookup errors on the processing retry
// schedule. A missing document fails at once; one that stays unreadable is
// marked failed by id. Returns nil with res filled in when it gives up.
func (q *ProcessingQueue) load(ctx context.Context, docID uuid.UUID, res *Result) *domain.Document {
	for attempt := 1; ; attempt++ {
		doc, err := q.docRepo.GetByID(ctx, docID)
		if err == nil {
			return doc
		}
		if errors.Is(err, domain.ErrDocumentNotFound) {
			zap.S().Errorf("processingQueue.load: document %s: %v", docID, err)
			res.Status = domain.ProcessingStatusFailed
			res.Err = err
			return nil
		}
		if attempt > q.cfg.MaxRetries {
			zap.S().Errorf("processingQueue.load: document %s unreadable after %d attempt(s): %v", docID, attempt, err)
			if markErr := q.docRepo.MarkFailed(context.WithoutCancel(ctx), docID, err.Error()); markErr != nil {
				zap.S().Errorf("processingQueue.load: marking %s failed: %v", docID, markErr)
			}
			metrics.CaptureDocumentOutcome("", "failed")
			res.Status = domain.ProcessingStatusFailed
			res.Err = err
			return nil
		}

		zap.S().Warnf("processingQueue.load: reading document %s (attempt %d) failed, retrying in %s: %v",
			docID, attempt, q.cfg.RetryDelay, err)
		metrics.IncrementRetries()
		if !sleepCtx(ctx, q.cfg.RetryDelay) {
			// Still pending; Recover picks it up on the next start.
			res.Status = domain.ProcessingStatusPending
			res.Err = errors.Join(err, ctx.Err())
			return nil
		}
	}
}

func (q *ProcessingQueue) fail(ctx context.Context, doc *domain.Document, cause error, attempts int) {
	ctx = context.WithoutCancel(ctx)
	msg := cause.Error()
	zap.S().Errorf("processingQueue.fail: document %s failed after %d attempt(s): %s", doc.ID, attempts, msg)

	if err := q.docRepo.MarkFailed(ctx, doc.ID, msg); err != nil {
		zap.S().Errorf("processingQueue.fail: marking %s failed: %v", doc.ID, err)
	}
	changes, _ := json.Marshal(map[string]interface{}{
		"error": msg, "attempts": attempts, "transient": domain.IsTransient(cause),
	})
	auditEntry(ctx, q.auditRepo, doc.OrganizationID, doc.ID, domain.AuditProcessingFailed, changes)
	metrics.CaptureDocumentOutcome(string(doc.DocumentClass), "failed")

	if q.alerts != nil {
		if err := q.alerts.SendDocumentFailure(ctx, doc, msg); err != nil {
			zap.S().Warnf("processingQueue.fail: alerting on %s: %v", doc.ID, err)
		}
	}
}
