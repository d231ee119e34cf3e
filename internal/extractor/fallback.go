package extractor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"claimdesk/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// Fallback tries extractors in order, skipping those with open circuits.
// It implements port.PageExtractor.
type Fallback struct {
	extractors []port.PageExtractor
	circuits   []*circuitState
	names      []string
	now        func() time.Time
}

// NewFallback creates a Fallback from an ordered list of extractors and their names.
func NewFallback(extractors []port.PageExtractor, names []string) *Fallback {
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &Fallback{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
		now:        time.Now,
	}
}

func (f *Fallback) ExtractPage(ctx context.Context, input port.PageInput) (*port.PageOutput, error) {
	var out *port.PageOutput
	err := f.try(ctx, "ExtractPage", func(e port.PageExtractor) error {
		var err error
		out, err = e.ExtractPage(ctx, input)
		return err
	})
	return out, err
}

func (f *Fallback) ClassifyPage(ctx context.Context, input port.ClassifyInput) (*port.ClassifyOutput, error) {
	var out *port.ClassifyOutput
	err := f.try(ctx, "ClassifyPage", func(e port.PageExtractor) error {
		var err error
		out, err = e.ClassifyPage(ctx, input)
		return err
	})
	return out, err
}

func (f *Fallback) try(ctx context.Context, op string, call func(port.PageExtractor) error) error {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, e := range f.extractors {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			zap.S().Infof("extractor.Fallback.%s: skipping %s (circuit open until %s)", op, f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		err := call(e)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		zap.S().Warnf("extractor.Fallback.%s: %s failed: %v", op, f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return NewRateLimitError("all", fmt.Errorf("all extractors rate limited"), int(retryAfter.Seconds()))
	}

	return fmt.Errorf("all extractors failed: %w", lastErr)
}
