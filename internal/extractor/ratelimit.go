package extractor

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"claimdesk/internal/port"
)

// RateLimited spaces calls to one provider so a document's sequential page
// requests stay under the provider's requests-per-minute quota.
type RateLimited struct {
	next    port.PageExtractor
	limiter *rate.Limiter
}

// NewRateLimited wraps next. A non-positive requestsPerMinute disables limiting
// and returns next unchanged.
func NewRateLimited(next port.PageExtractor, requestsPerMinute int) port.PageExtractor {
	if requestsPerMinute <= 0 {
		return next
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(every), 1),
	}
}

func (r *RateLimited) ExtractPage(ctx context.Context, input port.PageInput) (*port.PageOutput, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.ExtractPage(ctx, input)
}

func (r *RateLimited) ClassifyPage(ctx context.Context, input port.ClassifyInput) (*port.ClassifyOutput, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.ClassifyPage(ctx, input)
}
