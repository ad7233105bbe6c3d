package assistant

import (
	"context"

	"golang.org/x/time/rate"

	"gradecalc/internal/apperr"
)

// RateLimited rejects requests beyond the limiter's rate instead of queueing
// them behind a slow upstream.
type RateLimited struct {
	Provider
	limiter *rate.Limiter
}

func NewRateLimited(p Provider, perSecond float64, burst int) *RateLimited {
	return &RateLimited{Provider: p, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (r *RateLimited) Stream(ctx context.Context, p Prompt) (TokenStream, error) {
	if !r.limiter.Allow() {
		return nil, apperr.Clone(apperr.ErrRateLimited, "assistant is busy, try again shortly")
	}
	return r.Provider.Stream(ctx, p)
}
