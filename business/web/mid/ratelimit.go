package mid

import (
	"context"
	"net/http"

	"github.com/pecanrolls/rolls-gateway/business/web/errs"
	"github.com/pecanrolls/rolls-gateway/foundation/web"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests beyond the limiter's rate with a 429. A nil
// limiter lets every request through.
func RateLimit(limiter *rate.Limiter) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if limiter != nil && !limiter.Allow() {
				return errs.New("too many requests", http.StatusTooManyRequests)
			}

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
