package util

import (
	"context"

	multierror "github.com/hashicorp/go-multierror"
)

// Retry runs fn until it succeeds, returns an error for which fatal is true, the context is done,
// or maxAttempts attempts have been made. onRetry (if non-nil) is called before every attempt after the first.
// On failure, Retry returns the number of attempts made, the error from the final attempt, and
// a multierror aggregating the errors from every attempt.
func Retry(ctx context.Context, maxAttempts int, fatal func(error) bool, onRetry func(attempt int, lastErr error), fn func(attempt int) error) (attempts int, last error, all error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var merr *multierror.Error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return attempt - 1, last, multierror.Append(merr, ctxErr)
			}
			if onRetry != nil {
				onRetry(attempt, last)
			}
		}
		last = fn(attempt)
		if last == nil {
			return attempt, nil, nil
		}
		merr = multierror.Append(merr, last)
		merr.ErrorFormat = FormatMultiError
		if fatal != nil && fatal(last) {
			return attempt, last, merr
		}
	}
	return maxAttempts, last, merr
}
