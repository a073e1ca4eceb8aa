// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the retrieval stage.
package httputil

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"slices"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

const defaultMaxRetries = 3

// RetryStatuses lists the transient status codes that trigger a retry.
var RetryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// RetryFunc is notified before each backoff wait. status is zero when the
// attempt failed at the transport level, in which case err is set.
type RetryFunc func(attempt int, status int, err error, backoff time.Duration)

// Policy configures DoWithRetry.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero or negative selects the default (3).
	MaxRetries int

	// OnRetry, when set, is called before each backoff wait.
	OnRetry RetryFunc
}

// DoWithRetry executes an HTTP request and retries on transient server
// statuses (429, 500, 502, 503, 504) and on transport errors with
// exponential backoff. The delay starts at RetryBaseDelay (1 s) and doubles
// each attempt: 1 s, 2 s, 4 s.
//
// Each attempt clones req with ctx and rebuilds the body from req.GetBody,
// so a request with a body must have GetBody set (http.NewRequest does this
// for in-memory readers). If the context is cancelled the function returns
// ctx.Err(). After exhausting retries the last retryable response is returned so the
// caller can inspect its status and body; a last transport error is
// returned as-is.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy Policy) (*http.Response, error) {
	maxRetries := policy.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, context.Canceled) || attempt >= maxRetries {
				return nil, err
			}
		} else if !isRetryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, status, err, backoff)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func isRetryable(status int) bool {
	return slices.Contains(RetryStatuses, status)
}
