// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import "fmt"

// RetrievalError reports a failed lookup or fetch: a transport error, a
// timeout, an undecodable response, or a non-200 status after retries.
type RetrievalError struct {
	// Op is OpLookup or OpFetch.
	Op string

	// URL is the request URL with any API key removed.
	URL string

	// StatusCode is the final HTTP status, or zero when no response arrived.
	StatusCode int

	// Body is an excerpt of the response body for non-200 statuses.
	Body string

	Err error
}

func (e *RetrievalError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err == nil:
		if e.Body != "" {
			return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": retrieval failed"
	}
}

func (e *RetrievalError) Unwrap() error { return e.Err }
