// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search retrieves PubMed records through the NCBI E-utilities API:
// an esearch lookup that turns a query into PMIDs, and an efetch bulk fetch
// that returns the raw article XML for those PMIDs.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bcicen/jstream"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/pubmed-filter/internal/httputil"
	"github.com/pdiddy/pubmed-filter/internal/metrics"
	"github.com/pdiddy/pubmed-filter/pkg/types"
)

const (
	// OpLookup and OpFetch name the two retrieval operations in errors,
	// logs and metrics.
	OpLookup = "esearch"
	OpFetch  = "efetch"

	// bodyExcerpt bounds how much of an error body is kept for diagnostics.
	bodyExcerpt = 512

	defaultRateLimit = 3.0
	keyedRateLimit   = 10.0

	// postThreshold is the id count above which efetch sends its
	// parameters as a form body instead of a query string.
	postThreshold = 200
)

// MaxBodyBytes bounds how much of a response is read into memory. Tests
// lower it to exercise the limit.
var MaxBodyBytes int64 = 256 << 20

// ErrBodyTooLarge is returned inside a *RetrievalError when a response
// exceeds MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// Client queries PubMed. It is safe for sequential use by one pipeline run;
// the rate limiter is shared across its requests.
type Client struct {
	http    *http.Client
	cfg     types.RetrievalConfig
	limiter *rate.Limiter
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a PubMed client. The HTTP client timeout is taken from
// cfg.Timeout. m may be nil.
func NewClient(cfg types.RetrievalConfig, log zerolog.Logger, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = types.DefaultBaseURL
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
		if cfg.APIKey != "" {
			limit = keyedRateLimit
		}
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(limit), 1),
		log:     log.With().Str("component", "search").Logger(),
		metrics: m,
	}
}

// Lookup runs an esearch query and returns up to maxResults PMIDs in
// relevance order. A query that matches nothing returns an empty slice and
// no error.
func (c *Client) Lookup(ctx context.Context, query string, maxResults int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &RetrievalError{Op: OpLookup, Err: errors.New("query is empty")}
	}
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(maxResults)},
	}

	body, reqURL, err := c.call(ctx, OpLookup, "esearch.fcgi", params, false)
	if err != nil {
		return nil, err
	}

	ids, err := decodeIDList(bytes.NewReader(body))
	if err != nil {
		return nil, &RetrievalError{Op: OpLookup, URL: reqURL, Err: err}
	}

	c.log.Debug().Str("query", query).Int("ids", len(ids)).Msg("lookup complete")
	return ids, nil
}

// FetchDetails runs a single efetch call for ids and returns the raw
// PubmedArticleSet XML payload.
func (c *Client) FetchDetails(ctx context.Context, ids []string) ([]byte, error) {
	if len(ids) == 0 {
		return nil, &RetrievalError{Op: OpFetch, Err: errors.New("no identifiers to fetch")}
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}

	body, _, err := c.call(ctx, OpFetch, "efetch.fcgi", params, len(ids) > postThreshold)
	if err != nil {
		return nil, err
	}

	c.log.Debug().Int("ids", len(ids)).Int("bytes", len(body)).Msg("fetch complete")
	return body, nil
}

// call performs a rate-limited request with retries and returns the body of
// a 200 response. With post set, the parameters go in a form-encoded POST
// body; otherwise they are sent as a GET query. reqURL is the request URL
// without the API key, for diagnostics.
func (c *Client) call(ctx context.Context, op, endpoint string, params url.Values, post bool) (body []byte, reqURL string, err error) {
	if c.cfg.Tool != "" {
		params.Set("tool", c.cfg.Tool)
	}
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	endpointURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + endpoint

	withKey := params
	if c.cfg.APIKey != "" {
		withKey = url.Values{}
		for k, v := range params {
			withKey[k] = v
		}
		withKey.Set("api_key", c.cfg.APIKey)
	}

	var req *http.Request
	if post {
		reqURL = endpointURL
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, strings.NewReader(withKey.Encode()))
	} else {
		reqURL = endpointURL + "?" + params.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpointURL+"?"+withKey.Encode(), nil)
	}
	if err != nil {
		return nil, reqURL, &RetrievalError{Op: op, URL: reqURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if post {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, reqURL, &RetrievalError{Op: op, URL: reqURL, Err: fmt.Errorf("rate limiter wait: %w", err)}
	}

	c.log.Debug().Str("op", op).Str("method", req.Method).Str("url", reqURL).Msg("API request")

	policy := httputil.Policy{
		MaxRetries: c.cfg.MaxRetries,
		OnRetry: func(attempt, status int, rerr error, backoff time.Duration) {
			c.metrics.IncRetry(op)
			ev := c.log.Warn().Str("op", op).Int("attempt", attempt).Dur("backoff", backoff)
			if rerr != nil {
				ev = ev.Err(rerr)
			} else {
				ev = ev.Int("status", status)
			}
			ev.Msg("transient failure, retrying")
		},
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.http, req, policy)
	if err != nil {
		c.metrics.ObserveRequest(op, 0, time.Since(start))
		return nil, reqURL, &RetrievalError{Op: op, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(op, resp.StatusCode, time.Since(start))

	body, err = io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, reqURL, &RetrievalError{Op: op, URL: reqURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	if int64(len(body)) > MaxBodyBytes {
		return nil, reqURL, &RetrievalError{
			Op:         op,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, MaxBodyBytes),
		}
	}

	if resp.StatusCode != http.StatusOK {
		excerpt := string(body)
		if len(excerpt) > bodyExcerpt {
			excerpt = excerpt[:bodyExcerpt]
		}
		return nil, reqURL, &RetrievalError{
			Op:         op,
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(excerpt),
		}
	}

	return body, reqURL, nil
}

// decodeIDList streams an esearch JSON response and returns the values of
// esearchresult.idlist.
func decodeIDList(r io.Reader) ([]string, error) {
	dec := jstream.NewDecoder(r, 2).EmitKV()

	var (
		ids    []string
		found  bool
		result error
	)
	// Drain the stream fully so the decoder goroutine exits.
	for mv := range dec.Stream() {
		kv, ok := mv.Value.(jstream.KV)
		if !ok || result != nil {
			continue
		}
		switch kv.Key {
		case "idlist":
			list, ok := kv.Value.([]interface{})
			if !ok {
				result = fmt.Errorf("idlist is %T, want array", kv.Value)
				continue
			}
			for _, v := range list {
				id, ok := v.(string)
				if !ok {
					result = fmt.Errorf("idlist entry is %T, want string", v)
					break
				}
				ids = append(ids, id)
			}
			found = true
		case "ERROR":
			result = fmt.Errorf("esearch error: %v", kv.Value)
		}
	}

	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("decoding esearch response: %w", err)
	}
	if result != nil {
		return nil, result
	}
	if !found {
		return nil, errors.New("esearch response has no idlist")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
