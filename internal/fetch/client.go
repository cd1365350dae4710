// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package fetch is the HTTP request layer shared by the fetch and repo
// subcommands: GETs with retry/backoff, memoized through the cache.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/archubbuck/cli-ops-sub001/internal/cache"
)

// Response is the cached form of an HTTP response.
type Response struct {
	Status  int         `json:"status"`
	Headers http.Header `json:"headers"`
	Body    string      `json:"body"`
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// Client performs GET requests. When a cache is attached, responses are
// memoized under "GET <url>"; only 2xx responses are ever cached. GETs are
// the only method supported on purpose, so every request is idempotent and
// safe to both retry and memoize.
type Client struct {
	http   *retryablehttp.Client
	cache  *cache.Service
	ttl    time.Duration
	header http.Header
}

// Option mutates a Client during construction.
type Option func(*Client)

// WithCache attaches a cache and an entry TTL. A zero ttl falls back to
// the cache's default.
func WithCache(c *cache.Service, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.ttl = ttl
	}
}

// WithHeader adds a header to every request, e.g. an Authorization token.
func WithHeader(key, value string) Option {
	return func(cl *Client) {
		cl.header.Set(key, value)
	}
}

// WithRetries overrides the retry count.
func WithRetries(n int) Option {
	return func(cl *Client) {
		cl.http.RetryMax = n
	}
}

// NewClient builds a Client with sane retry defaults.
func NewClient(opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond //nolint:mnd
	rc.RetryWaitMax = 5 * time.Second        //nolint:mnd
	// Route retryablehttp's chatter through our own debug logging instead.
	rc.Logger = nil

	cl := &Client{
		http:   rc,
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Get fetches url, consulting the cache first when one is attached. A
// non-2xx response is returned as a value, not an error, and is never
// cached.
func (c *Client) Get(ctx context.Context, url string) (Response, error) {
	key := "GET " + url

	if c.cache != nil {
		if r, ok := cache.Get[Response](c.cache, key); ok {
			log.Debugf("cache hit: %s", url)
			return r, nil
		}
	}

	r, err := c.fetch(ctx, url)
	if err != nil {
		return Response{}, err
	}

	if c.cache != nil && r.OK() {
		var ttl []time.Duration
		if c.ttl > 0 {
			ttl = append(ttl, c.ttl)
		}
		if err := cache.Set(c.cache, key, r, ttl...); err != nil {
			log.WithError(err).Warnf("failed to cache response for %s", url)
		}
	}

	return r, nil
}

func (c *Client) fetch(ctx context.Context, url string) (Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	log.Debugf("GET %s", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}

	return Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    string(body),
	}, nil
}
