// Copyright (c) 2025 Adam Chubbuck <archubbuck@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package github is a thin client over the GitHub REST API, memoized
// through the shared cache keyed by endpoint path with a short fixed TTL.
package github

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/archubbuck/cli-ops-sub001/internal/cache"
	"github.com/archubbuck/cli-ops-sub001/internal/config"
	"github.com/archubbuck/cli-ops-sub001/internal/fetch"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// listTTL is the memoization window for list/detail endpoints. API data
// goes stale quickly, so this deliberately undercuts the cache default.
const listTTL = 5 * time.Minute

// Repo is the subset of repository metadata the repo subcommand shows.
type Repo struct {
	FullName    string `json:"fullName"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int64  `json:"stars"`
	Forks       int64  `json:"forks"`
	OpenIssues  int64  `json:"openIssues"`
	UpdatedAt   string `json:"updatedAt"`
}

// Item is one issue or pull request.
type Item struct {
	Number    int64  `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
}

// Client calls the API through an uncached fetch.Client and does its own
// memoization, so entries are keyed by endpoint path rather than full URL.
type Client struct {
	api   string
	http  *fetch.Client
	cache *cache.Service
}

// NewClient builds a Client. The token comes from OPSCTL_GITHUB_TOKEN or
// the github.token config key; unauthenticated calls work at a lower rate
// limit.
func NewClient(c *cache.Service) *Client {
	api, _ := config.GetString("github.api", DefaultAPIURL)

	opts := []fetch.Option{fetch.WithHeader("Accept", "application/vnd.github+json")}
	token := os.Getenv("OPSCTL_GITHUB_TOKEN")
	if token == "" {
		token, _ = config.GetString("github.token", "")
	}
	if token != "" {
		opts = append(opts, fetch.WithHeader("Authorization", "Bearer "+token))
	}

	return &Client{
		api:   api,
		http:  fetch.NewClient(opts...),
		cache: c,
	}
}

// Repo fetches repository metadata.
func (c *Client) Repo(ctx context.Context, owner, name string) (Repo, error) {
	doc, err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s", owner, name))
	if err != nil {
		return Repo{}, err
	}

	return Repo{
		FullName:    doc.Get("full_name").String(),
		Description: doc.Get("description").String(),
		Language:    doc.Get("language").String(),
		Stars:       doc.Get("stargazers_count").Int(),
		Forks:       doc.Get("forks_count").Int(),
		OpenIssues:  doc.Get("open_issues_count").Int(),
		UpdatedAt:   doc.Get("updated_at").String(),
	}, nil
}

// Issues lists issues in the given state. GitHub reports pull requests on
// the issues endpoint too; those are filtered out here.
func (c *Client) Issues(ctx context.Context, owner, name, state string) ([]Item, error) {
	doc, err := c.getJSON(ctx,
		fmt.Sprintf("/repos/%s/%s/issues?state=%s", owner, name, url.QueryEscape(state)))
	if err != nil {
		return nil, err
	}

	var items []Item
	doc.ForEach(func(_, row gjson.Result) bool {
		if row.Get("pull_request").Exists() {
			return true
		}
		items = append(items, itemFrom(row))
		return true
	})
	return items, nil
}

// PullRequests lists pull requests in the given state.
func (c *Client) PullRequests(ctx context.Context, owner, name, state string) ([]Item, error) {
	doc, err := c.getJSON(ctx,
		fmt.Sprintf("/repos/%s/%s/pulls?state=%s", owner, name, url.QueryEscape(state)))
	if err != nil {
		return nil, err
	}

	var items []Item
	doc.ForEach(func(_, row gjson.Result) bool {
		items = append(items, itemFrom(row))
		return true
	})
	return items, nil
}

func itemFrom(row gjson.Result) Item {
	return Item{
		Number:    row.Get("number").Int(),
		Title:     row.Get("title").String(),
		State:     row.Get("state").String(),
		Author:    row.Get("user.login").String(),
		CreatedAt: row.Get("created_at").String(),
	}
}

// getJSON memoizes the raw response body under the endpoint path. A
// request failure or non-200 propagates and nothing is cached.
func (c *Client) getJSON(ctx context.Context, path string) (gjson.Result, error) {
	body, err := cache.GetOrSet(c.cache, path, func() (string, error) {
		resp, err := c.http.Get(ctx, c.api+path)
		if err != nil {
			return "", err
		}
		if !resp.OK() {
			return "", fmt.Errorf("github: %s returned status %d", path, resp.Status)
		}
		return resp.Body, nil
	}, listTTL)
	if err != nil {
		return gjson.Result{}, err
	}

	return gjson.Parse(body), nil
}
