// Package registry queries the npm registry search endpoint.
//
// The client is safe for concurrent use. Requests are paced by a token
// bucket so that a host typing quickly into the palette cannot flood the
// registry; callers wait for a token or for their context to end.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"golang.org/x/time/rate"
)

// DefaultURL is the public npm registry.
const DefaultURL = "https://registry.npmjs.org"

const (
	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 10 * time.Second
	// DefaultRate is the sustained number of searches per second.
	DefaultRate = 5.0

	maxBody = 4 << 20
)

// ErrQuery is wrapped by every QueryError.
var ErrQuery = errors.New("package search failed")

// QueryError describes a failed search.
type QueryError struct {
	Term   string
	Status int // HTTP status, zero when no response was received
	Err    error
}

func (e *QueryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("search %q: registry returned %d: %v", e.Term, e.Status, e.Err)
	}
	return fmt.Sprintf("search %q: %v", e.Term, e.Err)
}

func (e *QueryError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrQuery}
	}
	return []error{ErrQuery, e.Err}
}

// Package is one search hit.
type Package struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Config holds client options. Zero fields take defaults.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Rate       float64 // searches per second; negative disables limiting
	HTTPClient *http.Client
}

// Client searches a registry.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
}

// New returns a client for cfg.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Rate == 0 {
		cfg.Rate = DefaultRate
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// BaseURL returns the registry root the client queries.
func (c *Client) BaseURL() string { return c.base }

// Search returns the packages matching term in registry order. A blank term
// returns no packages without contacting the registry.
func (c *Client) Search(ctx context.Context, term string) ([]Package, error) {
	if strings.TrimSpace(term) == "" {
		return []Package{}, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &QueryError{Term: term, Err: err}
	}

	endpoint := c.base + "/-/v1/search?text=" + url.QueryEscape(term)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &QueryError{Term: term, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &QueryError{Term: term, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &QueryError{Term: term, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &QueryError{Term: term, Status: resp.StatusCode, Err: errors.New(statusMessage(resp.Status, body))}
	}

	pkgs, err := decode(body)
	if err != nil {
		return nil, &QueryError{Term: term, Status: resp.StatusCode, Err: err}
	}
	return pkgs, nil
}

// decode extracts objects[].package from a search response.
func decode(body []byte) ([]Package, error) {
	pkgs := []Package{}
	var inner error
	_, err := jsonparser.ArrayEach(body, func(v []byte, typ jsonparser.ValueType, _ int, _ error) {
		if inner != nil || typ != jsonparser.Object {
			return
		}
		name, err := jsonparser.GetString(v, "package", "name")
		if err != nil {
			inner = fmt.Errorf("package without name: %w", err)
			return
		}
		desc, _ := jsonparser.GetString(v, "package", "description")
		version, _ := jsonparser.GetString(v, "package", "version")
		pkgs = append(pkgs, Package{Name: name, Description: desc, Version: version})
	}, "objects")
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if inner != nil {
		return nil, fmt.Errorf("decode response: %w", inner)
	}
	return pkgs, nil
}

// statusMessage prefers the registry's own error text when it sent one.
func statusMessage(status string, body []byte) string {
	if msg, err := jsonparser.GetString(body, "error"); err == nil && msg != "" {
		return msg
	}
	return status
}
