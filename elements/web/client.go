// Package web provides elements that fetch documents over HTTP and select
// parts of HTML documents.
package web

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// ErrStatus is returned when a server answers with a 4xx or 5xx status.
var ErrStatus = errors.New("web: unexpected status")

// A Getter downloads the body of a URL.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	Retries       int           `yaml:"retries"`
	RetryWaitMin  time.Duration `yaml:"retry_wait_min"`
	RetryWaitMax  time.Duration `yaml:"retry_wait_max"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	UserAgent     string        `yaml:"user_agent"`
}

// Client is a Getter backed by resty. Requests are retried by a retryable
// transport and throttled by a token bucket.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
}

// NewClient creates a Client. Zero fields take defaults: 30s timeout, 1s to
// 30s between retries, no rate limit.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	if cfg.RetryWaitMin == 0 {
		cfg.RetryWaitMin = time.Second
	}

	if cfg.RetryWaitMax == 0 {
		cfg.RetryWaitMax = 30 * time.Second
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = "pypes/1.0"
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	r := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Client{
		resty:   r,
		limiter: limiter,
	}
}

// Get downloads the body of url.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.resty.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: GET %s: %s", ErrStatus, url, resp.Status())
	}

	return resp.Body(), nil
}
