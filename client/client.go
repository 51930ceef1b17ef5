// Package client is a Go client for the RSVP HTTP API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/weddingrsvp/rsvp/server"
)

// DefaultTimeout bounds every request that does not upload a photo.
const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Detail)
}

// Client talks to a running RSVP server.
type Client struct {
	http          *resty.Client
	adminPassword string
}

// New creates a Client for the server at baseURL, e.g. http://127.0.0.1:8022.
func New(baseURL string, options ...func(*Client)) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", "application/json"),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// WithAdminPassword sets the password sent on admin requests.
func WithAdminPassword(password string) func(*Client) {
	return func(c *Client) {
		c.adminPassword = password
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) func(*Client) {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithRetries retries requests failing with network errors or 5xx answers.
// Photo uploads are never retried.
func WithRetries(count int) func(*Client) {
	return func(c *Client) {
		c.http.
			SetRetryCount(count).
			SetRetryWaitTime(200 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			AddRetryCondition(retryable)
	}
}

func retryable(r *resty.Response, err error) bool {
	if r != nil && r.Request != nil && r.Request.Method == http.MethodPost && strings.HasSuffix(r.Request.URL, "/api/photos") {
		return false
	}
	if err != nil {
		return true
	}
	return r != nil && r.StatusCode() >= http.StatusInternalServerError
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetError(&APIError{})
}

func (c *Client) adminRequest(ctx context.Context) *resty.Request {
	return c.request(ctx).SetHeader(server.AdminPasswordHeader, c.adminPassword)
}

// check turns a failed call into an error.
func check(resp *resty.Response, err error, what string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.StatusCode = resp.StatusCode()
	return fmt.Errorf("%s: %w", what, apiErr)
}
