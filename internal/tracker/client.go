// Package tracker is a small client for the Linear GraphQL API.
//
// Every request is a POST of {query, variables} to a single endpoint with the
// API key in the Authorization header. Responses are checked for an errors
// payload before any data is read, and missing data is reported as an error.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the Linear GraphQL endpoint.
const DefaultEndpoint = "https://api.linear.app/graphql"

// DefaultTimeout bounds a single request when the config leaves it unset.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a non-2xx body is quoted in errors.
const maxErrorBody = 512

var (
	// ErrQuery marks a failed read request.
	ErrQuery = errors.New("remote query failed")
	// ErrMutation marks a failed write request.
	ErrMutation = errors.New("remote mutation failed")
	// ErrUnauthorized is returned for 401/403 responses.
	ErrUnauthorized = errors.New("unauthorized: check the API key")
)

// Config holds the connection settings for a Client.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client issues GraphQL requests against the tracker.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records request outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client from cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RemoteError describes a failed tracker request.
type RemoteError struct {
	Op       string
	Kind     Kind
	Messages []string
	Err      error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	if e.Kind == KindMutation {
		b.WriteString(ErrMutation.Error())
	} else {
		b.WriteString(ErrQuery.Error())
	}
	b.WriteString(" (")
	b.WriteString(e.Op)
	b.WriteString(")")
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is reports ErrQuery or ErrMutation according to the request kind.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrQuery:
		return e.Kind == KindQuery
	case ErrMutation:
		return e.Kind == KindMutation
	}
	return false
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// do sends op with vars and decodes the data object into out.
func (c *Client) do(ctx context.Context, op operation, vars map[string]any, out any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.observe(op, err, time.Since(start))
	}()

	fail := func(cause error, messages ...string) error {
		return &RemoteError{Op: op.Name, Kind: op.Kind, Messages: messages, Err: cause}
	}

	body, err := json.Marshal(request{Query: op.Document, Variables: vars})
	if err != nil {
		return fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fail(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fail(ErrUnauthorized)
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode/100 != 2 {
			return fail(fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(respBody, maxErrorBody)))
		}
		return fail(fmt.Errorf("decode response: %w", err))
	}

	if len(parsed.Errors) > 0 {
		messages := make([]string, len(parsed.Errors))
		for i, e := range parsed.Errors {
			messages[i] = e.Message
		}
		return fail(nil, messages...)
	}
	if resp.StatusCode/100 != 2 {
		return fail(fmt.Errorf("HTTP %d", resp.StatusCode))
	}
	if len(parsed.Data) == 0 || string(parsed.Data) == "null" {
		return fail(errors.New("response has no data"))
	}

	if out != nil {
		if err := json.Unmarshal(parsed.Data, out); err != nil {
			return fail(fmt.Errorf("decode data: %w", err))
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
