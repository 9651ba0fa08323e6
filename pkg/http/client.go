package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultTimeout         = 30 * time.Second
	DefaultInitialInterval = 200 * time.Millisecond
	DefaultMaxInterval     = 5 * time.Second
)

// Client is shared by every call a process makes, so connections are pooled
// by the underlying transport.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	opts       Options
}

// Options controls timeouts and the retry policy. MaxAttempts <= 1 means a
// single attempt. Only idempotent methods are retried; a POST that failed with
// a 5xx may already have been applied, so it is attempted once.
type Options struct {
	Timeout         time.Duration
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type RequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    interface{}
}

type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// serverError carries a 5xx response through the retry loop.
type serverError struct {
	resp *Response
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: %d", e.resp.StatusCode)
}

func NewClient() *Client {
	logger, _ := zap.NewProduction()
	return NewClientWithOptions(Options{}, logger)
}

// NewClientWithLogger creates a new HTTP client with a custom logger
func NewClientWithLogger(logger *zap.Logger) *Client {
	return NewClientWithOptions(Options{}, logger)
}

// NewClientWithOptions creates a client with an explicit timeout and retry policy.
func NewClientWithOptions(opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = DefaultInitialInterval
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = DefaultMaxInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: logger,
		opts:   opts,
	}
}

// Options returns the effective options.
func (c *Client) Options() Options {
	return c.opts
}

// Do performs the request and returns the response whatever its status.
// An error is returned only when no response could be obtained.
func (c *Client) Do(ctx context.Context, opts RequestOptions) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	requestID := uuid.NewString()
	logger := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", opts.Method),
		zap.String("url", opts.URL))

	maxAttempts := c.opts.MaxAttempts
	if !idempotent(opts.Method) {
		maxAttempts = 1
	}

	attempt := 0
	operation := func() (*Response, error) {
		attempt++
		req, err := c.buildRequest(ctx, opts)
		if err != nil {
			logger.Error("Failed to build request", zap.Error(err))
			return nil, backoff.Permanent(err)
		}

		logger.Debug("Making HTTP request", zap.Int("attempt", attempt))

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			logger.Warn("HTTP request failed", zap.Int("attempt", attempt), zap.Error(err))
			return nil, lastAttempt(attempt, maxAttempts, err)
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(httpResp.Body)
		if err != nil {
			logger.Warn("Failed to read response body", zap.Int("attempt", attempt), zap.Error(err))
			return nil, lastAttempt(attempt, maxAttempts, fmt.Errorf("failed to read response body: %w", err))
		}

		resp := &Response{
			StatusCode: httpResp.StatusCode,
			Headers:    httpResp.Header,
			Body:       body,
		}

		if httpResp.StatusCode >= 500 {
			logger.Warn("Server error",
				zap.Int("attempt", attempt),
				zap.Int("status_code", httpResp.StatusCode))
			return nil, lastAttempt(attempt, maxAttempts, &serverError{resp: resp})
		}

		return resp, nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.opts.InitialInterval
	expBackoff.MaxInterval = c.opts.MaxInterval
	expBackoff.Reset()

	resp, err := backoff.Retry(ctx, operation, backoff.WithBackOff(expBackoff))
	if err != nil {
		var srvErr *serverError
		if errors.As(err, &srvErr) {
			resp = srvErr.resp
		} else {
			logger.Error("HTTP request failed", zap.Int("attempts", attempt), zap.Error(err))
			return nil, err
		}
	}

	logger.Debug("HTTP request completed", zap.Int("status_code", resp.StatusCode))
	return resp, nil
}

// lastAttempt stops the retry loop once the attempt budget is spent.
func lastAttempt(attempt, maxAttempts int, err error) error {
	if attempt >= maxAttempts {
		return backoff.Permanent(err)
	}
	return err
}

func idempotent(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func (c *Client) buildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	var bodyReader io.Reader
	if opts.Body != nil {
		if bodyBytes, ok := opts.Body.([]byte); ok {
			bodyReader = bytes.NewReader(bodyBytes)
		} else if isForm(opts.Headers) {
			form := url.Values{}
			switch v := opts.Body.(type) {
			case url.Values:
				form = v
			case map[string]string:
				for k, val := range v {
					form.Set(k, val)
				}
			default:
				return nil, fmt.Errorf("unsupported form body type %T", opts.Body)
			}
			bodyReader = strings.NewReader(form.Encode())
		} else {
			bodyJSON, err := json.Marshal(opts.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal request body: %w", err)
			}
			bodyReader = bytes.NewReader(bodyJSON)
		}
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

func isForm(headers map[string]string) bool {
	for k, v := range headers {
		if strings.EqualFold(k, "Content-Type") {
			return strings.HasPrefix(strings.ToLower(v), "application/x-www-form-urlencoded")
		}
	}
	return false
}

func (c *Client) Get(ctx context.Context, endpoint string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, RequestOptions{
		Method:  http.MethodGet,
		URL:     endpoint,
		Headers: headers,
	})
}

func (c *Client) Post(ctx context.Context, endpoint string, headers map[string]string, body interface{}) (*Response, error) {
	return c.Do(ctx, RequestOptions{
		Method:  http.MethodPost,
		URL:     endpoint,
		Headers: headers,
		Body:    body,
	})
}

// PostForm sends values as application/x-www-form-urlencoded.
func (c *Client) PostForm(ctx context.Context, endpoint string, values url.Values) (*Response, error) {
	return c.Post(ctx, endpoint, map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}, values)
}
