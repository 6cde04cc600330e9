package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Config bounds every outbound call: one attempt never exceeds Timeout and
// at most MaxRetries extra attempts are made for 5xx and network failures.
type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	BaseBackoff time.Duration
	UserAgent   string
}

// Request is a single outbound HTTP call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response holds a copy of the status and body.
type Response struct {
	Status int
	Body   []byte
}

// StatusError is returned for non-2xx answers.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, truncate(e.Body, 256))
}

// Retryable reports whether the status class is eligible for another attempt.
func (e *StatusError) Retryable() bool {
	return e.Status >= 500
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, status int) bool {
	var sErr *StatusError
	return errors.As(err, &sErr) && sErr.Status == status
}

// Option customizes the underlying fasthttp client.
type Option func(*fasthttp.Client)

// WithDial overrides connection dialing.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *fasthttp.Client) {
		c.Dial = dial
	}
}

// Client is a retrying fasthttp client shared by the board and notifier adapters.
type Client struct {
	http   *fasthttp.Client
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &fasthttp.Client{
		Name:                          cfg.UserAgent,
		ReadTimeout:                   cfg.Timeout,
		WriteTimeout:                  cfg.Timeout,
		MaxIdleConnDuration:           time.Minute,
		NoDefaultUserAgentHeader:      cfg.UserAgent == "",
		DisableHeaderNamesNormalizing: false,
	}
	for _, opt := range opts {
		opt(httpClient)
	}

	return &Client{
		http:   httpClient,
		cfg:    cfg,
		logger: logger,
	}
}

// Do executes req, retrying with exponential backoff on network errors and 5xx responses only.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	backoff := retry.WithMaxRetries(uint64(c.cfg.MaxRetries), retry.NewExponential(c.cfg.BaseBackoff))

	var (
		out      *Response
		attempt  int
		endpoint = redactURL(req.URL)
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		resp, err := c.once(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			c.logger.Debug("http attempt failed",
				zap.String("method", req.Method),
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return retry.RetryableError(err)
		}
		if resp.Status >= 200 && resp.Status < 300 {
			out = resp
			return nil
		}
		statusErr := &StatusError{Status: resp.Status, Body: resp.Body}
		if statusErr.Retryable() {
			c.logger.Debug("http attempt returned server error",
				zap.String("method", req.Method),
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Int("status", resp.Status))
			return retry.RetryableError(statusErr)
		}
		return statusErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) once(ctx context.Context, in Request) (*Response, error) {
	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, context.DeadlineExceeded
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(in.Method)
	req.SetRequestURI(in.URL)
	for key, value := range in.Headers {
		req.Header.Set(key, value)
	}
	if len(in.Body) > 0 {
		req.Header.SetContentType("application/json")
		req.SetBody(in.Body)
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, err
	}

	return &Response{
		Status: resp.StatusCode(),
		Body:   append([]byte(nil), resp.Body()...),
	}, nil
}

// redactURL keeps scheme and host only. Paths and queries may carry credentials.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unparseable url"
	}
	return u.Scheme + "://" + u.Host
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
