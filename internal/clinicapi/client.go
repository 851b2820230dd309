package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-portal/pkg/logging"
)

const defaultUserAgent = "clinic-portal/0.1"

// RequestObserver records backend call outcomes.
type RequestObserver interface {
	ObserveBackendRequest(op string, status int, seconds float64)
}

// Config controls how the clinic backend client behaves.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	Observer   RequestObserver
	UserAgent  string
}

// Client wraps the clinic REST backend. A Client is safe for concurrent use;
// WithToken returns a copy bound to one user's bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *logging.Logger
	observer   RequestObserver
	userAgent  string
	tracer     trace.Tracer
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("clinicapi: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("clinicapi: invalid base URL: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
		observer:   cfg.Observer,
		userAgent:  userAgent,
		tracer:     otel.Tracer("clinicportal.internal.clinicapi"),
	}, nil
}

// WithToken returns a client that authenticates as the holder of token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

// do performs the call and returns the raw 2xx body. Only GETs are retried so a
// booking or status change is never sent twice.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "clinicapi."+r.op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", r.method),
		attribute.String("clinicapi.path", r.path),
	)

	var payload []byte
	if r.body != nil {
		var err error
		payload, err = json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("clinicapi: marshal %s body: %w", r.op, err)
		}
	}

	retries := 0
	if r.method == http.MethodGet {
		retries = c.maxRetries
	}
	fullURL := c.buildURL(r.path, r.query)

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		data, status, err := c.roundTrip(ctx, r, fullURL, payload)
		if err == nil {
			span.SetAttributes(attribute.Int("http.status_code", status))
			return data, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			span.RecordError(ctx.Err())
			return nil, ctx.Err()
		}
		if attempt == retries || !shouldRetry(status, err) {
			break
		}
		c.logRetry(r.op, attempt, status, err)
		if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
			return nil, sleepErr
		}
	}
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return nil, lastErr
}

func (c *Client) roundTrip(ctx context.Context, r request, fullURL string, payload []byte) ([]byte, int, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("clinicapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(r.op, 0, start)
		return nil, 0, fmt.Errorf("clinicapi: http error: %w", err)
	}
	defer resp.Body.Close()
	c.observe(r.op, resp.StatusCode, start)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("clinicapi: read response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, resp.StatusCode, nil
	}
	return nil, resp.StatusCode, decodeRemoteError(resp.StatusCode, data)
}

func (c *Client) observe(op string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveBackendRequest(op, status, time.Since(start).Seconds())
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full = full + "?" + query.Encode()
	}
	return full
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(op string, attempt int, status int, err error) {
	c.logger.Warn("clinic backend retry",
		"op", op,
		"attempt", attempt+1,
		"status", status,
		"error", err,
	)
}

func shouldRetry(status int, err error) bool {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return !errors.Is(err, context.Canceled)
}

func pathEscape(id string) string {
	return url.PathEscape(strings.TrimSpace(id))
}
