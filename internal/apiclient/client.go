// Package apiclient talks to the PayFisc PHP backend. Every call returns an
// Envelope: transport failures, timeouts, non-2xx answers and unreadable
// bodies are folded into it and logged, never returned as Go errors.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/payfisc/payfisc-admin/i18n"
	"github.com/payfisc/payfisc-admin/internal/logging"
	"github.com/payfisc/payfisc-admin/internal/metrics"
)

const maxBody = 8 << 20

// Config is injected once and shared by every resource client.
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	IncludeCredentials bool
	UserAgent          string
	RateLimit          float64 // requests per second, 0 disables
	RateBurst          int
}

// Client performs backend calls.
type Client struct {
	base    *url.URL
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

// WithMetrics records call counts and latencies.
func WithMetrics(m *metrics.Metrics) Option { return func(c *Client) { c.metrics = m } }

// New validates cfg and builds a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := &Client{base: base, cfg: cfg, http: &http.Client{}, logger: zap.NewNop()}
	if cfg.IncludeCredentials {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("apiclient: cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Request describes one backend call.
type Request struct {
	Resource  string // for logs and metrics
	Operation string
	Method    string
	Path      string // relative to the base URL, e.g. "plaques/get_plaques.php"
	Query     url.Values
	Body      Body
	// Fallback is shown when the backend fails without a message.
	Fallback string
}

type wire struct {
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
	Message    string          `json:"message"`
}

// Do runs req and decodes the data block into T.
func Do[T any](ctx context.Context, c *Client, req Request) (env Envelope[T]) {
	start := time.Now()
	lang := i18n.LangFrom(ctx)
	httpStatus := 0
	defer func() {
		if r := recover(); r != nil {
			env = Fail[T](KindMalformed, i18n.T(lang, "err.generic"))
			c.logFailure(ctx, req, httpStatus, env.Kind, zap.Any("panic", r))
		}
		env.HTTPStatus = httpStatus
		c.observe(req, env.Kind, time.Since(start))
	}()

	fallback := req.Fallback
	if fallback == "" {
		fallback = i18n.T(lang, "err.generic")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			kind := classify(err)
			c.logFailure(ctx, req, 0, kind, zap.Error(err))
			return Fail[T](kind, kindMessage(lang, kind))
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := c.newRequest(callCtx, req)
	if err != nil {
		c.logFailure(ctx, req, 0, KindTransport, zap.Error(err))
		return Fail[T](KindTransport, i18n.T(lang, "err.generic"))
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		kind := classify(err)
		c.logFailure(ctx, req, 0, kind, zap.Error(err))
		return Fail[T](kind, kindMessage(lang, kind))
	}
	defer resp.Body.Close()
	httpStatus = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		kind := classify(err)
		c.logFailure(ctx, req, httpStatus, kind, zap.Error(err))
		return Fail[T](kind, kindMessage(lang, kind))
	}

	var w wire
	decodeErr := json.Unmarshal(body, &w)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallback
		if decodeErr == nil && w.Message != "" {
			msg = w.Message
		}
		c.logFailure(ctx, req, httpStatus, KindBackend)
		return Fail[T](KindBackend, msg)
	}
	if decodeErr != nil {
		c.logFailure(ctx, req, httpStatus, KindMalformed, zap.Error(decodeErr))
		return Fail[T](KindMalformed, i18n.T(lang, "err.malformed"))
	}

	switch w.Status {
	case StatusSuccess:
		out := Envelope[T]{Status: StatusSuccess, Pagination: w.Pagination, Message: w.Message}
		if len(w.Data) > 0 && string(w.Data) != "null" {
			if err := json.Unmarshal(w.Data, &out.Data); err != nil {
				c.logFailure(ctx, req, httpStatus, KindMalformed, zap.Error(err))
				return Fail[T](KindMalformed, i18n.T(lang, "err.malformed"))
			}
		}
		c.log(ctx).Debug("backend call",
			zap.String("resource", req.Resource),
			zap.String("operation", req.Operation),
			zap.String("path", req.Path),
			zap.Int("http_status", httpStatus),
			zap.Duration("elapsed", time.Since(start)),
		)
		return out
	case StatusError:
		msg := w.Message
		if msg == "" {
			msg = fallback
		}
		c.logFailure(ctx, req, httpStatus, KindBackend)
		return Fail[T](KindBackend, msg)
	default:
		c.logFailure(ctx, req, httpStatus, KindMalformed, zap.String("status", w.Status))
		return Fail[T](KindMalformed, i18n.T(lang, "err.malformed"))
	}
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	if req.Body != nil {
		var err error
		body, contentType, err = req.Body.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if id := logging.RequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}
	return httpReq, nil
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindTransport
}

func kindMessage(lang string, kind ErrorKind) string {
	switch kind {
	case KindTimeout:
		return i18n.T(lang, "err.timeout")
	case KindTransport:
		return i18n.T(lang, "err.network")
	case KindMalformed:
		return i18n.T(lang, "err.malformed")
	}
	return i18n.T(lang, "err.generic")
}

func (c *Client) log(ctx context.Context) *zap.Logger {
	return logging.From(ctx, c.logger)
}

// logFailure never logs bodies, form values, cookies or headers.
func (c *Client) logFailure(ctx context.Context, req Request, status int, kind ErrorKind, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("resource", req.Resource),
		zap.String("operation", req.Operation),
		zap.String("path", req.Path),
		zap.Int("http_status", status),
		zap.String("kind", kind.String()),
		zap.String("request_id", logging.RequestID(ctx)),
	}, extra...)
	c.log(ctx).Warn("backend call failed", fields...)
}

func (c *Client) observe(req Request, kind ErrorKind, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	if kind != KindNone {
		outcome = kind.String()
	}
	c.metrics.BackendCalls.WithLabelValues(req.Resource, req.Operation, outcome).Inc()
	c.metrics.BackendDuration.WithLabelValues(req.Resource, req.Operation).Observe(elapsed.Seconds())
}
