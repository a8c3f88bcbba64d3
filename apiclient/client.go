package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-car-rental/credentials"
	"github.com/jrsteele09/go-car-rental/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTimeout     = 15 * time.Second
	DefaultRefreshPath = "/token/refresh/"
	DefaultUserAgent   = "carrental-go"

	RequestIDHeader = "X-Request-ID"

	tracerName = "github.com/jrsteele09/go-car-rental/apiclient"
)

// Client sends requests to the rental API on behalf of a Session. It attaches
// the bearer token, and on a 401 refreshes the access token once and retries.
// When the session cannot be recovered it is cleared and the Navigator is told.
type Client struct {
	baseURL string
	origin  string
	session *credentials.Session

	httpClient  *http.Client
	timeout     time.Duration
	logger      zerolog.Logger
	navigator   Navigator
	publicViews map[string]struct{}
	metrics     *Metrics
	refreshPath string
	userAgent   string
	tracer      trace.Tracer
}

// New creates a client for the API rooted at baseURL, e.g.
// http://localhost:8000/api/v1. session may be nil for anonymous use.
func New(baseURL string, session *credentials.Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		origin:      u.Scheme + "://" + u.Host,
		session:     session,
		timeout:     DefaultTimeout,
		logger:      log.Logger,
		refreshPath: DefaultRefreshPath,
		userAgent:   DefaultUserAgent,
	}
	WithPublicViews(DefaultPublicViews...)(c)

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	c.tracer = otel.Tracer(tracerName)

	return c, nil
}

// Session returns the session the client authenticates with
func (c *Client) Session() *credentials.Session {
	return c.session
}

// Metrics returns the client's collectors
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// BaseURL returns the API root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req and decodes the JSON response into out
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Send issues req. Responses with status >= 400 are returned as *APIError.
// A 401 is answered by at most one token refresh and one retry; the result
// of the retry is returned as is. If the session cannot be refreshed it is
// cleared and the caller still receives the original 401.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	a := &attempt{
		req:       req,
		url:       c.endpoint(req.Path, req.Query),
		requestID: uuid.NewString(),
	}

	resp, err := c.execute(ctx, a)
	if err == nil || !c.shouldIntercept(a, err) {
		return resp, err
	}

	a.retried = true
	if refreshErr := c.refresh(ctx, a.requestID); refreshErr != nil {
		c.logger.Warn().
			Err(refreshErr).
			Str("request_id", a.requestID).
			Msg("token refresh failed")
		c.signOut(ctx)
		return nil, err
	}

	c.logger.Debug().
		Str("request_id", a.requestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Msg("retrying request with refreshed token")
	return c.execute(ctx, a)
}

func (c *Client) shouldIntercept(a *attempt, err error) bool {
	if a.retried || a.unauthenticated {
		return false
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refresh exchanges the refresh token for a new access token. It bypasses
// interception, so a 401 here never recurses.
func (c *Client) refresh(ctx context.Context, requestID string) error {
	if c.session == nil || c.session.RefreshToken() == "" {
		c.metrics.TokenRefreshes.WithLabelValues(refreshMissing).Inc()
		return errors.ErrNoRefreshToken
	}

	a := &attempt{
		req:             Post(c.refreshPath, refreshRequest{Refresh: c.session.RefreshToken()}),
		url:             c.endpoint(c.refreshPath, nil),
		requestID:       requestID,
		unauthenticated: true,
	}

	var out refreshResponse
	resp, err := c.execute(ctx, a)
	if err == nil {
		err = resp.Decode(&out)
	}
	if err == nil && out.Access == "" {
		err = errors.ErrEmptyAccessToken
	}
	if err != nil {
		c.metrics.TokenRefreshes.WithLabelValues(refreshFailure).Inc()
		return fmt.Errorf("%w: %w", errors.ErrRefreshFailed, err)
	}

	if err := c.session.UpdateAccessToken(ctx, out.Access); err != nil {
		// the new token is already live in memory
		c.logger.Error().Err(err).Msg("failed to persist refreshed access token")
	}
	c.metrics.TokenRefreshes.WithLabelValues(refreshSuccess).Inc()
	return nil
}

// signOut clears the session and reports it, unless the user is on a public view
func (c *Client) signOut(ctx context.Context) {
	if c.session != nil {
		if err := c.session.Clear(ctx); err != nil {
			c.logger.Error().Err(err).Msg("failed to clear session")
		}
	}
	c.metrics.SignOuts.Inc()

	if c.navigator == nil {
		return
	}
	view := c.navigator.CurrentView()
	if _, public := c.publicViews[view]; public {
		return
	}
	c.logger.Info().Str("view", view).Msg("session expired, signing out")
	c.navigator.SignedOut(ctx)
}

// execute performs a single HTTP exchange for a
func (c *Client) execute(ctx context.Context, a *attempt) (*Response, error) {
	body, err := a.req.encodeBody()
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "carrental "+a.req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", a.req.Method),
			attribute.String("url.path", a.req.Path),
			attribute.String("carrental.request_id", a.requestID),
			attribute.Bool("carrental.retry", a.retried),
		),
	)
	defer span.End()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, a.req.Method, a.url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(RequestIDHeader, a.requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	if !a.unauthenticated && c.session != nil {
		if tok, err := c.session.Token(); err == nil {
			tok.SetAuthHeader(httpReq)
		}
	}

	c.logger.Debug().
		Str("request_id", a.requestID).
		Str("method", a.req.Method).
		Str("url", a.url).
		Bool("retry", a.retried).
		Msg("sending request")

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	c.metrics.RequestDuration.WithLabelValues(a.req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.RequestsTotal.WithLabelValues(a.req.Method, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s %s: %w", a.req.Method, a.req.Path, err)
	}
	defer httpResp.Body.Close()

	c.metrics.RequestsTotal.WithLabelValues(a.req.Method, strconv.Itoa(httpResp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(httpResp.StatusCode))
		return nil, &APIError{
			Method:     a.req.Method,
			Path:       a.req.Path,
			StatusCode: httpResp.StatusCode,
			Header:     httpResp.Header,
			Body:       respBody,
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
		RequestID:  a.requestID,
	}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// HealthStatus is the API's /health/ report
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Debug    bool   `json:"debug"`
}

// Health queries GET /health/ at the API origin. It is unauthenticated.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	a := &attempt{
		req:             Get("/health/", nil),
		url:             c.origin + "/health/",
		requestID:       uuid.NewString(),
		unauthenticated: true,
	}
	resp, err := c.execute(ctx, a)
	if err != nil {
		return nil, err
	}
	var hs HealthStatus
	if err := resp.Decode(&hs); err != nil {
		return nil, err
	}
	return &hs, nil
}
