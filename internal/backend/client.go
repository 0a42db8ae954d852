package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lernix/lernix-web/internal/observability"
)

const maxErrorBody = 64 * 1024

// Session supplies the bearer token and is torn down when the backend rejects it.
type Session interface {
	Token() string
	Invalidate(ctx context.Context) error
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
	// OnUnauthorized runs after the session has been invalidated following a 401.
	OnUnauthorized func(ctx context.Context)
}

// Client issues authenticated requests to the Lernix backend.
type Client struct {
	baseURL        string
	http           *http.Client
	session        Session
	onUnauthorized func(ctx context.Context)
	logger         zerolog.Logger
	tracer         trace.Tracer
}

// New constructs a backend client bound to session. session may be nil for
// clients that only call public endpoints.
func New(opts Options, session Session) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		http:           httpClient,
		session:        session,
		onUnauthorized: opts.OnUnauthorized,
		logger:         opts.Logger.With().Str("component", "backend_client").Logger(),
		tracer:         otel.Tracer("github.com/lernix/lernix-web/internal/backend"),
	}
}

// WithSession returns a copy of the client bound to another session. The
// underlying HTTP client is shared.
func (c *Client) WithSession(session Session) *Client {
	clone := *c
	clone.session = session
	return &clone
}

type call struct {
	operation   string
	method      string
	path        string
	params      url.Values
	body        any
	raw         io.Reader
	contentType string
	public      bool
}

// Request issues an arbitrary call and decodes the JSON response into out.
// body is JSON encoded when non-nil; out may be nil.
func (c *Client) Request(ctx context.Context, method, path string, body any, params url.Values, out any) error {
	return c.do(ctx, call{
		operation: "raw",
		method:    method,
		path:      path,
		params:    params,
		body:      body,
	}, out)
}

func (c *Client) do(ctx context.Context, req call, out any) error {
	ctx, span := c.tracer.Start(ctx, "backend."+req.operation, trace.WithAttributes(
		attribute.String("http.method", req.method),
		attribute.String("backend.operation", req.operation),
	))
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		observability.BackendRequests().WithLabelValues(req.operation, status).Inc()
		observability.BackendLatency().WithLabelValues(req.operation).Observe(time.Since(start).Seconds())
	}()

	token := ""
	if c.session != nil {
		token = c.session.Token()
	}
	if !req.public && token == "" {
		status = strconv.Itoa(http.StatusUnauthorized)
		c.teardown(ctx)
		span.SetStatus(codes.Error, "missing session token")
		return &APIError{Operation: req.operation, Status: http.StatusUnauthorized, kind: ErrUnauthorized}
	}

	httpReq, err := c.newRequest(ctx, req, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.logger.Error().Err(err).Str("operation", req.operation).Msg("backend request failed")
		return fmt.Errorf("backend %s: %w", req.operation, err)
	}
	defer resp.Body.Close()

	status = strconv.Itoa(resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := newAPIError(req.operation, resp.StatusCode, payload, req.public)
		span.SetStatus(codes.Error, apiErr.Error())

		c.logger.Warn().
			Str("operation", req.operation).
			Int("status", resp.StatusCode).
			Str("detail", apiErr.Message).
			Msg("backend returned error")

		if resp.StatusCode == http.StatusUnauthorized && !req.public {
			c.teardown(ctx)
		}
		return apiErr
	}

	c.logger.Debug().
		Str("operation", req.operation).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("backend request completed")

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode")
		return fmt.Errorf("decode backend %s response: %w", req.operation, err)
	}

	span.SetStatus(codes.Ok, "ok")
	return nil
}

func (c *Client) newRequest(ctx context.Context, req call, token string) (*http.Request, error) {
	endpoint := c.baseURL + req.path
	if len(req.params) > 0 {
		endpoint += "?" + req.params.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.raw != nil:
		body = req.raw
		contentType = req.contentType
	case req.body != nil:
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode backend %s request: %w", req.operation, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build backend %s request: %w", req.operation, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if id := observability.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set(observability.CorrelationHeader, id)
	}

	return httpReq, nil
}

func (c *Client) teardown(ctx context.Context) {
	observability.UnauthorizedTeardowns().Inc()
	if c.session != nil {
		if err := c.session.Invalidate(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn().Err(err).Msg("failed to invalidate session after 401")
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}
