// Package backend is the HTTP client for the GalaCash REST API. One Client is
// bound to one signed-in user: it owns that user's cookie jar and token
// refresh state.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/core/service"
	"github.com/galacash/gateway/internal/pkg/metrics"
)

const defaultTimeout = 30 * time.Second

// Config holds the backend connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport overrides http.DefaultTransport.
	Transport http.RoundTripper
}

// Client implements ports.APIClient.
type Client struct {
	base          *url.URL
	http          *http.Client
	log           zerolog.Logger
	refresh       *refresher
	onAuthFailure func()
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithAuthFailureHook registers the sign-in redirect: it runs when the
// session can no longer be authenticated.
func WithAuthFailureHook(fn func()) Option {
	return func(c *Client) { c.onAuthFailure = fn }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: cfg.Transport,
		},
		log:     zerolog.Nop(),
		refresh: newRefresher(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// ports.APIClient
// ---------------------------------------------------------------------------

// Do sends req and decodes the envelope's data member into out (nil
// discards it).
func (c *Client) Do(ctx context.Context, req ports.Request, out any) error {
	res, err := c.call(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	data := payload(res.body)
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

// Download sends req and returns the raw body.
func (c *Client) Download(ctx context.Context, req ports.Request) (*ports.Blob, error) {
	res, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}
	blob := &ports.Blob{
		ContentType: res.header.Get("Content-Type"),
		Data:        res.body,
	}
	if _, params, err := mime.ParseMediaType(res.header.Get("Content-Disposition")); err == nil {
		blob.Filename = params["filename"]
	}
	return blob, nil
}

// ---------------------------------------------------------------------------
// request flow
// ---------------------------------------------------------------------------

type result struct {
	status int
	header http.Header
	body   []byte
}

// call runs the refresh protocol around one request: a TOKEN_EXPIRED
// response waits on (or starts) the single refresh and is retried exactly
// once.
func (c *Client) call(ctx context.Context, req ports.Request) (*result, error) {
	out, err := prepare(req)
	if err != nil {
		return nil, err
	}

	gen := c.refresh.generation()
	res, err := c.send(ctx, out)
	if err == nil {
		return res, nil
	}
	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		return nil, err
	}

	if apiErr.Code == domain.CodeTokenExpired && req.Path != service.PathRefresh {
		if rerr := c.refresh.await(ctx, gen, c.refreshToken); rerr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, c.authFailed(rerr)
		}
		res, err = c.send(ctx, out)
		if err == nil {
			return res, nil
		}
		if apiErr, ok = domain.AsAPIError(err); !ok {
			return nil, err
		}
	}

	if apiErr.IsAuth() && !exempt(req) {
		return nil, c.authFailed(err)
	}
	return nil, err
}

// exempt requests report auth errors to the caller instead of redirecting:
// the current-user probe and the sign-in flow itself.
func exempt(req ports.Request) bool {
	return req.FromSignIn || req.Path == service.PathCurrentUser
}

func (c *Client) authFailed(cause error) error {
	c.log.Warn().Err(cause).Msg("backend session lost, redirecting to sign-in")
	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
	return errors.Join(domain.ErrSessionExpired, cause)
}

func (c *Client) refreshToken(ctx context.Context) error {
	_, err := c.send(ctx, outgoing{method: http.MethodPost, path: service.PathRefresh})
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		c.log.Warn().Err(err).Msg("token refresh failed")
		return err
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	c.log.Debug().Msg("token refreshed")
	return nil
}

// outgoing is a fully encoded request that can be sent more than once.
type outgoing struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func prepare(req ports.Request) (outgoing, error) {
	out := outgoing{method: req.Method, path: req.Path, query: req.Query}
	if out.method == "" {
		out.method = http.MethodGet
	}
	switch {
	case req.File != nil || req.Form != nil:
		body, ct, err := encodeMultipart(req.Form, req.File)
		if err != nil {
			return out, fmt.Errorf("encode multipart: %w", err)
		}
		out.body, out.contentType = body, ct
	case req.JSON != nil:
		body, err := json.Marshal(req.JSON)
		if err != nil {
			return out, fmt.Errorf("encode body: %w", err)
		}
		out.body, out.contentType = body, "application/json"
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, o outgoing) (*result, error) {
	u := *c.base
	u.Path = c.base.Path + o.path
	u.RawQuery = o.query.Encode()

	var body io.Reader
	if o.body != nil {
		body = bytes.NewReader(o.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, o.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if o.contentType != "" {
		httpReq.Header.Set("Content-Type", o.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	metrics.BackendRequestDuration.WithLabelValues(o.method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(o.method, "network_error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &domain.APIError{Code: domain.CodeNetworkError, Message: err.Error()}
	}
	defer resp.Body.Close()
	metrics.BackendRequestsTotal.WithLabelValues(o.method, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.APIError{Code: domain.CodeNetworkError, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp.StatusCode, data)
		c.log.Debug().
			Str("method", o.method).
			Str("path", o.path).
			Int("status", resp.StatusCode).
			Str("code", apiErr.Code).
			Msg("backend request failed")
		return nil, apiErr
	}
	if env, ok := parseEnvelope(data); ok && env.Success != nil && !*env.Success {
		return nil, envelopeError(resp.StatusCode, env)
	}
	return &result{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// ---------------------------------------------------------------------------
// envelope
// ---------------------------------------------------------------------------

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

func parseEnvelope(body []byte) (envelope, bool) {
	var env envelope
	if len(body) == 0 || body[0] != '{' {
		return env, false
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env, false
	}
	return env, true
}

// payload is the envelope's data member, or the whole body when the
// response is not enveloped.
func payload(body []byte) []byte {
	body = bytes.TrimSpace(body)
	env, ok := parseEnvelope(body)
	if ok && env.Success != nil {
		return env.Data
	}
	return body
}

func decodeError(status int, body []byte) *domain.APIError {
	env, ok := parseEnvelope(bytes.TrimSpace(body))
	if !ok {
		env = envelope{}
	}
	return envelopeError(status, env)
}

func envelopeError(status int, env envelope) *domain.APIError {
	e := &domain.APIError{StatusCode: status}
	if env.Error != nil {
		e.Code = env.Error.Code
		e.Message = env.Error.Message
		e.Details = env.Error.Details
	}
	if e.Message == "" {
		e.Message = env.Message
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Code == "" {
		if status == http.StatusUnauthorized {
			e.Code = domain.CodeUnauthorized
		} else {
			e.Code = domain.CodeAPIError
		}
	}
	return e
}
