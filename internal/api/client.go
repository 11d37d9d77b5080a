// Package api is the typed transport to the booking backend.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const headerRequestID = "X-Request-ID"

// Authorizer attaches credentials to outbound requests and reacts to their
// rejection.
type Authorizer interface {
	Authorize(req *http.Request)
	Teardown(ctx context.Context)
}

type noAuth struct{}

func (noAuth) Authorize(*http.Request)  {}
func (noAuth) Teardown(context.Context) {}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  rate.Limit
	Burst      int
	HTTPClient *http.Client
	Log        *zap.Logger
}

// Client calls the backend endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	auth    Authorizer
	log     *zap.Logger
}

// New builds a Client. Until UseAuthorizer is called requests go out
// unauthenticated.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.RateLimit, burst)
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		limiter: limiter,
		auth:    noAuth{},
		log:     log,
	}
}

// UseAuthorizer installs the session gate.
func (c *Client) UseAuthorizer(a Authorizer) {
	if a == nil {
		a = noAuth{}
	}
	c.auth = a
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends one request. A 401 from any endpoint tears the session down before
// the error is returned to the caller.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: KindNetwork, Err: err}
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(headerRequestID, reqID)
	c.auth.Authorize(req)

	log := c.log.With(zap.String("method", method), zap.String("path", path), zap.String("request_id", reqID))

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Message = eb.Error
			if apiErr.Message == "" {
				apiErr.Message = eb.Message
			}
		}
		log.Debug("request rejected", zap.Int("status", resp.StatusCode), zap.String("error", apiErr.Message))
		if apiErr.Kind == KindAuthentication {
			c.auth.Teardown(ctx)
		}
		return apiErr
	}

	log.Debug("request ok", zap.Int("status", resp.StatusCode))
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return nil
}
