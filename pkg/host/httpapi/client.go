// Package httpapi implements host.Registry over the v1alpha1 HTTP API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
	"github.com/helmwire/helmwire/pkg/host"
)

const (
	defaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 1 << 20
)

// Client registers resources against a helmwire host server.
type Client struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient returns a Client for the host at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, hwerrors.Wrap(hwerrors.ErrCodeInvalidRequest, "invalid host URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, hwerrors.Newf(hwerrors.ErrCodeInvalidRequest,
			"invalid host URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ host.Registry = (*Client)(nil)

// RegisterDeployable implements host.Registry.
func (c *Client) RegisterDeployable(ctx context.Context, spec host.DeployableSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	return c.post(ctx, "/v1alpha1/deployables", spec)
}

// AttachDependencies implements host.Registry.
func (c *Client) AttachDependencies(ctx context.Context, resourceName string, deps []string) error {
	path := fmt.Sprintf("/v1alpha1/deployables/%s/dependencies", url.PathEscape(resourceName))
	return c.post(ctx, path, host.DependencyAttachment{Deps: deps})
}

// AttachLabels implements host.Registry.
func (c *Client) AttachLabels(ctx context.Context, resourceName string, labels []string) error {
	path := fmt.Sprintf("/v1alpha1/deployables/%s/labels", url.PathEscape(resourceName))
	return c.post(ctx, path, host.LabelAttachment{Labels: labels})
}

// RegisterTask implements host.Registry.
func (c *Client) RegisterTask(ctx context.Context, spec host.TaskSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	return c.post(ctx, "/v1alpha1/tasks", spec)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return hwerrors.Wrap(hwerrors.ErrCodeInternal, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return hwerrors.Wrap(hwerrors.ErrCodeInternal, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return hwerrors.Wrap(hwerrors.ErrCodeTimeout, "host request canceled", err)
		}
		return hwerrors.Wrap(hwerrors.ErrCodeUnavailable, "host unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeError(resp)
}

// errorEnvelope mirrors the server's error response body.
type errorEnvelope struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId"`
	Retryable bool           `json:"retryable"`
}

// decodeError turns a non-2xx response into a coded error, preferring
// the server's own code over the HTTP status mapping.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Code != "" {
		ctx := map[string]any{"status": resp.StatusCode}
		if env.RequestID != "" {
			ctx["requestId"] = env.RequestID
		}
		for k, v := range env.Details {
			ctx[k] = v
		}
		return hwerrors.WrapWithContext(hwerrors.ErrorCode(env.Code), env.Message, nil, ctx)
	}

	return hwerrors.Newf(codeForStatus(resp.StatusCode),
		"host returned status %d", resp.StatusCode)
}

func codeForStatus(status int) hwerrors.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return hwerrors.ErrCodeInvalidRequest
	case http.StatusNotFound:
		return hwerrors.ErrCodeNotFound
	case http.StatusMethodNotAllowed:
		return hwerrors.ErrCodeMethodNotAllowed
	case http.StatusConflict:
		return hwerrors.ErrCodeAlreadyExists
	case http.StatusTooManyRequests:
		return hwerrors.ErrCodeRateLimitExceeded
	case http.StatusServiceUnavailable:
		return hwerrors.ErrCodeUnavailable
	case http.StatusGatewayTimeout:
		return hwerrors.ErrCodeTimeout
	default:
		return hwerrors.ErrCodeInternal
	}
}
