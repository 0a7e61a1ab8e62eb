// Package api is the REST client for the marketing-ops backend. Responses go
// through internal/wire, so callers only ever see model types.
package api

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

	"mops-cli/internal/model"
	"mops-cli/internal/wire"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

type Client struct {
	BaseURL string
	OrgID   string
	Token   string
	HTTP    *http.Client
	Logger  *zap.Logger
}

type Option func(*Client)

func WithToken(token string) Option { return func(c *Client) { c.Token = token } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.HTTP = h } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.Logger = l } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTP = &http.Client{Timeout: d}
		}
	}
}

func New(baseURL, orgID string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		OrgID:   strings.TrimSpace(orgID),
		HTTP:    &http.Client{Timeout: DefaultTimeout},
		Logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Client) orgPath(parts ...string) string {
	segs := []string{"api", url.PathEscape(c.OrgID)}
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	return "/" + strings.Join(segs, "/")
}

// do sends one request and returns the unwrapped payload. A rejected request
// returns *Error and never any payload.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, *model.Pagination, error) {
	if c.OrgID == "" {
		return nil, nil, errors.New("api: organization id is required")
	}
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	log := c.logger().With(zap.String("method", method), zap.String("path", path), zap.String("request_id", reqID))
	start := time.Now()
	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	resp, err := httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			log.Debug("request abandoned", zap.Error(ctx.Err()))
		} else {
			log.Warn("request failed", zap.Error(err))
		}
		return nil, nil, &TransportError{Method: method, URL: u, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, &TransportError{Method: method, URL: u, Err: fmt.Errorf("read body: %w", err)}
	}
	log.Debug("response", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &Error{Status: resp.StatusCode, Message: wire.ErrorMessage(raw), RequestID: reqID}
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, nil
	}
	data, meta, err := wire.Unwrap(raw)
	if err != nil {
		var re *wire.RemoteError
		if errors.As(err, &re) {
			return nil, nil, &Error{Status: resp.StatusCode, Message: re.Message, RequestID: reqID}
		}
		return nil, nil, err
	}
	return data, meta, nil
}

// requireData guards endpoints that must return a body.
func requireData(data json.RawMessage) error {
	if len(bytes.TrimSpace(data)) == 0 || string(bytes.TrimSpace(data)) == "null" {
		return wire.ErrEmptyBody
	}
	return nil
}
