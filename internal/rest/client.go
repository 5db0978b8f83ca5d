package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/config"
	"github.com/worldads/adwatch/pkg/logger"
)

// Client is the typed wrapper around the remote REST backend. It holds
// no business logic: every method maps one endpoint.
type Client struct {
	baseURL   string
	http      *http.Client
	pageLimit int

	tokenMu sync.RWMutex
	token   string

	log zerolog.Logger
}

// New creates a REST client with the configured base URL and the fixed
// per-request timeout. There is no automatic retry: failures propagate
// to the caller, which decides whether to degrade or surface them.
func New(cfg config.APIConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		pageLimit: cfg.PageLimit,
		http:      &http.Client{Timeout: cfg.Timeout},
		log:       logger.WithComponent("rest"),
	}
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

// PageLimit returns the configured default page size.
func (c *Client) PageLimit() int {
	return c.pageLimit
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	c.tokenMu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.tokenMu.RUnlock()
	return req, nil
}

// do executes a request and decodes the JSON response into out (out
// may be nil). Non-2xx statuses map onto the shared sentinel errors.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", req.Method).Str("url", req.URL.Path).Msg("request failed")
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(resp.StatusCode)
		c.log.Warn().Int("status", resp.StatusCode).Str("method", req.Method).
			Str("url", req.URL.Path).Msg("request rejected")
		return fmt.Errorf("%s %s: status %d: %w", req.Method, req.URL.Path, resp.StatusCode, err)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func statusError(status int) error {
	switch status {
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return common.ErrNotAuthenticated
	case http.StatusBadRequest:
		return common.ErrInvalidInput
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) deleteJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// postMultipart uploads fields plus a single file part. The media
// reader may be nil, in which case only the fields are sent.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, media io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	if media != nil {
		part, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, media); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, out)
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}
