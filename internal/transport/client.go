// Package transport wraps outbound HTTP calls to the BOQ backend. It attaches
// bearer authorization when a session token is present, serializes JSON
// bodies, passes multipart bodies through unmodified, and converts every
// failure into a typed *Error.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// TokenSource supplies the current bearer token. An empty token means an
// anonymous request.
type TokenSource interface {
	Token() string
}

// Config carries transport settings.
type Config struct {
	BaseURL      string
	Timeout      time.Duration // per-attempt timeout
	RetryElapsed time.Duration // total time allowed for GET retries; 0 disables retry
}

// Client is the HTTP transport client.
type Client struct {
	http   *http.Client
	cfg    Config
	tokens TokenSource
}

func NewClient(cfg Config, tokens TokenSource) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		http:   &http.Client{},
		cfg:    cfg,
		tokens: tokens,
	}
}

// GetJSON performs a GET and decodes the JSON response into out. Idempotent,
// so network errors and 5xx responses are retried with exponential backoff
// inside the configured elapsed window. 4xx responses and cancellations never
// retry.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	op := func() error {
		err := c.do(ctx, http.MethodGet, path, query, nil, "", out)
		if err == nil {
			return nil
		}
		var te *Error
		if errors.As(err, &te) {
			if te.Kind == KindCancelled {
				return backoff.Permanent(err)
			}
			if te.Status >= 400 && te.Status < 500 {
				return backoff.Permanent(err)
			}
		}
		return err
	}
	if c.cfg.RetryElapsed <= 0 {
		return c.do(ctx, http.MethodGet, path, query, nil, "", out)
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.cfg.RetryElapsed
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}

// PostJSON performs a POST with a JSON body. Never retried.
func (c *Client) PostJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Kind: KindTransport, Detail: "encode request body: " + err.Error(), cause: err}
	}
	return c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(body), "application/json", out)
}

// PutJSON performs a PUT with a JSON body. Never retried.
func (c *Client) PutJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Kind: KindTransport, Detail: "encode request body: " + err.Error(), cause: err}
	}
	return c.do(ctx, http.MethodPut, path, nil, bytes.NewReader(body), "application/json", out)
}

// Delete performs a DELETE. A success response needs no body.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", nil)
}

// PostFile performs a multipart POST carrying r as the "file" form field.
func (c *Client) PostFile(ctx context.Context, path, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return &Error{Kind: KindTransport, Detail: "build multipart body: " + err.Error(), cause: err}
	}
	if _, err := io.Copy(fw, r); err != nil {
		return &Error{Kind: KindTransport, Detail: "read upload file: " + err.Error(), cause: err}
	}
	if err := mw.Close(); err != nil {
		return &Error{Kind: KindTransport, Detail: "finish multipart body: " + err.Error(), cause: err}
	}
	return c.do(ctx, http.MethodPost, path, nil, &buf, mw.FormDataContentType(), out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	tctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(tctx, method, u, body)
	if err != nil {
		return &Error{Kind: KindTransport, Detail: "build request: " + err.Error(), cause: err}
	}
	req.Header.Set("User-Agent", "boqtrack")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	log.Debug().Str("method", method).Str("url", u).Msg("making HTTP request")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return &Error{Kind: KindCancelled, Detail: "superseded", cause: context.Canceled}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return &Error{Kind: KindTransport, Detail: "request timed out", cause: err}
		}
		log.Error().Str("url", u).Err(err).Msg("HTTP request failed")
		return &Error{Kind: KindTransport, Detail: "network error: " + err.Error(), cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return &Error{Kind: KindCancelled, Detail: "superseded", cause: context.Canceled}
		}
		return &Error{Kind: KindTransport, Detail: "read response body: " + err.Error(), cause: err}
	}

	log.Debug().Int("status_code", resp.StatusCode).Int("body_length", len(raw)).Msg("received HTTP response")

	if resp.StatusCode >= 400 {
		return errorFromResponse(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Detail: "decode response body: " + err.Error(), cause: err}
	}
	return nil
}

// errorFromResponse maps a non-success response to a typed error, preferring
// the server-supplied {"detail": ...} message when present.
func errorFromResponse(status int, raw []byte) *Error {
	detail := fmt.Sprintf("request failed with status %d", status)
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	}
	kind := KindTransport
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindUnauthorized
	}
	return &Error{Kind: kind, Status: status, Detail: detail}
}
