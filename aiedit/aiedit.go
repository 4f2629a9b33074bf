// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package aiedit is a client for an AI pixel-editing service. The service
// receives an image as a data URL with a plain-language instruction and
// answers with the URL of the edited image.
package aiedit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gogpu/ggedit/internal/logx"
	"golang.org/x/time/rate"
)

var (
	// ErrRejected is returned when the service answers success=false.
	ErrRejected = errors.New("aiedit: edit rejected")
	// ErrEmptyInstruction is returned for a blank instruction.
	ErrEmptyInstruction = errors.New("aiedit: empty instruction")
)

// DefaultTimeout bounds one edit request.
const DefaultTimeout = 2 * time.Minute

// Request is the JSON body sent to the service.
type Request struct {
	Image       string `json:"image"`
	Instruction string `json:"instruction"`
}

// Response is the JSON body returned by the service.
type Response struct {
	Success        bool   `json:"success"`
	ResultImageURL string `json:"resultImageUrl,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Client calls the editing service. It is safe for concurrent use.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	limiter  *rate.Limiter
	log      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client, for example one that injects
// session credentials.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

// WithRateLimit allows r requests per second with the given burst.
// A zero r removes the limit.
func WithRateLimit(r float64, burst int) Option {
	return func(cl *Client) {
		if r <= 0 {
			cl.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		cl.limiter = rate.NewLimiter(rate.Limit(r), max(burst, 1))
	}
}

// New returns a client for the service at endpoint. By default it allows
// one request per second with a burst of three.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
		limiter:  rate.NewLimiter(1, 3),
		log:      logx.With("aiedit"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Edit sends image with instruction and returns the URL of the result.
// It waits for the rate limiter, honoring ctx.
func (c *Client) Edit(ctx context.Context, image, instruction string) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", ErrEmptyInstruction
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("aiedit: rate limit: %w", err)
	}

	body, err := json.Marshal(Request{Image: image, Instruction: instruction})
	if err != nil {
		return "", fmt.Errorf("aiedit: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("aiedit: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("aiedit: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("aiedit: read response: %w", err)
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode/100 != 2 {
			return "", fmt.Errorf("aiedit: %s", resp.Status)
		}
		return "", fmt.Errorf("aiedit: decode response: %w", err)
	}
	c.log.Debug("edit finished", "status", resp.StatusCode, "success", out.Success, "elapsed", time.Since(start))

	if !out.Success || resp.StatusCode/100 != 2 {
		msg := out.Error
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if out.ResultImageURL == "" {
		return "", fmt.Errorf("%w: no result image", ErrRejected)
	}
	return out.ResultImageURL, nil
}
