// Package client issues chat turns to the remote completion endpoint and
// hands back the streamed response body.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tailored-agentic-units/chat/core/protocol"
)

const maxErrorBody = 400

// Sender opens a streamed reply for a chat request. The caller must close
// the returned body.
type Sender interface {
	Send(ctx context.Context, req protocol.ChatRequest) (io.ReadCloser, error)
}

// Client is an HTTP Sender.
type Client struct {
	url        string
	headers    map[string]string
	httpClient *http.Client
}

// New creates a Client from configuration.
func New(cfg *Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrNoEndpoint
	}
	return &Client{
		url:     cfg.URL,
		headers: cfg.Headers,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Send POSTs req as JSON and returns the response body on a 2xx status.
// Transport failures return a KindNetwork RequestError; any other status
// returns a KindService RequestError.
func (c *Client) Send(ctx context.Context, req protocol.ChatRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RequestError{Kind: KindNetwork, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &RequestError{
			Kind:       KindService,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	return resp.Body, nil
}
