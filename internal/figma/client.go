// Package figma fetches design documents from the Figma REST API.
package figma

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	APIURL      = "https://api.figma.com"
	TokenHeader = "X-Figma-Token"

	// maxFileSize caps the file response read into memory.
	maxFileSize = 512 << 20
)

// Client represents a Figma API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a client authenticated with token. An empty token falls
// back to the FIGMA_TOKEN environment variable; an empty baseURL to APIURL.
func NewClient(token, baseURL string) (*Client, error) {
	if token == "" {
		token = os.Getenv("FIGMA_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("no Figma token found. Set FIGMA_TOKEN or run: helix config figma.token <token>")
	}
	if baseURL == "" {
		baseURL = APIURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}, nil
}

// File returns the raw JSON of the file identified by fileKey, in the shape
// document.Decode accepts.
func (c *Client) File(ctx context.Context, fileKey string) ([]byte, error) {
	if fileKey == "" {
		return nil, fmt.Errorf("empty file key")
	}

	resp, err := c.doRequest(ctx, "/v1/files/"+url.PathEscape(fileKey))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileKey, err)
	}
	return data, nil
}

// doRequest performs an authenticated GET and turns error statuses into errors.
func (c *Client) doRequest(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(TokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}
