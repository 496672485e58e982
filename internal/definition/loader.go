// Package definition loads the published Helix definition document: network
// first, falling back to the copy cached by the last successful fetch.
package definition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultURL is where the published definition lives.
	DefaultURL = "https://raw.githubusercontent.com/deerspace/helix-manifest-generator/main/helix-manifest.json"

	// DefaultCacheKey is the cache entry the definition is stored under.
	DefaultCacheKey = "helix_manifest_cache"

	// maxDefinitionSize caps the response body read from the network.
	maxDefinitionSize = 32 << 20
)

// ErrUnavailable is returned when neither the network nor the cache can
// supply a definition.
var ErrUnavailable = errors.New("definition unavailable")

// Source says where a loaded definition came from.
type Source string

const (
	SourceNetwork Source = "network"
	SourceCache   Source = "cache"
)

// Cache persists the last fetched definition.
type Cache interface {
	PutDefinition(key string, data []byte) error
	GetDefinition(key string) ([]byte, error)
}

// Definition is a loaded definition document. Only the version is
// interpreted; the rest is kept verbatim.
type Definition struct {
	Version string
	Source  Source
	Raw     json.RawMessage
}

// Loader fetches the definition and maintains its cache.
type Loader struct {
	httpClient *http.Client
	url        string
	cacheKey   string
	cache      Cache
	logger     *log.Logger
	maxSize    int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.httpClient = c }
}

// WithCacheKey replaces DefaultCacheKey.
func WithCacheKey(key string) Option {
	return func(l *Loader) { l.cacheKey = key }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.httpClient = &http.Client{Timeout: d} }
}

// NewLoader creates a Loader for url backed by cache.
func NewLoader(url string, cache Cache, logger *log.Logger, opts ...Option) *Loader {
	if url == "" {
		url = DefaultURL
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	l := &Loader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		cacheKey:   DefaultCacheKey,
		cache:      cache,
		logger:     logger,
		maxSize:    maxDefinitionSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the definition and caches it. Any network or decoding failure
// falls back to the cached copy.
func (l *Loader) Load(ctx context.Context) (*Definition, error) {
	def, fetchErr := l.Fetch(ctx)
	if fetchErr == nil {
		if err := l.cache.PutDefinition(l.cacheKey, def.Raw); err != nil {
			l.logger.Warn("Failed to cache definition", "key", l.cacheKey, "err", err)
		}
		l.logger.Info("Loaded definition from network", "version", def.Version)
		return def, nil
	}

	l.logger.Warn("Network fetch failed. Trying cache...", "url", l.url, "err", fetchErr)
	def, err := l.Cached()
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v; cache: %v", ErrUnavailable, fetchErr, err)
	}
	l.logger.Info("Using cached definition", "version", def.Version)
	return def, nil
}

// Fetch retrieves the definition from the network without touching the cache.
func (l *Loader) Fetch(ctx context.Context) (*Definition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("network response failed: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > l.maxSize {
		return nil, fmt.Errorf("definition too large: exceeds %d bytes", l.maxSize)
	}
	return parse(data, SourceNetwork)
}

// Cached returns the cached definition.
func (l *Loader) Cached() (*Definition, error) {
	data, err := l.cache.GetDefinition(l.cacheKey)
	if err != nil {
		return nil, err
	}
	return parse(data, SourceCache)
}

func parse(data []byte, src Source) (*Definition, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("decode definition: not a JSON object")
	}
	var head struct {
		Version json.RawMessage `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	return &Definition{
		Version: versionString(head.Version),
		Source:  src,
		Raw:     json.RawMessage(data),
	}, nil
}

// versionString renders the version member whatever its JSON type.
func versionString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
