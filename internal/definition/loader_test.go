package definition

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/javanhut/helix-manifest/internal/store"
)

func newTestLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
}

func serve(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestLoadFromNetworkCaches(t *testing.T) {
	srv := serve(http.StatusOK, `{"version":"3.2.0","components":{"button":{"key":"K1"}}}`)
	defer srv.Close()

	var logs bytes.Buffer
	cache := store.NewMemory()
	l := NewLoader(srv.URL, cache, newTestLogger(&logs))

	def, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if def.Version != "3.2.0" || def.Source != SourceNetwork {
		t.Errorf("Unexpected definition %+v", def)
	}

	cached, err := cache.GetDefinition(DefaultCacheKey)
	if err != nil {
		t.Fatalf("Expected definition to be cached: %v", err)
	}
	if !bytes.Equal(cached, def.Raw) {
		t.Errorf("Cached bytes differ from fetched bytes")
	}
	if !strings.Contains(logs.String(), "Loaded definition from network") {
		t.Errorf("Expected network log line, got %q", logs.String())
	}
}

func TestLoadFallsBackToCache(t *testing.T) {
	srv := serve(http.StatusServiceUnavailable, "down")
	defer srv.Close()

	var logs bytes.Buffer
	cache := store.NewMemory()
	if err := cache.PutDefinition("custom", []byte(`{"version":"1.0.0"}`)); err != nil {
		t.Fatalf("PutDefinition failed: %v", err)
	}
	l := NewLoader(srv.URL, cache, newTestLogger(&logs), WithCacheKey("custom"))

	def, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if def.Version != "1.0.0" || def.Source != SourceCache {
		t.Errorf("Unexpected definition %+v", def)
	}
	if !strings.Contains(logs.String(), "Trying cache") {
		t.Errorf("Expected fallback warning, got %q", logs.String())
	}
}

func TestLoadInvalidBodyFallsBack(t *testing.T) {
	srv := serve(http.StatusOK, `<html>not json</html>`)
	defer srv.Close()

	cache := store.NewMemory()
	_ = cache.PutDefinition(DefaultCacheKey, []byte(`{"version":7}`))
	l := NewLoader(srv.URL, cache, nil)

	def, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if def.Source != SourceCache || def.Version != "7" {
		t.Errorf("Expected cached definition with numeric version, got %+v", def)
	}

	// The invalid body must not replace the cache.
	cached, _ := cache.GetDefinition(DefaultCacheKey)
	if string(cached) != `{"version":7}` {
		t.Errorf("Cache overwritten with %s", cached)
	}
}

func TestLoadUnavailable(t *testing.T) {
	srv := serve(http.StatusNotFound, "")
	defer srv.Close()

	l := NewLoader(srv.URL, store.NewMemory(), nil)
	_, err := l.Load(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
}

func TestFetchHonorsContext(t *testing.T) {
	srv := serve(http.StatusOK, `{"version":"x"}`)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader(srv.URL, store.NewMemory(), nil)
	if _, err := l.Fetch(ctx); err == nil {
		t.Error("Expected canceled fetch to fail")
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	for _, body := range []string{`[]`, `null`, `"1.0"`, ``} {
		if _, err := parse([]byte(body), SourceNetwork); err == nil {
			t.Errorf("Expected %q to be rejected", body)
		}
	}
	def, err := parse([]byte(`{"name":"no version"}`), SourceCache)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if def.Version != "" {
		t.Errorf("Expected empty version, got %q", def.Version)
	}
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	body := `{"version":"1.0.0","padding":"` + strings.Repeat("x", 64) + `"}`
	srv := serve(http.StatusOK, body)
	defer srv.Close()

	l := NewLoader(srv.URL, store.NewMemory(), nil)
	l.maxSize = 32
	_, err := l.Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "definition too large") {
		t.Fatalf("Expected size error, got %v", err)
	}

	l.maxSize = int64(len(body))
	def, err := l.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Body at the limit should be accepted: %v", err)
	}
	if def.Version != "1.0.0" {
		t.Errorf("Unexpected version %q", def.Version)
	}
}
