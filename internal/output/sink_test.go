package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javanhut/helix-manifest/internal/document"
	"github.com/javanhut/helix-manifest/internal/manifest"
	"github.com/javanhut/helix-manifest/internal/store"
)

func testManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	opts := manifest.Options{Now: func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	}}
	m, err := manifest.Generate([]*document.Node{
		document.NewVariantFamily("Button", "K1", document.VariantAxis{Name: "Size"}),
	}, opts)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return m
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	if err := (Console{W: &buf}).Emit(testManifest(t)); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != BannerStart || lines[len(lines)-1] != BannerEnd {
		t.Errorf("Expected banner lines, got %q", buf.String())
	}
	body := strings.Join(lines[1:len(lines)-1], "\n")
	if !json.Valid([]byte(body)) {
		t.Errorf("Expected valid JSON between banners, got %s", body)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "helix-manifest.json")
	if err := (File{Path: path}).Emit(testManifest(t)); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), `"generatedAt": "2026-01-02T03:04:05.006Z"`) {
		t.Errorf("Unexpected file contents %s", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file left behind")
	}
}

func TestHistory(t *testing.T) {
	mem := store.NewMemory()
	if err := (History{Store: mem}).Emit(testManifest(t)); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	ids := mem.ManifestIDs()
	if len(ids) != 1 || ids[0] != "2026-01-02T03:04:05.006Z" {
		t.Fatalf("Expected manifest keyed by timestamp, got %v", ids)
	}
	data, _, err := mem.GetManifest(ids[0])
	if err != nil {
		t.Fatalf("GetManifest failed: %v", err)
	}
	if !strings.Contains(string(data), `"button"`) {
		t.Errorf("Unexpected stored manifest %s", data)
	}
}

type failingSink struct{ err error }

func (f failingSink) Emit(*manifest.Manifest) error { return f.err }

func TestMulti(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")
	err := Multi{failingSink{boom}, Console{W: &buf}}.Emit(testManifest(t))
	if !errors.Is(err, boom) {
		t.Errorf("Expected joined error, got %v", err)
	}
	if !strings.Contains(buf.String(), BannerStart) {
		t.Error("Later sinks should still run after a failure")
	}
	if err := (Multi{}).Emit(testManifest(t)); err != nil {
		t.Errorf("Empty Multi should succeed, got %v", err)
	}
}
