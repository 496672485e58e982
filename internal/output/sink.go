// Package output delivers generated manifests: to the console, to a file,
// and to the local manifest history.
package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/javanhut/helix-manifest/internal/manifest"
	"github.com/javanhut/helix-manifest/internal/store"
)

const (
	BannerStart = "====== HELIX MANIFEST ======"
	BannerEnd   = "====== END MANIFEST ======"
)

// Sink receives a completed manifest.
type Sink interface {
	Emit(m *manifest.Manifest) error
}

// Console prints the manifest between banner lines.
type Console struct {
	W io.Writer
}

func (c Console) Emit(m *manifest.Manifest) error {
	data, err := m.JSON()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	_, err = fmt.Fprintf(c.W, "%s\n%s\n%s\n", BannerStart, data, BannerEnd)
	return err
}

// File writes the manifest JSON to Path, replacing it atomically.
type File struct {
	Path string
}

func (f File) Emit(m *manifest.Manifest) error {
	data, err := m.JSON()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write to temporary file first, then rename (atomic operation)
	tmpPath := f.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename manifest: %w", err)
	}
	return nil
}

// ManifestStore is where History keeps manifests.
type ManifestStore interface {
	PutManifest(id string, data []byte) (store.Digest, error)
}

// History records the manifest under its generation timestamp.
type History struct {
	Store  ManifestStore
	Logger *log.Logger
}

func (h History) Emit(m *manifest.Manifest) error {
	data, err := m.JSON()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	id := manifest.FormatTimestamp(m.GeneratedAt)
	digest, err := h.Store.PutManifest(id, data)
	if err != nil {
		return fmt.Errorf("record manifest %s: %w", id, err)
	}
	if h.Logger != nil {
		h.Logger.Debug("Recorded manifest", "id", id, "digest", digest.Short())
	}
	return nil
}

// Multi emits to every sink in order and joins their errors.
type Multi []Sink

func (ms Multi) Emit(m *manifest.Manifest) error {
	var errs []error
	for _, s := range ms {
		if err := s.Emit(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
