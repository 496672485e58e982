package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/javanhut/helix-manifest/internal/colors"
	"github.com/javanhut/helix-manifest/internal/config"
	"github.com/javanhut/helix-manifest/internal/definition"
	"github.com/javanhut/helix-manifest/internal/figma"
	"github.com/javanhut/helix-manifest/internal/store"
)

// loadConfig loads the merged configuration and applies its color setting.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Color.UI {
		colors.SetColorEnabled(false)
	}
	return cfg, nil
}

// openStore opens the local store configured in cfg.
func openStore(cfg *config.Config) (*store.DB, error) {
	db, err := store.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return db, nil
}

// newDefinitionLoader builds the definition loader configured in cfg.
func newDefinitionLoader(cfg *config.Config, cache definition.Cache) (*definition.Loader, error) {
	timeout, err := cfg.DefinitionTimeout()
	if err != nil {
		return nil, err
	}
	return definition.NewLoader(cfg.Definition.URL, cache, logger,
		definition.WithCacheKey(cfg.Definition.CacheKey),
		definition.WithTimeout(timeout),
	), nil
}

// readDocument returns the raw design document: from the Figma API when
// fileKey is set, from stdin for "-", otherwise from the named file.
func readDocument(ctx context.Context, cfg *config.Config, stdin io.Reader, path, fileKey string) ([]byte, error) {
	switch {
	case fileKey != "":
		client, err := figma.NewClient(cfg.Figma.Token, cfg.Figma.APIURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Fetching Figma file", "file", fileKey)
		return client.File(ctx, fileKey)
	case path == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("no document given. Pass a document file, '-' for stdin, or --figma-file <key>")
	}
}
