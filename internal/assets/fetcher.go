package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"labbook/internal/config"
	"labbook/internal/logging"
	"labbook/internal/services"
)

const userAgent = "Labbook-Go/0.1.0"

// Kind classifies a drive reference by the export it supports.
type Kind string

const (
	KindDrawing     Kind = "drawing"
	KindDocument    Kind = "document"
	KindSpreadsheet Kind = "spreadsheet"
	KindFile        Kind = "file"
	KindUnknown     Kind = "unknown"
)

// driveIDPattern matches the ID segment common to every shared-drive URL
// shape (documents, drawings, spreadsheets, plain files).
var driveIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// Index persists the mapping from references to cached files. history.Store
// satisfies it; a nil Index disables persistence without changing fetch
// behavior.
type Index interface {
	RecordAsset(ctx context.Context, moduleID, ref, localPath string) error
}

// Fetcher downloads shared drive assets into the local cache so module
// scripts can embed them without network access of their own.
type Fetcher struct {
	cfg    *config.Config
	logger *slog.Logger
	client *http.Client
	index  Index

	// docsBase and driveBase exist so tests can point exports at a local
	// server.
	docsBase  string
	driveBase string
}

// New constructs a Fetcher. index may be nil.
func New(cfg *config.Config, logger *slog.Logger, index Index) *Fetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Assets.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		cfg:       cfg,
		logger:    logger.With(logging.String(logging.FieldComponent, "assets")),
		client:    &http.Client{Timeout: timeout},
		index:     index,
		docsBase:  "https://docs.google.com",
		driveBase: "https://drive.google.com",
	}
}

// Fetch downloads the asset behind ref into the module's cache directory and
// returns the local path. Drawings are always fetched fresh so edits show up
// in the next notebook build; other kinds are reused from the cache when
// present.
func (f *Fetcher) Fetch(ctx context.Context, moduleID, ref string) (string, error) {
	if !f.cfg.Assets.Enabled {
		return "", services.Wrap(services.ErrConfig, "assets", "fetch", "asset downloads are disabled (set assets.enabled)", nil)
	}

	id, kind, err := Classify(ref)
	if err != nil {
		return "", err
	}

	localPath := f.cachePath(moduleID, id, kind)
	if kind != KindDrawing {
		if info, statErr := os.Stat(localPath); statErr == nil && !info.IsDir() {
			f.logger.Debug("asset cache hit", logging.String("path", localPath))
			return localPath, nil
		}
	}

	exportURL := f.exportURL(id, kind)
	if err := f.download(ctx, exportURL, kind, localPath); err != nil {
		return "", err
	}

	if f.index != nil {
		if err := f.index.RecordAsset(ctx, moduleID, ref, localPath); err != nil {
			f.logger.Warn("record asset failed", logging.Error(err))
		}
	}

	f.logger.Info("asset fetched",
		logging.String(logging.FieldModuleID, moduleID),
		logging.String("kind", string(kind)),
		logging.String("path", localPath),
	)
	return localPath, nil
}

// Classify extracts the drive ID from ref and determines the export kind.
func Classify(ref string) (id string, kind Kind, err error) {
	match := driveIDPattern.FindStringSubmatch(ref)
	if match == nil {
		return "", KindUnknown, services.Wrap(services.ErrConfig, "assets", "classify", fmt.Sprintf("no drive id in reference %q", ref), nil)
	}
	return match[1], kindOf(ref), nil
}

func kindOf(ref string) Kind {
	switch {
	case strings.Contains(ref, "/drawings/"):
		return KindDrawing
	case strings.Contains(ref, "/document/"):
		return KindDocument
	case strings.Contains(ref, "/spreadsheets/"):
		return KindSpreadsheet
	case strings.Contains(ref, "/file/d/"):
		return KindFile
	default:
		return KindUnknown
	}
}

func (f *Fetcher) cachePath(moduleID, id string, kind Kind) string {
	ext := ".bin"
	switch kind {
	case KindDrawing:
		ext = ".png"
	case KindDocument, KindSpreadsheet:
		ext = ".pdf"
	}
	return filepath.Join(f.cfg.Paths.AssetCacheDir, moduleID, id+ext)
}

func (f *Fetcher) exportURL(id string, kind Kind) string {
	switch kind {
	case KindDrawing:
		return fmt.Sprintf("%s/drawings/d/%s/export/png", f.docsBase, id)
	case KindDocument:
		return fmt.Sprintf("%s/document/d/%s/export?format=pdf", f.docsBase, id)
	case KindSpreadsheet:
		return fmt.Sprintf("%s/spreadsheets/d/%s/export?format=pdf", f.docsBase, id)
	default:
		return fmt.Sprintf("%s/uc?export=download&id=%s", f.driveBase, id)
	}
}

func (f *Fetcher) download(ctx context.Context, url string, kind Kind, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build asset request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if kind == KindDrawing {
		req.Header.Set("Accept", "image/png,image/*,*/*;q=0.8")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "assets", "download", "fetch asset", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrTransient, "assets", "download", fmt.Sprintf("export returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create asset cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), ".asset-*")
	if err != nil {
		return fmt.Errorf("create temp asset file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close asset file: %w", err)
	}
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		return fmt.Errorf("finalize asset file: %w", err)
	}
	return nil
}
