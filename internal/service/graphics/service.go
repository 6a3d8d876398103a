package graphics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-converter/internal/model"
	"github.com/aliskhannn/image-converter/internal/processor"
)

var (
	ErrSourceNotFound    = errors.New("source image not found")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidPath       = errors.New("invalid image path")
)

// writable lists the formats variants may be rendered to.
var writable = map[string]struct{}{
	"jpg": {}, "png": {}, "gif": {}, "webp": {},
}

// renderer runs a single render from input to output. RenderStale skips
// outputs that became fresh while waiting for the render lock.
type renderer interface {
	Render(ctx context.Context, input, output string, actions ...model.Action) error
	RenderStale(ctx context.Context, input, output string, actions ...model.Action) (bool, error)
}

// objectStorage moves files between the object store and local disk.
type objectStorage interface {
	Download(ctx context.Context, object, path string) error
	Upload(ctx context.Context, path, object string) error
}

// Service renders image variants for the HTTP front end and the render
// queue.
type Service struct {
	renderer renderer
	storage  objectStorage
	rootDir  string
	cacheDir string
	workDir  string
}

// NewService creates a Service. rootDir holds the sources served over HTTP,
// cacheDir their rendered variants and workDir scratch space for queued
// renders.
func NewService(r renderer, s objectStorage, rootDir, cacheDir, workDir string) *Service {
	return &Service{
		renderer: r,
		storage:  s,
		rootDir:  rootDir,
		cacheDir: cacheDir,
		workDir:  workDir,
	}
}

// Cached returns the path of file rendered with action, rendering it first
// when the cached copy is missing or older than the source. ext selects the
// output format and defaults to the source's.
func (s *Service) Cached(ctx context.Context, file string, action model.Action, ext string) (string, error) {
	rel, err := clean(file)
	if err != nil {
		return "", err
	}

	source := filepath.Join(s.rootDir, rel)
	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrSourceNotFound, rel)
	}

	if !processor.CanRead(filepath.Ext(rel)) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(rel))
	}

	if ext == "" {
		ext = filepath.Ext(rel)
	}
	format := model.Format("." + strings.TrimPrefix(ext, "."))
	if _, ok := writable[format]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	cached := CachePath(s.cacheDir, rel, action, format)

	if processor.Fresh(source, cached) {
		zlog.Logger.Debug().Str("file", rel).Str("cached", cached).Msg("serving cached variant")
		return cached, nil
	}

	// a concurrent request may render the same variant first; RenderStale
	// re-checks under the lock
	if _, err := s.renderer.RenderStale(ctx, source, cached, action); err != nil {
		return "", fmt.Errorf("render %s: %w", rel, err)
	}

	return cached, nil
}

// Process runs a queued render: it downloads the source object, renders it
// locally and uploads the result under req.Output.
func (s *Service) Process(ctx context.Context, req model.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	dir, err := os.MkdirTemp(s.workDir, req.ID.String()+"-")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	source := filepath.Join(dir, "source"+filepath.Ext(req.Input))
	output := filepath.Join(dir, "output"+filepath.Ext(req.Output))

	if err := s.storage.Download(ctx, req.Input, source); err != nil {
		return fmt.Errorf("download source: %w", err)
	}

	if err := s.renderer.Render(ctx, source, output, req.Actions...); err != nil {
		return fmt.Errorf("render %s: %w", req.Input, err)
	}

	if err := s.storage.Upload(ctx, output, req.Output); err != nil {
		return fmt.Errorf("upload result: %w", err)
	}

	zlog.Logger.Info().
		Str("request_id", req.ID.String()).
		Str("input", req.Input).
		Str("output", req.Output).
		Int("actions", len(req.Actions)).
		Msg("queued render completed")

	return nil
}

// CachePath is where the variant of file rendered with action is kept:
// <cache>/graphics/<file>.<action>-<W>x<H>.<format>.
func CachePath(cacheDir, file string, action model.Action, format string) string {
	name := fmt.Sprintf("%s.%s-%dx%d.%s", file, action.Kind, action.Width, action.Height, format)
	return filepath.Join(cacheDir, "graphics", name)
}

// clean makes file relative and rejects paths escaping the root.
func clean(file string) (string, error) {
	rel := filepath.Clean("/" + filepath.FromSlash(file))
	rel = strings.TrimPrefix(rel, string(filepath.Separator))
	if rel == "" || rel == "." {
		return "", ErrInvalidPath
	}
	return rel, nil
}
