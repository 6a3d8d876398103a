package cli

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/image-converter/internal/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCommand(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, w, h))))
}

func TestRenderNative(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writePNG(t, in, 400, 300)

	stdout, err := run(t, "render", in, out, "--backend", "native", "-a", "crop-200x200",
		"--actions-json", `[{"kind":"thumb","width":50,"height":40}]`)
	require.NoError(t, err)
	assert.Equal(t, out, strings.TrimSpace(stdout))

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 40), img.Bounds())
}

func TestRenderRejectsBadAction(t *testing.T) {
	_, err := run(t, "render", "in.png", "out.png", "-a", "spin-10x10")
	assert.ErrorIs(t, err, model.ErrInvalidAction)

	_, err = run(t, "render", "in.png", "out.png", "--actions-json", `[{"kind":"thumb","width":0,"height":10}]`)
	assert.ErrorIs(t, err, model.ErrInvalidAction)
}

func TestRenderTakesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("graphics:\n  backend: gd\n"), 0o644))

	_, err := run(t, "render", "in.png", "out.png", "--config", cfg)
	assert.ErrorContains(t, err, "unknown graphics backend")

	in := filepath.Join(dir, "in.png")
	writePNG(t, in, 10, 10)
	_, err = run(t, "render", in, filepath.Join(dir, "out.png"), "--config", cfg, "--backend", "native", "-a", "resize-5x0")
	assert.NoError(t, err)
}

func TestIdentify(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 64, 32)

	stdout, err := run(t, "identify", in)
	require.NoError(t, err)
	assert.Equal(t, in+" 64x32\n", stdout)
}

func TestEnqueueValidatesBeforeConnecting(t *testing.T) {
	_, err := run(t, "enqueue", "original/a.png", "thumbs/a.png", "-a", "thumb-0x0", "--config", "/nonexistent.yml")
	assert.ErrorIs(t, err, model.ErrInvalidAction)

	_, err = run(t, "enqueue", "original/a.png", "thumbs/a.png", "-a", "thumb-10x10", "--config", "/nonexistent.yml")
	assert.ErrorContains(t, err, "load config")
}
