// Package probe determines the pixel size of a source image.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"regexp"
	"strconv"

	"github.com/wb-go/wbf/zlog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/aliskhannn/image-converter/internal/command"
	"github.com/aliskhannn/image-converter/internal/model"
	"github.com/aliskhannn/image-converter/internal/runner"
)

// commandRunner executes the introspection command.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (*runner.Result, error)
}

// Prober reads image headers in-process and falls back to the external
// identify tool for anything Go cannot decode.
type Prober struct {
	builder *command.Builder
	runner  commandRunner
}

// New creates a Prober that uses b to build identify commands and r to run them.
func New(b *command.Builder, r commandRunner) *Prober {
	return &Prober{builder: b, runner: r}
}

// Size returns the pixel size of the image at path. format is the
// normalised extension and decides whether the header parse is attempted.
func (p *Prober) Size(ctx context.Context, path, format string) (model.Size, error) {
	if headerFormat(format) {
		size, err := DecodeSize(path)
		if err == nil {
			return size, nil
		}

		zlog.Logger.Debug().Err(err).Str("path", path).Msg("header probe failed, falling back to identify")
	}

	return p.identify(ctx, path, format)
}

func (p *Prober) identify(ctx context.Context, path, format string) (model.Size, error) {
	cmd := p.builder.Identify(path, format)

	res, err := p.runner.Run(ctx, cmd.Path, cmd.Args...)
	if err != nil {
		return model.Size{}, &model.ConversionError{Kind: model.ErrProbe, Command: cmd.String(), Output: err.Error()}
	}

	if res.TimedOut {
		return model.Size{}, &model.ConversionError{Kind: model.ErrProbe, Command: cmd.String(), Output: model.ErrTimeout.Error()}
	}
	if res.ExitStatus != 0 {
		return model.Size{}, &model.ConversionError{Kind: model.ErrProbe, Command: cmd.String(), Output: string(append(res.Stderr, res.Stdout...))}
	}

	size, err := ParseSize(res.Stdout)
	if err != nil {
		return model.Size{}, &model.ConversionError{Kind: model.ErrProbe, Command: cmd.String(), Output: err.Error()}
	}

	return size, nil
}

// DecodeSize reads only the image header at path.
func DecodeSize(path string) (model.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Size{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return model.Size{}, fmt.Errorf("decode header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return model.Size{}, fmt.Errorf("decode header: empty image %dx%d", cfg.Width, cfg.Height)
	}

	return model.Size{Width: cfg.Width, Height: cfg.Height}, nil
}

var sizeLine = regexp.MustCompile(`^\s*(\d+)x(\d+)`)

// ParseSize parses the "WxH" line printed by identify.
func ParseSize(out []byte) (model.Size, error) {
	line, _, _ := bytes.Cut(out, []byte("\n"))

	m := sizeLine.FindSubmatch(line)
	if m == nil {
		return model.Size{}, fmt.Errorf("unexpected identify output %q", line)
	}

	w, _ := strconv.Atoi(string(m[1]))
	h, _ := strconv.Atoi(string(m[2]))
	if w <= 0 || h <= 0 {
		return model.Size{}, fmt.Errorf("unexpected identify output %q", line)
	}

	return model.Size{Width: w, Height: h}, nil
}

// headerFormat reports whether Go has a header decoder for format.
func headerFormat(format string) bool {
	switch format {
	case "jpg", "png", "gif", "webp", "bmp", "tif", "tiff":
		return true
	default:
		return false
	}
}
