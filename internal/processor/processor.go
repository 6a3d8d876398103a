package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-converter/internal/command"
	"github.com/aliskhannn/image-converter/internal/geometry"
	"github.com/aliskhannn/image-converter/internal/lock"
	"github.com/aliskhannn/image-converter/internal/model"
	"github.com/aliskhannn/image-converter/internal/native"
	"github.com/aliskhannn/image-converter/internal/optimizer"
	"github.com/aliskhannn/image-converter/internal/probe"
	"github.com/aliskhannn/image-converter/internal/runner"
)

// Supported rendering backends.
const (
	BackendMagick = "magick"
	BackendNative = "native"
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown graphics backend")

// readable lists the input formats the processor accepts.
var readable = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {},
	"tif": {}, "tiff": {}, "pdf": {}, "eps": {},
}

// Options configure a Processor.
type Options struct {
	Executable string
	Backend    string
	Background string
	Quality    int
	Optimize   bool
	Timeout    time.Duration
	Tools      map[string][]string
}

// converter executes a planned job and writes job.Output.
type converter interface {
	Convert(ctx context.Context, job model.Job) error
}

// sizeProber reports the pixel size of an image on disk.
type sizeProber interface {
	Size(ctx context.Context, path, format string) (model.Size, error)
}

// imageOptimizer shrinks a rendered file in place.
type imageOptimizer interface {
	Optimize(ctx context.Context, path, format string) error
}

// Processor renders an input image through an ordered action list into an
// output file.
type Processor struct {
	opts      Options
	locker    lock.Locker
	prober    sizeProber
	converter converter
	optimizer imageOptimizer
}

// New wires a Processor for the configured backend. A nil locker falls back
// to an in-process lock.
func New(opts Options, locker lock.Locker) (*Processor, error) {
	if locker == nil {
		locker = lock.NewLocal()
	}

	b := command.New(opts.Executable)
	r := runner.New(opts.Timeout)

	p := &Processor{
		opts:      opts,
		locker:    locker,
		prober:    probe.New(b, r),
		optimizer: optimizer.New(opts.Tools, r),
	}

	switch opts.Backend {
	case "", BackendMagick:
		p.converter = &magick{builder: b, runner: r}
	case BackendNative:
		p.converter = native.New()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}

	return p, nil
}

// CanRead reports whether inputs with the given extension can be rendered.
func CanRead(ext string) bool {
	_, ok := readable[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return ok
}

// Render plans actions against the input's size and writes the result to
// output. Renders to the same output are serialised; the final path only
// ever holds a complete image.
func (p *Processor) Render(ctx context.Context, input, output string, actions ...model.Action) error {
	_, err := p.render(ctx, input, output, false, actions)
	return err
}

// RenderStale renders like Render unless output is already at least as new
// as input. The check runs under the render lock, so concurrent callers for
// one missing output render it once. It reports whether a render happened.
func (p *Processor) RenderStale(ctx context.Context, input, output string, actions ...model.Action) (bool, error) {
	return p.render(ctx, input, output, true, actions)
}

// Fresh reports whether output exists and is not older than input.
func Fresh(input, output string) bool {
	in, err := os.Stat(input)
	if err != nil {
		return false
	}
	out, err := os.Stat(output)
	if err != nil {
		return false
	}
	return !out.ModTime().Before(in.ModTime())
}

func (p *Processor) render(ctx context.Context, input, output string, onlyStale bool, actions []model.Action) (bool, error) {
	for _, a := range actions {
		if err := a.Validate(); err != nil {
			return false, err
		}
	}

	key, err := filepath.Abs(output)
	if err != nil {
		return false, fmt.Errorf("resolve output path: %w", err)
	}

	release, err := p.locker.Acquire(ctx, key)
	if err != nil {
		return false, fmt.Errorf("acquire render lock: %w", err)
	}
	defer release()

	if onlyStale && Fresh(input, output) {
		zlog.Logger.Debug().Str("output", output).Msg("output rendered meanwhile, skipping")
		return false, nil
	}

	job := model.Job{
		ID:           uuid.New(),
		Input:        input,
		Output:       output,
		InputFormat:  model.Format(input),
		OutputFormat: model.Format(output),
		Background:   p.opts.Background,
		Quality:      p.opts.Quality,
		Optimize:     p.opts.Optimize,
		Timeout:      p.opts.Timeout,
	}

	src, err := p.prober.Size(ctx, input, job.InputFormat)
	if err != nil {
		return false, err
	}

	plan, err := geometry.Apply(src, actions)
	if err != nil {
		return false, err
	}
	job.Size = plan.Size
	job.Plans = plan.Plans

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return false, fmt.Errorf("create output dir: %w", err)
	}

	start := time.Now()

	if plan.Bypass && job.InputFormat == job.OutputFormat {
		if err := p.copy(job); err != nil {
			return false, err
		}

		zlog.Logger.Info().
			Str("job_id", job.ID.String()).
			Str("input", input).
			Str("output", output).
			Msg("actions bypassed, source copied")
		return true, nil
	}

	if err := p.convert(ctx, job); err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("job_id", job.ID.String()).
			Str("input", input).
			Str("output", output).
			Msg("render failed")
		return false, err
	}

	zlog.Logger.Info().
		Str("job_id", job.ID.String()).
		Str("input", input).
		Str("output", output).
		Str("size", job.Size.String()).
		Int("plans", len(job.Plans)).
		Dur("elapsed", time.Since(start)).
		Msg("image rendered")

	return true, nil
}

// convert renders into a sibling temp file and moves it over output once
// every step has succeeded.
func (p *Processor) convert(ctx context.Context, job model.Job) (err error) {
	final := job.Output
	job.Output = tempPath(final, job.ID)

	defer func() {
		if err != nil {
			_ = os.Remove(job.Output)
		}
	}()

	if err = p.converter.Convert(ctx, job); err != nil {
		return err
	}

	if job.Optimize {
		if oerr := p.optimizer.Optimize(ctx, job.Output, job.OutputFormat); oerr != nil {
			zlog.Logger.Warn().Err(oerr).Str("output", final).Msg("optimizer failed, keeping unoptimized image")
		}
	}

	if err = os.Rename(job.Output, final); err != nil {
		return fmt.Errorf("move rendered image into place: %w", err)
	}

	return nil
}

func (p *Processor) copy(job model.Job) (err error) {
	if same(job.Input, job.Output) {
		return nil
	}

	tmp := tempPath(job.Output, job.ID)
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	src, err := os.Open(job.Input)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy source: %w", err)
	}
	if err = dst.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	if err = os.Rename(tmp, job.Output); err != nil {
		return fmt.Errorf("move copy into place: %w", err)
	}

	return nil
}

// tempPath keeps the extension so tools still infer the format from it.
func tempPath(output string, id uuid.UUID) string {
	dir, base := filepath.Split(output)
	return filepath.Join(dir, "."+strings.TrimSuffix(base, filepath.Ext(base))+"."+id.String()+filepath.Ext(base))
}

func same(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
