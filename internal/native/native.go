// Package native renders planned jobs in-process with imaging, without an
// external executable. It supports the raster formats Go can decode and
// encode; documents and webp output need the magick backend.
package native

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
	_ "golang.org/x/image/webp"

	"github.com/aliskhannn/image-converter/internal/command"
	"github.com/aliskhannn/image-converter/internal/geometry"
	"github.com/aliskhannn/image-converter/internal/model"
)

// Renderer applies geometry plans with imaging.
type Renderer struct{}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Convert decodes job.Input, applies every plan in order, flattens the result
// onto the background and encodes it to job.Output.
//
// A positive job.Timeout bounds the whole render. When it expires the render
// stops at the next step with ErrTimeout.
func (r *Renderer) Convert(ctx context.Context, job model.Job) error {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	format, err := imaging.FormatFromExtension(job.OutputFormat)
	if err != nil {
		return fail(job, fmt.Sprintf("cannot encode %s", job.OutputFormat))
	}

	img, err := imaging.Open(job.Input, imaging.AutoOrientation(true))
	if err != nil {
		return fail(job, err.Error())
	}

	for _, p := range job.Plans {
		if err := interrupted(ctx, job); err != nil {
			return err
		}
		img = apply(img, p)
	}
	if err := interrupted(ctx, job); err != nil {
		return err
	}

	bg, err := Background(job.Size, job.Background, job.OutputFormat)
	if err != nil {
		return fail(job, err.Error())
	}
	out := imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)

	f, err := os.Create(job.Output)
	if err != nil {
		return fail(job, err.Error())
	}
	defer f.Close()

	opts := []imaging.EncodeOption{
		imaging.JPEGQuality(command.NormalizeQuality("jpg", job.Quality)),
		imaging.PNGCompressionLevel(png.BestCompression),
	}
	if err := imaging.Encode(f, out, format, opts...); err != nil {
		return fail(job, err.Error())
	}

	zlog.Logger.Debug().
		Str("output", job.Output).
		Str("size", job.Size.String()).
		Int("plans", len(job.Plans)).
		Msg("rendered natively")

	return f.Close()
}

func apply(img image.Image, p model.Plan) image.Image {
	cur := model.Size{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}

	if p.Mode != model.ModeNone {
		target := p.Size
		switch {
		case p.Fill:
			target = cover(p.Size, cur)
		case !p.Exact:
			target = geometry.Fit(p.Size, cur)
		}
		img = imaging.Resize(img, target.Width, target.Height, filter(p.Mode))
	}

	if p.Crop != nil {
		img = window(img, p.Size, image.Pt(p.Crop.X, p.Crop.Y))
	}

	if p.Extent {
		b := img.Bounds()
		origin := image.Pt((b.Dx()-p.Size.Width)/2, (b.Dy()-p.Size.Height)/2)
		if p.ExtentOffset != nil {
			origin = origin.Add(image.Pt(p.ExtentOffset.X, p.ExtentOffset.Y))
		}
		img = window(img, p.Size, origin)
	}

	return img
}

// cover scales src so it covers box entirely, overflowing on one axis.
func cover(box, src model.Size) model.Size {
	scale := math.Max(float64(box.Width)/float64(src.Width), float64(box.Height)/float64(src.Height))
	return model.Size{
		Width:  max(int(math.Round(float64(src.Width)*scale)), box.Width),
		Height: max(int(math.Round(float64(src.Height)*scale)), box.Height),
	}
}

// window cuts a size-sized view out of img starting at origin. Areas outside
// img stay transparent.
func window(img image.Image, size model.Size, origin image.Point) image.Image {
	canvas := imaging.New(size.Width, size.Height, image.Transparent)
	return imaging.Paste(canvas, img, image.Pt(-origin.X, -origin.Y))
}

func filter(m model.ResizeMode) imaging.ResampleFilter {
	if m == model.ModeThumbnail {
		return imaging.Box
	}
	return imaging.Lanczos
}

// interrupted reports an expired budget as ErrTimeout and passes caller
// cancellation through unchanged.
func interrupted(ctx context.Context, job model.Job) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return &model.ConversionError{Kind: model.ErrTimeout, Command: "native " + job.Input}
	default:
		return err
	}
}

func fail(job model.Job, msg string) error {
	return &model.ConversionError{Kind: model.ErrExecution, Command: "native " + job.Input, Output: msg}
}
