package command

import (
	"strconv"

	"github.com/aliskhannn/image-converter/internal/model"
)

const (
	// Checkerboard is the background token that renders a transparency pattern.
	Checkerboard = "checkerboard"

	defaultLossyQuality = 85
	defaultPNGQuality   = 95
)

// Builder assembles convert and identify commands for one executable.
type Builder struct {
	executable string
}

// New creates a Builder for the given convert executable.
func New(executable string) *Builder {
	if executable == "" {
		executable = "convert"
	}
	return &Builder{executable: executable}
}

// Executable returns the convert executable the builder targets.
func (b *Builder) Executable() string {
	return b.executable
}

// Convert builds the full conversion command for a planned job.
func (b *Builder) Convert(job model.Job) Command {
	args := Background(job.Size, job.Background, job.OutputFormat)

	args = append(args, "(", "-auto-orient", "+profile", "*", "-auto-orient", job.Input+PageNumber(job.InputFormat))
	for _, p := range job.Plans {
		args = append(args, Geometry(p)...)
	}
	args = append(args, ")", "-colorspace", "sRGB", "-flatten")

	args = append(args, Quality(job.OutputFormat, job.Quality)...)
	args = append(args, Optimize(job.InputFormat, job.OutputFormat)...)
	args = append(args, job.OutputFormat+":"+job.Output)

	return Command{Path: b.executable, Args: args}
}

// Identify builds the "dimensions only" query for input.
func (b *Builder) Identify(input, format string) Command {
	path, args := identifyFor(b.executable)
	args = append(args, "-ping", "-format", "%wx%h", input+PageNumber(format))

	return Command{Path: path, Args: args}
}

// Geometry renders a plan as convert operators.
func Geometry(p model.Plan) []string {
	var args []string

	if p.Gravity != model.GravityNone {
		args = append(args, "-gravity", p.Gravity.String())
	}

	geom := p.Size.String()
	bang := ""
	if p.Exact {
		bang = "!"
	}

	switch p.Mode {
	case model.ModeResize, model.ModeThumbnail:
		g := geom
		if p.Fill {
			g += "^"
		}
		args = append(args, resizeOperator(p.Mode), g+bang)
	}

	if p.Crop != nil {
		args = append(args, "-crop", geom+p.Crop.String()+bang)
	}

	if p.Extent {
		g := geom
		if p.ExtentOffset != nil {
			g += p.ExtentOffset.String()
		}
		args = append(args, "-extent", g)
	}

	if p.Flatten {
		args = append(args, "-flatten")
	}

	return args
}

func resizeOperator(m model.ResizeMode) string {
	if m == model.ModeThumbnail {
		return "-thumbnail"
	}
	return "-resize"
}

// Background sizes the canvas to the tracked size and picks its color.
// Hex colors pass through, "checkerboard" draws a pattern, anything else is
// white for jpg and transparent for the rest.
func Background(size model.Size, background, format string) []string {
	args := []string{"-size", size.String()}

	switch {
	case len(background) > 0 && background[0] == '#':
		return append(args, "-background", background)
	case background == Checkerboard:
		return append(args, "-background", "none", "pattern:"+Checkerboard)
	case format == "jpg":
		return append(args, "-background", "#FFF")
	default:
		return append(args, "-background", "none")
	}
}

// Quality returns the quality directive for formats that take one.
func Quality(format string, quality int) []string {
	switch format {
	case "jpg", "png", "webp":
		return []string{"-quality", strconv.Itoa(NormalizeQuality(format, quality))}
	default:
		return nil
	}
}

// NormalizeQuality clamps a configured quality to what the format accepts.
// For png the value is zlib level times ten plus filter type, so the units
// digit must not exceed 5.
func NormalizeQuality(format string, quality int) int {
	switch format {
	case "png":
		if quality >= 0 && quality <= 95 && quality%10 <= 5 {
			return quality
		}
		return defaultPNGQuality
	default:
		if quality >= 0 && quality <= 100 {
			return quality
		}
		return defaultLossyQuality
	}
}

// Optimize always strips metadata and adds the per-format encoding hints.
func Optimize(inputFormat, outputFormat string) []string {
	args := []string{"-strip"}

	switch {
	case outputFormat == "jpg":
		args = append(args, "-interlace", "Plane")
	case outputFormat == "png":
		args = append(args, "-define", "png:format=png00")
	case outputFormat == "webp" && inputFormat == "png":
		args = append(args, "-define", "webp:lossless=true", "-define", "webp:image-hint=graph")
	}

	return args
}

// PageNumber selects the first page of multi-page sources.
func PageNumber(format string) string {
	switch format {
	case "pdf", "tif", "tiff":
		return "[0]"
	default:
		return ""
	}
}
