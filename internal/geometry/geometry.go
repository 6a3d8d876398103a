// Package geometry turns queued actions into pixel geometry.
//
// Everything here is pure: the current size is threaded explicitly through
// each step and nothing touches the file system or spawns processes.
package geometry

import (
	"math"

	"github.com/aliskhannn/image-converter/internal/model"
)

// ThumbnailLimit is the largest edge, in pixels, that still uses the fast
// thumbnail filter. Targets with both edges at or below it are treated as
// thumbnails.
const ThumbnailLimit = 160

// Fit returns the largest size within bound that keeps the aspect ratio of
// src. A zero bound dimension is unconstrained, so Fit(Size{200, 0}, src)
// fits to the width only. Both returned dimensions are at least 1, so
// extreme aspect ratios never collapse an edge to zero.
func Fit(bound, src model.Size) model.Size {
	if src.Width <= 0 || src.Height <= 0 {
		return bound
	}

	w, h := float64(src.Width), float64(src.Height)

	switch {
	case bound.Height <= 0:
		return model.Size{Width: max(1, bound.Width), Height: max(1, round(h/w*float64(bound.Width)))}
	case bound.Width <= 0:
		return model.Size{Width: max(1, round(w/h*float64(bound.Height))), Height: max(1, bound.Height)}
	}

	scale := math.Min(float64(bound.Width)/w, float64(bound.Height)/h)

	return model.Size{
		Width:  max(1, min(round(w*scale), bound.Width)),
		Height: max(1, min(round(h*scale), bound.Height)),
	}
}

// Bypass reports whether a geometry of w×h at offset (x, y) is a no-op for
// an image currently sized cur.
func Bypass(cur model.Size, w, h, x, y int) bool {
	return w == cur.Width && h == cur.Height && x == 0 && y == 0
}

// ModeFor picks the resize filter for a target size.
func ModeFor(w, h int) model.ResizeMode {
	if w <= ThumbnailLimit && h <= ThumbnailLimit {
		return model.ModeThumbnail
	}
	return model.ModeResize
}

func round(v float64) int {
	return int(math.Round(v))
}
