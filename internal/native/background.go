package native

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/aliskhannn/image-converter/internal/command"
	"github.com/aliskhannn/image-converter/internal/model"
)

const checkerSquare = 15

// Background paints the flattening canvas using the same rules as the
// command builder: hex colors verbatim, a checkerboard pattern, white for
// jpg and transparent otherwise.
func Background(size model.Size, background, format string) (image.Image, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %s", size)
	}

	dc := gg.NewContext(size.Width, size.Height)

	switch {
	case len(background) > 0 && background[0] == '#':
		dc.SetHexColor(background)
		dc.Clear()
	case background == command.Checkerboard:
		checkerboard(dc)
	case format == "jpg":
		dc.SetHexColor("#FFF")
		dc.Clear()
	}

	return dc.Image(), nil
}

func checkerboard(dc *gg.Context) {
	dc.SetHexColor("#999999")
	dc.Clear()

	dc.SetHexColor("#666666")
	for y := 0; y < dc.Height(); y += checkerSquare {
		for x := 0; x < dc.Width(); x += checkerSquare {
			if (x/checkerSquare+y/checkerSquare)%2 == 1 {
				dc.DrawRectangle(float64(x), float64(y), checkerSquare, checkerSquare)
			}
		}
	}
	dc.Fill()
}
