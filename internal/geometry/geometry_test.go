package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/image-converter/internal/model"
)

func size(w, h int) model.Size { return model.Size{Width: w, Height: h} }

func TestFit(t *testing.T) {
	tests := []struct {
		name  string
		bound model.Size
		src   model.Size
		want  model.Size
	}{
		{"landscape into square", size(100, 100), size(400, 200), size(100, 50)},
		{"portrait into square", size(100, 100), size(200, 400), size(50, 100)},
		{"width only", size(200, 0), size(400, 100), size(200, 50)},
		{"height only", size(0, 100), size(400, 100), size(400, 100)},
		{"upscale", size(1000, 1000), size(100, 50), size(1000, 500)},
		{"rounding", size(100, 100), size(300, 200), size(100, 67)},
		{"extreme landscape", size(100, 100), size(10000, 1), size(100, 1)},
		{"extreme portrait", size(100, 100), size(1, 10000), size(1, 100)},
		{"extreme landscape width only", size(100, 0), size(10000, 1), size(100, 1)},
		{"extreme portrait height only", size(0, 100), size(10000, 1), size(100, 1)},
		{"extreme portrait width only", size(100, 0), size(1, 10000), size(100, 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fit(tt.bound, tt.src))
		})
	}
}

func TestFitStaysInsideBoxAndKeepsAspect(t *testing.T) {
	sources := []model.Size{size(1, 1), size(640, 480), size(481, 1023), size(5000, 3), size(3, 5000), size(1920, 1080)}
	bounds := []model.Size{size(1, 1), size(100, 100), size(160, 90), size(333, 777), size(1024, 768)}

	for _, src := range sources {
		for _, b := range bounds {
			got := Fit(b, src)

			assert.LessOrEqual(t, got.Width, b.Width, "%v into %v", src, b)
			assert.LessOrEqual(t, got.Height, b.Height, "%v into %v", src, b)
			assert.Positive(t, got.Width, "%v into %v", src, b)
			assert.Positive(t, got.Height, "%v into %v", src, b)

			// one edge is exact, the other is rounded from it
			ratio := float64(src.Width) / float64(src.Height)
			dw := math.Abs(float64(got.Height)*ratio - float64(got.Width))
			dh := math.Abs(float64(got.Width)/ratio - float64(got.Height))
			assert.True(t, dw <= 1 || dh <= 1, "%v into %v gave %v", src, b, got)
		}
	}
}

func TestSignedOffset(t *testing.T) {
	tests := map[int]string{
		0:    "+0",
		1:    "+1",
		-1:   "-1",
		100:  "+100",
		-100: "-100",
	}

	for in, want := range tests {
		assert.Equal(t, want, model.SignedOffset(in))
	}

	assert.Equal(t, "+10-5", model.Offset{X: 10, Y: -5}.String())
}

func TestCrop(t *testing.T) {
	step := Crop(size(500, 500), 100, 100, 10, 10)

	require.False(t, step.Skip)
	assert.Equal(t, size(100, 100), step.Size)
	assert.Equal(t, model.GravityNorthWest, step.Plan.Gravity)
	require.NotNil(t, step.Plan.Crop)
	assert.Equal(t, "+10+10", step.Plan.Crop.String())
	assert.True(t, step.Plan.Flatten)
	assert.Nil(t, step.Plan.ExtentOffset)
}

func TestCropBypass(t *testing.T) {
	step := Crop(size(500, 500), 500, 500, 0, 0)
	assert.True(t, step.Skip)
	assert.Equal(t, size(500, 500), step.Size)

	step = Crop(size(500, 500), 500, 500, 0, -1)
	assert.False(t, step.Skip)
	assert.Equal(t, "+0-1", step.Plan.Crop.String())
}

func TestResize(t *testing.T) {
	step := Resize(size(1000, 500), 400, 400)

	require.False(t, step.Skip)
	assert.Equal(t, size(400, 200), step.Size)
	assert.Equal(t, size(400, 200), step.Plan.Size)
	assert.Equal(t, model.ModeResize, step.Plan.Mode)
	assert.True(t, step.Plan.Exact)
	assert.Equal(t, model.GravityNone, step.Plan.Gravity)
}

func TestResizeBypassOnFittedSize(t *testing.T) {
	// asking for a taller box does not change a 400x200 image at width 400
	step := Resize(size(400, 200), 400, 300)
	assert.True(t, step.Skip)
	assert.Equal(t, size(400, 200), step.Size)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, model.ModeThumbnail, ModeFor(160, 160))
	assert.Equal(t, model.ModeThumbnail, ModeFor(10, 160))
	assert.Equal(t, model.ModeResize, ModeFor(161, 100))
	assert.Equal(t, model.ModeResize, ModeFor(100, 161))

	step := Resize(size(1000, 500), 150, 150)
	assert.Equal(t, model.ModeThumbnail, step.Plan.Mode)
}

func TestThumbAlwaysYieldsTarget(t *testing.T) {
	for _, src := range []model.Size{size(400, 100), size(100, 400), size(37, 37), size(3000, 2000)} {
		step := Thumb(src, 200, 120)
		assert.Equal(t, size(200, 120), step.Size, "source %v", src)
		assert.True(t, step.Plan.Extent)
		assert.Equal(t, model.GravityCenter, step.Plan.Gravity)
		assert.Nil(t, step.Plan.ExtentOffset)
	}
}

func TestThumbFillCentered(t *testing.T) {
	// wider than the target: refit to height, centered crop has no offset
	step := ThumbFill(size(400, 100), 200, 100, 50, 50)
	require.NotNil(t, step.Plan.ExtentOffset)
	assert.Equal(t, model.Offset{}, *step.Plan.ExtentOffset)
	assert.Equal(t, size(200, 100), step.Size)
	assert.True(t, step.Plan.Fill)

	// taller than the target
	step = ThumbFill(size(100, 400), 200, 100, 50, 50)
	assert.Equal(t, model.Offset{}, *step.Plan.ExtentOffset)
}

func TestThumbFillLeadingEdge(t *testing.T) {
	// fit to width gives 200x50, shorter than 100, so refit to height: 400x100
	// and shift by round((200-400) * 0.5)
	step := ThumbFill(size(400, 100), 200, 100, 0, 50)

	assert.Equal(t, model.Offset{X: -100, Y: 0}, *step.Plan.ExtentOffset)
	assert.Equal(t, "-100+0", step.Plan.ExtentOffset.String())
	assert.Equal(t, size(200, 100), step.Size)
}

func TestThumbFillTrailingEdge(t *testing.T) {
	// fit to width: 200x800, offset round((100-800) * -0.5) = 350
	step := ThumbFill(size(100, 400), 200, 100, 50, 100)

	assert.Equal(t, model.Offset{X: 0, Y: 350}, *step.Plan.ExtentOffset)
	assert.Equal(t, "+0+350", step.Plan.ExtentOffset.String())
}

func TestApply(t *testing.T) {
	res, err := Apply(size(1000, 500), []model.Action{
		model.Resize(500, 500),
		model.Crop(100, 100, 10, 20),
		model.Thumb(100, 100),
	})
	require.NoError(t, err)

	assert.False(t, res.Bypass)
	assert.Equal(t, size(100, 100), res.Size)
	require.Len(t, res.Plans, 2)
	assert.Equal(t, model.ActionResize, res.Plans[0].Kind)
	assert.Equal(t, size(500, 250), res.Plans[0].Size)
	assert.Equal(t, model.ActionCrop, res.Plans[1].Kind)
}

func TestApplyKeepsEdgesPositiveOnExtremeAspect(t *testing.T) {
	for _, src := range []model.Size{size(10000, 1), size(1, 10000)} {
		res, err := Apply(src, []model.Action{model.Resize(100, 100)})
		require.NoError(t, err)

		require.Len(t, res.Plans, 1)
		assert.Positive(t, res.Size.Width, "%v", src)
		assert.Positive(t, res.Size.Height, "%v", src)
		assert.Equal(t, res.Size, res.Plans[0].Size)
	}
}

func TestApplyBypass(t *testing.T) {
	res, err := Apply(size(300, 200), nil)
	require.NoError(t, err)
	assert.True(t, res.Bypass)
	assert.Equal(t, size(300, 200), res.Size)

	res, err = Apply(size(300, 200), []model.Action{model.Resize(300, 0), model.Thumb(300, 200)})
	require.NoError(t, err)
	assert.True(t, res.Bypass)
	assert.Empty(t, res.Plans)
}

func TestApplyUnknownKind(t *testing.T) {
	_, err := Apply(size(10, 10), []model.Action{{Kind: 42, Width: 1, Height: 1}})
	assert.ErrorIs(t, err, model.ErrInvalidAction)
}
