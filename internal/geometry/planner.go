package geometry

import (
	"fmt"

	"github.com/aliskhannn/image-converter/internal/model"
)

// Step is the outcome of planning one action against the current size.
// When Skip is set the action was a no-op and Plan is empty.
type Step struct {
	Plan model.Plan
	Size model.Size
	Skip bool
}

// Crop plans a top-left anchored crop of w×h at offset (x, y).
func Crop(cur model.Size, w, h, x, y int) Step {
	if Bypass(cur, w, h, x, y) {
		return Step{Size: cur, Skip: true}
	}

	size := model.Size{Width: w, Height: h}

	return Step{
		Plan: model.Plan{
			Kind:    model.ActionCrop,
			Size:    size,
			Gravity: model.GravityNorthWest,
			Exact:   true,
			Crop:    &model.Offset{X: x, Y: y},
			Flatten: true,
		},
		Size: size,
	}
}

// Resize plans an aspect-preserving resize into the w×h box. Either bound may
// be zero. The new size is the fitted size, not necessarily w×h.
func Resize(cur model.Size, w, h int) Step {
	fitted := Fit(model.Size{Width: w, Height: h}, cur)

	if Bypass(cur, fitted.Width, fitted.Height, 0, 0) {
		return Step{Size: cur, Skip: true}
	}

	return Step{
		Plan: model.Plan{
			Kind:  model.ActionResize,
			Size:  fitted,
			Mode:  ModeFor(fitted.Width, fitted.Height),
			Exact: true,
		},
		Size: fitted,
	}
}

// Thumb plans a fit into w×h followed by a centered extent, so the canvas
// ends up exactly w×h whatever the source aspect ratio.
func Thumb(cur model.Size, w, h int) Step {
	if Bypass(cur, w, h, 0, 0) {
		return Step{Size: cur, Skip: true}
	}

	size := model.Size{Width: w, Height: h}

	return Step{
		Plan: model.Plan{
			Kind:    model.ActionThumb,
			Size:    size,
			Gravity: model.GravityCenter,
			Mode:    ModeFor(w, h),
			Extent:  true,
		},
		Size: size,
	}
}

// ThumbFill plans a crop-to-fill thumbnail. centerX and centerY place the
// window on the overflowing axis in percent: 50 is centered, 0 the leading
// edge, 100 the trailing edge.
func ThumbFill(cur model.Size, w, h, centerX, centerY int) Step {
	if Bypass(cur, w, h, 0, 0) {
		return Step{Size: cur, Skip: true}
	}

	fx := 0.5 - float64(centerX)/100
	fy := 0.5 - float64(centerY)/100

	var off model.Offset

	fitted := Fit(model.Size{Width: w}, cur)
	if fitted.Height < h {
		fitted = Fit(model.Size{Height: h}, cur)
		off.X = round(float64(w-fitted.Width) * fx)
	} else {
		off.Y = round(float64(h-fitted.Height) * fy)
	}

	size := model.Size{Width: w, Height: h}

	return Step{
		Plan: model.Plan{
			Kind:         model.ActionThumbFill,
			Size:         size,
			Gravity:      model.GravityCenter,
			Mode:         ModeFor(w, h),
			Fill:         true,
			Extent:       true,
			ExtentOffset: &off,
		},
		Size: size,
	}
}

// Plan dispatches a single action.
func Plan(cur model.Size, a model.Action) (Step, error) {
	switch a.Kind {
	case model.ActionCrop:
		return Crop(cur, a.Width, a.Height, a.X, a.Y), nil
	case model.ActionResize:
		return Resize(cur, a.Width, a.Height), nil
	case model.ActionThumb:
		return Thumb(cur, a.Width, a.Height), nil
	case model.ActionThumbFill:
		return ThumbFill(cur, a.Width, a.Height, a.CenterX, a.CenterY), nil
	default:
		return Step{}, fmt.Errorf("%w: %s", model.ErrInvalidAction, a.Kind)
	}
}

// Result is the fold of an action list over a source size.
type Result struct {
	Plans []model.Plan
	Size  model.Size
	// Bypass is true when every action was a no-op (including no actions).
	Bypass bool
}

// Apply folds actions in order over src, threading the tracked size from
// one action to the next.
func Apply(src model.Size, actions []model.Action) (Result, error) {
	res := Result{Size: src, Bypass: true}

	for _, a := range actions {
		step, err := Plan(res.Size, a)
		if err != nil {
			return Result{}, err
		}

		res.Size = step.Size
		if step.Skip {
			continue
		}

		res.Bypass = false
		res.Plans = append(res.Plans, step.Plan)
	}

	return res, nil
}
