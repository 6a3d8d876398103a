package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ActionKind enumerates the transforms a render request may queue.
type ActionKind int

const (
	ActionCrop ActionKind = iota + 1
	ActionResize
	ActionThumb
	ActionThumbFill
)

var actionNames = map[ActionKind]string{
	ActionCrop:      "crop",
	ActionResize:    "resize",
	ActionThumb:     "thumb",
	ActionThumbFill: "thumbfill",
}

// ParseActionKind maps an action name to its kind. Names are case-insensitive.
func ParseActionKind(name string) (ActionKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range actionNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, name)
}

func (k ActionKind) String() string {
	if n, ok := actionNames[k]; ok {
		return n
	}
	return "action(" + strconv.Itoa(int(k)) + ")"
}

// Valid reports whether k is one of the known kinds.
func (k ActionKind) Valid() bool {
	_, ok := actionNames[k]
	return ok
}

func (k ActionKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAction, k)
	}
	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseActionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// DefaultCenter is the fill anchor used when no center is given, in percent.
const DefaultCenter = 50

// Action is a single queued transform.
//
// Width or Height may be 0 for resize, meaning "fit to the other dimension
// only". X and Y are crop offsets, CenterX and CenterY the thumbfill anchor
// in percent of the overflowing axis.
type Action struct {
	Kind    ActionKind `json:"kind"`
	Width   int        `json:"width" validate:"gte=0"`
	Height  int        `json:"height" validate:"gte=0"`
	X       int        `json:"x,omitempty"`
	Y       int        `json:"y,omitempty"`
	CenterX int        `json:"center_x" validate:"gte=0,lte=100"`
	CenterY int        `json:"center_y" validate:"gte=0,lte=100"`
}

// Crop returns a crop action anchored at the top-left corner.
func Crop(width, height, x, y int) Action {
	return Action{Kind: ActionCrop, Width: width, Height: height, X: x, Y: y, CenterX: DefaultCenter, CenterY: DefaultCenter}
}

// Resize returns an aspect-preserving resize action.
func Resize(width, height int) Action {
	return Action{Kind: ActionResize, Width: width, Height: height, CenterX: DefaultCenter, CenterY: DefaultCenter}
}

// Thumb returns a fit-and-pad thumbnail action.
func Thumb(width, height int) Action {
	return Action{Kind: ActionThumb, Width: width, Height: height, CenterX: DefaultCenter, CenterY: DefaultCenter}
}

// ThumbFill returns a crop-to-fill thumbnail action.
func ThumbFill(width, height, centerX, centerY int) Action {
	return Action{Kind: ActionThumbFill, Width: width, Height: height, CenterX: centerX, CenterY: centerY}
}

// UnmarshalJSON decodes an action, defaulting missing centers to 50.
func (a *Action) UnmarshalJSON(data []byte) error {
	type plain Action
	v := plain{CenterX: DefaultCenter, CenterY: DefaultCenter}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Action(v)
	return nil
}

var validate = validator.New()

// Validate checks field ranges and the per-kind dimension requirements.
func (a Action) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidAction, int(a.Kind))
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidAction, a.Kind, err)
	}

	switch a.Kind {
	case ActionResize:
		if a.Width < 1 && a.Height < 1 {
			return fmt.Errorf("%w: resize needs a width or a height", ErrInvalidAction)
		}
	default:
		if a.Width < 1 || a.Height < 1 {
			return fmt.Errorf("%w: %s needs a positive width and height", ErrInvalidAction, a.Kind)
		}
	}

	return nil
}

// ParseCommand parses the URI command form "<action>-<width>x<height>",
// e.g. "thumbfill-200x100".
func ParseCommand(command string) (Action, error) {
	name, dims, ok := strings.Cut(command, "-")
	if !ok {
		return Action{}, fmt.Errorf("%w: malformed command %q", ErrInvalidAction, command)
	}

	kind, err := ParseActionKind(onlyLetters(name))
	if err != nil {
		return Action{}, err
	}

	ws, hs, ok := strings.Cut(strings.ToLower(dims), "x")
	if !ok {
		return Action{}, fmt.Errorf("%w: malformed size %q", ErrInvalidAction, dims)
	}
	width, err := strconv.Atoi(ws)
	if err != nil {
		return Action{}, fmt.Errorf("%w: invalid width: %v", ErrInvalidAction, err)
	}
	height, err := strconv.Atoi(hs)
	if err != nil {
		return Action{}, fmt.Errorf("%w: invalid height: %v", ErrInvalidAction, err)
	}

	a := Action{Kind: kind, Width: width, Height: height, CenterX: DefaultCenter, CenterY: DefaultCenter}
	if err := a.Validate(); err != nil {
		return Action{}, err
	}
	return a, nil
}

func onlyLetters(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, s)
}
