package model

import (
	"fmt"
	"strconv"
)

// Size is a pixel width and height.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String formats s as "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Gravity is the anchor used to interpret crop and extent offsets.
type Gravity int

const (
	GravityNone Gravity = iota
	GravityCenter
	GravityNorthWest
)

func (g Gravity) String() string {
	switch g {
	case GravityCenter:
		return "Center"
	case GravityNorthWest:
		return "NorthWest"
	default:
		return ""
	}
}

// ResizeMode selects the scaling filter.
type ResizeMode int

const (
	ModeNone ResizeMode = iota
	// ModeResize is the slower, higher quality filter.
	ModeResize
	// ModeThumbnail is the fast filter used for small targets.
	ModeThumbnail
)

// Offset is a signed pixel offset pair.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the offset with explicit signs, e.g. "+10-5".
// Zero counts as non-negative.
func (o Offset) String() string {
	return SignedOffset(o.X) + SignedOffset(o.Y)
}

// SignedOffset renders a single offset value: "+N" for N >= 0, "-N" otherwise.
func SignedOffset(v int) string {
	if v < 0 {
		return strconv.Itoa(v)
	}
	return "+" + strconv.Itoa(v)
}

// Plan is the geometry of one action, ready to be rendered by a backend.
//
// Size is the geometry argument of the resize, crop and extent operations.
// Crop and ExtentOffset are set only when the respective operation takes part.
type Plan struct {
	Kind         ActionKind `json:"kind"`
	Size         Size       `json:"size"`
	Gravity      Gravity    `json:"gravity"`
	Mode         ResizeMode `json:"mode"`
	Exact        bool       `json:"exact"`
	Fill         bool       `json:"fill"`
	Crop         *Offset    `json:"crop,omitempty"`
	Extent       bool       `json:"extent"`
	ExtentOffset *Offset    `json:"extent_offset,omitempty"`
	Flatten      bool       `json:"flatten"`
}
