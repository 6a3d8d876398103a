package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"thumb-200x200", Thumb(200, 200)},
		{"thumbfill-200x100", ThumbFill(200, 100, 50, 50)},
		{"Resize-640x0", Resize(640, 0)},
		{"crop-10X20", Crop(10, 20, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCommand(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandRejects(t *testing.T) {
	for _, in := range []string{"", "thumb", "thumb-200", "blur-10x10", "thumb-ax10", "thumb-0x10", "resize-0x0"} {
		_, err := ParseCommand(in)
		assert.ErrorIs(t, err, ErrInvalidAction, in)
	}
}

func TestActionJSON(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"thumbfill","width":200,"height":100}`), &a))
	assert.Equal(t, ThumbFill(200, 100, 50, 50), a)

	require.NoError(t, json.Unmarshal([]byte(`{"kind":"thumbfill","width":200,"height":100,"center_x":0}`), &a))
	assert.Equal(t, 0, a.CenterX)
	assert.Equal(t, 50, a.CenterY)

	data, err := json.Marshal(Crop(1, 2, 3, 4))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"crop","width":1,"height":2,"x":3,"y":4,"center_x":50,"center_y":50}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"blur"}`), &a))
}

func TestActionValidate(t *testing.T) {
	assert.NoError(t, Resize(0, 100).Validate())
	assert.NoError(t, Crop(10, 10, -5, -5).Validate())

	assert.ErrorIs(t, Resize(0, 0).Validate(), ErrInvalidAction)
	assert.ErrorIs(t, Thumb(10, 0).Validate(), ErrInvalidAction)
	assert.ErrorIs(t, ThumbFill(10, 10, 101, 50).Validate(), ErrInvalidAction)
	assert.ErrorIs(t, Action{Kind: 9, Width: 1, Height: 1}.Validate(), ErrInvalidAction)
}

func TestRequestValidate(t *testing.T) {
	req := Request{Input: "a.png", Output: "b.png", Actions: []Action{Thumb(10, 10)}}
	assert.NoError(t, req.Validate())

	req.Output = ""
	assert.Error(t, req.Validate())

	req.Output = "b.png"
	req.Actions = append(req.Actions, Thumb(0, 10))
	assert.ErrorIs(t, req.Validate(), ErrInvalidAction)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "jpg", Format("/a/b.JPEG"))
	assert.Equal(t, "png", Format("x.png"))
	assert.Equal(t, "", Format("noext"))
}

func TestConversionError(t *testing.T) {
	err := &ConversionError{Kind: ErrExecution, Command: "convert a b", Output: "  boom\n"}
	assert.ErrorIs(t, err, ErrExecution)
	assert.Equal(t, "conversion failed: boom", err.Error())

	assert.Equal(t, "conversion over timeout", (&ConversionError{Kind: ErrTimeout}).Error())
}

func TestOffsetString(t *testing.T) {
	assert.Equal(t, "+0-10", Offset{X: 0, Y: -10}.String())
	assert.Equal(t, "200x100", Size{Width: 200, Height: 100}.String())
}
