package render

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/image-converter/internal/model"
)

type fakeService struct {
	got []model.Request
	err error
}

func (f *fakeService) Process(_ context.Context, req model.Request) error {
	f.got = append(f.got, req)
	if f.err != nil {
		return f.err
	}
	return req.Validate()
}

func message(t *testing.T, req model.Request) kafka.Message {
	t.Helper()

	data, err := json.Marshal(req)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(req.ID.String()), Value: data}
}

func TestHandleDecodesRequest(t *testing.T) {
	svc := &fakeService{}
	req := model.Request{
		ID:      uuid.New(),
		Input:   "original/a.png",
		Output:  "thumbs/a.png",
		Actions: []model.Action{model.Crop(10, 10, 5, 5), model.Thumb(50, 50)},
	}

	require.NoError(t, NewHandler(svc).Handle(context.Background(), message(t, req)))
	require.Len(t, svc.got, 1)
	assert.Equal(t, req.Actions, svc.got[0].Actions)
}

func TestHandleDropsPoisonMessages(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc)

	assert.NoError(t, h.Handle(context.Background(), kafka.Message{Value: []byte("{not json")}))
	assert.Empty(t, svc.got)

	invalid := model.Request{ID: uuid.New(), Input: "a.png", Output: "b.png", Actions: []model.Action{model.Thumb(0, 1)}}
	assert.NoError(t, h.Handle(context.Background(), message(t, invalid)))

	missing := model.Request{ID: uuid.New(), Input: "a.png"}
	assert.NoError(t, h.Handle(context.Background(), message(t, missing)))
}

func TestHandleReturnsRenderFailures(t *testing.T) {
	svc := &fakeService{err: &model.ConversionError{Kind: model.ErrTimeout}}
	req := model.Request{ID: uuid.New(), Input: "a.png", Output: "b.png"}

	err := NewHandler(svc).Handle(context.Background(), message(t, req))
	assert.ErrorIs(t, err, model.ErrTimeout)

	svc.err = errors.New("minio down")
	assert.ErrorContains(t, NewHandler(svc).Handle(context.Background(), message(t, req)), "minio down")
}
