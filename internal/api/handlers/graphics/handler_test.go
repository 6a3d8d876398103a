package graphics_test

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/image-converter/internal/api/handlers/graphics"
	"github.com/aliskhannn/image-converter/internal/api/router"
	"github.com/aliskhannn/image-converter/internal/model"
	graphicssvc "github.com/aliskhannn/image-converter/internal/service/graphics"
)

type fakeService struct {
	path   string
	err    error
	file   string
	action model.Action
	ext    string
}

func (f *fakeService) Cached(_ context.Context, file string, action model.Action, ext string) (string, error) {
	f.file, f.action, f.ext = file, action, ext
	return f.path, f.err
}

func variant(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "v.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4))))
	return path
}

func serve(svc *fakeService, target string) *httptest.ResponseRecorder {
	r := router.Setup(graphics.NewHandler(svc))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestRenderServesVariant(t *testing.T) {
	svc := &fakeService{path: variant(t)}

	w := serve(svc, "/graphics/photos/cat.jpg?command=thumbfill-200x100&ext=png")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("Last-Modified"))
	assert.Equal(t, "photos/cat.jpg", svc.file)
	assert.Equal(t, model.ThumbFill(200, 100, 50, 50), svc.action)
	assert.Equal(t, "png", svc.ext)
}

func TestRenderRejectsBadCommand(t *testing.T) {
	svc := &fakeService{}

	assert.Equal(t, http.StatusBadRequest, serve(svc, "/graphics/cat.jpg?command=blur-1x1").Code)
	assert.Equal(t, http.StatusBadRequest, serve(svc, "/graphics/cat.jpg").Code)
	assert.Empty(t, svc.file)
}

func TestRenderMapsErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", graphicssvc.ErrSourceNotFound), http.StatusNotFound},
		{graphicssvc.ErrUnsupportedFormat, http.StatusBadRequest},
		{&model.ConversionError{Kind: model.ErrProbe}, http.StatusUnprocessableEntity},
		{fmt.Errorf("render: %w", &model.ConversionError{Kind: model.ErrTimeout}), http.StatusGatewayTimeout},
		{&model.ConversionError{Kind: model.ErrExecution}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := serve(&fakeService{err: tt.err}, "/graphics/cat.jpg?command=thumb-10x10")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHealth(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(&fakeService{}, "/health").Code)
}
