package graphics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-converter/internal/api/respond"
	"github.com/aliskhannn/image-converter/internal/model"
	graphicssvc "github.com/aliskhannn/image-converter/internal/service/graphics"
)

// service defines the interface for cached variant rendering.
type service interface {
	Cached(ctx context.Context, file string, action model.Action, ext string) (string, error)
}

// Handler provides the HTTP front end for image variants.
type Handler struct {
	service service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

// Render serves GET /graphics/*file?command=<action>-<W>x<H>[&ext=<format>].
// The variant is rendered on first request and served from cache afterwards.
func (h *Handler) Render(c *ginext.Context) {
	file := strings.TrimPrefix(c.Param("file"), "/")
	if file == "" {
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("missing file"))
		return
	}

	action, err := model.ParseCommand(c.Query("command"))
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("command", c.Query("command")).Msg("invalid command")
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	path, err := h.service.Cached(c.Request.Context(), file, action, c.Query("ext"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			zlog.Logger.Err(err).Str("file", file).Msg("failed to render variant")
		}
		respond.Fail(c, status, err)
		return
	}

	respond.Image(c, path)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, graphicssvc.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, graphicssvc.ErrUnsupportedFormat),
		errors.Is(err, graphicssvc.ErrInvalidPath),
		errors.Is(err, model.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrProbe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
