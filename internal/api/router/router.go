package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/image-converter/internal/api/handlers/graphics"
	"github.com/aliskhannn/image-converter/internal/api/respond"
)

func Setup(h *graphics.Handler) *ginext.Engine {
	r := ginext.New()

	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	r.GET("/health", func(c *ginext.Context) { respond.OK(c, "ok") })
	r.GET("/graphics/*file", h.Render) // rendering a cached variant

	return r
}
