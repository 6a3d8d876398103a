package respond

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/wb-go/wbf/ginext"
)

// Success represents a standard structure for successful responses.
type Success struct {
	Result interface{} `json:"result"`
}

// Error represents a standard structure for error responses.
type Error struct {
	Message string `json:"message"`
}

// Image streams the image file at path with its sniffed content type.
func Image(c *ginext.Context, path string) {
	f, err := os.Open(path)
	if err != nil {
		Fail(c, http.StatusInternalServerError, fmt.Errorf("open rendered image: %w", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		Fail(c, http.StatusInternalServerError, fmt.Errorf("stat rendered image: %w", err))
		return
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		Fail(c, http.StatusInternalServerError, fmt.Errorf("detect content type: %w", err))
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		Fail(c, http.StatusInternalServerError, fmt.Errorf("rewind rendered image: %w", err))
		return
	}

	c.Header("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	c.DataFromReader(http.StatusOK, info.Size(), mt.String(), f, nil)
}

// JSON sends a JSON response with the specified HTTP status code and data.
// It uses the Gin context to encode the data into JSON format.
func JSON(c *ginext.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// OK sends a 200 OK JSON response, wrapping the given result in a Success struct.
func OK(c *ginext.Context, result interface{}) {
	JSON(c, http.StatusOK, Success{Result: result})
}

// Fail sends an error JSON response with the specified HTTP status code.
// The error message is wrapped in an Error struct.
func Fail(c *ginext.Context, status int, err error) {
	JSON(c, status, Error{Message: err.Error()})
}
