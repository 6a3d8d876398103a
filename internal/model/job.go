package model

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Job is one render call after planning. It is owned by a single render and
// never shared.
type Job struct {
	ID           uuid.UUID
	Input        string
	Output       string
	InputFormat  string
	OutputFormat string
	Background   string
	Quality      int
	Optimize     bool
	Timeout      time.Duration
	Size         Size
	Plans        []Plan
}

// Request is a render request as it travels through the queue.
type Request struct {
	ID        uuid.UUID `json:"id"`
	Input     string    `json:"input" validate:"required"`
	Output    string    `json:"output" validate:"required"`
	Actions   []Action  `json:"actions" validate:"dive"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the request and each of its actions.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	for _, a := range r.Actions {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Format derives the image format from a path extension. "jpeg" is
// normalised to "jpg".
func Format(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "jpeg":
		return "jpg"
	default:
		return ext
	}
}
