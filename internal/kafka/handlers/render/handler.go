package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-converter/internal/model"
)

// service defines the interface for running queued renders.
type service interface {
	Process(ctx context.Context, req model.Request) error
}

// Handler handles Kafka messages carrying render requests.
type Handler struct {
	service service
}

// NewHandler creates a new handler with the given service.
func NewHandler(s service) *Handler {
	return &Handler{service: s}
}

// Handle decodes the request in msg and renders it.
//
// Messages that can never succeed (malformed JSON or invalid actions) are
// logged and reported as handled so the consumer commits past them.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var req model.Request
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		zlog.Logger.Error().Err(err).Str("key", string(msg.Key)).Msg("dropping malformed render request")
		return nil
	}

	if err := h.service.Process(ctx, req); err != nil {
		var verr validator.ValidationErrors
		if errors.Is(err, model.ErrInvalidAction) || errors.As(err, &verr) {
			zlog.Logger.Error().Err(err).Str("request_id", req.ID.String()).Msg("dropping invalid render request")
			return nil
		}

		return fmt.Errorf("process render request %s: %w", req.ID, err)
	}

	zlog.Logger.Info().Str("request_id", req.ID.String()).Msg("render request processed")

	return nil
}
