package producer

import (
	"context"
	"encoding/json"
	"fmt"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/image-converter/internal/config"
	"github.com/aliskhannn/image-converter/internal/model"
)

// Producer represents a Kafka producer.
type Producer struct {
	Client   *wbfkafka.Producer
	strategy retry.Strategy
	cfg      *config.Kafka
}

// New creates a new Producer.
// - cfg: Kafka configuration struct
// - s: retry strategy
func New(
	cfg *config.Kafka,
	s retry.Strategy,
) *Producer {
	producer := wbfkafka.NewProducer(cfg.Brokers, cfg.Topic)

	return &Producer{
		Client:   producer,
		cfg:      cfg,
		strategy: s,
	}
}

// Produce serializes the render request to JSON and sends it to Kafka.
// The output object is the message key, so renders of the same target land
// on one partition in order.
func (p *Producer) Produce(ctx context.Context, req model.Request) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid render request: %w", err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal render request: %w", err)
	}

	if err = p.Client.SendWithRetry(ctx, p.strategy, []byte(req.Output), data); err != nil {
		return fmt.Errorf("failed to send render request: %w", err)
	}

	return nil
}
