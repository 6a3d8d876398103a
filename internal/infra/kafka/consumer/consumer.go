package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-converter/internal/config"
)

// fetchBackoff is the pause after a failed fetch before trying again.
const fetchBackoff = 500 * time.Millisecond

// messageHandler defines the interface for handling render request messages.
type messageHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// client is the part of the Kafka consumer the loop needs.
type client interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, msg kafka.Message) error
	Close() error
}

// Consumer reads render requests from Kafka and hands them to a handler.
// Offsets are committed only after the handler succeeds, so failed renders
// are redelivered after a restart or rebalance.
type Consumer struct {
	Client   client
	handler  messageHandler
	topic    string
	strategy retry.Strategy
}

// New creates a new Consumer.
// - cfg: Kafka configuration struct
// - s: retry strategy
// - h: handler for render request messages
func New(
	cfg *config.Kafka,
	s retry.Strategy,
	h messageHandler,
) *Consumer {
	return newConsumer(reader{wbfkafka.NewConsumer(cfg.Brokers, cfg.Topic, cfg.GroupID)}, cfg.Topic, s, h)
}

// reader adapts the wbf consumer to client.
type reader struct {
	c *wbfkafka.Consumer
}

func (r reader) Fetch(ctx context.Context) (kafka.Message, error) { return r.c.Fetch(ctx) }

func (r reader) Commit(ctx context.Context, msg kafka.Message) error { return r.c.Commit(ctx, msg) }

func (r reader) Close() error { return r.c.Close() }

func newConsumer(c client, topic string, s retry.Strategy, h messageHandler) *Consumer {
	return &Consumer{
		Client:   c,
		handler:  h,
		topic:    topic,
		strategy: s,
	}
}

// Consume fetches, handles and commits messages until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	zlog.Logger.Info().
		Str("topic", c.topic).
		Msg("starting consumer")

	for {
		if ctx.Err() != nil {
			zlog.Logger.Info().Msg("shutdown signal received, stopping consumer")
			return
		}

		var msg kafka.Message
		err := retry.Do(func() error {
			var fetchErr error
			msg, fetchErr = c.Client.Fetch(ctx)
			return fetchErr
		}, c.strategy)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			zlog.Logger.Err(err).Msg("failed to fetch message")

			select {
			case <-ctx.Done():
			case <-time.After(fetchBackoff):
			}
			continue
		}

		if err := c.handler.Handle(ctx, msg); err != nil {
			zlog.Logger.Err(err).
				Str("key", string(msg.Key)).
				Int64("offset", msg.Offset).
				Msg("failed to render request")
			continue
		}

		err = retry.Do(func() error {
			return c.Client.Commit(ctx, msg)
		}, c.strategy)
		if err != nil {
			zlog.Logger.Err(err).Int64("offset", msg.Offset).Msg("failed to commit message after retries")
			continue
		}

		zlog.Logger.Info().
			Int64("offset", msg.Offset).
			Str("key", string(msg.Key)).
			Msg("render request handled")
	}
}
