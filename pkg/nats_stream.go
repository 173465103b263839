package pkg

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSStream publishes to and replays from a JetStream stream, so
// reservation notices survive a notifier restart.
type NATSStream struct {
	conn     *nats.Conn
	js       jetstream.JetStream
	stream   jetstream.Stream
	consumer jetstream.Consumer
	durable  bool
	topic    string
}

var _ events.Stream = (*NATSStream)(nil)

type NATSStreamConfig struct {
	URL        string
	StreamName string // e.g. "RESERVATIONS"
	Topic      string // subject bound to the stream
	// ConsumerName names the durable consumer behind Fetch and
	// SubscribeStream; delivered messages are acked and not seen again.
	// Empty reads through an ephemeral ordered consumer that starts at the
	// oldest retained message and acks nothing.
	ConsumerName string
	MaxAge       time.Duration
	MaxMsgs      int64 // 0 keeps everything within MaxAge
}

// NewNATSStream ensures the stream exists, and the durable consumer when one
// is named.
func NewNATSStream(cfg NATSStreamConfig) (*NATSStream, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("seating-stream"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamConfig := jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.Topic},
		MaxAge:   cfg.MaxAge,
	}
	if cfg.MaxMsgs > 0 {
		streamConfig.MaxMsgs = cfg.MaxMsgs
	}

	stream, err := js.CreateOrUpdateStream(context.Background(), streamConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create/update stream %s: %w", cfg.StreamName, err)
	}

	s := &NATSStream{
		conn:   conn,
		js:     js,
		stream: stream,
		topic:  cfg.Topic,
	}

	if cfg.ConsumerName != "" {
		consumer, err := stream.CreateOrUpdateConsumer(context.Background(), jetstream.ConsumerConfig{
			Name:          cfg.ConsumerName,
			Durable:       cfg.ConsumerName,
			AckPolicy:     jetstream.AckExplicitPolicy,
			DeliverPolicy: jetstream.DeliverAllPolicy,
			FilterSubject: cfg.Topic,
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create/update consumer %s: %w", cfg.ConsumerName, err)
		}
		s.consumer, s.durable = consumer, true
	}

	return s, nil
}

func (s *NATSStream) Publish(ctx context.Context, topic string, msg []byte) error {
	if _, err := s.js.Publish(ctx, topic, msg); err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}
	return nil
}

// reader returns the configured durable consumer or, lacking one, a fresh
// ordered consumer. An ordered consumer serves either Fetch or
// SubscribeStream, not both.
func (s *NATSStream) reader(ctx context.Context) (jetstream.Consumer, error) {
	if s.consumer != nil {
		return s.consumer, nil
	}

	consumer, err := s.stream.OrderedConsumer(ctx, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{s.topic},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ordered consumer: %w", err)
	}
	s.consumer = consumer
	return consumer, nil
}

// Fetch pulls up to limit messages. A durable consumer acks what it returns.
func (s *NATSStream) Fetch(ctx context.Context, limit int) ([]events.StreamMessage, error) {
	if limit <= 0 {
		limit = 1000
	}

	consumer, err := s.reader(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := consumer.Fetch(limit, jetstream.FetchMaxWait(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []events.StreamMessage
	for msg := range batch.Messages() {
		metadata, err := msg.Metadata()
		if err != nil {
			s.ack(msg)
			continue
		}

		messages = append(messages, events.StreamMessage{
			Data:      msg.Data(),
			Sequence:  metadata.Sequence.Stream,
			Timestamp: metadata.Timestamp.UnixNano(),
		})
		s.ack(msg)
	}

	if err := batch.Error(); err != nil && ctx.Err() == nil {
		return messages, fmt.Errorf("fetch ended early: %w", err)
	}

	return messages, nil
}

// SubscribeStream hands every message to handler until ctx is done. On a
// durable consumer a handler error naks for redelivery.
func (s *NATSStream) SubscribeStream(ctx context.Context, handler events.HandlerFunc) error {
	consumer, err := s.reader(ctx)
	if err != nil {
		return err
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(ctx, msg.Data()); err != nil {
			if s.durable {
				msg.Nak()
			}
			return
		}
		s.ack(msg)
	})
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	go func() {
		<-ctx.Done()
		consumeCtx.Stop()
	}()
	return nil
}

func (s *NATSStream) ack(msg jetstream.Msg) {
	if s.durable {
		msg.Ack()
	}
}

func (s *NATSStream) Close() error {
	s.conn.Close()
	return nil
}
