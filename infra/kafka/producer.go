package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer publishes low-volume control messages, currently snapshot
// markers. Change events go through the sarama broadcaster; this writer
// exists so snapshot announcements don't compete with the event stream.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Announce publishes a snapshot-completed marker keyed by the covering
// sequence, so consumers can dedupe repeated announcements and know how
// far the durable image reaches.
func (p *Producer) Announce(ctx context.Context, seq uint64) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(seq, 10)),
		Value: []byte(time.Now().UTC().Format(time.RFC3339)),
	})
}

// Send publishes an arbitrary key/value message.
func (p *Producer) Send(
	ctx context.Context,
	key []byte,
	value []byte,
) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
