package broadcaster

import (
	"context"
	"fmt"
	"log"
	"time"

	"rega/infra/outbox"

	"github.com/IBM/sarama"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const maxRetries = 5

// Broadcaster drains pending outbox entries and publishes them as
// change events. Events are protobuf-encoded structpb.Structs so
// consumers can decode them without a shared schema package.
type Broadcaster struct {
	box      *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(
	box *outbox.Outbox,
	brokers []string,
	topic string,
) (*Broadcaster, error) {

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		box:      box,
		producer: producer,
		topic:    topic,
	}, nil
}

// ------------------------------------------------
// START LOOP
// ------------------------------------------------

func (b *Broadcaster) Start(ctx context.Context) {
	log.Println("[broadcaster] started")

	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[broadcaster] stopped")
				return
			case <-ticker.C:
				if err := b.drain(); err != nil {
					log.Printf("[broadcaster] drain failed: %v", err)
				}
			}
		}
	}()
}

func (b *Broadcaster) drain() error {
	return b.box.ScanPending(func(seq uint64, e outbox.Entry) error {
		if e.Retries >= maxRetries {
			return nil // poisoned entry, leave for inspection
		}

		payload, err := encodeEvent(seq, e)
		if err != nil {
			return err
		}

		_, _, err = b.producer.SendMessage(&sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(fmt.Sprintf("%d", e.Index)),
			Value: sarama.ByteEncoder(payload),
		})
		if err != nil {
			_ = b.box.MarkFailed(seq, e.Retries+1)
			return nil // keep draining the rest
		}
		return b.box.MarkPublished(seq)
	})
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}

// ------------------------------------------------
// EVENT ENCODING
// ------------------------------------------------

func encodeEvent(seq uint64, e outbox.Entry) ([]byte, error) {
	st, err := structpb.NewStruct(map[string]any{
		"v":     1,
		"type":  opName(e.Op),
		"index": float64(e.Index),
		"seq":   float64(seq),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

func opName(op uint8) string {
	switch op {
	case 1:
		return "set"
	case 2:
		return "swap"
	case 3:
		return "cas"
	case 4:
		return "take"
	default:
		return "unknown"
	}
}
