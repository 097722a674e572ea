package eventbus

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"wager-backend/internal/application/events"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter builds a writer for a comma separated broker list. The writer
// is async: WriteMessages only enqueues, and delivery failures are logged from
// the completion callback.
func NewKafkaWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		Async:                  true,
		Completion:             logDelivery,
	}
}

func logDelivery(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	log.Warn().Err(err).Int("messages", len(msgs)).Msg("kafka event delivery failed")
}

// KafkaPinger checks that the first reachable broker accepts connections.
type KafkaPinger struct {
	Brokers []string
}

func NewKafkaPinger(brokers string) *KafkaPinger {
	return &KafkaPinger{Brokers: strings.Split(brokers, ",")}
}

func (p *KafkaPinger) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var last error
	for _, b := range p.Brokers {
		conn, err := kafka.DialContext(ctx, "tcp", strings.TrimSpace(b))
		if err != nil {
			last = err
			continue
		}
		return conn.Close()
	}
	if last == nil {
		last = errors.New("no kafka brokers configured")
	}
	return last
}

// KafkaPublisher writes ledger events to a topic, keyed by game id so one
// game's events stay ordered within a partition.
type KafkaPublisher struct {
	Writer MessageWriter
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) Emit(ctx context.Context, e events.Event) error {
	b, err := events.Marshal(e)
	if err != nil {
		return err
	}
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(e.GameID), 10)),
		Value: b,
		Time:  at,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(e.Kind)},
		},
	})
}
