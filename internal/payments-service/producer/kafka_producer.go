package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica eventos de transação; a chave é o userId para
// manter a ordem por usuário na mesma partição
type KafkaPublisher struct {
	Writer messageWriter
	now    func() time.Time
}

func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, now: time.Now}
}

func (p *KafkaPublisher) PublishTransaction(ctx context.Context, e events.TransactionEvent) error {
	if e.Ts.IsZero() {
		e.Ts = p.now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.UserID), Value: b, Time: e.Ts}); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}
