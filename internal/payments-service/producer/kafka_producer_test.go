package producer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

type captureWriter struct{ msgs []kafka.Message }

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func TestPublishTransactionKeysByUser(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaPublisher(w)

	err := p.PublishTransaction(context.Background(), events.TransactionEvent{
		Type: events.TypeTransactionCompleted, UserID: "u1", Reference: "r1", AmountKobo: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "u1" {
		t.Fatalf("msgs = %+v", w.msgs)
	}

	var got events.TransactionEvent
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatal(err)
	}
	if got.Reference != "r1" || got.Ts.IsZero() {
		t.Errorf("event = %+v", got)
	}
}
