package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/ovo-banking-gateway/internal/shared/alerts"
	"github.com/radieske/ovo-banking-gateway/pkg/contracts/events"
)

// errPoison marca mensagens que nunca serão processáveis (sem retry)
var errPoison = errors.New("poison message")

const retries = 3

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Store interface {
	Preferences(ctx context.Context, userID string) (alerts.Preferences, error)
	InsertNotification(ctx context.Context, n events.Notification) (bool, error)
}

type Broadcaster interface {
	Publish(ctx context.Context, u events.WalletUpdate) error
}

// Processor consome transaction_events, aplica as regras de alerta,
// grava as notificações e avisa o hub WebSocket via Redis
type Processor struct {
	Log         *zap.Logger
	Reader      messageReader
	Repo        Store
	Broadcaster Broadcaster
	DLQ         messageWriter // opcional
	Now         func() time.Time
	Backoff     time.Duration // base do retry; default 300ms

	OnConsumed func()       // métricas
	OnNotified func(string) // métricas por tipo de alerta
	OnError    func(string) // métricas por fase
}

// Run inicia o loop de consumo. Erros transitórios são repetidos algumas
// vezes; depois disso a mensagem vai para a DLQ (ou é descartada sem DLQ)
// e o offset é confirmado.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			p.stage("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		err = p.Handle(ctx, m.Value)
		for i := 0; err != nil && !errors.Is(err, errPoison) && i < retries; i++ {
			if !p.sleep(ctx, p.backoff()*time.Duration(i+1)) {
				return ctx.Err()
			}
			err = p.Handle(ctx, m.Value)
		}
		if err != nil {
			p.Log.Error("transaction event not processed",
				zap.String("key", string(m.Key)),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			p.deadLetter(ctx, m, err)
		}

		if err := p.Reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			p.Log.Warn("kafka commit failed", zap.Error(err))
			p.stage("commit")
		}
	}
}

// Handle processa um evento já lido do tópico
func (p *Processor) Handle(ctx context.Context, raw []byte) error {
	var ev events.TransactionEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		p.stage("decode")
		return fmt.Errorf("%w: decode event: %v", errPoison, err)
	}
	if ev.UserID == "" {
		p.stage("decode")
		return fmt.Errorf("%w: event %q without user_id", errPoison, ev.Reference)
	}

	prefs, err := p.Repo.Preferences(ctx, ev.UserID)
	if err != nil {
		p.stage("preferences")
		return err
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	notes := alerts.Build(ev, prefs, now())

	published := false
	for i := range notes {
		n := notes[i]
		inserted, err := p.Repo.InsertNotification(ctx, n)
		if err != nil {
			p.stage("db_insert")
			return err
		}
		if !inserted {
			p.Log.Debug("notification already stored", zap.String("reference", n.Reference), zap.String("type", n.Type))
			continue
		}
		if p.OnNotified != nil {
			p.OnNotified(n.Type)
		}
		upd := events.WalletUpdate{UserID: ev.UserID, Notification: &n, Ts: n.CreatedAt}
		if !published {
			upd.BalanceKobo = ev.BalanceKobo
		}
		p.publish(ctx, upd)
		published = true
	}

	// alertas desligados: o saldo ainda precisa chegar ao cliente
	if !published && ev.BalanceKobo != nil && len(notes) == 0 {
		p.publish(ctx, events.WalletUpdate{UserID: ev.UserID, BalanceKobo: ev.BalanceKobo, Ts: now()})
	}
	return nil
}

// publish é melhor esforço: a notificação já está gravada
func (p *Processor) publish(ctx context.Context, u events.WalletUpdate) {
	pctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := p.Broadcaster.Publish(pctx, u); err != nil {
		p.Log.Warn("wallet update publish failed", zap.String("userId", u.UserID), zap.Error(err))
		p.stage("publish")
	}
}

func (p *Processor) backoff() time.Duration {
	if p.Backoff > 0 {
		return p.Backoff
	}
	return 300 * time.Millisecond
}

func (p *Processor) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, cause error) {
	if p.DLQ == nil {
		p.Log.Warn("event dropped, no dlq configured", zap.Int64("offset", m.Offset))
		p.stage("dropped")
		return
	}
	err := p.DLQ.WriteMessages(ctx, kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(cause.Error())},
			{Key: "source_offset", Value: []byte(fmt.Sprint(m.Offset))},
		},
	})
	if err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		p.stage("dlq")
	}
}

func (p *Processor) stage(name string) {
	if p.OnError != nil {
		p.OnError(name)
	}
}
