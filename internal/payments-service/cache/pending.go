package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingReceipts guarda o último recibo de cada usuário em
// "receipt:pending:{userID}" até a página de sucesso consumi-lo
type PendingReceipts struct {
	Rdb *redis.Client
	TTL time.Duration
}

func NewPendingReceipts(r *redis.Client) *PendingReceipts {
	return &PendingReceipts{Rdb: r, TTL: 24 * time.Hour}
}

func pendingKey(userID string) string { return "receipt:pending:" + userID }

func (p *PendingReceipts) Put(ctx context.Context, userID string, payload []byte) error {
	return p.Rdb.Set(ctx, pendingKey(userID), payload, p.TTL).Err()
}

// Get devolve nil, nil quando não há recibo pendente
func (p *PendingReceipts) Get(ctx context.Context, userID string) ([]byte, error) {
	b, err := p.Rdb.Get(ctx, pendingKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (p *PendingReceipts) Clear(ctx context.Context, userID string) error {
	return p.Rdb.Del(ctx, pendingKey(userID)).Err()
}
