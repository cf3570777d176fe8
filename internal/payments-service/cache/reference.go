package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReferenceTTL é o tempo que uma referência fica reservada após o uso
const ReferenceTTL = 24 * time.Hour

// ReferenceGuard garante que cada referência de cliente seja despachada no
// máximo uma vez. A reserva não é liberada em falha: nova tentativa exige
// nova referência.
type ReferenceGuard struct {
	Rdb *redis.Client
	TTL time.Duration
}

func NewReferenceGuard(r *redis.Client) *ReferenceGuard {
	return &ReferenceGuard{Rdb: r, TTL: ReferenceTTL}
}

// Claim reserva "ref:{reference}" para o usuário. false significa que a
// referência já foi usada.
func (g *ReferenceGuard) Claim(ctx context.Context, reference, userID string) (bool, error) {
	ok, err := g.Rdb.SetNX(ctx, "ref:"+reference, userID, g.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim reference: %w", err)
	}
	return ok, nil
}

// Owner devolve o usuário que reservou a referência ("" se livre)
func (g *ReferenceGuard) Owner(ctx context.Context, reference string) (string, error) {
	v, err := g.Rdb.Get(ctx, "ref:"+reference).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}
