package ws

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartRedisSubscriber escuta o canal de atualizações de carteira publicado
// pelo notification-worker e repassa cada mensagem ao Hub
func StartRedisSubscriber(ctx context.Context, log *zap.Logger, r *redis.Client, channel string, hub *Hub) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := hub.Dispatch([]byte(msg.Payload)); err != nil {
					log.Warn("ws subscriber unmarshal error", zap.Error(err))
				}
			}
		}
	}()
}
