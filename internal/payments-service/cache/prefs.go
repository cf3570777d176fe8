package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// UIPrefs são flags de interface por usuário (ex.: assistente de voz) no
// hash "prefs:{userID}"
type UIPrefs struct {
	Rdb *redis.Client
}

func NewUIPrefs(r *redis.Client) *UIPrefs { return &UIPrefs{Rdb: r} }

// ErrInvalidPreference indica chave desconhecida ou valor inválido
var ErrInvalidPreference = errors.New("invalid preference")

var uiDefaults = map[string]string{
	"voice_assistant_enabled":  "true",
	"voice_assistant_position": "bottom-right",
}

// Get devolve as preferências mescladas com os defaults
func (u *UIPrefs) Get(ctx context.Context, userID string) (map[string]string, error) {
	stored, err := u.Rdb.HGetAll(ctx, "prefs:"+userID).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(uiDefaults)+len(stored))
	for k, v := range uiDefaults {
		out[k] = v
	}
	for k, v := range stored {
		out[k] = v
	}
	return out, nil
}

// Set grava apenas chaves conhecidas
func (u *UIPrefs) Set(ctx context.Context, userID string, values map[string]string) error {
	fields := make([]any, 0, len(values)*2)
	for k, v := range values {
		if _, ok := uiDefaults[k]; !ok {
			return fmt.Errorf("%w: unknown preference %q", ErrInvalidPreference, k)
		}
		if k == "voice_assistant_enabled" {
			if _, err := strconv.ParseBool(v); err != nil {
				return fmt.Errorf("%w: %q must be a boolean", ErrInvalidPreference, k)
			}
		}
		fields = append(fields, k, v)
	}
	if len(fields) == 0 {
		return nil
	}
	if err := u.Rdb.HSet(ctx, "prefs:"+userID, fields...).Err(); err != nil {
		return fmt.Errorf("redis hset prefs: %w", err)
	}
	return nil
}
