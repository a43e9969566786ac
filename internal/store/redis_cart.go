package store

import (
	"context"

	"greencart_back_end/internal/database"
)

// RedisCart implémente CartStore sur la clé cart:<user_id> (liste JSON).
type RedisCart struct{}

func NewRedisCart() *RedisCart { return &RedisCart{} }

func cartKey(userID string) string { return "cart:" + userID }

// Clear supprime complètement la clé — DEL sur une clé absente est un no-op,
// l'opération est donc rejouable sans risque.
func (r *RedisCart) Clear(ctx context.Context, userID string) error {
	return database.Redis.Del(ctx, cartKey(userID)).Err()
}
