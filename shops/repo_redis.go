package shops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/redis/go-redis/v9"
)

const shopTokenKeyPrefix = "shop:token:"

// RedisRepo stores tokens in Redis so several instances share one install state.
type RedisRepo struct {
	client *redis.Client
}

// NewRedisRepo connects to url (e.g. "redis://localhost:6379/0") and pings it.
func NewRedisRepo(ctx context.Context, url string) (*RedisRepo, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("[shops NewRedisRepo] parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[shops NewRedisRepo] redis ping failed: %w", err)
	}
	return &RedisRepo{client: client}, nil
}

func (r *RedisRepo) Upsert(ctx context.Context, token Token) error {
	if token.Shop == "" {
		return fmt.Errorf("shop is required")
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("[shops RedisRepo] encode: %w", err)
	}
	return r.client.Set(ctx, shopTokenKeyPrefix+token.Shop, data, 0).Err()
}

func (r *RedisRepo) Get(ctx context.Context, shop string) (Token, error) {
	data, err := r.client.Get(ctx, shopTokenKeyPrefix+shop).Bytes()
	if errors.Is(err, redis.Nil) {
		return Token{}, errors.Wrapf(errors.ErrNotFound, "shop %s", shop)
	}
	if err != nil {
		return Token{}, fmt.Errorf("[shops RedisRepo] get %s: %w", shop, err)
	}
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return Token{}, fmt.Errorf("[shops RedisRepo] decode %s: %w", shop, err)
	}
	return t, nil
}

func (r *RedisRepo) Delete(ctx context.Context, shop string) error {
	return r.client.Del(ctx, shopTokenKeyPrefix+shop).Err()
}

func (r *RedisRepo) Close() error {
	return r.client.Close()
}
