package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fooddelivery/delivery-platform/internal/api/metrics"
	"github.com/fooddelivery/delivery-platform/internal/core/domain"
)

// TokenRepository stores lifecycle tokens as JSON values keyed by kind and
// raw token string. Keys carry no TTL: expiry is a lookup-time decision
// (confirmation deliberately ignores it), and consumed reset tokens are
// deleted explicitly.
type TokenRepository struct {
	client *redis.Client
}

func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{client: client}
}

func (r *TokenRepository) key(kind domain.LifecycleTokenKind, token string) string {
	return fmt.Sprintf("lifecycle:%s:%s", kind, token)
}

func (r *TokenRepository) Save(ctx context.Context, token *domain.LifecycleToken) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := r.client.Set(ctx, r.key(token.Kind, token.Token), payload, 0).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	metrics.TokensIssuedTotal.WithLabelValues(string(token.Kind)).Inc()
	return nil
}

func (r *TokenRepository) Find(ctx context.Context, kind domain.LifecycleTokenKind, token string) (*domain.LifecycleToken, error) {
	payload, err := r.client.Get(ctx, r.key(kind, token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	var record domain.LifecycleToken
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &record, nil
}

func (r *TokenRepository) Delete(ctx context.Context, kind domain.LifecycleTokenKind, token string) error {
	if err := r.client.Del(ctx, r.key(kind, token)).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
