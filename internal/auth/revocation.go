package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:jti:"

// RevocationList invalidates issued tokens before their natural expiry.
// Entries only need to live as long as the token they shadow.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocationList stores revoked jtis in Redis with a TTL.
type RedisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList creates a Redis-backed revocation list.
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

// Revoke marks the jti as invalid until the token would have expired.
func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether the jti was revoked. Key existence is the marker.
func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// NoopRevocationList is used when Redis is not configured: logout becomes a
// client-side action and expiry is the only invalidation mechanism.
type NoopRevocationList struct{}

func (NoopRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return nil
}

func (NoopRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return false, nil
}
