package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRepo blacklists revoked access tokens in Redis. Logout writes
// the token's digest with a TTL equal to its remaining validity, so
// entries clean themselves up once the token would have expired anyway.
type SessionRepo struct{ rdb *redis.Client }

// NewSessionRepo returns a new SessionRepo on the given Redis client.
func NewSessionRepo(rdb *redis.Client) *SessionRepo { return &SessionRepo{rdb: rdb} }

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "token_blacklist:" + hex.EncodeToString(sum[:])
}

// Blacklist revokes the token until it expires. Tokens already past
// their expiry are ignored.
func (r *SessionRepo) Blacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, blacklistKey(token), "1", ttl).Err()
}

// IsBlacklisted reports whether the token has been revoked.
func (r *SessionRepo) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	err := r.rdb.Get(ctx, blacklistKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
