package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/yakubikk/railway-registry/internal/core/port"
)

const defaultDenylistPrefix = "railway:revoked"

// DenylistRepository tracks revoked credential identifiers in Redis. Entries
// carry the revocation reason and expire with the credential itself, so the
// set never outgrows the set of live sessions.
type DenylistRepository struct {
	client *red.Client
	prefix string
}

// NewDenylistRepository wires a Redis client into a denylist repository.
func NewDenylistRepository(client *red.Client, keyPrefix string) *DenylistRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultDenylistPrefix
	}

	return &DenylistRepository{client: client, prefix: prefix}
}

// MarkRevoked stores the jti with its reason for the supplied TTL, which
// should match the remaining life of the credential.
func (r *DenylistRepository) MarkRevoked(ctx context.Context, jti string, reason string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	key := r.key(jti)
	if key == "" {
		return errors.New("jti must not be empty")
	}

	if err := r.client.Set(ctx, key, reason, ttl).Err(); err != nil {
		return fmt.Errorf("redis set revoked jti: %w", err)
	}

	return nil
}

// IsRevoked reports whether the jti is on the denylist and returns the stored
// reason when present.
func (r *DenylistRepository) IsRevoked(ctx context.Context, jti string) (bool, string, error) {
	key := r.key(jti)
	if key == "" {
		return false, "", errors.New("jti must not be empty")
	}

	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return false, "", nil
		}
		return false, "", fmt.Errorf("redis get revoked jti: %w", err)
	}

	return true, value, nil
}

func (r *DenylistRepository) key(jti string) string {
	trimmed := strings.TrimSpace(jti)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.prefix, trimmed)
}

var _ port.TokenDenylist = (*DenylistRepository)(nil)
