package port

import (
	"context"
	"time"
)

// TokenDenylist records revoked credential identifiers (jti) until their
// natural expiry. Logout is the only producer; principal resolution is the
// only consumer.
type TokenDenylist interface {
	MarkRevoked(ctx context.Context, jti string, reason string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, string, error)
}
