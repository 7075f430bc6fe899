package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestDenylistRepository_MarkAndCheck(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewDenylistRepository(client, "railway:revoked")

	ctx := context.Background()
	ttl := 2 * time.Minute

	if err := repo.MarkRevoked(ctx, "jti-123", "logout", ttl); err != nil {
		t.Fatalf("MarkRevoked returned error: %v", err)
	}

	revoked, reason, err := repo.IsRevoked(ctx, "jti-123")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if !revoked {
		t.Fatalf("expected jti to be marked revoked")
	}
	if reason != "logout" {
		t.Fatalf("expected reason logout, got %s", reason)
	}

	remaining := server.TTL("railway:revoked:jti-123")
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}
}

func TestDenylistRepository_ExpiresWithCredential(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewDenylistRepository(client, "railway:revoked")

	ctx := context.Background()
	if err := repo.MarkRevoked(ctx, "jti-expiring", "logout", time.Minute); err != nil {
		t.Fatalf("MarkRevoked returned error: %v", err)
	}

	server.FastForward(2 * time.Minute)

	revoked, _, err := repo.IsRevoked(ctx, "jti-expiring")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if revoked {
		t.Fatalf("entry must expire with the credential")
	}
}

func TestDenylistRepository_IsRevokedMiss(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewDenylistRepository(client, "railway:revoked")

	revoked, reason, err := repo.IsRevoked(context.Background(), "missing")
	if err != nil {
		t.Fatalf("IsRevoked returned error: %v", err)
	}
	if revoked {
		t.Fatalf("expected revoked to be false")
	}
	if reason != "" {
		t.Fatalf("expected empty reason, got %s", reason)
	}
}

func TestDenylistRepository_InvalidInput(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewDenylistRepository(client, "railway:revoked")

	if err := repo.MarkRevoked(context.Background(), "", "reason", time.Minute); err == nil {
		t.Fatalf("expected error for empty jti")
	}
	if err := repo.MarkRevoked(context.Background(), "jti", "reason", 0); err == nil {
		t.Fatalf("expected error for non-positive ttl")
	}

	if _, _, err := repo.IsRevoked(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty jti in IsRevoked")
	}
}
