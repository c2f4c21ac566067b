package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"colors-coach/internal/domain"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// Ambos backends cumplen el mismo contrato: guardar, consultar, expirar y revocar.
func TestRefreshTokenStores_Contract(t *testing.T) {
	mr, client := newMiniredisClient(t)
	backends := []struct {
		name   string
		store  RefreshTokenStore
		ttl    time.Duration
		expire func()
	}{
		{name: "memory", store: NewMemoryRefreshTokenStore(), ttl: 40 * time.Millisecond, expire: func() { time.Sleep(60 * time.Millisecond) }},
		{name: "redis", store: NewRedisRefreshTokenStore(client), ttl: time.Minute, expire: func() { mr.FastForward(2 * time.Minute) }},
	}
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			if ok, err := b.store.Exists("missing"); err != nil || ok {
				t.Fatalf("missing jti: got %v,%v", ok, err)
			}
			if err := b.store.Store("", "u1", time.Minute); err != nil {
				t.Fatalf("blank jti must be a no-op, got %v", err)
			}

			if err := b.store.Store("jti-exp", "u1", b.ttl); err != nil {
				t.Fatalf("store: %v", err)
			}
			if ok, err := b.store.Exists("jti-exp"); err != nil || !ok {
				t.Fatalf("expected stored jti, got %v,%v", ok, err)
			}
			b.expire()
			if ok, err := b.store.Exists("jti-exp"); err != nil || ok {
				t.Fatalf("expected expired jti, got %v,%v", ok, err)
			}

			if err := b.store.Store("jti-rev", "u1", time.Hour); err != nil {
				t.Fatalf("store: %v", err)
			}
			if err := b.store.Revoke("jti-rev"); err != nil {
				t.Fatalf("revoke: %v", err)
			}
			if ok, _ := b.store.Exists("jti-rev"); ok {
				t.Fatalf("expected revoked jti to be gone")
			}
		})
	}

	if got, err := mr.Get(refreshTokenPrefix + "jti-rev"); err == nil {
		t.Fatalf("revoked key still in redis: %q", got)
	}
}

func TestRedisRefreshTokenStore_DefaultTTL(t *testing.T) {
	mr, client := newMiniredisClient(t)
	store := NewRedisRefreshTokenStore(client)

	if err := store.Store(" j1 ", "u1", 0); err != nil {
		t.Fatalf("store: %v", err)
	}
	if got, err := mr.Get(refreshTokenPrefix + "j1"); err != nil || got != "u1" {
		t.Fatalf("unexpected stored value %q, %v", got, err)
	}
	if ttl := mr.TTL(refreshTokenPrefix + "j1"); ttl != defaultRefreshTTL {
		t.Fatalf("expected default ttl, got %v", ttl)
	}
	if NewRedisRefreshTokenStore(nil) != nil {
		t.Fatalf("expected nil store without client")
	}
}

type brokenKV struct{ err error }

func (b brokenKV) Set(ctx context.Context, _ string, _ interface{}, _ time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetErr(b.err)
	return cmd
}

func (b brokenKV) Exists(ctx context.Context, _ ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	cmd.SetErr(b.err)
	return cmd
}

func (b brokenKV) Del(ctx context.Context, _ ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	cmd.SetErr(b.err)
	return cmd
}

func TestRedisRefreshTokenStore_PropagatesErrors(t *testing.T) {
	down := errors.New("redis down")
	store := &redisRefreshTokenStore{client: brokenKV{err: down}, prefix: refreshTokenPrefix}

	if err := store.Store("j2", "u1", time.Minute); !errors.Is(err, down) {
		t.Fatalf("store: expected redis error, got %v", err)
	}
	if _, err := store.Exists("j2"); !errors.Is(err, down) {
		t.Fatalf("exists: expected redis error, got %v", err)
	}
	if err := store.Revoke("j2"); !errors.Is(err, down) {
		t.Fatalf("revoke: expected redis error, got %v", err)
	}
	if ok, err := store.Exists(" "); err != nil || ok {
		t.Fatalf("blank jti must not reach redis, got %v,%v", ok, err)
	}
}

func TestRedisRefreshTokenStore_RotationWithJWTService(t *testing.T) {
	_, client := newMiniredisClient(t)
	svc := NewJWTServiceWithStore("secret", time.Minute, time.Hour, NewRedisRefreshTokenStore(client))

	pair, err := svc.GeneratePair(domain.User{ID: "u1", Email: "ana@example.com", TeamName: "Ventas", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := svc.RefreshPair(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("refresh pair: %v", err)
	}
	if _, err := svc.RefreshPair(context.Background(), pair.RefreshToken); err == nil {
		t.Fatalf("expected reused refresh token to fail")
	}
}
