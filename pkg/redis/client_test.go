package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/krishimitra/marketplace-backend/pkg/config"
)

func TestPublishReachesChannel(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.Publish(ctx, "km:deals:changed", []byte(`{"event_type":"deal.created"}`)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(mock.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(mock.published))
	}
	if mock.published[0].channel != "km:deals:changed" {
		t.Fatalf("unexpected channel %s", mock.published[0].channel)
	}
}

func TestPingSurfacesBrokenConnection(t *testing.T) {
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}

	mock.pingErr = fmt.Errorf("connection refused")
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
}

func TestNilStoreGuards(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error for uninitialized client")
	}
	if err := client.Publish(context.Background(), "km:deals:changed", "x"); err == nil {
		t.Fatalf("expected error for uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on empty client should be a no-op, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error when neither url nor address is set")
	}

	opts, err := optionsFromConfig(config.RedisConfig{
		Address:      "localhost:6379",
		Password:     "secret",
		DB:           2,
		PoolSize:     20,
		MinIdleConns: 4,
		DialTimeout:  time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("address config not applied: %+v", opts)
	}
	if opts.PoolSize != 20 || opts.MinIdleConns != 4 {
		t.Fatalf("pool config not applied: %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://:pw@example.com:6380/3", PoolSize: 15})
	if err != nil {
		t.Fatalf("unexpected error parsing url: %v", err)
	}
	if opts.Addr != "example.com:6380" || opts.DB != 3 {
		t.Fatalf("url config not applied: %+v", opts)
	}
	if opts.PoolSize != 15 {
		t.Fatalf("expected pool size fallback from config, got %d", opts.PoolSize)
	}

	if _, err := optionsFromConfig(config.RedisConfig{URL: "://bad"}); err == nil {
		t.Fatalf("expected error for malformed url")
	}
}

type publishCall struct {
	channel string
	payload any
}

type mockCmdable struct {
	published []publishCall
	pingErr   error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	if m.pingErr != nil {
		return redis.NewStatusResult("", m.pingErr)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Publish(ctx context.Context, channel string, payload any) *redis.IntCmd {
	m.published = append(m.published, publishCall{channel: channel, payload: payload})
	return redis.NewIntResult(1, nil)
}
