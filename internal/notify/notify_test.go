package notify

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedisNotifierSwallowsPublishErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	n := newRedisNotifier(client, "curvescope", zap.New(core))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n.Notify(ctx, Message{Kind: KindTradeRecorded, FAAddress: "0xaa", TxHash: "0x1"})

	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.ContextMap()["kind"] != KindTradeRecorded {
		t.Fatalf("unexpected log fields: %v", entry.ContextMap())
	}
}

func TestNewRedisNotifierValidates(t *testing.T) {
	if _, err := NewRedisNotifier(context.Background(), RedisConfig{Channel: "c"}, nil); err == nil {
		t.Fatalf("expected error for missing addr")
	}
	if _, err := NewRedisNotifier(context.Background(), RedisConfig{Addr: "localhost:6379"}, nil); err == nil {
		t.Fatalf("expected error for missing channel")
	}
}

func TestNopNotifier(t *testing.T) {
	var n Notifier = Nop{}
	n.Notify(context.Background(), Message{Kind: KindAssetCreated})
}
