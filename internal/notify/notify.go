// Package notify publishes derived-state changes for downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	KindAssetCreated  = "asset.created"
	KindTradeRecorded = "trade.recorded"
	KindPoolGraduated = "pool.graduated"
)

// Message is the JSON body published for every state change.
type Message struct {
	Kind      string `json:"kind"`
	FAAddress string `json:"fa_address"`
	TxHash    string `json:"tx_hash,omitempty"`
	Version   uint64 `json:"version,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Notifier delivers messages. Implementations are best-effort.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

type Nop struct{}

func (Nop) Notify(context.Context, Message) {}

// RedisConfig selects the server and channel for RedisNotifier.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisNotifier publishes messages on a Redis Pub/Sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisNotifier(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisNotifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if cfg.Channel == "" {
		return nil, fmt.Errorf("redis channel is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("redis notifier connected", zap.String("addr", cfg.Addr), zap.String("channel", cfg.Channel))
	return newRedisNotifier(rdb, cfg.Channel, logger), nil
}

func newRedisNotifier(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

// Notify publishes msg; failures are logged and swallowed.
func (n *RedisNotifier) Notify(ctx context.Context, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		n.logger.Warn("marshal notification failed", zap.String("kind", msg.Kind), zap.Error(err))
		return
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.logger.Warn("publish notification failed",
			zap.String("channel", n.channel),
			zap.String("kind", msg.Kind),
			zap.Error(err))
	}
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
