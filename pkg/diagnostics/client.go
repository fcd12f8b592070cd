// Package diagnostics mirrors decoded ACU command responses into Redis so
// an external dashboard or logger can observe a live session without
// owning the serial port itself.
package diagnostics

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps a Redis connection with the handful of operations the
// mirror needs: hash writes with an accompanying pub/sub notification, and
// a raw event list for offline replay.
type Client struct {
	client *redis.Client
	ctx    context.Context
}

// NewClient connects to addr/db and verifies the connection with a PING.
func NewClient(addr, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("diagnostics: connecting to redis: %w", err)
	}

	return &Client{client: client, ctx: ctx}, nil
}

// WriteAndPublishString writes a string field into a hash and publishes
// the update on a channel named after the hash key.
func (c *Client) WriteAndPublishString(key, field, value string) error {
	pipe := c.client.Pipeline()
	pipe.HSet(c.ctx, key, field, value)
	pipe.Publish(c.ctx, key, fmt.Sprintf("%s:%s", field, value))
	_, err := pipe.Exec(c.ctx)
	return err
}

// WriteAndPublishFloat writes a float field into a hash and publishes the
// update on a channel named after the hash key.
func (c *Client) WriteAndPublishFloat(key, field string, value float32) error {
	return c.WriteAndPublishString(key, field, fmt.Sprintf("%g", value))
}

// WriteAndPublishInt writes an integer field into a hash and publishes the
// update on a channel named after the hash key.
func (c *Client) WriteAndPublishInt(key, field string, value int64) error {
	pipe := c.client.Pipeline()
	pipe.HSet(c.ctx, key, field, value)
	pipe.Publish(c.ctx, key, fmt.Sprintf("%s:%d", field, value))
	_, err := pipe.Exec(c.ctx)
	return err
}

// LogRawFrame pushes a raw, already-hex-encoded wire frame onto a capped
// event list for offline replay, trimming the list to the most recent
// 1000 entries.
func (c *Client) LogRawFrame(key, hexFrame string) error {
	pipe := c.client.Pipeline()
	pipe.LPush(c.ctx, key, hexFrame)
	pipe.LTrim(c.ctx, key, 0, 999)
	_, err := pipe.Exec(c.ctx)
	return err
}

// BRPop performs a blocking right pop, used by external tooling draining
// the raw-frame log; zero timeout blocks indefinitely.
func (c *Client) BRPop(timeout time.Duration, key string) ([]string, error) {
	result, err := c.client.BRPop(c.ctx, timeout, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("diagnostics: brpop %s: %w", key, err)
	}
	return result, nil
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}
