package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zaintech991/ReguLens/internal/storage/models"
	"github.com/zaintech991/ReguLens/pkg/logger"
)

const DefaultChannel = "regulens:alerts"

type Client struct {
	client  *redis.Client
	channel string
}

func NewClient(ctx context.Context, host string, port int, password string, db int, channel string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	_, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if channel == "" {
		channel = DefaultChannel
	}

	logger.Info("Redis client initialized",
		zap.String("addr", fmt.Sprintf("%s:%d", host, port)),
		zap.String("channel", channel),
	)

	return &Client{client: client, channel: channel}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Channel() string {
	return c.channel
}

// PublishAlerts sends each alert as a JSON message on the alert channel.
// It stops at the first failure.
func (c *Client) PublishAlerts(ctx context.Context, alerts []models.Alert) error {
	for _, alert := range alerts {
		data, err := EncodeAlert(alert)
		if err != nil {
			return err
		}

		if err := c.client.Publish(ctx, c.channel, data).Err(); err != nil {
			return fmt.Errorf("failed to publish alert %s: %w", alert.AlertID, err)
		}
	}

	logger.Debug("Alerts published", zap.Int("count", len(alerts)), zap.String("channel", c.channel))
	return nil
}

// Subscribe returns a channel of alerts decoded from the alert feed. The
// subscription ends when ctx is done.
func (c *Client) Subscribe(ctx context.Context) (<-chan models.Alert, error) {
	sub := c.client.Subscribe(ctx, c.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", c.channel, err)
	}

	out := make(chan models.Alert)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var alert models.Alert
				if err := json.Unmarshal([]byte(msg.Payload), &alert); err != nil {
					logger.Warn("Dropping malformed alert message", zap.Error(err))
					continue
				}
				select {
				case out <- alert:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (c *Client) IncrementMetric(ctx context.Context, metricName string) error {
	return c.client.Incr(ctx, fmt.Sprintf("metric:%s", metricName)).Err()
}

func (c *Client) GetMetric(ctx context.Context, metricName string) (int64, error) {
	val, err := c.client.Get(ctx, fmt.Sprintf("metric:%s", metricName)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

func EncodeAlert(alert models.Alert) ([]byte, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alert %s: %w", alert.AlertID, err)
	}
	return data, nil
}
