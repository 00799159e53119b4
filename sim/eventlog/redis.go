package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// PublisherConfig configures the Redis list publisher.
type PublisherConfig struct {
	Addr      string
	Password  string
	DB        int
	Key       string
	BatchSize int // records per RPUSH; 0 means 500
}

// listPusher is the subset of *redis.Client the publisher needs.
type listPusher interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Close() error
}

// Publisher pushes records as JSON lines onto a Redis list, in log order,
// so a list-popping consumer sees them oldest first.
type Publisher struct {
	client    listPusher
	key       string
	batchSize int
}

// NewPublisher creates a Redis list publisher.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("redis key is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newPublisher(client, cfg.Key, cfg.BatchSize), nil
}

func newPublisher(client listPusher, key string, batchSize int) *Publisher {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Publisher{client: client, key: key, batchSize: batchSize}
}

// Publish pushes all records and returns how many were accepted by Redis.
// On error the count covers only the batches pushed before the failure.
func (p *Publisher) Publish(ctx context.Context, records []Record) (int, error) {
	pushed := 0
	for start := 0; start < len(records); start += p.batchSize {
		end := min(start+p.batchSize, len(records))
		values := make([]interface{}, 0, end-start)
		for _, r := range records[start:end] {
			line, err := json.Marshal(r)
			if err != nil {
				return pushed, fmt.Errorf("encoding record %d: %w", start+len(values), err)
			}
			values = append(values, line)
		}
		if err := p.client.RPush(ctx, p.key, values...).Err(); err != nil {
			return pushed, fmt.Errorf("pushing records %d..%d to %s: %w", start, end-1, p.key, err)
		}
		pushed += len(values)
		logrus.Debugf("pushed %d records to redis list %s", pushed, p.key)
	}
	return pushed, nil
}

// Close closes the underlying client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
