package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"attrgo/internal/domain"
	"attrgo/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// RedisRecordMirror implements domain.RecordMirror on Redis. Keys carry the
// same rolling TTL as the attribution cookie, so server-side state expires in
// step with the browser copy.
type RedisRecordMirror struct {
	client *redis.Client
	logger *logger.Logger
}

// NewRedisRecordMirror connects a mirror to the given Redis instance.
func NewRedisRecordMirror(addr, password string, log *logger.Logger) *RedisRecordMirror {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	return &RedisRecordMirror{
		client: client,
		logger: log,
	}
}

func mirrorKey(siteID, visitorID string) string {
	return fmt.Sprintf("attribution:%s:%s", siteID, visitorID)
}

// Ping verifies connectivity at startup.
func (m *RedisRecordMirror) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

func (m *RedisRecordMirror) Put(ctx context.Context, siteID, visitorID string, record domain.Record, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}

	if err := m.client.Set(ctx, mirrorKey(siteID, visitorID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write record mirror: %w", err)
	}

	return nil
}

func (m *RedisRecordMirror) Get(ctx context.Context, siteID, visitorID string) (*domain.Record, error) {
	value, err := m.client.Get(ctx, mirrorKey(siteID, visitorID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record mirror: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		// A corrupt mirror entry is treated like a miss, matching the
		// cookie store's tolerance for bad stored state.
		m.logger.WithError(err).WithFields(map[string]interface{}{
			"site_id":    siteID,
			"visitor_id": visitorID,
		}).Warn("Failed to parse mirrored attribution record")
		return nil, nil
	}

	return &record, nil
}

// Close releases the underlying Redis connection.
func (m *RedisRecordMirror) Close() error {
	return m.client.Close()
}
