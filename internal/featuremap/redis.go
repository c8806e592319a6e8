package featuremap

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Redis is a FeatureMap backed by a Redis instance, grounded on the
// teacher's query-api result cache: same connection-pool tuning, same
// ping-on-construct probe, same fall-back-to-disabled behavior when Redis is
// unreachable at startup so a misconfigured cache never takes the core
// down with it.
type Redis struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

// RedisConfig configures the Redis-backed FeatureMap.
type RedisConfig struct {
	Addr string
	TTL  time.Duration // zero uses a 5 minute default
}

// NewRedis connects to Redis at cfg.Addr. If the connection cannot be
// established, the returned FeatureMap is disabled: Upsert/Get become no-ops
// that report no value found, rather than failing every call.
func NewRedis(cfg RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		MaxRetries:      3,
		PoolSize:        10,
		MinIdleConns:    5,
		MaxIdleConns:    10,
		ConnMaxIdleTime: 5 * time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnf("featuremap: Redis at %s unreachable, disabling cache: %v", cfg.Addr, err)
		return &Redis{enabled: false}
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}

	log.Infof("featuremap: connected to Redis at %s", cfg.Addr)

	return &Redis{client: client, enabled: true, ttl: ttl}
}

func redisKey(groupKey, operatorID string) string {
	return fmt.Sprintf("feature:%s:%s", groupKey, operatorID)
}

// Upsert JSON-encodes feature and stores it under the key's TTL. A disabled
// cache silently drops the write.
func (r *Redis) Upsert(ctx context.Context, groupKey, operatorID string, feature TopKFeature) error {
	if !r.enabled {
		return nil
	}
	data, err := json.Marshal(feature)
	if err != nil {
		return fmt.Errorf("featuremap: marshal feature: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(groupKey, operatorID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("featuremap: redis set: %w", err)
	}
	return nil
}

// Get retrieves and JSON-decodes the feature stored under (groupKey,
// operatorID), if any. A disabled cache always reports no value found.
func (r *Redis) Get(ctx context.Context, groupKey, operatorID string) (TopKFeature, bool, error) {
	if !r.enabled {
		return TopKFeature{}, false, nil
	}
	val, err := r.client.Get(ctx, redisKey(groupKey, operatorID)).Result()
	if err == redis.Nil {
		return TopKFeature{}, false, nil
	}
	if err != nil {
		return TopKFeature{}, false, fmt.Errorf("featuremap: redis get: %w", err)
	}

	var feature TopKFeature
	if err := json.Unmarshal([]byte(val), &feature); err != nil {
		return TopKFeature{}, false, fmt.Errorf("featuremap: unmarshal feature: %w", err)
	}
	return feature, true, nil
}

// Close releases the underlying Redis connection pool.
func (r *Redis) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

var _ FeatureMap = (*Redis)(nil)
