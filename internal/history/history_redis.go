package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTimeline 实现了 Timeline 接口，使用 Redis List 作为存储。
// 每个提交对应一个List，事件以JSON字符串追加，整个List带TTL，
// 过期后时间线自然消失，不需要额外清理任务。
type RedisTimeline struct {
	redisClient *redis.Client
	keyPrefix   string        // 例如 "app:timeline:"，避免键冲突
	ttl         time.Duration // 时间线的过期时间，0表示不过期
}

// NewRedisTimeline 创建一个新的 RedisTimeline 实例。
// redisClient: 已连接和配置好的 go-redis 客户端实例。
// keyPrefix: 所有时间线键的前缀。
// ttl: 时间线在 Redis 中的可选过期时间。
func NewRedisTimeline(redisClient *redis.Client, keyPrefix string, ttl time.Duration) (*RedisTimeline, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if keyPrefix == "" {
		keyPrefix = "app:timeline:"
	}

	return &RedisTimeline{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		ttl:         ttl,
	}, nil
}

var _ Timeline = (*RedisTimeline)(nil)

// buildKey 为给定的 submissionUUID 构建 Redis 键。
func (t *RedisTimeline) buildKey(submissionUUID string) string {
	return t.keyPrefix + submissionUUID
}

// RecordEvent 实现 Timeline 接口
func (t *RedisTimeline) RecordEvent(ctx context.Context, submissionUUID string, event StageEvent) error {
	if submissionUUID == "" {
		return fmt.Errorf("submissionUUID cannot be empty")
	}
	key := t.buildKey(submissionUUID)

	serialized, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stage event for submission %s: %w", submissionUUID, err)
	}

	// RPush与Expire放在一个事务管道里，保证TTL跟随写入刷新
	pipe := t.redisClient.TxPipeline()
	pipe.RPush(ctx, key, serialized)
	if t.ttl > 0 {
		pipe.Expire(ctx, key, t.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record stage event for submission %s: %w", submissionUUID, err)
	}
	return nil
}

// GetTimeline 实现 Timeline 接口
func (t *RedisTimeline) GetTimeline(ctx context.Context, submissionUUID string) ([]StageEvent, error) {
	key := t.buildKey(submissionUUID)

	serializedEvents, err := t.redisClient.LRange(ctx, key, 0, -1).Result()
	if errors.Is(err, redis.Nil) {
		return []StageEvent{}, nil // 键不存在，返回空时间线
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get timeline from redis for submission %s: %w", submissionUUID, err)
	}

	events := make([]StageEvent, 0, len(serializedEvents))
	for _, se := range serializedEvents {
		var event StageEvent
		if err := json.Unmarshal([]byte(se), &event); err != nil {
			// 单条损坏不让整个时间线不可读，跳过即可
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// ClearTimeline 实现 Timeline 接口
func (t *RedisTimeline) ClearTimeline(ctx context.Context, submissionUUID string) error {
	key := t.buildKey(submissionUUID)

	// 键不存在时 Del 返回0且无错误，不需要特殊处理
	if err := t.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear timeline from redis for submission %s: %w", submissionUUID, err)
	}
	return nil
}
