package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInMemoryTimeline 测试内存实现的记录、查询与清除
func TestInMemoryTimeline(t *testing.T) {
	ctx := context.Background()
	tl := NewInMemoryTimeline()

	events := []StageEvent{
		{Stage: StageUploadReceived, Status: StatusOK, At: time.Now()},
		{Stage: StageTextExtracted, Status: StatusOK, At: time.Now()},
		{Stage: StageAnalysisFailed, Status: StatusFailed, Detail: "boom", At: time.Now()},
	}
	for _, ev := range events {
		require.NoError(t, tl.RecordEvent(ctx, "sub-1", ev))
	}
	require.NoError(t, tl.RecordEvent(ctx, "sub-2", StageEvent{Stage: StageUploadReceived, Status: StatusOK}))

	got, err := tl.GetTimeline(ctx, "sub-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, StageUploadReceived, got[0].Stage)
	assert.Equal(t, StageAnalysisFailed, got[2].Stage)
	assert.Equal(t, "boom", got[2].Detail)

	// 返回的是拷贝，调用方修改不影响内部状态
	got[0].Stage = "mutated"
	again, err := tl.GetTimeline(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, StageUploadReceived, again[0].Stage)

	// 不存在的提交返回空切片而不是 nil
	missing, err := tl.GetTimeline(ctx, "nope")
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)

	require.NoError(t, tl.ClearTimeline(ctx, "sub-1"))
	cleared, err := tl.GetTimeline(ctx, "sub-1")
	require.NoError(t, err)
	assert.Empty(t, cleared)

	// 另一个提交不受影响
	other, err := tl.GetTimeline(ctx, "sub-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

// TestInMemoryTimelineCanceledContext 测试取消的上下文直接返回错误
func TestInMemoryTimelineCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tl := NewInMemoryTimeline()
	assert.ErrorIs(t, tl.RecordEvent(ctx, "sub-1", StageEvent{}), context.Canceled)
	_, err := tl.GetTimeline(ctx, "sub-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, tl.ClearTimeline(ctx, "sub-1"), context.Canceled)
}

// TestNewRedisTimeline 测试构造参数校验与键前缀默认值
func TestNewRedisTimeline(t *testing.T) {
	_, err := NewRedisTimeline(nil, "", 0)
	assert.ErrorContains(t, err, "redis client cannot be nil")

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	tl, err := NewRedisTimeline(client, "", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "app:timeline:sub-1", tl.buildKey("sub-1"))

	custom, err := NewRedisTimeline(client, "resume:tl:", 0)
	require.NoError(t, err)
	assert.Equal(t, "resume:tl:sub-1", custom.buildKey("sub-1"))
}

// TestRedisTimelineRecordEventValidation 测试空 UUID 在触达 Redis 之前被拒绝
func TestRedisTimelineRecordEventValidation(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	tl, err := NewRedisTimeline(client, "", 0)
	require.NoError(t, err)

	err = tl.RecordEvent(context.Background(), "", StageEvent{Stage: StageUploadReceived})
	assert.ErrorContains(t, err, "submissionUUID cannot be empty")
}

// TestStageEventJSON 测试事件的序列化字段名与 omitempty 行为
func TestStageEventJSON(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	plain, err := json.Marshal(StageEvent{Stage: StageUploadReceived, Status: StatusOK, At: at})
	require.NoError(t, err)
	assert.Contains(t, string(plain), `"stage":"upload_received"`)
	assert.Contains(t, string(plain), `"status":"ok"`)
	assert.NotContains(t, string(plain), "detail")

	detailed, err := json.Marshal(StageEvent{Stage: StageContentDuplicate, Status: StatusSkipped, Detail: "md5:abc", At: at})
	require.NoError(t, err)
	assert.Contains(t, string(detailed), `"detail":"md5:abc"`)

	var decoded StageEvent
	require.NoError(t, json.Unmarshal(detailed, &decoded))
	assert.Equal(t, StageContentDuplicate, decoded.Stage)
	assert.True(t, decoded.At.Equal(at))
}
