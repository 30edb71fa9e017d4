package processor

import (
	"bytes"
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/parser"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

// overrideJobParser 用于验证选项覆盖位置参数传入的解析器
type overrideJobParser struct{}

func (overrideJobParser) ParseJobDescription(title, text string) *types.JobRequirements {
	return &types.JobRequirements{Title: "override"}
}

// deadRedisStorage 返回指向不可达地址的存储壳，命令立即失败。
// JDProcessor把缓存读写都当作尽力而为，解析路径不应受影响。
func deadRedisStorage() *storage.Storage {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	return &storage.Storage{Redis: &storage.Redis{Client: client}}
}

// TestNewJDProcessorValidation 测试构造参数校验与选项应用
func TestNewJDProcessorValidation(t *testing.T) {
	store := &storage.Storage{}

	_, err := NewJDProcessor(nil, store, "1.0")
	assert.Error(t, err)

	_, err = NewJDProcessor(stubJobParser{}, nil, "1.0")
	assert.Error(t, err)

	_, err = NewJDProcessor(stubJobParser{}, store, "")
	assert.Error(t, err)

	var buf bytes.Buffer
	custom := log.New(&buf, "[JDTest] ", 0)
	p, err := NewJDProcessor(stubJobParser{}, store, "1.0",
		WithJDParser(overrideJobParser{}),
		WithJDProcessorLogger(custom))
	require.NoError(t, err)

	// 选项晚于位置参数生效，解析器被替换
	assert.IsType(t, overrideJobParser{}, p.parser)
	// 初始化日志写到自定义logger
	assert.Contains(t, buf.String(), "初始化完成")
}

// TestJDProcessorParseAndCache 测试缓存不可用时解析依然成功
func TestJDProcessorParseAndCache(t *testing.T) {
	quiet := log.New(io.Discard, "", 0)
	p, err := NewJDProcessor(parser.NewJobAnalyzer(), deadRedisStorage(), "1.0",
		WithJDProcessorLogger(quiet))
	require.NoError(t, err)

	reqs, err := p.ParseAndCache(context.Background(), "job-1", "Backend Engineer", "5+ years of experience with Go")
	require.NoError(t, err)
	assert.Contains(t, reqs.RequiredSkills, "go")
	assert.Equal(t, types.ExperienceLevelSenior, reqs.ExperienceLevel)

	_, err = p.ParseAndCache(context.Background(), "", "t", "text")
	assert.Error(t, err)

	_, err = p.ParseAndCache(context.Background(), "job-1", "t", "")
	assert.Error(t, err)
}

// TestJDProcessorGetJobRequirements 测试缓存读取失败时回退到实时解析
func TestJDProcessorGetJobRequirements(t *testing.T) {
	quiet := log.New(io.Discard, "", 0)
	p, err := NewJDProcessor(parser.NewJobAnalyzer(), deadRedisStorage(), "1.0",
		WithJDProcessorLogger(quiet))
	require.NoError(t, err)

	reqs, err := p.GetJobRequirements(context.Background(), "job-2", "Data Analyst", "Proficient with SQL and Excel")
	require.NoError(t, err)
	assert.Contains(t, reqs.RequiredSkills, "sql")

	_, err = p.GetJobRequirements(context.Background(), "", "t", "text")
	assert.Error(t, err)
}
