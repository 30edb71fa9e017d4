package history

import (
	"context"
	"sync"
	"time"
)

// 流水线阶段名，事件记录与查询两侧共用
const (
	StageUploadReceived    = "upload_received"     // 原始文件已入库并进入队列
	StageTextExtracted     = "text_extracted"      // 文本提取完成
	StageContentDuplicate  = "content_duplicate"   // 内容重复，处理终止
	StageQueuedForAnalysis = "queued_for_analysis" // 分析任务已写入outbox
	StageAnalysisStarted   = "analysis_started"    // 分析流水线开始执行
	StageAnalysisCompleted = "analysis_completed"  // 分析结果已落库
	StageAnalysisFailed    = "analysis_failed"     // 分析失败
)

// 事件状态
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// StageEvent 单条流水线阶段事件
type StageEvent struct {
	Stage  string    `json:"stage"`
	Status string    `json:"status"`
	Detail string    `json:"detail,omitempty"` // 附加说明，如失败原因或重复内容的MD5
	At     time.Time `json:"at"`
}

// Timeline 按提交维度记录流水线事件的存储接口。
// 记录是尽力而为的运维辅助，实现不应因为记录失败影响主流程。
type Timeline interface {
	// RecordEvent 向指定提交的时间线追加一条事件
	RecordEvent(ctx context.Context, submissionUUID string, event StageEvent) error

	// GetTimeline 获取指定提交的全部事件，按记录顺序返回。
	// 提交不存在时返回空切片和 nil 错误。
	GetTimeline(ctx context.Context, submissionUUID string) ([]StageEvent, error)

	// ClearTimeline 清除指定提交的全部事件。
	// 提交不存在时静默成功。
	ClearTimeline(ctx context.Context, submissionUUID string) error
}

// InMemoryTimeline 是 Timeline 接口的内存实现。
// 注意：不做持久化，仅用于测试和单机调试。
type InMemoryTimeline struct {
	// 读写锁以支持并发访问
	mu sync.RWMutex
	// events map 的键是 submissionUUID，值是该提交的事件列表
	events map[string][]StageEvent
}

// NewInMemoryTimeline 创建一个新的 InMemoryTimeline 实例。
func NewInMemoryTimeline() *InMemoryTimeline {
	return &InMemoryTimeline{
		events: make(map[string][]StageEvent),
	}
}

var _ Timeline = (*InMemoryTimeline)(nil)

// RecordEvent 实现 Timeline 接口
func (m *InMemoryTimeline) RecordEvent(ctx context.Context, submissionUUID string, event StageEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[submissionUUID] = append(m.events[submissionUUID], event)
	return nil
}

// GetTimeline 实现 Timeline 接口
func (m *InMemoryTimeline) GetTimeline(ctx context.Context, submissionUUID string) ([]StageEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	events, ok := m.events[submissionUUID]
	if !ok {
		// 不存在时返回空切片而不是 nil，方便调用者处理
		return []StageEvent{}, nil
	}
	out := make([]StageEvent, len(events))
	copy(out, events)
	return out, nil
}

// ClearTimeline 实现 Timeline 接口
func (m *InMemoryTimeline) ClearTimeline(ctx context.Context, submissionUUID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, submissionUUID)
	return nil
}
