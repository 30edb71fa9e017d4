package constants

import "time"

const (
	// 当前解析流程版本，写入 resume_submissions.parser_version
	DefaultParserVer = "1.0"

	// Redis键中的租户占位符，FormatKey 时替换为实际租户ID
	TenantPlaceholder = "{tenant}"

	// MD5去重集合（按租户隔离）
	ParsedTextMD5SetKey = "resumes:{tenant}:text_md5s" // 解析文本MD5集合

	// 缓存时长
	JDCacheDuration      = 24 * time.Hour
	RankingCacheDuration = 10 * time.Minute
	RankingLockDuration  = 30 * time.Second
	TimelineTTL          = 7 * 24 * time.Hour
)

// 简历提交处理状态机
const (
	StatusPendingParsing    = "PENDING_PARSING"           // 已上传，等待文本提取
	StatusQueuedForAnalysis = "QUEUED_FOR_ANALYSIS"       // 文本就绪，等待分析
	StatusAnalyzing         = "ANALYSIS_IN_PROGRESS"      // 分析流水线执行中
	StatusAnalysisCompleted = "ANALYSIS_COMPLETED"        // 分析完成
	StatusAnalysisFailed    = "ANALYSIS_FAILED"           // 分析失败
	StatusContentDuplicate  = "CONTENT_DUPLICATE_SKIPPED" // 内容重复，跳过处理
	StatusUploadFailed      = "UPLOAD_PROCESSING_FAILED"  // 上传阶段处理失败
)

// 分析记录状态（resume_analyses.analysis_status）
const (
	AnalysisStatusPending   = "PENDING"
	AnalysisStatusCompleted = "COMPLETED"
	AnalysisStatusFailed    = "FAILED"
)

// 上传接口响应状态
const (
	StatusSubmittedForProcessing = "SUBMITTED_FOR_PROCESSING" // 已受理，进入异步处理
	StatusDuplicateFileSkipped   = "DUPLICATE_FILE_SKIPPED"   // 文件级重复，未受理
)

// AllowedStatusesForAnalysis 允许进入分析阶段的提交状态。
// ANALYSIS_IN_PROGRESS 允许重入：worker崩溃后消息重投需要能继续处理。
var AllowedStatusesForAnalysis = map[string]bool{
	StatusQueuedForAnalysis: true,
	StatusAnalyzing:         true,
	StatusAnalysisFailed:    true,
}

// IsStatusAllowed 判断状态是否在允许集合内
func IsStatusAllowed(status string, allowed map[string]bool) bool {
	return allowed[status]
}

// Outbox事件类型
const (
	EventTypeAnalysisTask      = "resume.analysis.task"      // 待分析任务
	EventTypeAnalysisCompleted = "resume.analysis.completed" // 分析完成事件
)

// Outbox消息投递状态（outbox_messages.status）
const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)
