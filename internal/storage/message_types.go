package storage

import "time"

// ResumeUploadMessage 简历上传消息，由API层发布、上传消费者处理
type ResumeUploadMessage struct {
	SubmissionUUID      string    `json:"submission_uuid"`          // 提交UUID，主键
	SubmissionTimestamp time.Time `json:"submission_timestamp"`     // 提交时间戳
	SourceChannel       string    `json:"source_channel,omitempty"` // 来源渠道
	TargetJobID         string    `json:"target_job_id,omitempty"`  // 目标岗位ID
	OriginalFilename    string    `json:"original_filename"`        // 原始文件名
	OriginalFilePathOSS string    `json:"original_file_path_oss"`   // MinIO中的对象路径
	RawFileMD5          string    `json:"raw_file_md5,omitempty"`   // 原始文件的MD5，用于失败时回滚
}

// AnalysisTaskMessage 分析任务消息，上传消费者解析完文本后经发件箱发布
type AnalysisTaskMessage struct {
	SubmissionUUID    string `json:"submission_uuid"`                // 提交UUID
	TargetJobID       string `json:"target_job_id,omitempty"`        // 目标岗位ID，为空表示无岗位上下文分析
	ParsedTextPathOSS string `json:"parsed_text_path_oss"`           // 解析文本在MinIO中的路径
	ParsedTextMD5     string `json:"parsed_text_md5,omitempty"`      // 解析文本MD5
	ParserVersion     string `json:"parser_version,omitempty"`       // 解析器版本
	QueuedAtUnix      int64  `json:"queued_at_unix,omitempty"`       // 入队时间戳
}

// AnalysisCompletedEvent 分析完成的集成事件，发布给下游系统
type AnalysisCompletedEvent struct {
	SubmissionUUID string    `json:"submission_uuid"`
	JobID          string    `json:"job_id,omitempty"`
	OverallScore   int       `json:"overall_score"`
	JobType        string    `json:"job_type,omitempty"`
	Confidence     string    `json:"confidence,omitempty"`
	AnalysisStatus string    `json:"analysis_status"` // COMPLETED / FAILED
	CompletedAt    time.Time `json:"completed_at"`
	Error          string    `json:"error,omitempty"`
}
