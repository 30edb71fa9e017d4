package processor

import (
	"errors"
	"fmt"
)

// 流水线各环节的哨兵错误，消费者据此决定重试还是落死信
var (
	ErrResumeDownloadFailed = errors.New("下载简历失败")
	ErrParseTextFailed      = errors.New("提取简历文本失败")
	ErrStoreTextFailed      = errors.New("上传解析文本失败")
	ErrPublishMessageFailed = errors.New("发布消息到分析队列失败")
	ErrUpdateStatusFailed   = errors.New("更新简历状态失败")
	ErrDatabaseFailed       = errors.New("数据库操作失败")
	ErrAnalysisFailed       = errors.New("简历分析流水线执行失败")
)

// ResumeProcessError 把哨兵错误与提交UUID、操作名、细节绑定在一起
type ResumeProcessError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *ResumeProcessError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
}

func (e *ResumeProcessError) Unwrap() error {
	return e.BaseErr
}

func (e *ResumeProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newProcessError(op string, base error, uuid, detail string) error {
	return &ResumeProcessError{
		SubmissionUUID: uuid,
		Op:             op,
		BaseErr:        base,
		Detail:         detail,
	}
}

func NewDownloadError(uuid, detail string) error {
	return newProcessError("download", ErrResumeDownloadFailed, uuid, detail)
}

func NewParseError(uuid, detail string) error {
	return newProcessError("parse", ErrParseTextFailed, uuid, detail)
}

func NewStoreError(uuid, detail string) error {
	return newProcessError("store", ErrStoreTextFailed, uuid, detail)
}

func NewPublishError(uuid, detail string) error {
	return newProcessError("publish", ErrPublishMessageFailed, uuid, detail)
}

func NewUpdateError(uuid, detail string) error {
	return newProcessError("update", ErrUpdateStatusFailed, uuid, detail)
}

func NewDatabaseError(uuid, detail string) error {
	return newProcessError("database", ErrDatabaseFailed, uuid, detail)
}

func NewAnalysisError(uuid, detail string) error {
	return newProcessError("analyze", ErrAnalysisFailed, uuid, detail)
}
