package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/history"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/processor"
	storage2 "resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/types"
	"resume-match-go/pkg/utils"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
	"gorm.io/gorm"
)

// presignedURLExpiry 查询接口返回的原始文件下载链接有效期
const presignedURLExpiry = 15 * time.Minute

// ResumeHandler 简历提交的接入层：受理上传、查询处理进度与分析结果，
// 并提供不落库的同步分析接口。
type ResumeHandler struct {
	cfg      *config.Config
	storage  *storage2.Storage
	pipeline *processor.ResumeProcessor // 同步分析接口使用的流水线
	timeline history.Timeline           // 可选，处理阶段时间线
}

// NewResumeHandler 创建一个新的简历处理器
func NewResumeHandler(
	cfg *config.Config,
	storage *storage2.Storage,
	pipeline *processor.ResumeProcessor,
	timeline history.Timeline,
) *ResumeHandler {
	return &ResumeHandler{
		cfg:      cfg,
		storage:  storage,
		pipeline: pipeline,
		timeline: timeline,
	}
}

// ResumeUploadResponse 简历上传响应
type ResumeUploadResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
	// ExistingSubmissionUUID 文件级重复时给出首次上传的提交UUID
	ExistingSubmissionUUID string `json:"existing_submission_uuid,omitempty"`
}

// HandleResumeUpload 处理简历上传请求。
// POST /api/v1/resumes/upload (multipart: file, target_job_id, source_channel)
//
// 文件边上传MinIO边计算MD5，之后以MD5做文件级去重：
// 命中时删除刚上传的对象并返回409与已有提交的UUID。
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "文件未找到"})
		return
	}

	maxBytes := int64(h.cfg.Server.MaxUploadSizeMB) * 1024 * 1024
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		c.JSON(consts.StatusRequestEntityTooLarge, map[string]string{
			"error": "文件超过大小限制",
		})
		return
	}

	targetJobID := c.PostForm("target_job_id")
	sourceChannel := c.PostForm("source_channel")
	if sourceChannel == "" {
		sourceChannel = "web_upload"
	}

	uuidV7, err := uuid.NewV7()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "生成提交UUID失败"})
		return
	}
	submissionUUID := uuidV7.String()

	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = ".pdf"
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "打开文件失败"})
		return
	}
	defer file.Close()

	// 1. 流式上传并同步计算文件MD5
	objectKey, fileMD5Hex, err := h.storage.MinIO.UploadResumeFileStreaming(ctx, submissionUUID, ext, file, fileHeader.Size)
	if err != nil {
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("上传简历到MinIO失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "存储文件失败"})
		return
	}

	// 2. 文件MD5去重。去重是关键逻辑，Redis失败时拒绝请求而不是放过重复文件
	exists, existingUUID, err := h.storage.Redis.CheckAndSetFileMD5(ctx, fileMD5Hex, submissionUUID)
	if err != nil {
		logger.Error().Err(err).Str("md5", fileMD5Hex).Msg("检查文件MD5重复性失败")
		h.cleanupObject(ctx, objectKey)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "检查文件重复性失败"})
		return
	}
	if exists {
		logger.Info().
			Str("md5", fileMD5Hex).
			Str("filename", fileHeader.Filename).
			Str("existing_submission_uuid", existingUUID).
			Msg("检测到重复的文件MD5，跳过处理")
		h.cleanupObject(ctx, objectKey)
		c.JSON(consts.StatusConflict, ResumeUploadResponse{
			Status:                 constants.StatusDuplicateFileSkipped,
			ExistingSubmissionUUID: existingUUID,
		})
		return
	}

	// 3. 创建提交记录
	submission := models.ResumeSubmission{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: time.Now(),
		SourceChannel:       sourceChannel,
		OriginalFilename:    fileHeader.Filename,
		OriginalFilePathOSS: objectKey,
		RawFileMD5:          fileMD5Hex,
		ProcessingStatus:    constants.StatusPendingParsing,
	}
	if targetJobID != "" {
		submission.TargetJobID = utils.StringPtr(targetJobID)
	}
	if err := h.storage.MySQL.BatchInsertResumeSubmissions(ctx, []models.ResumeSubmission{submission}); err != nil {
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("插入简历提交记录失败")
		h.releaseFileMD5(ctx, fileMD5Hex)
		h.cleanupObject(ctx, objectKey)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "创建提交记录失败"})
		return
	}

	// 4. 投递上传事件，由消费者异步完成文本提取与分析编排
	message := storage2.ResumeUploadMessage{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: submission.SubmissionTimestamp,
		SourceChannel:       sourceChannel,
		TargetJobID:         targetJobID,
		OriginalFilename:    fileHeader.Filename,
		OriginalFilePathOSS: objectKey,
		RawFileMD5:          fileMD5Hex,
	}
	err = h.storage.RabbitMQ.PublishJSON(
		ctx,
		h.cfg.RabbitMQ.ResumeEventsExchange,
		h.cfg.RabbitMQ.UploadedRoutingKey,
		message,
		true, // 持久化
	)
	if err != nil {
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("发布上传事件到RabbitMQ失败")
		if updateErr := h.storage.MySQL.UpdateResumeProcessingStatus(ctx, submissionUUID, constants.StatusUploadFailed); updateErr != nil {
			logger.Error().Err(updateErr).Str("submission_uuid", submissionUUID).Msg("更新状态为失败时出错")
		}
		h.releaseFileMD5(ctx, fileMD5Hex)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "提交处理任务失败"})
		return
	}

	h.recordUploadReceived(ctx, submissionUUID)

	logger.Info().
		Str("submission_uuid", submissionUUID).
		Str("filename", fileHeader.Filename).
		Str("source_channel", sourceChannel).
		Msg("简历上传受理成功")

	c.JSON(consts.StatusOK, ResumeUploadResponse{
		SubmissionUUID: submissionUUID,
		Status:         constants.StatusSubmittedForProcessing,
	})
}

// cleanupObject 删除MinIO中刚上传的对象，失败只记录
func (h *ResumeHandler) cleanupObject(ctx context.Context, objectKey string) {
	if err := h.storage.MinIO.DeleteFile(ctx, objectKey); err != nil {
		logger.Warn().Err(err).Str("object_key", objectKey).Msg("清理MinIO对象失败")
	}
}

// releaseFileMD5 释放已登记的文件MD5，允许同一文件重新上传
func (h *ResumeHandler) releaseFileMD5(ctx context.Context, md5Hex string) {
	if err := h.storage.Redis.RemoveRawFileMD5(ctx, md5Hex); err != nil {
		logger.Warn().Err(err).Str("md5", md5Hex).Msg("释放文件MD5失败")
	}
}

// recordUploadReceived 记录受理事件到处理时间线，尽力而为
func (h *ResumeHandler) recordUploadReceived(ctx context.Context, submissionUUID string) {
	if h.timeline == nil {
		return
	}
	event := history.StageEvent{
		Stage:  history.StageUploadReceived,
		Status: history.StatusOK,
		At:     time.Now(),
	}
	if err := h.timeline.RecordEvent(ctx, submissionUUID, event); err != nil {
		logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("记录上传时间线失败")
	}
}

// HandleGetSubmission 查询单个提交的处理状态。
// GET /api/v1/resumes/:submission_uuid
func (h *ResumeHandler) HandleGetSubmission(ctx context.Context, c *app.RequestContext) {
	submissionUUID := c.Param("submission_uuid")
	if submissionUUID == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "submission_uuid 不能为空"})
		return
	}

	submission, err := h.storage.MySQL.GetResumeSubmission(ctx, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(consts.StatusNotFound, map[string]string{"error": "提交记录不存在"})
			return
		}
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("查询提交记录失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "查询提交记录失败"})
		return
	}

	resp := map[string]interface{}{
		"submission_uuid":   submission.SubmissionUUID,
		"processing_status": submission.ProcessingStatus,
		"original_filename": submission.OriginalFilename,
		"source_channel":    submission.SourceChannel,
		"parser_version":    submission.ParserVersion,
		"submitted_at":      submission.SubmissionTimestamp,
		"updated_at":        submission.UpdatedAt,
	}
	if submission.TargetJobID != nil {
		resp["target_job_id"] = *submission.TargetJobID
	}
	if submission.CandidateID != nil {
		resp["candidate_id"] = *submission.CandidateID
	}
	if submission.OriginalFilePathOSS != "" {
		// 预签名URL生成失败不影响主流程，只是响应里缺少下载链接
		if url, err := h.storage.MinIO.GetPresignedURL(ctx, submission.OriginalFilePathOSS, presignedURLExpiry); err != nil {
			logger.Warn().Err(err).Str("submission_uuid", submissionUUID).Msg("生成原始文件预签名URL失败")
		} else {
			resp["original_file_url"] = url
		}
	}
	c.JSON(consts.StatusOK, resp)
}

// HandleGetAnalysis 查询一次提交的分析报告。
// GET /api/v1/resumes/:submission_uuid/analysis?job_id=xxx
// job_id 为空时返回无岗位上下文的分析记录。
func (h *ResumeHandler) HandleGetAnalysis(ctx context.Context, c *app.RequestContext) {
	submissionUUID := c.Param("submission_uuid")
	if submissionUUID == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "submission_uuid 不能为空"})
		return
	}
	jobID := c.Query("job_id")

	analysis, err := h.storage.MySQL.GetResumeAnalysis(ctx, submissionUUID, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(consts.StatusNotFound, map[string]string{"error": "分析结果不存在"})
			return
		}
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("查询分析结果失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "查询分析结果失败"})
		return
	}

	resp := map[string]interface{}{
		"submission_uuid": analysis.SubmissionUUID,
		"job_id":          analysis.JobID,
		"analysis_status": analysis.AnalysisStatus,
		"confidence":      analysis.Confidence,
		"report":          analysis.ToAnalysisReport(),
	}
	if analysis.OverallScore != nil {
		resp["overall_score"] = *analysis.OverallScore
	}
	if analysis.AnalyzedAt != nil {
		resp["analyzed_at"] = *analysis.AnalyzedAt
	}
	c.JSON(consts.StatusOK, resp)
}

// HandleGetTimeline 查询一次提交的处理阶段时间线。
// GET /api/v1/resumes/:submission_uuid/timeline
func (h *ResumeHandler) HandleGetTimeline(ctx context.Context, c *app.RequestContext) {
	submissionUUID := c.Param("submission_uuid")
	if submissionUUID == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "submission_uuid 不能为空"})
		return
	}
	if h.timeline == nil {
		c.JSON(consts.StatusNotImplemented, map[string]string{"error": "时间线功能未启用"})
		return
	}

	events, err := h.timeline.GetTimeline(ctx, submissionUUID)
	if err != nil {
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("查询处理时间线失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "查询处理时间线失败"})
		return
	}
	c.JSON(consts.StatusOK, map[string]interface{}{
		"submission_uuid": submissionUUID,
		"count":           len(events),
		"events":          events,
	})
}

// AnalyzeRequest 同步分析请求体
type AnalyzeRequest struct {
	ResumeText     string `json:"resume_text"`
	JobTitle       string `json:"job_title,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
}

// HandleAnalyzeSync 对简历文本执行同步分析，不落库不走队列。
// POST /api/v1/analyze
func (h *ResumeHandler) HandleAnalyzeSync(ctx context.Context, c *app.RequestContext) {
	body, err := c.Body()
	if err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "读取请求体失败"})
		return
	}
	var req AnalyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "请求体不是合法的JSON"})
		return
	}
	if req.ResumeText == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "resume_text 不能为空"})
		return
	}

	report, err := h.pipeline.AnalyzeResume(ctx, req.ResumeText, h.resolveRequestJob(req))
	if err != nil {
		logger.Error().Err(err).Msg("同步分析失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "分析失败"})
		return
	}
	c.JSON(consts.StatusOK, report)
}

// HandleAnalyzeDocument 对上传的简历文件执行同步分析，不落库不走队列。
// POST /api/v1/analyze/document (multipart: file, job_title, job_description)
func (h *ResumeHandler) HandleAnalyzeDocument(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "文件未找到"})
		return
	}
	maxBytes := int64(h.cfg.Server.MaxUploadSizeMB) * 1024 * 1024
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		c.JSON(consts.StatusRequestEntityTooLarge, map[string]string{"error": "文件超过大小限制"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "打开文件失败"})
		return
	}
	defer file.Close()

	data := make([]byte, fileHeader.Size)
	if _, err := io.ReadFull(file, data); err != nil {
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "读取文件内容失败"})
		return
	}

	req := AnalyzeRequest{
		JobTitle:       c.PostForm("job_title"),
		JobDescription: c.PostForm("job_description"),
	}
	report, err := h.pipeline.AnalyzeDocument(ctx, data, fileHeader.Filename, h.resolveRequestJob(req))
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("文档同步分析失败")
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "分析失败"})
		return
	}
	c.JSON(consts.StatusOK, report)
}

// resolveRequestJob 从请求中构造岗位要求，未提供JD时返回空要求
func (h *ResumeHandler) resolveRequestJob(req AnalyzeRequest) *types.JobRequirements {
	if req.JobTitle == "" && req.JobDescription == "" {
		return &types.JobRequirements{}
	}
	return h.pipeline.AnalyzeJob(req.JobTitle, req.JobDescription)
}
