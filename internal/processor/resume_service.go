package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/history"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
	"resume-match-go/pkg/utils"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResumeService 简历处理服务的对外接口。
// 两个方法分别对应两个消费队列：原始文件上传队列与分析任务队列。
type ResumeService interface {
	// ProcessUploadedResume 处理上传的简历：文本提取、内容去重、写入分析任务
	ProcessUploadedResume(ctx context.Context, message storage.ResumeUploadMessage) error

	// ProcessAnalysisTask 处理分析任务：执行完整分析流水线并落库
	ProcessAnalysisTask(ctx context.Context, message storage.AnalysisTaskMessage) error
}

// resumeServiceImpl 是ResumeService的实现。
// 采用Facade模式，内部持有分析流水线与存储，但不暴露给外部。
type resumeServiceImpl struct {
	pipeline *ResumeProcessor
	config   *config.Config
	logger   *zerolog.Logger
	timeline history.Timeline // 可选，处理阶段时间线记录
}

// ServiceOption 配置ResumeService的可选依赖
type ServiceOption func(*resumeServiceImpl)

// WithTimeline 挂接处理阶段时间线记录器
func WithTimeline(timeline history.Timeline) ServiceOption {
	return func(rs *resumeServiceImpl) {
		rs.timeline = timeline
	}
}

// NewResumeService 创建简历服务实例
func NewResumeService(cfg *config.Config, store *storage.Storage, lg *zerolog.Logger, opts ...ServiceOption) (ResumeService, error) {
	if lg == nil {
		defaultLogger := zerolog.Nop()
		lg = &defaultLogger
	}

	pipeline, err := NewDefaultPipeline(cfg, store, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis pipeline: %w", err)
	}

	service := &resumeServiceImpl{
		pipeline: pipeline,
		config:   cfg,
		logger:   lg,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// recordStage 写入一条时间线事件。时间线是尽力而为的观测数据，
// 写入失败只告警，不影响主流程。
func (rs *resumeServiceImpl) recordStage(ctx context.Context, submissionUUID, stage, status, detail string) {
	if rs.timeline == nil {
		return
	}
	event := history.StageEvent{
		Stage:  stage,
		Status: status,
		Detail: tracing.TruncateString(detail, tracing.DefaultMaxLength),
		At:     time.Now(),
	}
	if err := rs.timeline.RecordEvent(ctx, submissionUUID, event); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("stage", stage).Msg("记录处理时间线失败")
	}
}

// NewDefaultPipeline 装配默认分析组件并挂接存储。
// 文档提取器按配置在Tika与进程内实现之间选择。
func NewDefaultPipeline(cfg *config.Config, store *storage.Storage, lg *zerolog.Logger) (*ResumeProcessor, error) {
	if store == nil {
		return nil, ErrStorageNotInit
	}
	if lg == nil {
		defaultLogger := zerolog.Nop()
		lg = &defaultLogger
	}

	return CreateProcessor(
		[]ComponentOpt{
			WithcompDocumentextractor(BuildDocumentExtractor(cfg, *lg)),
			WithcompStorage(store),
		},
		[]SettingOpt{
			WithsetLogger(*lg),
		},
	)
}

// ProcessUploadedResume 消费原始简历上传消息。
// 在一个数据库事务内完成：状态推进、文本提取与去重、解析文本上传、
// 基本信息落库、分析任务写入outbox。任一步失败整体回滚。
func (rs *resumeServiceImpl) ProcessUploadedResume(ctx context.Context, message storage.ResumeUploadMessage) error {
	ctx, span := tracer.Start(ctx, "ProcessUploadedResume",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	span.SetAttributes(
		attribute.String("submission_uuid", message.SubmissionUUID),
		attribute.String("source_channel", message.SourceChannel),
	)

	ctx = logger.WithSubmissionUUID(ctx, message.SubmissionUUID)
	log := logger.FromContext(ctx)

	log.Debug().Msg("开始处理上传的简历")

	if rs.pipeline == nil || rs.pipeline.Storage == nil {
		span.RecordError(ErrStorageNotInit)
		span.SetStatus(codes.Error, "存储未初始化")
		return ErrStorageNotInit
	}
	if rs.pipeline.DocumentExtractor == nil {
		span.RecordError(ErrExtractorNotInit)
		span.SetStatus(codes.Error, "提取器未初始化")
		return ErrExtractorNotInit
	}
	store := rs.pipeline.Storage

	duplicate := false
	err := store.MySQL.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 重置初始状态，消息重投时从头开始
		if err := store.MySQL.UpdateResumeSubmissionFields(tx, message.SubmissionUUID, map[string]interface{}{
			"processing_status": constants.StatusPendingParsing,
		}); err != nil {
			log.Error().Err(err).Msg("更新简历状态为PENDING_PARSING失败")
			return NewUpdateError(message.SubmissionUUID, err.Error())
		}

		// 2. 提取文本并做内容去重
		ctx, parseSpan := tracer.Start(ctx, "ParseAndDeduplicateResume")
		text, textMD5Hex, err := rs.parseAndDeduplicateResume(ctx, tx, message)
		parseSpan.End()

		if err != nil {
			if errors.Is(err, ErrDuplicateContent) {
				duplicate = true
				return nil // 内容重复是正常流程，事务提交（状态已在helper中置为跳过）
			}
			return err
		}
		rs.recordStage(ctx, message.SubmissionUUID, history.StageTextExtracted, history.StatusOK, "")

		// 3. 上传解析后的文本到MinIO
		span.AddEvent("uploading_to_minio")
		textObjectKey, err := store.MinIO.UploadParsedText(ctx, message.SubmissionUUID, text)
		if err != nil {
			log.Error().Err(err).Msg("上传解析后的文本到MinIO失败")
			return NewStoreError(message.SubmissionUUID, err.Error())
		}
		log.Debug().Str("object_key", textObjectKey).Msg("解析文本已上传到MinIO")

		// 4. 从解析文本中抽取联系人信息并关联候选人
		updates := map[string]interface{}{
			"parsed_text_path_oss": textObjectKey,
			"parsed_text_md5":      textMD5Hex,
			"processing_status":    constants.StatusQueuedForAnalysis,
			"parser_version":       rs.config.ActiveParserVersion,
		}
		if rs.pipeline.ResumeParser != nil {
			content := rs.pipeline.ResumeParser.ParseResume(text)
			basicInfo := contactToBasicInfo(content.Contact)
			if len(basicInfo) > 0 {
				if err := store.MySQL.SaveResumeBasicInfo(tx, message.SubmissionUUID, basicInfo); err != nil {
					log.Error().Err(err).Msg("保存简历基本信息失败")
					return NewDatabaseError(message.SubmissionUUID, err.Error())
				}
			}
			if basicInfo["email"] != "" || basicInfo["phone"] != "" {
				candidate, err := store.MySQL.FindOrCreateCandidate(ctx, tx, basicInfo)
				if err != nil {
					// 候选人归并失败不中断主流程，分析不依赖候选人记录
					log.Warn().Err(err).Msg("查找或创建候选人失败")
				} else if candidate != nil {
					updates["candidate_id"] = candidate.CandidateID
				}
			}
		}

		// 5. 分析任务写入outbox表，由中继服务投递到分析队列
		ctx, outboxSpan := tracer.Start(ctx, "WriteToOutbox")
		taskMessage := storage.AnalysisTaskMessage{
			SubmissionUUID:    message.SubmissionUUID,
			TargetJobID:       message.TargetJobID,
			ParsedTextPathOSS: textObjectKey,
			ParsedTextMD5:     textMD5Hex,
			ParserVersion:     rs.config.ActiveParserVersion,
			QueuedAtUnix:      time.Now().Unix(),
		}
		payloadBytes, err := json.Marshal(taskMessage)
		if err != nil {
			log.Error().Err(err).Msg("序列化outbox payload失败")
			outboxSpan.RecordError(err)
			outboxSpan.SetStatus(codes.Error, "序列化失败")
			outboxSpan.End()
			return fmt.Errorf("序列化outbox payload失败: %w", err)
		}

		outboxEntry := models.OutboxMessage{
			AggregateID:      message.SubmissionUUID,
			EventType:        constants.EventTypeAnalysisTask,
			Payload:          string(payloadBytes),
			TargetExchange:   rs.config.RabbitMQ.ResumeEventsExchange,
			TargetRoutingKey: rs.config.RabbitMQ.AnalysisTaskRoutingKey,
		}

		if err := tx.Create(&outboxEntry).Error; err != nil {
			log.Error().Err(err).Msg("插入outbox记录失败")
			outboxSpan.RecordError(err)
			outboxSpan.SetStatus(codes.Error, "插入失败")
			outboxSpan.End()
			return NewPublishError(message.SubmissionUUID, err.Error())
		}
		outboxSpan.End()
		log.Debug().Msg("成功创建outbox记录")

		// 6. 更新提交记录，推进到等待分析状态
		if err := store.MySQL.UpdateResumeSubmissionFields(tx, message.SubmissionUUID, updates); err != nil {
			log.Error().Err(err).Msg("更新数据库记录失败")
			return NewUpdateError(message.SubmissionUUID, err.Error())
		}

		span.SetStatus(codes.Ok, "处理成功")
		return nil
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		rs.recordStage(ctx, message.SubmissionUUID, history.StageQueuedForAnalysis, history.StatusFailed, err.Error())
		// 标记失败并释放原始文件MD5，允许修复后重新上传同一文件
		if updateErr := store.MySQL.UpdateResumeProcessingStatus(ctx, message.SubmissionUUID, constants.StatusUploadFailed); updateErr != nil {
			log.Error().Err(updateErr).Msg("更新状态为失败时出错")
		}
		if message.RawFileMD5 != "" {
			if rmErr := store.Redis.RemoveRawFileMD5(ctx, message.RawFileMD5); rmErr != nil {
				log.Warn().Err(rmErr).Msg("释放原始文件MD5失败")
			}
		}
		return err
	}

	if duplicate {
		rs.recordStage(ctx, message.SubmissionUUID, history.StageContentDuplicate, history.StatusSkipped, "")
		log.Info().Msg("检测到重复内容，跳过处理")
		return nil
	}

	rs.recordStage(ctx, message.SubmissionUUID, history.StageQueuedForAnalysis, history.StatusOK, "")
	log.Info().Msg("上传任务处理成功完成")
	return nil
}

// parseAndDeduplicateResume 下载原始文件、提取文本并检查内容是否重复。
// 文本MD5命中集合时把提交状态置为跳过并返回ErrDuplicateContent。
func (rs *resumeServiceImpl) parseAndDeduplicateResume(ctx context.Context, tx *gorm.DB, message storage.ResumeUploadMessage) (string, string, error) {
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)
	store := rs.pipeline.Storage

	originalFileBytes, err := store.MinIO.GetResumeFile(ctx, message.OriginalFilePathOSS)
	if err != nil {
		log.Error().Err(err).Msg("从MinIO下载简历失败")
		span.SetAttributes(attribute.String("error.type", "download_failure"))
		return "", "", NewDownloadError(message.SubmissionUUID, err.Error())
	}
	log.Debug().Int("size_bytes", len(originalFileBytes)).Msg("从MinIO下载简历成功")
	span.SetAttributes(attribute.Int("file_size_bytes", len(originalFileBytes)))

	// 后缀来自原始文件名，对象键的后缀在流式上传时已统一
	text, err := rs.pipeline.DocumentExtractor.ExtractFromBytes(ctx, originalFileBytes, message.OriginalFilename)
	if err != nil {
		log.Error().Err(err).Msg("提取简历文本失败")
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "extract_failure"))
		return "", "", NewParseError(message.SubmissionUUID, err.Error())
	}
	log.Debug().Int("text_length", len(text)).Msg("成功提取文本")
	span.SetAttributes(attribute.Int("text_length", len(text)))
	span.AddEvent("text_extraction_completed")

	textMD5Hex := utils.CalculateMD5([]byte(text))
	log.Debug().Str("md5", textMD5Hex).Msg("计算得到文本MD5")

	// Redis原子检查并添加文本MD5
	textExists, err := store.Redis.CheckAndAddParsedTextMD5(ctx, textMD5Hex)
	if err != nil {
		log.Warn().Err(err).Msg("Redis检查文本MD5失败，将继续处理，但文本去重可能失效")
	} else if textExists {
		log.Info().Str("md5", textMD5Hex).Msg("检测到重复的文本MD5，标记为重复内容")
		if err := tx.Model(&models.ResumeSubmission{}).
			Where("submission_uuid = ?", message.SubmissionUUID).
			Update("processing_status", constants.StatusContentDuplicate).Error; err != nil {
			return "", "", NewUpdateError(message.SubmissionUUID, err.Error())
		}
		span.SetAttributes(
			attribute.Bool("duplicate_content", true),
			attribute.String("md5", textMD5Hex),
		)
		return "", "", ErrDuplicateContent
	}

	log.Debug().Msg("文本MD5不存在于Redis，继续处理")
	return text, textMD5Hex, nil
}

// ProcessAnalysisTask 消费分析任务消息。
// 先在事务中锁定提交记录做幂等检查，IO与分析在事务外执行，
// 最终结果、状态推进与完成事件在一个事务中落库。
func (rs *resumeServiceImpl) ProcessAnalysisTask(ctx context.Context, message storage.AnalysisTaskMessage) error {
	ctx, span := tracer.Start(ctx, "ProcessAnalysisTask",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	span.SetAttributes(
		attribute.String("submission_uuid", message.SubmissionUUID),
		attribute.String("target_job_id", message.TargetJobID),
	)

	ctx = logger.WithSubmissionUUID(ctx, message.SubmissionUUID)
	log := logger.FromContext(ctx).With().Str("method", "ProcessAnalysisTask").Logger()

	log.Debug().Msg("开始处理分析任务")

	if rs.pipeline == nil || rs.pipeline.Storage == nil {
		span.RecordError(ErrStorageNotInit)
		span.SetStatus(codes.Error, "存储未初始化")
		return ErrStorageNotInit
	}
	if err := rs.pipeline.checkAnalysisComponents(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "分析组件未初始化")
		return err
	}
	store := rs.pipeline.Storage

	// 锁定记录并做幂等检查
	skip := false
	err := store.MySQL.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx, txSpan := tracer.Start(ctx, "GetAndLockSubmission")
		defer txSpan.End()

		var submission models.ResumeSubmission
		if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_uuid = ?", message.SubmissionUUID).
			First(&submission).Error; err != nil {

			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Info().Msg("ResumeSubmission记录未找到，可能已被删除")
				txSpan.SetStatus(codes.Error, "记录不存在")
				skip = true
				return nil // 记录不存在，直接确认消息
			}
			log.Error().Err(err).Msg("获取ResumeSubmission记录失败")
			txSpan.RecordError(err)
			txSpan.SetStatus(codes.Error, "查询失败")
			return NewDatabaseError(message.SubmissionUUID, err.Error())
		}

		// 幂等性检查，重复消息或状态不匹配时直接确认
		if !constants.IsStatusAllowed(submission.ProcessingStatus, constants.AllowedStatusesForAnalysis) {
			log.Debug().Str("current_status", submission.ProcessingStatus).Msg("跳过重复/无效状态的消息")
			span.SetAttributes(
				attribute.String("skipped_reason", "invalid_status"),
				attribute.String("current_status", submission.ProcessingStatus),
			)
			skip = true
			return nil
		}

		if err := tx.WithContext(ctx).Model(&submission).
			Update("processing_status", constants.StatusAnalyzing).Error; err != nil {
			log.Error().Err(err).Msg("更新状态到ANALYSIS_IN_PROGRESS失败")
			return NewUpdateError(message.SubmissionUUID, err.Error())
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "事务处理失败")
		return err
	}
	if skip {
		return nil
	}
	rs.recordStage(ctx, message.SubmissionUUID, history.StageAnalysisStarted, history.StatusOK, "")

	// --- 事务外执行IO与分析 ---
	report, analysisErr := rs.runAnalysis(ctx, message)
	if analysisErr != nil {
		span.RecordError(analysisErr)
		span.SetStatus(codes.Error, "分析失败")
		rs.recordStage(ctx, message.SubmissionUUID, history.StageAnalysisFailed, history.StatusFailed, analysisErr.Error())
		if updateErr := store.MySQL.UpdateResumeProcessingStatus(ctx, message.SubmissionUUID, constants.StatusAnalysisFailed); updateErr != nil {
			log.Error().Err(updateErr).Msg("更新状态为ANALYSIS_FAILED失败")
		}
		return analysisErr
	}

	// 分析结果幂等落库（同一提交与岗位组合重复执行只更新既有行）
	analysis := &models.ResumeAnalysis{
		SubmissionUUID: message.SubmissionUUID,
		JobID:          message.TargetJobID,
	}
	if err := analysis.FromAnalysisReport(report, time.Now()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "结果转换失败")
		return NewAnalysisError(message.SubmissionUUID, err.Error())
	}
	analysis.AnalysisStatus = constants.AnalysisStatusCompleted

	if err := store.MySQL.UpsertResumeAnalysis(ctx, analysis); err != nil {
		log.Error().Err(err).Msg("保存分析结果失败")
		span.RecordError(err)
		span.SetStatus(codes.Error, "保存分析结果失败")
		rs.recordStage(ctx, message.SubmissionUUID, history.StageAnalysisFailed, history.StatusFailed, err.Error())
		if updateErr := store.MySQL.UpdateResumeProcessingStatus(ctx, message.SubmissionUUID, constants.StatusAnalysisFailed); updateErr != nil {
			log.Error().Err(updateErr).Msg("更新状态为ANALYSIS_FAILED失败")
		}
		return NewDatabaseError(message.SubmissionUUID, err.Error())
	}

	// 状态推进与完成事件在同一事务中写入
	ctx, finalTxSpan := tracer.Start(ctx, "ExecuteFinalTransaction")
	defer finalTxSpan.End()
	err = store.MySQL.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.MySQL.UpdateResumeSubmissionFields(tx, message.SubmissionUUID, map[string]interface{}{
			"processing_status": constants.StatusAnalysisCompleted,
		}); err != nil {
			return NewUpdateError(message.SubmissionUUID, err.Error())
		}

		event := storage.AnalysisCompletedEvent{
			SubmissionUUID: message.SubmissionUUID,
			JobID:          message.TargetJobID,
			OverallScore:   report.Scoring.OverallScore,
			JobType:        report.Scoring.JobType,
			Confidence:     report.Scoring.Confidence,
			AnalysisStatus: constants.AnalysisStatusCompleted,
			CompletedAt:    time.Now(),
		}
		payloadBytes, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("序列化完成事件失败: %w", err)
		}

		outboxEntry := models.OutboxMessage{
			AggregateID:      message.SubmissionUUID,
			EventType:        constants.EventTypeAnalysisCompleted,
			Payload:          string(payloadBytes),
			TargetExchange:   rs.config.RabbitMQ.AnalysisEventsExchange,
			TargetRoutingKey: rs.config.RabbitMQ.AnalyzedRoutingKey,
		}
		if err := tx.Create(&outboxEntry).Error; err != nil {
			return NewDatabaseError(message.SubmissionUUID, err.Error())
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("分析最终事务失败")
		finalTxSpan.RecordError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "最终事务失败")
		return err
	}

	span.SetAttributes(
		attribute.Int("scoring.overall_score", report.Scoring.OverallScore),
		attribute.String("scoring.job_type", report.Scoring.JobType),
	)
	span.SetStatus(codes.Ok, "处理成功")
	rs.recordStage(ctx, message.SubmissionUUID, history.StageAnalysisCompleted, history.StatusOK,
		fmt.Sprintf("overall_score=%d", report.Scoring.OverallScore))
	log.Info().Int("overall_score", report.Scoring.OverallScore).Msg("分析任务处理成功完成")
	return nil
}

// runAnalysis 下载解析文本、解析岗位要求并执行完整的分析流水线
func (rs *resumeServiceImpl) runAnalysis(ctx context.Context, message storage.AnalysisTaskMessage) (*types.AnalysisReport, error) {
	log := logger.FromContext(ctx)
	store := rs.pipeline.Storage

	ctx, downloadSpan := tracer.Start(ctx, "DownloadParsedText")
	parsedText, err := store.MinIO.GetParsedText(ctx, message.ParsedTextPathOSS)
	downloadSpan.End()
	if err != nil {
		log.Error().Err(err).Str("path", message.ParsedTextPathOSS).Msg("从MinIO下载解析文本失败")
		return nil, NewDownloadError(message.SubmissionUUID, err.Error())
	}
	log.Debug().Int("text_length", len(parsedText)).Msg("成功下载解析文本")

	jobReqs, err := rs.resolveJobRequirements(ctx, message.TargetJobID)
	if err != nil {
		return nil, err
	}

	report, err := rs.pipeline.AnalyzeResume(ctx, parsedText, jobReqs)
	if err != nil {
		log.Error().Err(err).Msg("分析流水线执行失败")
		return nil, NewAnalysisError(message.SubmissionUUID, err.Error())
	}
	return report, nil
}

// resolveJobRequirements 解析目标岗位的结构化要求。
// 查找顺序：Redis缓存、岗位表的结构化字段、实时解析岗位描述。
// 岗位不存在时退化为无岗位的通用分析而不是报错。
func (rs *resumeServiceImpl) resolveJobRequirements(ctx context.Context, jobID string) (*types.JobRequirements, error) {
	if jobID == "" {
		return &types.JobRequirements{}, nil
	}

	log := logger.FromContext(ctx)
	store := rs.pipeline.Storage

	if cached, err := store.Redis.GetJobRequirements(ctx, jobID); err == nil && cached != "" {
		var reqs types.JobRequirements
		if err := json.Unmarshal([]byte(cached), &reqs); err == nil {
			return &reqs, nil
		}
		log.Warn().Str("job_id", jobID).Msg("岗位要求缓存内容损坏，回源重建")
	}

	// 结构化缓存未命中时先尝试JD原文缓存，省一次MySQL查询。
	// 这条路径拿不到岗位标题，解析结果的Title退化为JD首行，
	// 所以不回写结构化缓存，留给MySQL回源时重建。
	if text, err := store.Redis.GetJobDescriptionText(ctx, jobID); err == nil && text != "" {
		return rs.pipeline.AnalyzeJob("", text), nil
	}

	job, err := store.MySQL.GetJobByID(store.MySQL.DB().WithContext(ctx), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Str("job_id", jobID).Msg("目标岗位不存在，退化为通用分析")
			return &types.JobRequirements{}, nil
		}
		return nil, NewDatabaseError("", fmt.Sprintf("获取岗位%s失败: %v", jobID, err))
	}

	var reqs *types.JobRequirements
	if len(job.StructuredRequirementsJSON) > 0 {
		var parsed types.JobRequirements
		if err := json.Unmarshal(job.StructuredRequirementsJSON, &parsed); err == nil && !parsed.IsEmpty() {
			reqs = &parsed
		}
	}
	if reqs == nil {
		reqs = rs.pipeline.AnalyzeJob(job.JobTitle, job.JobDescriptionText)
	}

	if data, err := json.Marshal(reqs); err == nil {
		if cacheErr := store.Redis.SetJobRequirements(ctx, jobID, string(data)); cacheErr != nil {
			log.Warn().Err(cacheErr).Str("job_id", jobID).Msg("缓存岗位要求失败")
		}
	}
	return reqs, nil
}

// contactToBasicInfo 把解析出的联系人信息转为基本信息映射，跳过空字段
func contactToBasicInfo(contact types.ContactInfo) map[string]string {
	basicInfo := make(map[string]string, 4)
	if contact.Name != "" {
		basicInfo["name"] = contact.Name
	}
	if contact.Email != "" {
		basicInfo["email"] = contact.Email
	}
	if contact.Phone != "" {
		basicInfo["phone"] = contact.Phone
	}
	if contact.Location != "" {
		basicInfo["location"] = contact.Location
	}
	return basicInfo
}
