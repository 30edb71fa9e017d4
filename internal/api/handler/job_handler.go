package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/scoring"
	storage2 "resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/types"
	"resume-match-go/pkg/utils"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	defaultRankLimit     = 50
	maxRankLimit         = 200
	defaultLeaderboardSz = 10
	maxLeaderboardSz     = 100
)

// JobHandler 岗位侧接入层：岗位的增删改查、针对岗位的候选人批量排序
// 以及排序榜单的分页读取。
type JobHandler struct {
	cfg         *config.Config
	storage     *storage2.Storage
	jdProcessor *processor.JDProcessor
	ranker      *scoring.Ranker
	engine      *scoring.Engine     // 建岗位时推断岗位类型
	jobParser   *parser.JobAnalyzer // 临时排序请求的JD解析，不走缓存
	logger      *log.Logger
}

// NewJobHandler 创建岗位处理器
func NewJobHandler(
	cfg *config.Config,
	storage *storage2.Storage,
	jdProcessor *processor.JDProcessor,
	ranker *scoring.Ranker,
) *JobHandler {
	return &JobHandler{
		cfg:         cfg,
		storage:     storage,
		jdProcessor: jdProcessor,
		ranker:      ranker,
		engine:      scoring.NewEngine(),
		jobParser:   parser.NewJobAnalyzer(),
		logger:      log.New(os.Stdout, "[JobHandler] ", log.LstdFlags|log.Lshortfile),
	}
}

// JobUpsertRequest 创建/更新岗位的请求体
type JobUpsertRequest struct {
	JobTitle           string `json:"job_title"`
	JobDescriptionText string `json:"job_description_text"`
	Department         string `json:"department,omitempty"`
	Location           string `json:"location,omitempty"`
	Status             string `json:"status,omitempty"`
	CreatedByUserID    string `json:"created_by_user_id,omitempty"`
}

// HandleCreateJob 创建岗位并解析JD，结构化要求随岗位一起落库并写入缓存。
// POST /api/v1/jobs
func (h *JobHandler) HandleCreateJob(ctx context.Context, c *app.RequestContext) {
	body, err := c.Body()
	if err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "读取请求体失败"})
		return
	}
	var req JobUpsertRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "请求体不是合法的JSON"})
		return
	}
	if req.JobTitle == "" || req.JobDescriptionText == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "job_title 和 job_description_text 不能为空"})
		return
	}

	uuidV7, err := uuid.NewV7()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "生成岗位ID失败"})
		return
	}
	jobID := uuidV7.String()

	reqs, err := h.jdProcessor.ParseAndCache(ctx, jobID, req.JobTitle, req.JobDescriptionText)
	if err != nil {
		h.logger.Printf("解析岗位描述失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "解析岗位描述失败"})
		return
	}

	job := &models.Job{
		JobID:              jobID,
		JobTitle:           req.JobTitle,
		Department:         req.Department,
		Location:           req.Location,
		JobDescriptionText: req.JobDescriptionText,
		JobType:            h.engine.InferJobType(reqs),
		Status:             req.Status,
		CreatedByUserID:    req.CreatedByUserID,
	}
	if job.Status == "" {
		job.Status = "ACTIVE"
	}
	h.attachParsedRequirements(job, reqs)

	if err := h.storage.MySQL.CreateJob(h.storage.MySQL.DB().WithContext(ctx), job); err != nil {
		h.logger.Printf("创建岗位失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "创建岗位失败"})
		return
	}

	c.JSON(consts.StatusCreated, map[string]interface{}{
		"job_id":                  jobID,
		"job_title":               job.JobTitle,
		"job_type":                job.JobType,
		"status":                  job.Status,
		"structured_requirements": reqs,
	})
}

// HandleUpdateJob 更新岗位。标题或JD文本变化时重新解析并刷新缓存。
// PUT /api/v1/jobs/:job_id
func (h *JobHandler) HandleUpdateJob(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "job_id 不能为空"})
		return
	}

	job, err := h.storage.MySQL.GetJobByID(h.storage.MySQL.DB().WithContext(ctx), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(consts.StatusNotFound, map[string]string{"error": "岗位不存在"})
			return
		}
		h.logger.Printf("查询岗位失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "查询岗位失败"})
		return
	}

	body, err := c.Body()
	if err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "读取请求体失败"})
		return
	}
	var req JobUpsertRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "请求体不是合法的JSON"})
		return
	}

	jdChanged := false
	if req.JobTitle != "" && req.JobTitle != job.JobTitle {
		job.JobTitle = req.JobTitle
		jdChanged = true
	}
	if req.JobDescriptionText != "" && req.JobDescriptionText != job.JobDescriptionText {
		job.JobDescriptionText = req.JobDescriptionText
		jdChanged = true
	}
	if req.Department != "" {
		job.Department = req.Department
	}
	if req.Location != "" {
		job.Location = req.Location
	}
	if req.Status != "" {
		job.Status = req.Status
	}

	if jdChanged {
		reqs, err := h.jdProcessor.ParseAndCache(ctx, jobID, job.JobTitle, job.JobDescriptionText)
		if err != nil {
			h.logger.Printf("重新解析岗位描述失败 job_id=%s: %v", jobID, err)
			c.JSON(consts.StatusInternalServerError, map[string]string{"error": "解析岗位描述失败"})
			return
		}
		job.JobType = h.engine.InferJobType(reqs)
		h.attachParsedRequirements(job, reqs)
	}

	if err := h.storage.MySQL.UpdateJob(h.storage.MySQL.DB().WithContext(ctx), job); err != nil {
		h.logger.Printf("更新岗位失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "更新岗位失败"})
		return
	}

	c.JSON(consts.StatusOK, map[string]interface{}{
		"job_id":      job.JobID,
		"job_title":   job.JobTitle,
		"job_type":    job.JobType,
		"status":      job.Status,
		"reparsed_jd": jdChanged,
	})
}

// attachParsedRequirements 把结构化要求与技能关键词写入岗位模型
func (h *JobHandler) attachParsedRequirements(job *models.Job, reqs *types.JobRequirements) {
	if reqs == nil {
		return
	}
	if data, err := json.Marshal(reqs); err == nil {
		job.StructuredRequirementsJSON = models.StringToJSON(string(data))
	}
	keywords := make([]string, 0, len(reqs.RequiredSkills)+len(reqs.PreferredSkills))
	keywords = append(keywords, reqs.RequiredSkills...)
	keywords = append(keywords, reqs.PreferredSkills...)
	job.JDSkillsKeywordsJSON = utils.ConvertArrayToJSON(keywords)
}

// HandleGetJob 查询岗位详情。
// GET /api/v1/jobs/:job_id
func (h *JobHandler) HandleGetJob(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "job_id 不能为空"})
		return
	}

	job, err := h.storage.MySQL.GetJobByID(h.storage.MySQL.DB().WithContext(ctx), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(consts.StatusNotFound, map[string]string{"error": "岗位不存在"})
			return
		}
		h.logger.Printf("查询岗位失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "查询岗位失败"})
		return
	}

	resp := map[string]interface{}{
		"job_id":               job.JobID,
		"job_title":            job.JobTitle,
		"department":           job.Department,
		"location":             job.Location,
		"job_type":             job.JobType,
		"status":               job.Status,
		"job_description_text": job.JobDescriptionText,
		"created_at":           job.CreatedAt,
		"updated_at":           job.UpdatedAt,
	}
	if len(job.StructuredRequirementsJSON) > 0 {
		var reqs types.JobRequirements
		if err := json.Unmarshal(job.StructuredRequirementsJSON, &reqs); err == nil {
			resp["structured_requirements"] = reqs
		}
	}
	c.JSON(consts.StatusOK, resp)
}

// HandleRankResumes 对指定岗位的已分析候选简历执行批量排序。
// POST /api/v1/jobs/:job_id/rank?limit=50
//
// 同一岗位同一时间只允许一次排序在跑，由Redis分布式锁保证；
// 结果整体缓存，榜单ZSET供分页接口读取。
func (h *JobHandler) HandleRankResumes(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "job_id 不能为空"})
		return
	}

	limit := defaultRankLimit
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxRankLimit {
		limit = maxRankLimit
	}

	job, err := h.storage.MySQL.GetJobByID(h.storage.MySQL.DB().WithContext(ctx), jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(consts.StatusNotFound, map[string]string{"error": "岗位不存在"})
			return
		}
		h.logger.Printf("查询岗位失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "查询岗位失败"})
		return
	}

	lockKey := fmt.Sprintf(constants.KeyRankingLock, jobID)
	lockValue, err := h.storage.Redis.AcquireLock(ctx, lockKey, constants.RankingLockDuration)
	if err != nil {
		// 锁服务异常时继续执行，宁可重复排序也不阻断请求
		h.logger.Printf("获取排序锁失败 job_id=%s: %v", jobID, err)
	} else if lockValue == "" {
		c.JSON(consts.StatusAccepted, map[string]interface{}{
			"status":      "processing",
			"message":     "该岗位的排序正在进行中，请稍后查询结果",
			"retry_after": 2,
		})
		return
	} else {
		defer func() {
			if _, err := h.storage.Redis.ReleaseLock(ctx, lockKey, lockValue); err != nil {
				h.logger.Printf("释放排序锁失败 job_id=%s: %v", jobID, err)
			}
		}()
	}

	reqs, err := h.jdProcessor.GetJobRequirements(ctx, jobID, job.JobTitle, job.JobDescriptionText)
	if err != nil {
		h.logger.Printf("获取岗位要求失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "获取岗位要求失败"})
		return
	}

	candidates, err := h.collectCandidates(ctx, jobID, limit)
	if err != nil {
		h.logger.Printf("收集候选简历失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "收集候选简历失败"})
		return
	}
	if len(candidates) == 0 {
		c.JSON(consts.StatusOK, map[string]interface{}{
			"job_id":     jobID,
			"message":    "该岗位暂无可排序的候选简历",
			"candidates": []types.RankedCandidate{},
		})
		return
	}

	result, err := h.ranker.Rank(ctx, candidates, reqs)
	if err != nil {
		h.logger.Printf("批量排序失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "批量排序失败"})
		return
	}

	if resultJSON, err := json.Marshal(result); err == nil {
		ttl := time.Duration(h.cfg.Analysis.RankCacheTTLMinutes) * time.Minute
		if err := h.storage.Redis.CacheRankingResult(ctx, jobID, string(resultJSON), result.Candidates, ttl); err != nil {
			// 缓存失败不影响本次响应
			h.logger.Printf("缓存排序结果失败 job_id=%s: %v", jobID, err)
		}
	}

	c.JSON(consts.StatusOK, result)
}

// collectCandidates 收集岗位下已经解析出文本的提交，组装成排序输入。
// 解析文本取不到的提交跳过，不让单个坏对象拖垮整批排序。
func (h *JobHandler) collectCandidates(ctx context.Context, jobID string, limit int) ([]types.CandidateProfile, error) {
	var submissions []models.ResumeSubmission
	err := h.storage.MySQL.DB().WithContext(ctx).
		Preload("Candidate").
		Where("target_job_id = ? AND processing_status IN ?", jobID, []string{
			constants.StatusQueuedForAnalysis,
			constants.StatusAnalyzing,
			constants.StatusAnalysisCompleted,
		}).
		Where("parsed_text_path_oss <> ''").
		Order("submission_timestamp DESC").
		Limit(limit).
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("查询岗位候选提交失败: %w", err)
	}

	profiles := make([]types.CandidateProfile, 0, len(submissions))
	for _, sub := range submissions {
		text, err := h.storage.MinIO.GetParsedText(ctx, sub.ParsedTextPathOSS)
		if err != nil {
			h.logger.Printf("下载解析文本失败 submission=%s: %v", sub.SubmissionUUID, err)
			continue
		}
		name := ""
		if sub.Candidate != nil {
			name = sub.Candidate.PrimaryName
		}
		profiles = append(profiles, types.CandidateProfile{
			ID:         sub.SubmissionUUID,
			Name:       name,
			ResumeText: text,
		})
	}
	return profiles, nil
}

// RankCandidatesRequest 临时候选人集合的同步排序请求体
type RankCandidatesRequest struct {
	Candidates      []types.CandidateProfile `json:"candidates"`
	JobTitle        string                   `json:"job_title,omitempty"`
	JobDescription  string                   `json:"job_description,omitempty"`
	JobRequirements *types.JobRequirements   `json:"job_requirements,omitempty"`
}

// HandleRankCandidates 对请求体内联的候选人集合执行同步排序，不落库。
// POST /api/v1/candidates/rank
//
// 岗位要求按优先级取 job_requirements 字段，否则现场解析JD文本。
// 结果以请求体MD5为键缓存，同样的内容重复提交直接命中。
func (h *JobHandler) HandleRankCandidates(ctx context.Context, c *app.RequestContext) {
	if h.ranker == nil {
		c.JSON(consts.StatusServiceUnavailable, map[string]string{"error": "排序组件未启用"})
		return
	}

	body, err := c.Body()
	if err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "读取请求体失败"})
		return
	}
	var req RankCandidatesRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "请求体不是合法的JSON"})
		return
	}
	if len(req.Candidates) == 0 {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "candidates 不能为空"})
		return
	}
	if len(req.Candidates) > maxRankLimit {
		c.JSON(consts.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("单次排序最多 %d 个候选人", maxRankLimit),
		})
		return
	}
	for i, cand := range req.Candidates {
		if cand.ResumeText == "" {
			c.JSON(consts.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("第 %d 个候选人缺少 resume_text", i+1),
			})
			return
		}
	}

	cacheKey := fmt.Sprintf(constants.KeyRankingSession, utils.CalculateMD5(body))
	if cached, ok := h.lookupAdhocRanking(ctx, cacheKey); ok {
		c.JSON(consts.StatusOK, cached)
		return
	}

	reqs := req.JobRequirements
	if reqs == nil {
		if req.JobTitle == "" && req.JobDescription == "" {
			reqs = &types.JobRequirements{}
		} else {
			reqs = h.jobParser.ParseJobDescription(req.JobTitle, req.JobDescription)
		}
	}

	result, err := h.ranker.Rank(ctx, req.Candidates, reqs)
	if err != nil {
		h.logger.Printf("临时候选人排序失败: %v", err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "批量排序失败"})
		return
	}

	h.cacheAdhocRanking(ctx, cacheKey, result)
	c.JSON(consts.StatusOK, result)
}

// lookupAdhocRanking 读临时排序缓存。未配置Redis或未命中返回false。
func (h *JobHandler) lookupAdhocRanking(ctx context.Context, key string) (*types.RankingResult, bool) {
	if h.storage == nil || h.storage.Redis == nil {
		return nil, false
	}
	raw, err := h.storage.Redis.Client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Printf("读取临时排序缓存失败 key=%s: %v", key, err)
		}
		return nil, false
	}
	var result types.RankingResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		h.logger.Printf("临时排序缓存内容损坏 key=%s", key)
		return nil, false
	}
	return &result, true
}

// cacheAdhocRanking 写临时排序缓存，失败不影响响应
func (h *JobHandler) cacheAdhocRanking(ctx context.Context, key string, result *types.RankingResult) {
	if h.storage == nil || h.storage.Redis == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	ttl := time.Duration(h.cfg.Analysis.RankCacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if err := h.storage.Redis.Client.Set(ctx, key, raw, ttl).Err(); err != nil {
		h.logger.Printf("写入临时排序缓存失败 key=%s: %v", key, err)
	}
}

// HandleGetRanking 查询岗位最近一次排序的状态与结果。
// GET /api/v1/jobs/:job_id/rank
func (h *JobHandler) HandleGetRanking(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "job_id 不能为空"})
		return
	}

	cached, err := h.storage.Redis.GetCachedRankingResult(ctx, jobID)
	if err == nil && cached != "" {
		var result types.RankingResult
		if jsonErr := json.Unmarshal([]byte(cached), &result); jsonErr == nil {
			c.JSON(consts.StatusOK, map[string]interface{}{
				"status": "completed",
				"result": result,
			})
			return
		}
		h.logger.Printf("排序缓存内容损坏 job_id=%s", jobID)
	} else if err != nil && !errors.Is(err, redis.Nil) {
		h.logger.Printf("读取排序缓存失败 job_id=%s: %v", jobID, err)
	}

	// 没有缓存，看是否有排序在进行中
	lockKey := fmt.Sprintf(constants.KeyRankingLock, jobID)
	exists, err := h.storage.Redis.Client.Exists(ctx, lockKey).Result()
	if err == nil && exists > 0 {
		ttl, _ := h.storage.Redis.Client.TTL(ctx, lockKey).Result()
		c.JSON(consts.StatusOK, map[string]interface{}{
			"status":      "processing",
			"message":     "排序正在进行中",
			"retry_after": 2,
			"ttl_seconds": int(ttl.Seconds()),
		})
		return
	}

	c.JSON(consts.StatusOK, map[string]interface{}{
		"status":  "not_started",
		"message": "该岗位还没有排序结果，请先发起排序",
	})
}

// HandleGetLeaderboard 分页读取岗位排序榜单。
// GET /api/v1/jobs/:job_id/leaderboard?cursor=0&size=10
//
// 名次顺序来自Redis榜单ZSET，明细从MySQL批量取回后按榜单顺序组装。
func (h *JobHandler) HandleGetLeaderboard(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "job_id 不能为空"})
		return
	}

	var cursor int64
	if v := c.Query("cursor"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed >= 0 {
			cursor = parsed
		}
	}
	size := int64(defaultLeaderboardSz)
	if v := c.Query("size"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			size = parsed
		}
	}
	if size > maxLeaderboardSz {
		size = maxLeaderboardSz
	}

	uuids, totalCount, err := h.storage.Redis.GetRankingLeaderboard(ctx, jobID, cursor, size)
	if err != nil {
		h.logger.Printf("读取排序榜单失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "读取排序榜单失败"})
		return
	}
	if len(uuids) == 0 {
		c.JSON(consts.StatusOK, map[string]interface{}{
			"job_id":      jobID,
			"cursor":      cursor,
			"next_cursor": cursor,
			"size":        size,
			"total_count": totalCount,
			"entries":     []map[string]interface{}{},
		})
		return
	}

	entries, err := h.fetchLeaderboardEntries(ctx, jobID, uuids, cursor)
	if err != nil {
		h.logger.Printf("组装榜单明细失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "组装榜单明细失败"})
		return
	}

	nextCursor := cursor + int64(len(uuids))
	if nextCursor >= totalCount {
		nextCursor = cursor // 已到末页
	}

	c.JSON(consts.StatusOK, map[string]interface{}{
		"job_id":      jobID,
		"cursor":      cursor,
		"next_cursor": nextCursor,
		"size":        size,
		"total_count": totalCount,
		"entries":     entries,
	})
}

// fetchLeaderboardEntries 按榜单给出的UUID顺序组装明细。
// 两次IN查询分别取提交与分析结果，再按输入顺序拼装，保持名次不乱。
func (h *JobHandler) fetchLeaderboardEntries(ctx context.Context, jobID string, uuids []string, cursor int64) ([]map[string]interface{}, error) {
	db := h.storage.MySQL.DB().WithContext(ctx)

	var submissions []models.ResumeSubmission
	if err := db.Preload("Candidate").
		Where("submission_uuid IN ?", uuids).
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("查询提交明细失败: %w", err)
	}
	submissionMap := make(map[string]models.ResumeSubmission, len(submissions))
	for _, sub := range submissions {
		submissionMap[sub.SubmissionUUID] = sub
	}

	var analyses []models.ResumeAnalysis
	if err := db.Where("submission_uuid IN ? AND job_id = ?", uuids, jobID).
		Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("查询分析明细失败: %w", err)
	}
	analysisMap := make(map[string]models.ResumeAnalysis, len(analyses))
	for _, a := range analyses {
		analysisMap[a.SubmissionUUID] = a
	}

	entries := make([]map[string]interface{}, 0, len(uuids))
	for i, id := range uuids {
		entry := map[string]interface{}{
			"rank":            cursor + int64(i) + 1,
			"submission_uuid": id,
		}
		if sub, ok := submissionMap[id]; ok {
			entry["original_filename"] = sub.OriginalFilename
			entry["processing_status"] = sub.ProcessingStatus
			if sub.Candidate != nil {
				entry["candidate_name"] = sub.Candidate.PrimaryName
				entry["candidate_email"] = sub.Candidate.PrimaryEmail
			}
		}
		if a, ok := analysisMap[id]; ok {
			entry["analysis_status"] = a.AnalysisStatus
			entry["confidence"] = a.Confidence
			if a.OverallScore != nil {
				entry["overall_score"] = *a.OverallScore
			}
			if a.AnalyzedAt != nil {
				entry["analyzed_at"] = *a.AnalyzedAt
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// HandleListAnalyses 列出岗位下最近的分析结果摘要。
// GET /api/v1/jobs/:job_id/analyses?limit=50
func (h *JobHandler) HandleListAnalyses(ctx context.Context, c *app.RequestContext) {
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "job_id 不能为空"})
		return
	}

	limit := defaultRankLimit
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxRankLimit {
		limit = maxRankLimit
	}

	analyses, err := h.storage.MySQL.ListAnalysesByJob(ctx, jobID, limit)
	if err != nil {
		h.logger.Printf("查询岗位分析列表失败 job_id=%s: %v", jobID, err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "查询分析列表失败"})
		return
	}

	items := make([]map[string]interface{}, 0, len(analyses))
	for _, a := range analyses {
		item := map[string]interface{}{
			"submission_uuid":   a.SubmissionUUID,
			"job_type_detected": a.JobTypeDetected,
			"confidence":        a.Confidence,
			"analysis_status":   a.AnalysisStatus,
		}
		if a.OverallScore != nil {
			item["overall_score"] = *a.OverallScore
		}
		if a.AnalyzedAt != nil {
			item["analyzed_at"] = *a.AnalyzedAt
		}
		items = append(items, item)
	}

	c.JSON(consts.StatusOK, map[string]interface{}{
		"job_id":   jobID,
		"count":    len(items),
		"analyses": items,
	})
}
