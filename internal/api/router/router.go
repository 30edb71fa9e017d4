package router

import (
	"context"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/config"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// RegisterRoutes 注册 API 路由。
// 健康检查放在鉴权外面；配置了 API Key 时，/api/v1 下的接口要求
// Authorization: Bearer <key>。
func RegisterRoutes(h *server.Hertz, cfg *config.Config, resumeHandler *handler.ResumeHandler, jobHandler *handler.JobHandler) {
	h.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := h.Group("/api/v1")

	if cfg.Server.APIKey != "" {
		apiKey := cfg.Server.APIKey
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				return key == apiKey, nil
			}),
			keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
				c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "未授权"})
			}),
		))
	}

	// 简历侧
	api.POST("/resumes/upload", resumeHandler.HandleResumeUpload)
	api.GET("/resumes/:submission_uuid", resumeHandler.HandleGetSubmission)
	api.GET("/resumes/:submission_uuid/analysis", resumeHandler.HandleGetAnalysis)
	api.GET("/resumes/:submission_uuid/timeline", resumeHandler.HandleGetTimeline)

	// 同步分析与排序，不落库
	api.POST("/analyze", resumeHandler.HandleAnalyzeSync)
	api.POST("/analyze/document", resumeHandler.HandleAnalyzeDocument)
	api.POST("/candidates/rank", jobHandler.HandleRankCandidates)

	// 岗位侧
	api.POST("/jobs", jobHandler.HandleCreateJob)
	api.GET("/jobs/:job_id", jobHandler.HandleGetJob)
	api.PUT("/jobs/:job_id", jobHandler.HandleUpdateJob)
	api.POST("/jobs/:job_id/rank", jobHandler.HandleRankResumes)
	api.GET("/jobs/:job_id/rank", jobHandler.HandleGetRanking)
	api.GET("/jobs/:job_id/leaderboard", jobHandler.HandleGetLeaderboard)
	api.GET("/jobs/:job_id/analyses", jobHandler.HandleListAnalyses)
}
