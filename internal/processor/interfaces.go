package processor

import (
	"context"
	"io"

	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"
)

//
// 文档提取相关接口
//

// DocumentExtractor 文档文本提取器接口 - 与parser包中定义相同
type DocumentExtractor interface {
	// ExtractFromFile 从本地文件提取纯文本
	ExtractFromFile(ctx context.Context, path string) (string, error)
	// ExtractFromReader 从数据流提取纯文本，filename 用于识别格式
	ExtractFromReader(ctx context.Context, r io.Reader, filename string) (string, error)
	// ExtractFromBytes 从字节切片提取纯文本
	ExtractFromBytes(ctx context.Context, data []byte, filename string) (string, error)
}

//
// 简历解析相关接口
//

// ResumeParser 简历结构化解析接口
type ResumeParser interface {
	// ParseResume 将简历纯文本切分为章节并抽取结构化字段
	ParseResume(text string) *types.ResumeContent
}

// JobParser 职位描述解析接口
type JobParser interface {
	// ParseJobDescription 从职位描述文本提取技能要求与经验层级
	ParseJobDescription(title, text string) *types.JobRequirements
}

//
// 分析与评分相关接口
//

// ATSChecker ATS 兼容性检查接口
type ATSChecker interface {
	// Analyze 对解析后的简历执行四维 ATS 检查
	Analyze(content *types.ResumeContent) *types.ATSAnalysis
}

// ContentChecker 内容质量分析接口
type ContentChecker interface {
	// Analyze 评估动词强度、成果量化、关键词覆盖与表达清晰度
	Analyze(content *types.ResumeContent, job *types.JobRequirements, ats *types.ATSAnalysis) *types.ContentAnalysis
}

// ScoreEngine 加权评分接口
type ScoreEngine interface {
	// InferJobType 从职位要求推断岗位类型
	InferJobType(job *types.JobRequirements) string
	// Score 计算五大类别得分与加权总分
	Score(content *types.ResumeContent, job *types.JobRequirements, ats *types.ATSAnalysis, contentAnalysis *types.ContentAnalysis) *types.ScoringResult
}

// Recommender 建议聚合接口
type Recommender interface {
	// Build 合并各来源建议并按优先级与类别排序
	Build(scoring *types.ScoringResult, ats *types.ATSAnalysis, content *types.ContentAnalysis) *types.RecommendationReport
}

//
// 对外服务接口
//

// ResumeAnalyzer 对单份简历执行完整分析
type ResumeAnalyzer interface {
	// AnalyzeResume 跑完整分析流水线：解析、ATS 检查、内容分析、评分、建议
	AnalyzeResume(ctx context.Context, resumeText string, job *types.JobRequirements) (*types.AnalysisReport, error)
}

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	// 核心组件接口
	DocumentExtractor DocumentExtractor // 文档文本提取接口
	ResumeParser      ResumeParser      // 简历结构化解析接口
	JobParser         JobParser         // 职位描述解析接口
	ATSChecker        ATSChecker        // ATS 兼容性检查接口
	ContentChecker    ContentChecker    // 内容质量分析接口
	ScoreEngine       ScoreEngine       // 加权评分接口
	Recommender       Recommender       // 建议聚合接口

	// 存储层依赖
	Storage *storage.Storage // 聚合的存储服务
}
