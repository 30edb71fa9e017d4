package processor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-match-go/internal/analyzer"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/scoring"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

// 定义公共错误类型，用于整个服务
var (
	ErrStorageNotInit     = errors.New("storage is not initialized")
	ErrExtractorNotInit   = errors.New("document extractor is not initialized")
	ErrParserNotInit      = errors.New("resume parser is not initialized")
	ErrATSNotInit         = errors.New("ats checker is not initialized")
	ErrContentNotInit     = errors.New("content checker is not initialized")
	ErrEngineNotInit      = errors.New("score engine is not initialized")
	ErrRecommenderNotInit = errors.New("recommender is not initialized")
	ErrDuplicateContent   = errors.New("duplicate content detected")
)

// 定义tracer
var tracer = otel.Tracer("processor")

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Debug        bool           // 是否开启调试模式
	Logger       zerolog.Logger // 日志记录器
	TimeLocation *time.Location // 时区设置
}

// ResumeProcessor 简历分析流水线的组件聚合。
// 各分析阶段通过接口注入，默认实现可由 DefaultComponents 一次性装配。
type ResumeProcessor struct {
	// 核心组件接口
	DocumentExtractor DocumentExtractor
	ResumeParser      ResumeParser
	JobParser         JobParser
	ATSChecker        ATSChecker
	ContentChecker    ContentChecker
	ScoreEngine       ScoreEngine
	Recommender       Recommender

	// 存储层依赖，纯分析场景可为空
	Storage *storage.Storage

	// 配置
	Settings Settings
}

var _ ResumeAnalyzer = (*ResumeProcessor)(nil)

// DefaultComponents 装配默认组件实现。
func DefaultComponents(logger zerolog.Logger) *Components {
	return &Components{
		DocumentExtractor: parser.NewLocalDocumentExtractor(parser.WithExtractorLogger(logger)),
		ResumeParser:      parser.NewSectionParser(),
		JobParser:         parser.NewJobAnalyzer(),
		ATSChecker:        analyzer.NewATSAnalyzer(),
		ContentChecker:    analyzer.NewContentAnalyzer(),
		ScoreEngine:       scoring.NewEngine(),
		Recommender:       scoring.NewRecommendationEngine(),
	}
}

// NewResumeProcessor 创建新的简历处理器，使用明确分离的组件和设置
func NewResumeProcessor(comp *Components, set *Settings, opts ...SettingOpt) *ResumeProcessor {
	if comp == nil {
		comp = &Components{}
	}
	if set == nil {
		set = &Settings{Logger: zerolog.Nop()}
	}

	// 应用额外的设置选项
	for _, opt := range opts {
		opt(set)
	}

	// 确保必要的默认值
	if set.TimeLocation == nil {
		set.TimeLocation = time.Local
	}

	p := &ResumeProcessor{
		DocumentExtractor: comp.DocumentExtractor,
		ResumeParser:      comp.ResumeParser,
		JobParser:         comp.JobParser,
		ATSChecker:        comp.ATSChecker,
		ContentChecker:    comp.ContentChecker,
		ScoreEngine:       comp.ScoreEngine,
		Recommender:       comp.Recommender,
		Storage:           comp.Storage,
		Settings:          *set,
	}

	if p.Storage == nil {
		p.Settings.Logger.Debug().Msg("ResumeProcessor 未注入存储依赖，仅支持纯分析模式")
	}
	return p
}

// CreateProcessor 便捷工厂函数，从默认组件出发按选项逐项覆盖后构造处理器。
// 适用于只替换个别组件的场景，例如换用Tika提取器或注入测试替身。
func CreateProcessor(compOpts []ComponentOpt, setOpts []SettingOpt) (*ResumeProcessor, error) {
	settings := &Settings{
		Logger:       zerolog.Nop(),
		TimeLocation: time.Local,
	}
	for _, opt := range setOpts {
		opt(settings)
	}

	components := DefaultComponents(settings.Logger)
	for _, opt := range compOpts {
		opt(components)
	}

	p := NewResumeProcessor(components, settings)

	// 选项允许把组件覆盖成nil，这里提前拦住而不是等到分析时才报错
	if err := p.checkAnalysisComponents(); err != nil {
		return nil, err
	}
	return p, nil
}

// AnalyzeResume 对简历纯文本执行完整分析流水线。
// 空文本不报错，按各阶段的零值默认正常产出报告。
func (p *ResumeProcessor) AnalyzeResume(ctx context.Context, resumeText string, job *types.JobRequirements) (*types.AnalysisReport, error) {
	ctx, span := tracer.Start(ctx, "AnalyzeResume",
		trace.WithAttributes(
			attribute.Int("resume.text_length", len(resumeText)),
			attribute.String("resume.preview", tracing.SafeResumeContent(resumeText)),
			attribute.Bool("job.provided", job != nil && !job.IsEmpty()),
		))
	defer span.End()

	if err := p.checkAnalysisComponents(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "组件未初始化")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "上下文已取消")
		return nil, err
	}
	if job == nil {
		job = &types.JobRequirements{}
	}

	start := time.Now()

	// 1. 章节解析与字段抽取
	content := p.ResumeParser.ParseResume(resumeText)
	span.AddEvent("section_parsing_completed")
	span.SetAttributes(attribute.Int("resume.section_count", len(content.Sections)))

	// 2. ATS 兼容性检查
	ats := p.ATSChecker.Analyze(content)
	span.AddEvent("ats_check_completed")

	// 3. 内容质量分析
	contentAnalysis := p.ContentChecker.Analyze(content, job, ats)
	span.AddEvent("content_analysis_completed")

	// 4. 加权评分
	scoringResult := p.ScoreEngine.Score(content, job, ats, contentAnalysis)
	span.AddEvent("scoring_completed")

	// 5. 建议聚合
	recommendations := p.Recommender.Build(scoringResult, ats, contentAnalysis)

	report := &types.AnalysisReport{
		Scoring:         *scoringResult,
		ATS:             *ats,
		Content:         *contentAnalysis,
		Recommendations: *recommendations,
		Resume:          *content,
	}

	span.SetAttributes(
		attribute.Int("scoring.overall_score", scoringResult.OverallScore),
		attribute.String("scoring.job_type", scoringResult.JobType),
		attribute.String("scoring.confidence", scoringResult.Confidence),
	)
	span.SetStatus(codes.Ok, "分析完成")

	p.Settings.Logger.Debug().
		Int("overall_score", scoringResult.OverallScore).
		Str("job_type", scoringResult.JobType).
		Int("recommendation_count", recommendations.TotalCount).
		Dur("elapsed", time.Since(start)).
		Msg("简历分析流水线完成")

	return report, nil
}

// AnalyzeDocument 先提取文档文本，再执行完整分析流水线。
func (p *ResumeProcessor) AnalyzeDocument(ctx context.Context, data []byte, filename string, job *types.JobRequirements) (*types.AnalysisReport, error) {
	ctx, span := tracer.Start(ctx, "AnalyzeDocument",
		trace.WithAttributes(
			attribute.String("document.filename", filename),
			attribute.Int("document.size_bytes", len(data)),
		))
	defer span.End()

	if p.DocumentExtractor == nil {
		span.RecordError(ErrExtractorNotInit)
		span.SetStatus(codes.Error, "提取器未初始化")
		return nil, ErrExtractorNotInit
	}

	text, err := p.DocumentExtractor.ExtractFromBytes(ctx, data, filename)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "extract_failure"))
		span.SetStatus(codes.Error, err.Error())
		return nil, NewParseError("", err.Error())
	}
	span.SetAttributes(attribute.Int("document.text_length", len(text)))
	span.AddEvent("text_extraction_completed")

	return p.AnalyzeResume(ctx, text, job)
}

// AnalyzeJob 解析职位描述；未注入解析器时返回空要求而不是报错。
func (p *ResumeProcessor) AnalyzeJob(title, text string) *types.JobRequirements {
	if p.JobParser == nil {
		return &types.JobRequirements{Title: title}
	}
	return p.JobParser.ParseJobDescription(title, text)
}

// checkAnalysisComponents 校验纯分析流水线所需组件是否齐备。
func (p *ResumeProcessor) checkAnalysisComponents() error {
	switch {
	case p.ResumeParser == nil:
		return ErrParserNotInit
	case p.ATSChecker == nil:
		return ErrATSNotInit
	case p.ContentChecker == nil:
		return ErrContentNotInit
	case p.ScoreEngine == nil:
		return ErrEngineNotInit
	case p.Recommender == nil:
		return ErrRecommenderNotInit
	}
	return nil
}
