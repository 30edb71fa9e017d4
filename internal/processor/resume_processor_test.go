package processor

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

func newTestProcessor() *ResumeProcessor {
	return NewResumeProcessor(DefaultComponents(zerolog.Nop()), nil)
}

// TestAnalyzeResumeEmptyText 测试空文本走完整流水线：不报错，按零值默认产出
func TestAnalyzeResumeEmptyText(t *testing.T) {
	p := newTestProcessor()

	report, err := p.AnalyzeResume(context.Background(), "", nil)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Empty(t, report.Resume.RawText)
	assert.Empty(t, report.Resume.Sections)

	// 空内容下各阶段的固定默认值
	assert.Equal(t, 67, report.ATS.OverallScore)
	assert.Equal(t, 45, report.Content.OverallScore)
	assert.Equal(t, types.JobTypeGeneral, report.Scoring.JobType)
	assert.Equal(t, types.ConfidenceLow, report.Scoring.Confidence)
	assert.GreaterOrEqual(t, report.Scoring.OverallScore, 0)
	assert.LessOrEqual(t, report.Scoring.OverallScore, 100)

	assert.NotZero(t, report.Recommendations.TotalCount)
}

// TestAnalyzeResumeComponentGuards 测试组件缺失时返回对应错误
func TestAnalyzeResumeComponentGuards(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Components)
		wantErr error
	}{
		{"missing parser", func(c *Components) { c.ResumeParser = nil }, ErrParserNotInit},
		{"missing ats checker", func(c *Components) { c.ATSChecker = nil }, ErrATSNotInit},
		{"missing content checker", func(c *Components) { c.ContentChecker = nil }, ErrContentNotInit},
		{"missing score engine", func(c *Components) { c.ScoreEngine = nil }, ErrEngineNotInit},
		{"missing recommender", func(c *Components) { c.Recommender = nil }, ErrRecommenderNotInit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := DefaultComponents(zerolog.Nop())
			tt.mutate(comp)
			_, err := NewResumeProcessor(comp, nil).AnalyzeResume(context.Background(), "text", nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestAnalyzeResumeCanceledContext 测试上下文取消时流水线直接退出
func TestAnalyzeResumeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestProcessor().AnalyzeResume(ctx, "text", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestAnalyzeDocument 测试先提取文本再分析的入口
func TestAnalyzeDocument(t *testing.T) {
	t.Run("extractor missing", func(t *testing.T) {
		p := NewResumeProcessor(&Components{}, nil)
		_, err := p.AnalyzeDocument(context.Background(), []byte("x"), "a.txt", nil)
		assert.ErrorIs(t, err, ErrExtractorNotInit)
	})

	t.Run("extract failure wrapped as parse error", func(t *testing.T) {
		_, err := newTestProcessor().AnalyzeDocument(context.Background(), []byte{0xFF, 0xFE}, "resume.weird", nil)
		assert.ErrorIs(t, err, ErrParseTextFailed)
	})

	t.Run("plain text document", func(t *testing.T) {
		const body = "Led the platform team and delivered the billing migration."
		report, err := newTestProcessor().AnalyzeDocument(context.Background(), []byte(body), "resume.txt", nil)
		require.NoError(t, err)
		assert.Equal(t, body, report.Resume.RawText)
	})
}

// TestAnalyzeJob 测试职位描述解析入口及未注入解析器时的回退
func TestAnalyzeJob(t *testing.T) {
	bare := NewResumeProcessor(&Components{}, nil)
	job := bare.AnalyzeJob("Backend Engineer", "5+ years with Go")
	require.NotNil(t, job)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Empty(t, job.RequiredSkills)

	full := newTestProcessor().AnalyzeJob("", "Senior Engineer\n5+ years of experience with Go")
	require.NotNil(t, full)
	assert.Equal(t, "Senior Engineer", full.Title)
	assert.Contains(t, full.RequiredSkills, "go")
	assert.Equal(t, types.ExperienceLevelSenior, full.ExperienceLevel)
}

// TestNewResumeProcessorDefaults 测试 nil 入参与设置选项的默认值处理
func TestNewResumeProcessorDefaults(t *testing.T) {
	p := NewResumeProcessor(nil, nil)
	require.NotNil(t, p)
	assert.Equal(t, time.Local, p.Settings.TimeLocation)
	assert.Nil(t, p.Storage)

	utc := NewResumeProcessor(nil, nil, WithsetTimelocation(time.UTC), WithsetDebug(true))
	assert.Equal(t, time.UTC, utc.Settings.TimeLocation)
	assert.True(t, utc.Settings.Debug)
}

// TestResumeProcessError 测试自定义错误的包装与匹配
func TestResumeProcessError(t *testing.T) {
	err := NewParseError("sub-42", "bad bytes")
	assert.ErrorIs(t, err, ErrParseTextFailed)
	assert.Contains(t, err.Error(), "sub-42")
	assert.Contains(t, err.Error(), "bad bytes")

	var pe *ResumeProcessError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "parse", pe.Op)
}

// ----- 组件注入用的测试替身 -----

type stubResumeParser struct{}

func (stubResumeParser) ParseResume(text string) *types.ResumeContent {
	return &types.ResumeContent{RawText: text}
}

type stubJobParser struct{}

func (stubJobParser) ParseJobDescription(title, text string) *types.JobRequirements {
	return &types.JobRequirements{Title: "stub-title"}
}

type stubATSChecker struct{}

func (stubATSChecker) Analyze(*types.ResumeContent) *types.ATSAnalysis {
	return &types.ATSAnalysis{OverallScore: 88}
}

type stubContentChecker struct{}

func (stubContentChecker) Analyze(*types.ResumeContent, *types.JobRequirements, *types.ATSAnalysis) *types.ContentAnalysis {
	return &types.ContentAnalysis{OverallScore: 77}
}

type stubScoreEngine struct{}

func (stubScoreEngine) InferJobType(*types.JobRequirements) string { return "stub" }

func (stubScoreEngine) Score(*types.ResumeContent, *types.JobRequirements, *types.ATSAnalysis, *types.ContentAnalysis) *types.ScoringResult {
	return &types.ScoringResult{OverallScore: 55, JobType: "stub", Confidence: types.ConfidenceHigh}
}

type stubRecommender struct{}

func (stubRecommender) Build(*types.ScoringResult, *types.ATSAnalysis, *types.ContentAnalysis) *types.RecommendationReport {
	return &types.RecommendationReport{TotalCount: 3}
}

// TestCreateProcessorComponentInjection 测试工厂函数按选项逐项覆盖组件
func TestCreateProcessorComponentInjection(t *testing.T) {
	p, err := CreateProcessor(
		[]ComponentOpt{
			WithcompResumeparser(stubResumeParser{}),
			WithcompJobparser(stubJobParser{}),
			WithcompAtschecker(stubATSChecker{}),
			WithcompContentchecker(stubContentChecker{}),
			WithcompScoreengine(stubScoreEngine{}),
			WithcompRecommender(stubRecommender{}),
		},
		nil,
	)
	require.NoError(t, err)

	report, err := p.AnalyzeResume(context.Background(), "any text", nil)
	require.NoError(t, err)
	assert.Equal(t, 55, report.Scoring.OverallScore)
	assert.Equal(t, 88, report.ATS.OverallScore)
	assert.Equal(t, 77, report.Content.OverallScore)
	assert.Equal(t, 3, report.Recommendations.TotalCount)

	job := p.AnalyzeJob("ignored", "ignored")
	assert.Equal(t, "stub-title", job.Title)
}

// TestCreateProcessorNilComponent 测试组件被覆盖为nil时工厂直接报错
func TestCreateProcessorNilComponent(t *testing.T) {
	_, err := CreateProcessor([]ComponentOpt{WithcompScoreengine(nil)}, nil)
	assert.ErrorIs(t, err, ErrEngineNotInit)
}
