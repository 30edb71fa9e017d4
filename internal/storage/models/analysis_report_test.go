package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

func sampleReport() *types.AnalysisReport {
	keywordRec := types.Recommendation{
		Category:    types.CategoryKeywords,
		Priority:    types.PriorityHigh,
		Title:       "Add job-relevant keywords",
		Description: "Missing: kubernetes",
	}
	return &types.AnalysisReport{
		Scoring: types.ScoringResult{
			OverallScore:   82,
			CategoryScores: types.CategoryScores{Content: 78, Structure: 90, Keywords: 70, Experience: 85, Skills: 88},
			Weights:        types.CategoryWeights{Content: 0.3, Structure: 0.15, Keywords: 0.25, Experience: 0.15, Skills: 0.15},
			JobType:        types.JobTypeTechnical,
			Confidence:     types.ConfidenceHigh,
			Explanation:    "Scored against the technical profile.",
			Breakdown: []types.ScoreBreakdownEntry{
				{Category: types.CategoryContent, Weight: 0.3, Score: 78, Contribution: 23.4},
			},
		},
		ATS: types.ATSAnalysis{
			FormattingScore:   95,
			OrganizationScore: 80,
			ReadabilityScore:  90,
			PresentationScore: 85,
			OverallScore:      88,
			Issues: []types.Issue{
				{Category: "organization", Severity: types.SeverityMedium, Description: "Missing recommended section: summary"},
			},
		},
		Content: types.ContentAnalysis{
			OverallScore:   74,
			ActionVerbs:    types.ActionVerbAnalysis{Score: 80, StrongVerbs: []string{"led", "delivered"}},
			Quantification: types.QuantificationAnalysis{Score: 67, QuantifiedCount: 2, MissedCount: 1},
			Keywords:       types.KeywordAnalysis{Score: 70, Matched: []string{"go"}, Missing: []string{"kubernetes"}},
			Clarity:        types.ClarityAnalysis{Score: 65, ClarityScore: 70, ImpactScore: 60},
		},
		Recommendations: types.RecommendationReport{
			Recommendations:   []types.Recommendation{keywordRec},
			TotalCount:        1,
			Summary:           "Start with the keywords improvements.",
			PriorityBreakdown: types.PriorityBreakdown{High: []types.Recommendation{keywordRec}},
		},
	}
}

// TestResumeAnalysisReportRoundTrip 测试领域模型与数据库行之间的完整转换
func TestResumeAnalysisReportRoundTrip(t *testing.T) {
	report := sampleReport()
	analyzedAt := time.Date(2025, 7, 10, 9, 30, 0, 0, time.UTC)

	var row ResumeAnalysis
	require.NoError(t, row.FromAnalysisReport(report, analyzedAt))

	require.NotNil(t, row.OverallScore)
	assert.Equal(t, 82, *row.OverallScore)
	assert.Equal(t, types.JobTypeTechnical, row.JobTypeDetected)
	assert.Equal(t, types.ConfidenceHigh, row.Confidence)
	require.NotNil(t, row.AnalyzedAt)
	assert.True(t, row.AnalyzedAt.Equal(analyzedAt))
	assert.NotEmpty(t, row.CategoryScoresJSON)
	assert.NotEmpty(t, row.ATSReportJSON)
	assert.NotEmpty(t, row.ContentReportJSON)
	assert.NotEmpty(t, row.RecommendationsJSON)

	restored := row.ToAnalysisReport()
	require.NotNil(t, restored)
	assert.Equal(t, report.Scoring, restored.Scoring)
	assert.Equal(t, report.ATS, restored.ATS)
	assert.Equal(t, report.Content, restored.Content)
	assert.Equal(t, report.Recommendations, restored.Recommendations)

	// 简历原文不随分析行存储
	assert.Equal(t, types.ResumeContent{}, restored.Resume)
}

// TestToAnalysisReportColumnBackfill 测试 JSON 缺失时以列值回填
func TestToAnalysisReportColumnBackfill(t *testing.T) {
	score := 77
	row := &ResumeAnalysis{
		OverallScore:    &score,
		JobTypeDetected: types.JobTypeManagement,
		Confidence:      types.ConfidenceMedium,
	}

	got := row.ToAnalysisReport()
	assert.Equal(t, 77, got.Scoring.OverallScore)
	assert.Equal(t, types.JobTypeManagement, got.Scoring.JobType)
	assert.Equal(t, types.ConfidenceMedium, got.Scoring.Confidence)
	assert.Empty(t, got.Recommendations.Recommendations)
}

// TestToAnalysisReportColumnPrecedence 测试总分以列为准、文本字段以 JSON 为准
func TestToAnalysisReportColumnPrecedence(t *testing.T) {
	score := 65
	row := &ResumeAnalysis{
		OverallScore:       &score,
		JobTypeDetected:    types.JobTypeGeneral,
		Confidence:         types.ConfidenceLow,
		CategoryScoresJSON: StringToJSON(`{"overall_score":60,"job_type":"creative"}`),
	}

	got := row.ToAnalysisReport()
	assert.Equal(t, 65, got.Scoring.OverallScore)
	assert.Equal(t, types.JobTypeCreative, got.Scoring.JobType)
	// JSON 未携带置信度时回填列值
	assert.Equal(t, types.ConfidenceLow, got.Scoring.Confidence)
}

// TestFromAnalysisReportNil 测试 nil 报告不修改行且不报错
func TestFromAnalysisReportNil(t *testing.T) {
	row := &ResumeAnalysis{}
	require.NoError(t, row.FromAnalysisReport(nil, time.Now()))
	assert.Nil(t, row.OverallScore)
	assert.Nil(t, row.AnalyzedAt)
	assert.Empty(t, row.CategoryScoresJSON)
}
