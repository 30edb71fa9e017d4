package scoring

import (
	"testing"

	"resume-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecommendationBuildEmpty 测试无输入时返回空报告与默认摘要
func TestRecommendationBuildEmpty(t *testing.T) {
	report := NewRecommendationEngine().Build(nil, nil, nil)

	require.NotNil(t, report)
	assert.Zero(t, report.TotalCount)
	assert.Empty(t, report.Recommendations)
	assert.Contains(t, report.Summary, "No significant issues")
}

// TestRecommendationDedupe 测试按（类别，小写标题）去重，先到先得
func TestRecommendationDedupe(t *testing.T) {
	content := &types.ContentAnalysis{Recommendations: []types.Recommendation{
		{Category: types.CategoryContent, Priority: types.PriorityMedium, Title: "Quantify achievements"},
		{Category: types.CategoryContent, Priority: types.PriorityHigh, Title: "QUANTIFY ACHIEVEMENTS"},
	}}

	report := NewRecommendationEngine().Build(nil, nil, content)

	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, "Quantify achievements", report.Recommendations[0].Title)
	assert.Equal(t, types.PriorityMedium, report.Recommendations[0].Priority)
}

// TestRecommendationTaxonomy 测试 ATS 子维度归入 structure、未知类别归入 content
func TestRecommendationTaxonomy(t *testing.T) {
	ats := &types.ATSAnalysis{Recommendations: []types.Recommendation{
		{Category: "formatting", Priority: types.PriorityLow, Title: "Fix tables"},
	}}
	content := &types.ContentAnalysis{Recommendations: []types.Recommendation{
		{Category: "weird", Priority: types.PriorityLow, Title: "Odd one"},
	}}

	report := NewRecommendationEngine().Build(nil, ats, content)

	require.Len(t, report.Recommendations, 2)
	// 同优先级下按类别重要性排序，content 在 structure 之前
	assert.Equal(t, "Odd one", report.Recommendations[0].Title)
	assert.Equal(t, types.CategoryContent, report.Recommendations[0].Category)
	assert.Equal(t, "Fix tables", report.Recommendations[1].Title)
	assert.Equal(t, types.CategoryStructure, report.Recommendations[1].Category)

	// 未自带示例的建议补上类别兜底示例
	for _, r := range report.Recommendations {
		require.NotNil(t, r.Example, r.Title)
		assert.NotEmpty(t, r.Example.Before)
		assert.NotEmpty(t, r.Example.After)
	}
}

// TestRecommendationCategoryShortfalls 测试低分类别的模板建议与优先级升档
func TestRecommendationCategoryShortfalls(t *testing.T) {
	scoring := &types.ScoringResult{CategoryScores: types.CategoryScores{
		Content: 35, Structure: 70, Keywords: 55, Experience: 90, Skills: 60,
	}}

	report := NewRecommendationEngine().Build(scoring, nil, nil)

	require.Len(t, report.Recommendations, 2)

	first := report.Recommendations[0]
	assert.Equal(t, types.CategoryContent, first.Category)
	assert.Equal(t, types.PriorityHigh, first.Priority)
	assert.Contains(t, first.Description, "35/100")

	second := report.Recommendations[1]
	assert.Equal(t, types.CategoryKeywords, second.Category)
	assert.Equal(t, types.PriorityMedium, second.Priority)

	assert.Len(t, report.PriorityBreakdown.High, 1)
	assert.Len(t, report.PriorityBreakdown.Medium, 1)
	assert.Contains(t, report.Summary, "Start with the content improvements")
}

// TestRecommendationSortOrder 测试先按优先级、再按类别重要性的排序
func TestRecommendationSortOrder(t *testing.T) {
	content := &types.ContentAnalysis{Recommendations: []types.Recommendation{
		{Category: types.CategoryKeywords, Priority: types.PriorityHigh, Title: "K-high"},
		{Category: types.CategoryContent, Priority: types.PriorityLow, Title: "C-low"},
	}}
	ats := &types.ATSAnalysis{Recommendations: []types.Recommendation{
		{Category: "presentation", Priority: types.PriorityHigh, Title: "S-high"},
		{Category: "organization", Priority: types.PriorityMedium, Title: "S-med"},
	}}

	report := NewRecommendationEngine().Build(nil, ats, content)

	require.Len(t, report.Recommendations, 4)
	got := make([]string, 0, 4)
	for _, r := range report.Recommendations {
		got = append(got, r.Title)
	}
	assert.Equal(t, []string{"K-high", "S-high", "S-med", "C-low"}, got)
}

// TestPriorityRecommendationsCap 测试高优先级建议至多返回五条
func TestPriorityRecommendationsCap(t *testing.T) {
	e := NewRecommendationEngine()

	assert.Nil(t, e.PriorityRecommendations(nil))

	recs := make([]types.Recommendation, 7)
	titles := []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	for i := range recs {
		recs[i] = types.Recommendation{
			Category: types.CategoryContent,
			Priority: types.PriorityHigh,
			Title:    titles[i],
		}
	}
	report := e.Build(nil, nil, &types.ContentAnalysis{Recommendations: recs})

	high := e.PriorityRecommendations(report)
	require.Len(t, high, 5)
	assert.Equal(t, "r1", high[0].Title)
	assert.Equal(t, "r5", high[4].Title)
}
