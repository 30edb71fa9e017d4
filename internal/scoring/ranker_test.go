package scoring

import (
	"context"
	"errors"
	"testing"

	"resume-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAnalyzer 按简历文本返回预置报告，用于隔离排序逻辑
type stubAnalyzer struct {
	reports map[string]*types.AnalysisReport
	failFor map[string]bool
}

func (s *stubAnalyzer) AnalyzeResume(_ context.Context, resumeText string, _ *types.JobRequirements) (*types.AnalysisReport, error) {
	if s.failFor[resumeText] {
		return nil, errors.New("analysis failed")
	}
	return s.reports[resumeText], nil
}

func reportWith(overall int, scores types.CategoryScores, confidence string) *types.AnalysisReport {
	rep := &types.AnalysisReport{}
	rep.Scoring.OverallScore = overall
	rep.Scoring.CategoryScores = scores
	rep.Scoring.Confidence = confidence
	rep.Scoring.JobType = types.JobTypeGeneral
	return rep
}

func flatScores(v int) types.CategoryScores {
	return types.CategoryScores{Content: v, Structure: v, Keywords: v, Experience: v, Skills: v}
}

// TestRankEmptyCohort 测试空集合返回空结果且不报错
func TestRankEmptyCohort(t *testing.T) {
	r := NewRanker(&stubAnalyzer{})
	res, err := r.Rank(context.Background(), nil, nil)

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.RankingID)
	assert.Equal(t, types.JobTypeGeneral, res.JobType)
	assert.Zero(t, res.CohortSize)
	assert.Empty(t, res.Candidates)
}

// TestRankOrdersByOverallScore 测试按总分排序、名次与百分位
func TestRankOrdersByOverallScore(t *testing.T) {
	stub := &stubAnalyzer{reports: map[string]*types.AnalysisReport{
		"resume-a": reportWith(70, flatScores(70), types.ConfidenceHigh),
		"resume-b": reportWith(90, flatScores(90), types.ConfidenceHigh),
		"resume-c": reportWith(80, flatScores(80), types.ConfidenceHigh),
	}}
	r := NewRanker(stub)

	candidates := []types.CandidateProfile{
		{ID: "a", ResumeText: "resume-a"},
		{ID: "b", ResumeText: "resume-b"},
		{ID: "c", ResumeText: "resume-c"},
	}
	res, err := r.Rank(context.Background(), candidates, nil)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)

	assert.Equal(t, "b", res.Candidates[0].CandidateID)
	assert.Equal(t, "c", res.Candidates[1].CandidateID)
	assert.Equal(t, "a", res.Candidates[2].CandidateID)

	assert.Equal(t, 1, res.Candidates[0].Rank)
	assert.Equal(t, 2, res.Candidates[1].Rank)
	assert.Equal(t, 3, res.Candidates[2].Rank)

	assert.InDelta(t, 100.0, res.Candidates[0].Percentile, 1e-9)
	assert.InDelta(t, 66.7, res.Candidates[1].Percentile, 1e-9)
	assert.InDelta(t, 33.3, res.Candidates[2].Percentile, 1e-9)

	assert.Equal(t, 3, res.CohortSize)
	assert.InDelta(t, 80.0, res.AverageOverall, 1e-9)
}

// TestRankTieBreakers 测试总分接近时的次级比较路径
func TestRankTieBreakers(t *testing.T) {
	t.Run("weighted categories break near ties", func(t *testing.T) {
		// 总分差 1 不分胜负，类别加权和高者在前
		stub := &stubAnalyzer{reports: map[string]*types.AnalysisReport{
			"x": reportWith(80, flatScores(50), types.ConfidenceHigh),
			"y": reportWith(79, flatScores(60), types.ConfidenceHigh),
		}}
		res, err := NewRanker(stub).Rank(context.Background(), []types.CandidateProfile{
			{ID: "x", ResumeText: "x"},
			{ID: "y", ResumeText: "y"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "y", res.Candidates[0].CandidateID)
		assert.Equal(t, "x", res.Candidates[1].CandidateID)
	})

	t.Run("confidence breaks remaining ties", func(t *testing.T) {
		stub := &stubAnalyzer{reports: map[string]*types.AnalysisReport{
			"x": reportWith(80, flatScores(50), types.ConfidenceLow),
			"y": reportWith(80, flatScores(50), types.ConfidenceHigh),
		}}
		res, err := NewRanker(stub).Rank(context.Background(), []types.CandidateProfile{
			{ID: "x", ResumeText: "x"},
			{ID: "y", ResumeText: "y"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "y", res.Candidates[0].CandidateID)
	})

	t.Run("full ties keep input order", func(t *testing.T) {
		stub := &stubAnalyzer{reports: map[string]*types.AnalysisReport{
			"x": reportWith(80, flatScores(50), types.ConfidenceHigh),
			"y": reportWith(80, flatScores(50), types.ConfidenceHigh),
		}}
		res, err := NewRanker(stub).Rank(context.Background(), []types.CandidateProfile{
			{ID: "x", ResumeText: "x"},
			{ID: "y", ResumeText: "y"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "x", res.Candidates[0].CandidateID)
	})
}

// TestRankAnalyzerFailure 测试单个候选人分析失败按零分计入，不中断整批
func TestRankAnalyzerFailure(t *testing.T) {
	stub := &stubAnalyzer{
		reports: map[string]*types.AnalysisReport{
			"good": reportWith(80, flatScores(80), types.ConfidenceHigh),
		},
		failFor: map[string]bool{"bad": true},
	}
	res, err := NewRanker(stub).Rank(context.Background(), []types.CandidateProfile{
		{ID: "broken", ResumeText: "bad"},
		{ID: "fine", ResumeText: "good"},
	}, nil)

	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "fine", res.Candidates[0].CandidateID)

	failed := res.Candidates[1]
	assert.Equal(t, "broken", failed.CandidateID)
	assert.Zero(t, failed.Scoring.OverallScore)
	assert.Equal(t, types.ConfidenceLow, failed.Confidence)
	assert.Equal(t, types.HiringStrongNoHire, failed.Hiring.Decision)
}

// TestRankComparatives 测试同辈对比：类别百分位、相近候选人与差异化优势
func TestRankComparatives(t *testing.T) {
	withContent := func(overall, content int) *types.AnalysisReport {
		scores := flatScores(70)
		scores.Content = content
		return reportWith(overall, scores, types.ConfidenceHigh)
	}
	stub := &stubAnalyzer{reports: map[string]*types.AnalysisReport{
		"x": withContent(90, 90),
		"y": withContent(85, 50),
		"z": withContent(60, 40),
	}}
	res, err := NewRanker(stub).Rank(context.Background(), []types.CandidateProfile{
		{ID: "x", ResumeText: "x"},
		{ID: "y", ResumeText: "y"},
		{ID: "z", ResumeText: "z"},
	}, nil)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)

	top := res.Candidates[0]
	assert.Equal(t, "x", top.CandidateID)
	assert.InDelta(t, 100.0, top.CategoryPercentiles[types.CategoryContent], 1e-9)
	// 总分 90 与 85 相差 10 以内
	assert.Equal(t, []string{"y"}, top.SimilarCandidates)
	// content 均值 60，90 高出 30
	require.Len(t, top.Differentiators, 1)
	assert.Contains(t, top.Differentiators[0], "content")

	assert.Equal(t, types.HiringStrongHire, top.Hiring.Decision)
	assert.Equal(t, types.HiringHire, res.Candidates[1].Hiring.Decision)
	assert.Equal(t, types.HiringNoHire, res.Candidates[2].Hiring.Decision)
	assert.Empty(t, res.Candidates[2].SimilarCandidates)
}

// TestHiringRecommendationLadder 测试录用建议的分档边界
func TestHiringRecommendationLadder(t *testing.T) {
	tests := []struct {
		overall    int
		percentile float64
		want       string
	}{
		{90, 85, types.HiringStrongHire},
		{85, 80, types.HiringStrongHire},
		{85, 79, types.HiringHire},
		{75, 60, types.HiringHire},
		{74, 95, types.HiringMaybe},
		{65, 40, types.HiringMaybe},
		{65, 39, types.HiringNoHire},
		{50, 0, types.HiringNoHire},
		{49, 100, types.HiringStrongNoHire},
	}
	for _, tt := range tests {
		got := hiringRecommendation(tt.overall, tt.percentile)
		assert.Equal(t, tt.want, got.Decision, "overall=%d percentile=%.0f", tt.overall, tt.percentile)
		assert.NotEmpty(t, got.Reasoning)
		assert.NotEmpty(t, got.NextSteps)
	}
}

// TestCategoryHighlights 测试优势与薄弱类别的抽取和排序
func TestCategoryHighlights(t *testing.T) {
	strengths, weaknesses := categoryHighlights(types.CategoryScores{
		Content: 85, Structure: 90, Keywords: 55, Experience: 45, Skills: 30,
	})

	require.Len(t, strengths, 2)
	assert.Equal(t, types.CategoryStructure, strengths[0].Category)
	assert.Equal(t, types.CategoryContent, strengths[1].Category)

	require.Len(t, weaknesses, 3)
	assert.Equal(t, types.CategorySkills, weaknesses[0].Category)
	assert.Equal(t, types.SeverityHigh, weaknesses[0].Severity)
	assert.Equal(t, types.CategoryExperience, weaknesses[1].Category)
	assert.Equal(t, types.SeverityMedium, weaknesses[1].Severity)
	assert.Equal(t, types.CategoryKeywords, weaknesses[2].Category)
	assert.Equal(t, types.SeverityLow, weaknesses[2].Severity)
}

// TestApplyBiasChecks 测试过度资历告警与置信度下调
func TestApplyBiasChecks(t *testing.T) {
	t.Run("score above 95 warns and downgrades", func(t *testing.T) {
		c := &types.RankedCandidate{Confidence: types.ConfidenceHigh}
		c.Scoring.OverallScore = 96
		applyBiasChecks(c)
		require.Len(t, c.BiasWarnings, 1)
		assert.Equal(t, types.ConfidenceMedium, c.Confidence)
	})

	t.Run("boundary score does not warn", func(t *testing.T) {
		c := &types.RankedCandidate{Confidence: types.ConfidenceHigh}
		c.Scoring.OverallScore = 95
		applyBiasChecks(c)
		assert.Empty(t, c.BiasWarnings)
		assert.Equal(t, types.ConfidenceHigh, c.Confidence)
	})

	t.Run("downgrade bottoms out at low", func(t *testing.T) {
		assert.Equal(t, types.ConfidenceMedium, downgradeConfidence(types.ConfidenceHigh))
		assert.Equal(t, types.ConfidenceLow, downgradeConfidence(types.ConfidenceMedium))
		assert.Equal(t, types.ConfidenceLow, downgradeConfidence(types.ConfidenceLow))
	})
}
