package analyzer

import (
	"testing"

	"resume-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestContentActionVerbs 测试强弱动词计数与打分公式
func TestContentActionVerbs(t *testing.T) {
	a := NewContentAnalyzer()

	t.Run("mixed strong and weak", func(t *testing.T) {
		res := a.analyzeActionVerbs("Led the team. Led the effort. Built the pipeline. Helped with rollout.")
		// strong 3 / weak 1: round(100*(0.75 - 0.5*0.25)) = 63
		assert.Equal(t, 63, res.Score)
		assert.Equal(t, []string{"led", "built"}, res.StrongVerbs)
		assert.Equal(t, []string{"helped"}, res.WeakVerbs)
		require.Len(t, res.Suggestions, 1)
		assert.Equal(t, "helped", res.Suggestions[0].Weak)
		assert.Equal(t, "facilitated", res.Suggestions[0].Replacement)
	})

	t.Run("only weak verbs clamps to zero", func(t *testing.T) {
		res := a.analyzeActionVerbs("Helped and supported the group.")
		assert.Equal(t, 0, res.Score)
		assert.Empty(t, res.StrongVerbs)
		assert.Equal(t, []string{"helped", "supported"}, res.WeakVerbs)
	})

	t.Run("empty text", func(t *testing.T) {
		res := a.analyzeActionVerbs("   ")
		assert.Equal(t, 0, res.Score)
		assert.Empty(t, res.StrongVerbs)
		assert.Empty(t, res.WeakVerbs)
	})

	t.Run("tense variants resolve to base form", func(t *testing.T) {
		res := a.analyzeActionVerbs("Managing the rollout while launches happen")
		assert.Equal(t, 100, res.Score)
		assert.Equal(t, []string{"managed", "launched"}, res.StrongVerbs)
	})
}

// TestContentQuantification 测试量化机会统计与比例打分
func TestContentQuantification(t *testing.T) {
	a := NewContentAnalyzer()

	t.Run("no opportunities scores full", func(t *testing.T) {
		res := a.analyzeQuantification(nil)
		assert.Equal(t, 100, res.Score)
		assert.Zero(t, res.QuantifiedCount)
		assert.Zero(t, res.MissedCount)
	})

	t.Run("mixed entries", func(t *testing.T) {
		exps := []types.WorkExperience{
			{Position: "Growth Engineer", Description: "Increased revenue by 30%"},
			{
				Position:     "Designer",
				Description:  "Designed the onboarding flow",
				Achievements: []string{"Launched the partner portal"},
			},
			{Position: "Member", Description: "Attended weekly standups"},
		}
		res := a.analyzeQuantification(exps)
		assert.Equal(t, 1, res.QuantifiedCount)
		assert.Equal(t, 1, res.MissedCount)
		// 中性条目既不量化也不算错失
		assert.Equal(t, 50, res.Score)
		assert.Equal(t, []string{"Launched the partner portal"}, res.MissedExamples)
	})
}

// TestContentKeywordsWeighted 测试有岗位要求时按必备/加分/普通权重计分
func TestContentKeywordsWeighted(t *testing.T) {
	a := NewContentAnalyzer()
	content := &types.ResumeContent{RawText: "Built Go services on Kubernetes with gRPC and Docker."}
	job := &types.JobRequirements{
		Title:           "Backend Engineer",
		RequiredSkills:  []string{"Go", "Kubernetes"},
		PreferredSkills: []string{"GraphQL"},
		Keywords:        []string{"microservices"},
	}

	res := a.analyzeKeywords(content, job)
	// 命中 2 个必备(2+2)，总权重 2+2+1.5+1=6.5：round(4/6.5*100)=62
	assert.Equal(t, 62, res.Score)
	assert.Equal(t, []string{"Go", "Kubernetes"}, res.Matched)
	assert.Equal(t, []string{"GraphQL", "microservices"}, res.Missing)
}

// TestContentKeywordsMonotonic 测试追加一项简历已具备的必备技能不会降低得分
func TestContentKeywordsMonotonic(t *testing.T) {
	a := NewContentAnalyzer()
	content := &types.ResumeContent{RawText: "Built Go services on Kubernetes with gRPC and Docker."}

	base := a.analyzeKeywords(content, &types.JobRequirements{
		RequiredSkills:  []string{"Go"},
		PreferredSkills: []string{"GraphQL"},
	})
	more := a.analyzeKeywords(content, &types.JobRequirements{
		RequiredSkills:  []string{"Go", "Docker"},
		PreferredSkills: []string{"GraphQL"},
	})

	// 2/3.5 → 57；追加命中的必备技能后 4/5.5 → 73
	assert.Equal(t, 57, base.Score)
	assert.Equal(t, 73, more.Score)
	assert.GreaterOrEqual(t, more.Score, base.Score)
}

// TestContentKeywordsFallback 测试无岗位要求时退回职业通用词典
func TestContentKeywordsFallback(t *testing.T) {
	a := NewContentAnalyzer()
	content := &types.ResumeContent{RawText: "Managed the team and delivered the project."}

	res := a.analyzeKeywords(content, nil)
	// 命中 managed/team/delivered/project 共 4 个：round(4/12*100)=33
	assert.Equal(t, 33, res.Score)
	assert.Len(t, res.Matched, 4)
	assert.Empty(t, res.Missing)

	// 空的岗位要求与 nil 等价
	same := a.analyzeKeywords(content, &types.JobRequirements{})
	assert.Equal(t, res.Score, same.Score)
}

// TestContentClarity 测试清晰度与影响力的基准分及增减
func TestContentClarity(t *testing.T) {
	a := NewContentAnalyzer()

	t.Run("neutral text stays at base", func(t *testing.T) {
		res := a.analyzeClarity("plain statement of ordinary facts")
		assert.Equal(t, 70, res.ClarityScore)
		assert.Equal(t, 50, res.ImpactScore)
		assert.Equal(t, 60, res.Score)
	})

	t.Run("positive indicators raise both", func(t *testing.T) {
		res := a.analyzeClarity("Successfully spearheaded an award winning effort, specifically resulting in consistent growth.")
		// specifically/resulting in/successfully 各 +2
		assert.Equal(t, 76, res.ClarityScore)
		// 情感净值 +5 (award, growth)，影响力词 spearheaded +3
		assert.Equal(t, 58, res.ImpactScore)
		assert.Equal(t, 67, res.Score)
	})

	t.Run("vague phrasing lowers clarity", func(t *testing.T) {
		res := a.analyzeClarity("Responsible for various things and stuff, etc.")
		// 5 个模糊表述各 -3
		assert.Equal(t, 55, res.ClarityScore)
		assert.Equal(t, 50, res.ImpactScore)
		assert.Equal(t, 53, res.Score)
	})
}

// TestContentAnalyzeEmptyInput 测试空输入的聚合结果与建议
func TestContentAnalyzeEmptyInput(t *testing.T) {
	res := NewContentAnalyzer().Analyze(nil, nil, nil)
	require.NotNil(t, res)

	assert.Equal(t, 0, res.ActionVerbs.Score)
	assert.Equal(t, 100, res.Quantification.Score)
	assert.Equal(t, 0, res.Keywords.Score)
	assert.Equal(t, 60, res.Clarity.Score)
	// round(0.2*(0+100+0+60+0)) = 32
	assert.Equal(t, 32, res.OverallScore)

	require.Len(t, res.Recommendations, 2)
	titles := []string{res.Recommendations[0].Title, res.Recommendations[1].Title}
	assert.Contains(t, titles, "Strengthen action verbs")
	assert.Contains(t, titles, "Add job-relevant keywords")
	for _, r := range res.Recommendations {
		assert.Equal(t, types.PriorityHigh, r.Priority)
	}
}

// TestContentAnalyzeCarriesATSRecommendations 测试 ATS 总分不足 80 时
// 其高优先级建议被附带，且至多 5 条
func TestContentAnalyzeCarriesATSRecommendations(t *testing.T) {
	content := &types.ResumeContent{
		RawText: "Managed and developed the team project. Delivered experience and skills training.",
		Experience: []types.WorkExperience{
			{Position: "Lead", Description: "Cut costs by 12%"},
		},
	}
	ats := &types.ATSAnalysis{
		OverallScore: 40,
		Recommendations: []types.Recommendation{
			{Priority: types.PriorityHigh, Title: "H1"},
			{Priority: types.PriorityLow, Title: "L1"},
			{Priority: types.PriorityHigh, Title: "H2"},
			{Priority: types.PriorityHigh, Title: "H3"},
			{Priority: types.PriorityHigh, Title: "H4"},
			{Priority: types.PriorityHigh, Title: "H5"},
			{Priority: types.PriorityHigh, Title: "H6"},
		},
	}

	res := NewContentAnalyzer().Analyze(content, nil, ats)

	// 内容子项全部达标，建议只来自 ATS 的高优先级条目
	require.Len(t, res.Recommendations, 5)
	for i, r := range res.Recommendations {
		assert.Equal(t, types.PriorityHigh, r.Priority)
		assert.Equal(t, []string{"H1", "H2", "H3", "H4", "H5"}[i], r.Title)
	}
}

// TestContentAnalyzeAveragesFiveSignals 测试总分为五个信号的等权平均
func TestContentAnalyzeAveragesFiveSignals(t *testing.T) {
	content := &types.ResumeContent{
		RawText: "Managed and developed the team project. Delivered experience and skills training.",
		Experience: []types.WorkExperience{
			{Position: "Lead", Description: "Cut costs by 12%"},
		},
	}
	ats := &types.ATSAnalysis{OverallScore: 90}

	res := NewContentAnalyzer().Analyze(content, nil, ats)

	want := int(0.2*float64(res.ActionVerbs.Score) +
		0.2*float64(res.Quantification.Score) +
		0.2*float64(res.Keywords.Score) +
		0.2*float64(res.Clarity.Score) +
		0.2*90 + 0.5)
	assert.Equal(t, want, res.OverallScore)
	assert.Empty(t, res.Recommendations)
}
