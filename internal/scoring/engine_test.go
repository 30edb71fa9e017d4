package scoring

import (
	"strings"
	"testing"

	"resume-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInferJobType 测试岗位类型推断与并列时的固定优先级
func TestInferJobType(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name string
		job  *types.JobRequirements
		want string
	}{
		{
			name: "empty job falls back to general",
			job:  nil,
			want: types.JobTypeGeneral,
		},
		{
			name: "technical keywords",
			job: &types.JobRequirements{
				Title:       "Software Engineer",
				Description: "backend api work against a cloud database",
			},
			want: types.JobTypeTechnical,
		},
		{
			name: "management keywords",
			job: &types.JobRequirements{
				Title:       "Engineering Manager",
				Description: "stakeholder management, budget planning, team leadership",
			},
			want: types.JobTypeManagement,
		},
		{
			name: "creative keywords",
			job: &types.JobRequirements{
				Title:       "Brand Designer",
				Description: "visual storytelling campaign content",
			},
			want: types.JobTypeCreative,
		},
		{
			name: "tie prefers technical over management",
			job:  &types.JobRequirements{Title: "engineer manager"},
			want: types.JobTypeTechnical,
		},
		{
			name: "tie prefers management over creative",
			job:  &types.JobRequirements{Title: "team design lead"},
			want: types.JobTypeManagement,
		},
		{
			name: "no keyword hits",
			job:  &types.JobRequirements{Title: "florist"},
			want: types.JobTypeGeneral,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.InferJobType(tt.job))
		})
	}
}

// TestWeightsFor 测试权重档位选择与默认档位覆盖
func TestWeightsFor(t *testing.T) {
	e := NewEngine()

	tech := e.WeightsFor(types.JobTypeTechnical)
	assert.InDelta(t, 0.30, tech.Keywords, 1e-9)
	assert.InDelta(t, 0.20, tech.Skills, 1e-9)

	def := e.WeightsFor(types.JobTypeGeneral)
	assert.InDelta(t, 0.25, def.Content, 1e-9)
	assert.InDelta(t, 0.20, def.Structure, 1e-9)

	// 自定义默认权重会归一化到 1
	custom := NewEngine(WithDefaultWeights(types.CategoryWeights{
		Content: 2, Structure: 1, Keywords: 1, Experience: 0.5, Skills: 0.5,
	}))
	w := custom.WeightsFor(types.JobTypeGeneral)
	assert.InDelta(t, 0.4, w.Content, 1e-9)
	assert.InDelta(t, 0.1, w.Skills, 1e-9)

	// 非法权重被忽略
	ignored := NewEngine(WithDefaultWeights(types.CategoryWeights{}))
	assert.InDelta(t, 0.25, ignored.WeightsFor(types.JobTypeGeneral).Content, 1e-9)
}

// TestScoreExperience 测试经历逐条打分的加分项与均值
func TestScoreExperience(t *testing.T) {
	e := NewEngine()

	t.Run("no experience", func(t *testing.T) {
		assert.Equal(t, 0, e.scoreExperience(&types.ResumeContent{}, nil))
	})

	t.Run("bare entry earns the base score", func(t *testing.T) {
		content := &types.ResumeContent{Experience: []types.WorkExperience{
			{Position: "Analyst", Description: "Reviewed quarterly reports"},
		}}
		assert.Equal(t, 50, e.scoreExperience(content, nil))
	})

	t.Run("all bonuses stack", func(t *testing.T) {
		content := &types.ResumeContent{Experience: []types.WorkExperience{
			{
				Position:     "Team Lead",
				Description:  "Led rollout of Go services",
				Achievements: []string{"Reduced latency by 40%"},
			},
		}}
		job := &types.JobRequirements{RequiredSkills: []string{"Go", "Redis"}}
		// 50 + 20 量化 + 5 技能 + 10 带队 = 85
		assert.Equal(t, 85, e.scoreExperience(content, job))
	})

	t.Run("skill bonus caps at 30", func(t *testing.T) {
		content := &types.ResumeContent{Experience: []types.WorkExperience{
			{Position: "Engineer", Description: "alpha beta gamma delta epsilon zeta eta theta"},
		}}
		job := &types.JobRequirements{RequiredSkills: []string{
			"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta",
		}}
		assert.Equal(t, 80, e.scoreExperience(content, job))
	})

	t.Run("entries are averaged", func(t *testing.T) {
		content := &types.ResumeContent{Experience: []types.WorkExperience{
			{
				Position:     "Team Lead",
				Description:  "Led rollout of Go services",
				Achievements: []string{"Reduced latency by 40%"},
			},
			{Position: "Analyst", Description: "Reviewed quarterly reports"},
		}}
		job := &types.JobRequirements{RequiredSkills: []string{"Go"}}
		// round((85+50)/2) = 68
		assert.Equal(t, 68, e.scoreExperience(content, job))
	})
}

// TestScoreSkills 测试技能类别的数量档与加权档
func TestScoreSkills(t *testing.T) {
	e := NewEngine()

	t.Run("count based without job skills", func(t *testing.T) {
		content := &types.ResumeContent{Skills: []string{"Go", "MySQL", "Redis", "Docker"}}
		assert.Equal(t, 20, e.scoreSkills(content, nil))

		many := &types.ResumeContent{Skills: make([]string, 25)}
		for i := range many.Skills {
			many.Skills[i] = "skill"
		}
		assert.Equal(t, 100, e.scoreSkills(many, nil))
	})

	t.Run("weighted against job skills", func(t *testing.T) {
		content := &types.ResumeContent{Skills: []string{"golang", "kubernetes"}}
		job := &types.JobRequirements{
			RequiredSkills:  []string{"Go", "Kubernetes"},
			PreferredSkills: []string{"Terraform"},
		}
		// 双向子串：golang 命中 go。(10+10)/(10+10+5) = 80
		assert.Equal(t, 80, e.scoreSkills(content, job))
	})
}

// TestScoreSkillsMonotonic 测试补上一项命中岗位要求的技能后，两个档位的技能分都不会下降
func TestScoreSkillsMonotonic(t *testing.T) {
	e := NewEngine()

	t.Run("count branch", func(t *testing.T) {
		base := &types.ResumeContent{Skills: []string{"Go", "Redis"}}
		more := &types.ResumeContent{Skills: []string{"Go", "Redis", "Docker"}}

		assert.Equal(t, 10, e.scoreSkills(base, nil))
		assert.Equal(t, 15, e.scoreSkills(more, nil))
		assert.GreaterOrEqual(t, e.scoreSkills(more, nil), e.scoreSkills(base, nil))
	})

	t.Run("weighted branch", func(t *testing.T) {
		job := &types.JobRequirements{
			RequiredSkills:  []string{"Go", "Kubernetes"},
			PreferredSkills: []string{"GraphQL"},
		}
		base := &types.ResumeContent{Skills: []string{"Go"}}
		more := &types.ResumeContent{Skills: []string{"Go", "Kubernetes"}}

		// 10/25 = 40 → 20/25 = 80
		assert.Equal(t, 40, e.scoreSkills(base, job))
		assert.Equal(t, 80, e.scoreSkills(more, job))
		assert.GreaterOrEqual(t, e.scoreSkills(more, job), e.scoreSkills(base, job))
	})
}

// TestAssessConfidence 测试五个置信信号的档位划分
func TestAssessConfidence(t *testing.T) {
	e := NewEngine()
	job := &types.JobRequirements{Title: "Backend Engineer"}

	tests := []struct {
		name   string
		scores types.CategoryScores
		job    *types.JobRequirements
		want   string
	}{
		{
			name:   "all signals satisfied",
			scores: types.CategoryScores{Content: 50, Structure: 60, Keywords: 40, Experience: 70, Skills: 30},
			job:    job,
			want:   types.ConfidenceHigh,
		},
		{
			name:   "three signals is medium",
			scores: types.CategoryScores{Content: 100, Structure: 100, Keywords: 50, Experience: 50, Skills: 50},
			job:    nil,
			want:   types.ConfidenceMedium,
		},
		{
			name:   "empty input is low",
			scores: types.CategoryScores{},
			job:    nil,
			want:   types.ConfidenceLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.assessConfidence(tt.scores, tt.job))
		})
	}
}

// TestEngineScoreEmpty 测试全空输入得到零分与低置信度，不 panic
func TestEngineScoreEmpty(t *testing.T) {
	res := NewEngine().Score(nil, nil, nil, nil)
	require.NotNil(t, res)

	assert.Equal(t, 0, res.OverallScore)
	assert.Equal(t, types.JobTypeGeneral, res.JobType)
	assert.Equal(t, types.ConfidenceLow, res.Confidence)
	assert.Len(t, res.Breakdown, 5)
	assert.NotEmpty(t, res.Explanation)
}

// TestEngineScoreIntegration 测试类别合成、加权总分与置信度的整体链路
func TestEngineScoreIntegration(t *testing.T) {
	content := &types.ResumeContent{
		Experience: []types.WorkExperience{
			{
				Position:     "Backend Developer",
				Description:  "Led migration to Go services",
				Achievements: []string{"Cut costs by 15%"},
			},
		},
		Skills: []string{"Go", "Docker"},
	}
	job := &types.JobRequirements{Title: "Software Engineer", RequiredSkills: []string{"Go"}}
	ats := &types.ATSAnalysis{OverallScore: 80}
	ca := &types.ContentAnalysis{
		OverallScore: 70,
		Keywords:     types.KeywordAnalysis{Score: 60},
	}

	res := NewEngine().Score(content, job, ats, ca)

	assert.Equal(t, types.JobTypeTechnical, res.JobType)
	assert.Equal(t, 70, res.CategoryScores.Content)
	assert.Equal(t, 80, res.CategoryScores.Structure)
	assert.Equal(t, 60, res.CategoryScores.Keywords)
	assert.Equal(t, 85, res.CategoryScores.Experience)
	assert.Equal(t, 100, res.CategoryScores.Skills)
	// 0.20*70 + 0.15*80 + 0.30*60 + 0.15*85 + 0.20*100 = 76.75
	assert.Equal(t, 77, res.OverallScore)
	assert.Equal(t, types.ConfidenceHigh, res.Confidence)

	require.Len(t, res.Breakdown, 5)
	assert.Equal(t, types.CategoryContent, res.Breakdown[0].Category)
	assert.InDelta(t, 14.0, res.Breakdown[0].Contribution, 1e-9)
	assert.Equal(t, types.CategoryExperience, res.Breakdown[3].Category)
	assert.InDelta(t, 12.75, res.Breakdown[3].Contribution, 0.06)
	assert.True(t, strings.Contains(res.Explanation, "technical"))
}
