package parser

import (
	"strings"
	"testing"

	"resume-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJD = `Senior Backend Engineer

We build the payments platform for a fintech marketplace.

Requirements:
- 5+ years of experience with Go and MySQL
- Proficient with Docker and Kubernetes
- Bachelor degree in computer science

Nice to have:
- Familiarity with Terraform
- AWS certification is a plus

You will design, build and scale our core services.`

// TestParseJobDescriptionFull 用一份完整 JD 覆盖技能、级别、行业与关键字抽取
func TestParseJobDescriptionFull(t *testing.T) {
	job := NewJobAnalyzer().ParseJobDescription("", sampleJD)
	require.NotNil(t, job)

	// 未传标题时取文本首个短行
	assert.Equal(t, "Senior Backend Engineer", job.Title)
	assert.Equal(t, sampleJD, job.Description)

	assert.Equal(t, []string{"go", "mysql", "docker", "kubernetes"}, job.RequiredSkills)
	assert.Equal(t, []string{"terraform", "aws"}, job.PreferredSkills)

	// 年限表述优先于关键字
	assert.Equal(t, types.ExperienceLevelSenior, job.ExperienceLevel)

	assert.Equal(t, []string{"bachelor"}, job.Education)
	assert.Equal(t, []string{"AWS certification is a plus"}, job.Certifications)
	assert.Equal(t, []string{"design", "build", "scale"}, job.Keywords)
	assert.Equal(t, "finance", job.Industry)
}

// TestParseJobDescriptionEmpty 测试空文本只保留标题并按标题推断级别
func TestParseJobDescriptionEmpty(t *testing.T) {
	blank := NewJobAnalyzer().ParseJobDescription("", "")
	require.NotNil(t, blank)
	assert.True(t, blank.IsEmpty())
	assert.Empty(t, blank.ExperienceLevel)

	titled := NewJobAnalyzer().ParseJobDescription("Senior Engineer", "")
	assert.Equal(t, "Senior Engineer", titled.Title)
	assert.Equal(t, types.ExperienceLevelSenior, titled.ExperienceLevel)
	assert.Empty(t, titled.RequiredSkills)
}

// TestInferExperienceLevel 测试年限优先的级别推断与关键字回退
func TestInferExperienceLevel(t *testing.T) {
	a := NewJobAnalyzer()

	tests := []struct {
		text string
		want string
	}{
		{"we need 12 years leading teams", types.ExperienceLevelExecutive},
		{"5+ years of backend work", types.ExperienceLevelSenior},
		{"3 to 5 years preferred", types.ExperienceLevelSenior},
		{"3-4 years required", types.ExperienceLevelMid},
		{"1 year of exposure is enough", types.ExperienceLevelEntry},
		// 年限表述压过级别关键字
		{"senior role, 1 year required", types.ExperienceLevelEntry},
		{"director of engineering", types.ExperienceLevelExecutive},
		{"senior architect", types.ExperienceLevelSenior},
		{"junior developer", types.ExperienceLevelEntry},
		{"plain role text", types.ExperienceLevelMid},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.inferExperienceLevel(tt.text), tt.text)
	}
}

// TestExtractSkillSetsModes 测试小节标记切换归属与必备优先于加分
func TestExtractSkillSetsModes(t *testing.T) {
	a := NewJobAnalyzer()

	t.Run("default mode is required", func(t *testing.T) {
		required, preferred := a.extractSkillSets("Experience with Python")
		assert.Equal(t, []string{"python"}, required)
		assert.Empty(t, preferred)
	})

	t.Run("required wins over preferred", func(t *testing.T) {
		required, preferred := a.extractSkillSets("Nice to have: Redis\nRequired: Redis")
		assert.Equal(t, []string{"redis"}, required)
		assert.Empty(t, preferred)
	})

	t.Run("section marker carries to following lines", func(t *testing.T) {
		required, preferred := a.extractSkillSets("Preferred:\n- Kafka\n- Elasticsearch")
		assert.Empty(t, required)
		assert.Equal(t, []string{"kafka", "elasticsearch"}, preferred)
	})
}

// TestContainsTerm 测试技能匹配的词边界约束
func TestContainsTerm(t *testing.T) {
	tests := []struct {
		text string
		term string
		want bool
	}{
		{"we use go daily", "go", true},
		{"google analytics", "go", false},
		{"golang shop", "go", false},
		{"go", "go", true},
		{"mysql cluster", "sql", false},
		{"sql server", "sql", true},
		{"ci/cd pipelines", "ci/cd", true},
		{"familiar with node.js runtime", "node.js", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsTerm(tt.text, tt.term), "%s / %s", tt.text, tt.term)
	}
}

// TestFirstShortLine 测试标题回退：跳过空行与超长行
func TestFirstShortLine(t *testing.T) {
	assert.Equal(t, "A Title Line", firstShortLine("\n\n  A Title Line\nmore text"))
	assert.Equal(t, "Short", firstShortLine(strings.Repeat("x", 100)+"\nShort"))
	assert.Empty(t, firstShortLine("   \n  "))
}
