package scoring

import (
	"fmt"
	"math"
	"strings"

	"resume-match-go/internal/types"
)

// 岗位类型推断词典，统计各组关键词的命中个数
var jobTypeKeywords = map[string][]string{
	types.JobTypeTechnical: {
		"software", "engineer", "developer", "programming", "technical",
		"code", "api", "database", "cloud", "devops", "backend",
		"frontend", "infrastructure", "data",
	},
	types.JobTypeManagement: {
		"manager", "management", "director", "leadership", "strategy",
		"stakeholder", "team", "budget", "planning", "operations",
		"executive", "cross-functional",
	},
	types.JobTypeCreative: {
		"design", "designer", "creative", "brand", "content",
		"marketing", "visual", "ux", "ui", "copywriting",
		"storytelling", "campaign",
	},
}

// 各岗位类型的固定权重档位，均和为 1.0
var weightProfiles = map[string]types.CategoryWeights{
	types.JobTypeTechnical: {
		Content: 0.20, Structure: 0.15, Keywords: 0.30, Experience: 0.15, Skills: 0.20,
	},
	types.JobTypeManagement: {
		Content: 0.25, Structure: 0.15, Keywords: 0.20, Experience: 0.30, Skills: 0.10,
	},
	types.JobTypeCreative: {
		Content: 0.35, Structure: 0.20, Keywords: 0.15, Experience: 0.15, Skills: 0.15,
	},
}

// 经历条目中体现带队能力的动词
var leadershipVerbs = []string{
	"led", "managed", "directed", "supervised", "mentored",
	"coordinated", "headed", "oversaw",
}

// 经历量化证据的标记
var quantifiedMarkers = []string{"%", "increased", "reduced"}

// Engine 加权评分引擎。依据岗位类型选择权重档位，把各维度的
// 分析结果合成总分并评估置信度。无状态，可并发使用。
type Engine struct {
	defaultWeights types.CategoryWeights
}

// EngineOption 配置评分引擎的函数选项
type EngineOption func(*Engine)

// WithDefaultWeights 覆盖 general 档位的默认权重。
// 权重和不为正时忽略，否则归一化到 1。
func WithDefaultWeights(w types.CategoryWeights) EngineOption {
	return func(e *Engine) {
		sum := w.Content + w.Structure + w.Keywords + w.Experience + w.Skills
		if sum <= 0 {
			return
		}
		e.defaultWeights = types.CategoryWeights{
			Content:    w.Content / sum,
			Structure:  w.Structure / sum,
			Keywords:   w.Keywords / sum,
			Experience: w.Experience / sum,
			Skills:     w.Skills / sum,
		}
	}
}

// NewEngine 创建评分引擎。
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		defaultWeights: types.CategoryWeights{
			Content: 0.25, Structure: 0.20, Keywords: 0.25, Experience: 0.15, Skills: 0.15,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InferJobType 依据关键词命中数推断岗位类型。
// 并列时按 technical > management > creative 的固定优先级取值，
// 该顺序是对外承诺的稳定策略；全部为零命中时返回 general。
func (e *Engine) InferJobType(job *types.JobRequirements) string {
	if job.IsEmpty() {
		return types.JobTypeGeneral
	}
	text := job.SearchText()
	counts := make(map[string]int, len(jobTypeKeywords))
	for jobType, keywords := range jobTypeKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				counts[jobType]++
			}
		}
	}
	tech := counts[types.JobTypeTechnical]
	mgmt := counts[types.JobTypeManagement]
	creative := counts[types.JobTypeCreative]
	switch {
	case tech == 0 && mgmt == 0 && creative == 0:
		return types.JobTypeGeneral
	case tech >= mgmt && tech >= creative:
		return types.JobTypeTechnical
	case mgmt >= creative:
		return types.JobTypeManagement
	default:
		return types.JobTypeCreative
	}
}

// WeightsFor 返回岗位类型对应的权重档位，未知类型用默认档位。
func (e *Engine) WeightsFor(jobType string) types.CategoryWeights {
	if w, ok := weightProfiles[jobType]; ok {
		return w
	}
	return e.defaultWeights
}

// Score 合成五大类别得分并给出加权总分。
// ats 与 contentAnalysis 为上游分析器的输出，nil 时按零值处理。
func (e *Engine) Score(content *types.ResumeContent, job *types.JobRequirements, ats *types.ATSAnalysis, contentAnalysis *types.ContentAnalysis) *types.ScoringResult {
	if content == nil {
		content = &types.ResumeContent{}
	}
	if ats == nil {
		ats = &types.ATSAnalysis{}
	}
	if contentAnalysis == nil {
		contentAnalysis = &types.ContentAnalysis{}
	}

	jobType := e.InferJobType(job)
	weights := e.WeightsFor(jobType)
	scores := types.CategoryScores{
		Content:    contentAnalysis.OverallScore,
		Structure:  ats.OverallScore,
		Keywords:   contentAnalysis.Keywords.Score,
		Experience: e.scoreExperience(content, job),
		Skills:     e.scoreSkills(content, job),
	}

	var overall float64
	breakdown := make([]types.ScoreBreakdownEntry, 0, len(types.CategoryOrder))
	for _, cat := range types.CategoryOrder {
		w := weights.Get(cat)
		s := scores.Get(cat)
		contribution := w * float64(s)
		overall += contribution
		breakdown = append(breakdown, types.ScoreBreakdownEntry{
			Category:     cat,
			Weight:       w,
			Score:        s,
			Contribution: math.Round(contribution*10) / 10,
		})
	}

	result := &types.ScoringResult{
		OverallScore:   clampInt(int(math.Round(overall)), 0, 100),
		CategoryScores: scores,
		Weights:        weights,
		JobType:        jobType,
		Breakdown:      breakdown,
	}
	result.Confidence = e.assessConfidence(scores, job)
	result.Explanation = buildExplanation(result)
	return result
}

// scoreExperience 逐条经历打分后取平均。
// 每条基准 50 分：量化成果 +20，岗位技能每命中一项 +5（上限 +30），
// 带队动词 +10，封顶 100。无经历时为 0。
func (e *Engine) scoreExperience(content *types.ResumeContent, job *types.JobRequirements) int {
	if len(content.Experience) == 0 {
		return 0
	}
	var jobSkills []string
	if !job.IsEmpty() {
		jobSkills = append(jobSkills, job.RequiredSkills...)
		jobSkills = append(jobSkills, job.PreferredSkills...)
	}

	total := 0
	for _, exp := range content.Experience {
		score := 50
		if hasQuantifiedAchievement(exp.Achievements) {
			score += 20
		}
		entryText := strings.ToLower(strings.Join(append([]string{exp.Position, exp.Description}, exp.Achievements...), " "))
		skillBonus := 0
		for _, skill := range jobSkills {
			skill = strings.ToLower(strings.TrimSpace(skill))
			if skill == "" || !strings.Contains(entryText, skill) {
				continue
			}
			skillBonus += 5
			if skillBonus == 30 {
				break
			}
		}
		score += skillBonus
		if containsAnyOf(entryText, leadershipVerbs) {
			score += 10
		}
		total += clampInt(score, 0, 100)
	}
	return int(math.Round(float64(total) / float64(len(content.Experience))))
}

// hasQuantifiedAchievement 报告成果列表中是否有带数字或量化标记的条目。
func hasQuantifiedAchievement(achievements []string) bool {
	for _, a := range achievements {
		lower := strings.ToLower(a)
		if strings.ContainsAny(a, "0123456789") || containsAnyOf(lower, quantifiedMarkers) {
			return true
		}
	}
	return false
}

// scoreSkills 技能类别打分。无岗位技能要求时按数量计（每项 5 分封顶
// 100），有要求时必备技能 10 分、加分技能 5 分，按命中比例归一。
func (e *Engine) scoreSkills(content *types.ResumeContent, job *types.JobRequirements) int {
	countScore := clampInt(len(content.Skills)*5, 0, 100)
	if job.IsEmpty() || len(job.RequiredSkills)+len(job.PreferredSkills) == 0 {
		return countScore
	}

	resumeSkills := make([]string, 0, len(content.Skills))
	for _, s := range content.Skills {
		resumeSkills = append(resumeSkills, strings.ToLower(s))
	}

	var achieved, maxPossible float64
	for _, skill := range job.RequiredSkills {
		maxPossible += 10
		if skillMatched(resumeSkills, skill) {
			achieved += 10
		}
	}
	for _, skill := range job.PreferredSkills {
		maxPossible += 5
		if skillMatched(resumeSkills, skill) {
			achieved += 5
		}
	}
	if maxPossible == 0 {
		return countScore
	}
	return int(math.Round(achieved / maxPossible * 100))
}

// skillMatched 双向子串匹配：任一方向包含即视为命中。
func skillMatched(resumeSkills []string, jobSkill string) bool {
	js := strings.ToLower(strings.TrimSpace(jobSkill))
	if js == "" {
		return false
	}
	for _, rs := range resumeSkills {
		if rs == "" {
			continue
		}
		if strings.Contains(rs, js) || strings.Contains(js, rs) {
			return true
		}
	}
	return false
}

// assessConfidence 评估置信度。五个信号：岗位要求存在、至少四个
// 类别分落在 (10,95) 区间、关键词/经历/技能分大于零。
// 满足比例 ≥0.8 为 high，≥0.6 为 medium，其余 low。
func (e *Engine) assessConfidence(scores types.CategoryScores, job *types.JobRequirements) string {
	satisfied := 0
	if !job.IsEmpty() {
		satisfied++
	}
	inRange := 0
	for _, cat := range types.CategoryOrder {
		if s := scores.Get(cat); s > 10 && s < 95 {
			inRange++
		}
	}
	if inRange >= 4 {
		satisfied++
	}
	if scores.Keywords > 0 {
		satisfied++
	}
	if scores.Experience > 0 {
		satisfied++
	}
	if scores.Skills > 0 {
		satisfied++
	}

	ratio := float64(satisfied) / 5.0
	switch {
	case ratio >= 0.8:
		return types.ConfidenceHigh
	case ratio >= 0.6:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

func buildExplanation(r *types.ScoringResult) string {
	best, worst := types.CategoryOrder[0], types.CategoryOrder[0]
	for _, cat := range types.CategoryOrder {
		if r.CategoryScores.Get(cat) > r.CategoryScores.Get(best) {
			best = cat
		}
		if r.CategoryScores.Get(cat) < r.CategoryScores.Get(worst) {
			worst = cat
		}
	}
	return fmt.Sprintf("Overall compatibility is %d/100 using the %s weight profile; strongest area is %s (%d), weakest is %s (%d).",
		r.OverallScore, r.JobType, best, r.CategoryScores.Get(best), worst, r.CategoryScores.Get(worst))
}

func containsAnyOf(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
