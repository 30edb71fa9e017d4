package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"resume-match-go/internal/types"
)

var wordRe = regexp.MustCompile(`[a-zA-Z]+`)

// 内容建议的触发阈值
const (
	actionVerbThreshold     = 70
	quantificationThreshold = 60
	keywordThreshold        = 50
	clarityThreshold        = 60
	deepBelowThreshold      = 40 // 低于该值的建议升为高优先级
)

// ContentAnalyzer 衡量简历文本的表达质量：动词强度、成果量化、
// 关键词覆盖与清晰度。无状态，可并发使用。
type ContentAnalyzer struct{}

// NewContentAnalyzer 创建内容质量分析器。
func NewContentAnalyzer() *ContentAnalyzer {
	return &ContentAnalyzer{}
}

// Analyze 执行全部内容质量检查。job 可为 nil（按无岗位要求的回退
// 词典评关键词分），ats 可为 nil（ATS 分按 0 计入总分）。
func (a *ContentAnalyzer) Analyze(content *types.ResumeContent, job *types.JobRequirements, ats *types.ATSAnalysis) *types.ContentAnalysis {
	if content == nil {
		content = &types.ResumeContent{}
	}
	res := &types.ContentAnalysis{
		ActionVerbs:    a.analyzeActionVerbs(content.RawText),
		Quantification: a.analyzeQuantification(content.Experience),
		Keywords:       a.analyzeKeywords(content, job),
		Clarity:        a.analyzeClarity(content.RawText),
	}

	atsScore := 0
	if ats != nil {
		atsScore = ats.OverallScore
	}
	// 五个信号等权平均
	res.OverallScore = int(math.Round(0.2*float64(res.ActionVerbs.Score) +
		0.2*float64(res.Quantification.Score) +
		0.2*float64(res.Keywords.Score) +
		0.2*float64(res.Clarity.Score) +
		0.2*float64(atsScore)))
	res.Recommendations = a.buildRecommendations(res, ats)
	return res
}

// analyzeActionVerbs 按词典统计强弱动词并打分：
// clamp(0,100, round(100×(强动词占比 − 0.5×弱动词占比)))，无动词时为 0。
func (a *ContentAnalyzer) analyzeActionVerbs(text string) types.ActionVerbAnalysis {
	out := types.ActionVerbAnalysis{}
	if strings.TrimSpace(text) == "" {
		return out
	}

	strongCount, weakCount := 0, 0
	seenStrong := map[string]bool{}
	seenWeak := map[string]bool{}
	for _, tok := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if base, ok := matchVerb(tok, strongActionVerbs); ok {
			strongCount++
			if !seenStrong[base] {
				seenStrong[base] = true
				out.StrongVerbs = append(out.StrongVerbs, base)
			}
			continue
		}
		if base, ok := matchWeakVerb(tok); ok {
			weakCount++
			if !seenWeak[base] {
				seenWeak[base] = true
				out.WeakVerbs = append(out.WeakVerbs, base)
				out.Suggestions = append(out.Suggestions, types.VerbSuggestion{
					Weak:        base,
					Replacement: weakVerbReplacements[base],
				})
			}
		}
	}

	total := strongCount + weakCount
	if total == 0 {
		return out
	}
	strongRatio := float64(strongCount) / float64(total)
	weakRatio := float64(weakCount) / float64(total)
	out.Score = clampInt(int(math.Round(100*(strongRatio-0.5*weakRatio))), 0, 100)
	return out
}

// verbVariants 生成查词典用的变形候选，宽松覆盖常见的时态变化。
func verbVariants(tok string) []string {
	vars := []string{tok, tok + "d", tok + "ed"}
	if strings.HasSuffix(tok, "ing") && len(tok) > 4 {
		vars = append(vars, tok[:len(tok)-3]+"ed")
	}
	if strings.HasSuffix(tok, "s") && len(tok) > 3 {
		base := tok[:len(tok)-1]
		vars = append(vars, base, base+"d", base+"ed")
	}
	return vars
}

func matchVerb(tok string, dict map[string]bool) (string, bool) {
	for _, cand := range verbVariants(tok) {
		if dict[cand] {
			return cand, true
		}
	}
	return "", false
}

func matchWeakVerb(tok string) (string, bool) {
	for _, cand := range verbVariants(tok) {
		if _, ok := weakVerbReplacements[cand]; ok {
			return cand, true
		}
	}
	return "", false
}

// analyzeQuantification 统计已量化条目与错失的量化机会。
// 无任何量化机会时记满分。
func (a *ContentAnalyzer) analyzeQuantification(experience []types.WorkExperience) types.QuantificationAnalysis {
	out := types.QuantificationAnalysis{}
	for _, exp := range experience {
		parts := append([]string{exp.Position, exp.Description}, exp.Achievements...)
		text := strings.ToLower(strings.Join(parts, " "))
		if digitRe.MatchString(text) || containsAnyKeyword(text, quantIndicators) {
			out.QuantifiedCount++
			continue
		}
		if containsAnyKeyword(text, benefitVerbs) {
			out.MissedCount++
			if len(out.MissedExamples) < 3 {
				example := exp.Position
				if len(exp.Achievements) > 0 {
					example = exp.Achievements[0]
				}
				out.MissedExamples = append(out.MissedExamples, example)
			}
		}
	}

	opportunities := out.QuantifiedCount + out.MissedCount
	if opportunities == 0 {
		out.Score = 100
		return out
	}
	out.Score = int(math.Round(float64(out.QuantifiedCount) / float64(opportunities) * 100))
	return out
}

// analyzeKeywords 计算关键词覆盖率。有岗位要求时按权重计分
// （必备 ×2、加分 ×1.5、普通 ×1），无岗位要求时退回职业通用词典。
func (a *ContentAnalyzer) analyzeKeywords(content *types.ResumeContent, job *types.JobRequirements) types.KeywordAnalysis {
	out := types.KeywordAnalysis{}
	resumeLower := strings.ToLower(content.RawText)

	if job.IsEmpty() || len(job.RequiredSkills)+len(job.PreferredSkills)+len(job.Keywords) == 0 {
		found := 0
		for _, kw := range professionalKeywords {
			if strings.Contains(resumeLower, kw) {
				found++
				out.Matched = append(out.Matched, kw)
			}
		}
		out.Score = int(math.Round(float64(found) / float64(len(professionalKeywords)) * 100))
		return out
	}

	var achieved, maxPossible float64
	match := func(terms []string, weight float64) {
		for _, t := range terms {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			maxPossible += weight
			if strings.Contains(resumeLower, strings.ToLower(t)) {
				achieved += weight
				out.Matched = append(out.Matched, t)
			} else {
				out.Missing = append(out.Missing, t)
			}
		}
	}
	match(job.RequiredSkills, 2)
	match(job.PreferredSkills, 1.5)
	match(job.Keywords, 1)

	if maxPossible == 0 {
		return out
	}
	out.Score = int(math.Round(achieved / maxPossible * 100))
	return out
}

// analyzeClarity 清晰度基准 70 分随指示词加减，影响力基准 50 分
// 叠加词面情感（限幅 ±25）与影响力词，总分取两者均值。
func (a *ContentAnalyzer) analyzeClarity(text string) types.ClarityAnalysis {
	lower := strings.ToLower(text)

	clarity := 70
	for _, ind := range clarityPositive {
		if strings.Contains(lower, ind) {
			clarity += 2
		}
	}
	for _, ind := range clarityNegative {
		if strings.Contains(lower, ind) {
			clarity -= 3
		}
	}
	clarity = clampInt(clarity, 0, 100)

	impact := 50 + sentimentContribution(lower)
	for _, w := range impactWords {
		if strings.Contains(lower, w) {
			impact += 3
		}
	}
	impact = clampInt(impact, 0, 100)

	return types.ClarityAnalysis{
		Score:        int(math.Round(float64(clarity+impact) / 2)),
		ClarityScore: clarity,
		ImpactScore:  impact,
	}
}

// sentimentContribution 词面情感净值，限幅在 ±25。
func sentimentContribution(lower string) int {
	sum := 0
	for _, tok := range wordRe.FindAllString(lower, -1) {
		sum += sentimentLexicon[tok]
	}
	return clampInt(sum, -25, 25)
}

// buildRecommendations 为低于阈值的子项生成建议，并在 ATS 总分
// 不足 80 时附带其高优先级建议（至多 5 条）。
func (a *ContentAnalyzer) buildRecommendations(res *types.ContentAnalysis, ats *types.ATSAnalysis) []types.Recommendation {
	var recs []types.Recommendation
	priorityFor := func(score int) types.RecommendationPriority {
		if score < deepBelowThreshold {
			return types.PriorityHigh
		}
		return types.PriorityMedium
	}

	if res.ActionVerbs.Score < actionVerbThreshold {
		r := types.Recommendation{
			Category: types.CategoryContent,
			Priority: priorityFor(res.ActionVerbs.Score),
			Title:    "Strengthen action verbs",
			Description: fmt.Sprintf("Only %d strong action verbs found; replace weak phrasing with specific verbs.",
				len(res.ActionVerbs.StrongVerbs)),
		}
		if len(res.ActionVerbs.Suggestions) > 0 {
			s := res.ActionVerbs.Suggestions[0]
			r.Example = &types.BeforeAfterExample{
				Before: s.Weak + " the team with daily reporting",
				After:  s.Replacement + " a weekly reporting process adopted by the whole team",
			}
		}
		recs = append(recs, r)
	}

	if res.Quantification.Score < quantificationThreshold {
		recs = append(recs, types.Recommendation{
			Category: types.CategoryContent,
			Priority: priorityFor(res.Quantification.Score),
			Title:    "Quantify achievements",
			Description: fmt.Sprintf("%d experience entries describe impact without numbers; attach figures to each.",
				res.Quantification.MissedCount),
			Example: &types.BeforeAfterExample{
				Before: "Improved application performance",
				After:  "Improved application performance by 40%, cutting page load from 3s to 1.8s",
			},
		})
	}

	if res.Keywords.Score < keywordThreshold {
		desc := "Work the role's key terms into your bullet points."
		if len(res.Keywords.Missing) > 0 {
			missing := res.Keywords.Missing
			if len(missing) > 5 {
				missing = missing[:5]
			}
			desc = fmt.Sprintf("Missing terms the role asks for: %s.", strings.Join(missing, ", "))
		}
		recs = append(recs, types.Recommendation{
			Category:    types.CategoryKeywords,
			Priority:    priorityFor(res.Keywords.Score),
			Title:       "Add job-relevant keywords",
			Description: desc,
		})
	}

	if res.Clarity.Score < clarityThreshold {
		recs = append(recs, types.Recommendation{
			Category:    types.CategoryContent,
			Priority:    priorityFor(res.Clarity.Score),
			Title:       "Tighten wording",
			Description: "Replace vague phrases (various, responsible for) with concrete statements of what you did.",
		})
	}

	if ats != nil && ats.OverallScore < 80 {
		added := 0
		for _, r := range ats.Recommendations {
			if r.Priority != types.PriorityHigh {
				continue
			}
			recs = append(recs, r)
			added++
			if added == 5 {
				break
			}
		}
	}
	return recs
}

func containsAnyKeyword(s string, keywords []string) bool {
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
