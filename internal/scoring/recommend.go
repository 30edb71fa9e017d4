package scoring

import (
	"fmt"
	"sort"
	"strings"

	"resume-match-go/internal/types"
)

// 建议条目在汇总时统一到五大类别；ATS 子维度全部归入 structure
var taxonomyMap = map[string]string{
	"formatting":   types.CategoryStructure,
	"organization": types.CategoryStructure,
	"readability":  types.CategoryStructure,
	"presentation": types.CategoryStructure,
}

// 类别得分不足时的模板建议
var categoryTemplates = map[string]types.Recommendation{
	types.CategoryContent: {
		Title:       "Rework bullet points for impact",
		Description: "Lead with a strong verb and state a measurable outcome for each bullet.",
	},
	types.CategoryKeywords: {
		Title:       "Mirror the job's vocabulary",
		Description: "Use the exact terms from the job posting where they truthfully apply.",
	},
	types.CategoryStructure: {
		Title:       "Reorganize into standard sections",
		Description: "Clear section titles let automated screens map your information correctly.",
	},
	types.CategoryExperience: {
		Title:       "Deepen experience evidence",
		Description: "Expand each role with scope, outcomes and the skills you applied.",
	},
	types.CategorySkills: {
		Title:       "Expand the skills section",
		Description: "List the concrete tools and technologies the target role expects.",
	},
}

// 各类别的兜底改写示例，建议未自带示例时补充
var categoryExamples = map[string]types.BeforeAfterExample{
	types.CategoryContent: {
		Before: "Responsible for the reporting process",
		After:  "Automated the weekly reporting process, saving 6 hours per week",
	},
	types.CategoryKeywords: {
		Before: "Built internal tools",
		After:  "Built internal tools in Go and React, deployed on Kubernetes",
	},
	types.CategoryStructure: {
		Before: "A single block of unlabeled text",
		After:  "Titled sections in order: Summary, Experience, Education, Skills",
	},
	types.CategoryExperience: {
		Before: "Worked on the checkout service",
		After:  "Owned the checkout service and cut its error rate 30% over two quarters",
	},
	types.CategorySkills: {
		Before: "Skills: teamwork",
		After:  "Skills: Python, SQL, Airflow, Tableau, stakeholder reporting",
	},
}

// 建议数量上限，getPriority 输出取前五条
const maxPriorityRecommendations = 5

// RecommendationEngine 汇总各分析器的建议：归一类别、去重、排序、
// 补示例并生成摘要。无状态，可并发使用。
type RecommendationEngine struct{}

// NewRecommendationEngine 创建建议引擎。
func NewRecommendationEngine() *RecommendationEngine {
	return &RecommendationEngine{}
}

// Build 汇总三类来源的建议：内容分析建议、ATS 建议、类别低分模板。
// 去重键为（类别，小写标题），先到先得；排序先按优先级再按类别重要性。
func (e *RecommendationEngine) Build(scoring *types.ScoringResult, ats *types.ATSAnalysis, content *types.ContentAnalysis) *types.RecommendationReport {
	var pool []types.Recommendation
	if content != nil {
		pool = append(pool, content.Recommendations...)
	}
	if ats != nil {
		pool = append(pool, ats.Recommendations...)
	}
	if scoring != nil {
		pool = append(pool, categoryShortfalls(scoring)...)
	}

	seen := make(map[string]bool, len(pool))
	out := make([]types.Recommendation, 0, len(pool))
	for _, r := range pool {
		r.Category = taxonomyCategory(r.Category)
		key := r.Category + "|" + strings.ToLower(r.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := priorityRank(out[i].Priority), priorityRank(out[j].Priority)
		if pi != pj {
			return pi < pj
		}
		return categoryRank(out[i].Category) < categoryRank(out[j].Category)
	})

	for i := range out {
		if out[i].Example != nil {
			continue
		}
		if ex, ok := categoryExamples[out[i].Category]; ok {
			exCopy := ex
			out[i].Example = &exCopy
		}
	}

	report := &types.RecommendationReport{
		Recommendations: out,
		TotalCount:      len(out),
	}
	for _, r := range out {
		switch r.Priority {
		case types.PriorityHigh:
			report.PriorityBreakdown.High = append(report.PriorityBreakdown.High, r)
		case types.PriorityMedium:
			report.PriorityBreakdown.Medium = append(report.PriorityBreakdown.Medium, r)
		default:
			report.PriorityBreakdown.Low = append(report.PriorityBreakdown.Low, r)
		}
	}
	report.Summary = buildRecommendationSummary(report)
	return report
}

// PriorityRecommendations 返回高优先级建议，至多五条。
func (e *RecommendationEngine) PriorityRecommendations(report *types.RecommendationReport) []types.Recommendation {
	if report == nil {
		return nil
	}
	high := report.PriorityBreakdown.High
	if len(high) > maxPriorityRecommendations {
		high = high[:maxPriorityRecommendations]
	}
	return high
}

// categoryShortfalls 为得分低于 60 的类别生成模板建议，
// 低于 40 时提升为高优先级。
func categoryShortfalls(scoring *types.ScoringResult) []types.Recommendation {
	var recs []types.Recommendation
	for _, cat := range types.CategoryOrder {
		score := scoring.CategoryScores.Get(cat)
		if score >= 60 {
			continue
		}
		tmpl := categoryTemplates[cat]
		tmpl.Category = cat
		tmpl.Priority = types.PriorityMedium
		if score < 40 {
			tmpl.Priority = types.PriorityHigh
		}
		tmpl.Description = fmt.Sprintf("The %s score is %d/100. %s", cat, score, tmpl.Description)
		recs = append(recs, tmpl)
	}
	return recs
}

func taxonomyCategory(cat string) string {
	if mapped, ok := taxonomyMap[cat]; ok {
		return mapped
	}
	for _, known := range types.CategoryOrder {
		if cat == known {
			return cat
		}
	}
	return types.CategoryContent
}

func priorityRank(p types.RecommendationPriority) int {
	switch p {
	case types.PriorityHigh:
		return 0
	case types.PriorityMedium:
		return 1
	case types.PriorityLow:
		return 2
	}
	return 3
}

func categoryRank(cat string) int {
	for i, c := range types.CategoryOrder {
		if c == cat {
			return i
		}
	}
	return len(types.CategoryOrder)
}

func buildRecommendationSummary(report *types.RecommendationReport) string {
	if report.TotalCount == 0 {
		return "No significant issues found; the resume is in good shape for this role."
	}
	focus := report.Recommendations[0].Category
	return fmt.Sprintf("%d recommendations: %d high, %d medium and %d low priority. Start with the %s improvements.",
		report.TotalCount,
		len(report.PriorityBreakdown.High),
		len(report.PriorityBreakdown.Medium),
		len(report.PriorityBreakdown.Low),
		focus)
}
