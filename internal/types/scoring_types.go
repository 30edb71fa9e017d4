package types

// 评分类别名称，权重表与分项报告共用
const (
	CategoryContent    = "content"
	CategoryStructure  = "structure"
	CategoryKeywords   = "keywords"
	CategoryExperience = "experience"
	CategorySkills     = "skills"
)

// CategoryOrder 类别的固定展示与重要性顺序（内容 > 关键词 > 结构 > 经历 > 技能）
var CategoryOrder = []string{
	CategoryContent,
	CategoryKeywords,
	CategoryStructure,
	CategoryExperience,
	CategorySkills,
}

// 问题严重程度
type IssueSeverity string

const (
	SeverityHigh   IssueSeverity = "high"
	SeverityMedium IssueSeverity = "medium"
	SeverityLow    IssueSeverity = "low"
)

// Issue ATS 检查发现的单个问题。
// Category 为所属子维度（formatting/organization/readability/presentation）。
type Issue struct {
	Category    string        `json:"category"`
	Severity    IssueSeverity `json:"severity"`
	Description string        `json:"description"`
	Impact      string        `json:"impact,omitempty"`
}

// 建议优先级
type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// BeforeAfterExample 建议附带的改写示例
type BeforeAfterExample struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Recommendation 单条改进建议
type Recommendation struct {
	Category    string                 `json:"category"`
	Priority    RecommendationPriority `json:"priority"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Example     *BeforeAfterExample    `json:"example,omitempty"`
}

// ATSAnalysis ATS 兼容性分析结果，各分项均为 0-100 整数
type ATSAnalysis struct {
	FormattingScore   int              `json:"formatting_score"`
	OrganizationScore int              `json:"organization_score"`
	ReadabilityScore  int              `json:"readability_score"`
	PresentationScore int              `json:"presentation_score"`
	OverallScore      int              `json:"overall_score"`
	Issues            []Issue          `json:"issues"`
	Recommendations   []Recommendation `json:"recommendations"`
}

// VerbSuggestion 弱动词替换建议
type VerbSuggestion struct {
	Weak        string `json:"weak"`
	Replacement string `json:"replacement"`
}

// ActionVerbAnalysis 动词强度分析
type ActionVerbAnalysis struct {
	Score       int              `json:"score"`
	StrongVerbs []string         `json:"strong_verbs,omitempty"`
	WeakVerbs   []string         `json:"weak_verbs,omitempty"`
	Suggestions []VerbSuggestion `json:"suggestions,omitempty"`
}

// QuantificationAnalysis 成果量化分析
type QuantificationAnalysis struct {
	Score           int      `json:"score"`
	QuantifiedCount int      `json:"quantified_count"`
	MissedCount     int      `json:"missed_count"`
	MissedExamples  []string `json:"missed_examples,omitempty"`
}

// KeywordAnalysis 关键词覆盖分析
type KeywordAnalysis struct {
	Score   int      `json:"score"`
	Matched []string `json:"matched,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// ClarityAnalysis 表达清晰度与影响力分析
type ClarityAnalysis struct {
	Score        int `json:"score"`         // clarity 与 impact 的均值
	ClarityScore int `json:"clarity_score"` // 基准 70，随指示词增减
	ImpactScore  int `json:"impact_score"`  // 基准 50，叠加词面情感与影响力词
}

// ContentAnalysis 内容质量分析的聚合结果
type ContentAnalysis struct {
	OverallScore    int                    `json:"overall_score"`
	ActionVerbs     ActionVerbAnalysis     `json:"action_verbs"`
	Quantification  QuantificationAnalysis `json:"quantification"`
	Keywords        KeywordAnalysis        `json:"keywords"`
	Clarity         ClarityAnalysis        `json:"clarity"`
	Recommendations []Recommendation       `json:"recommendations"`
}

// CategoryScores 五大类别得分，0-100 整数
type CategoryScores struct {
	Content    int `json:"content"`
	Structure  int `json:"structure"`
	Keywords   int `json:"keywords"`
	Experience int `json:"experience"`
	Skills     int `json:"skills"`
}

// Get 按类别名取分，未知类别返回 0。
func (c CategoryScores) Get(category string) int {
	switch category {
	case CategoryContent:
		return c.Content
	case CategoryStructure:
		return c.Structure
	case CategoryKeywords:
		return c.Keywords
	case CategoryExperience:
		return c.Experience
	case CategorySkills:
		return c.Skills
	}
	return 0
}

// AsMap 返回类别到得分的映射。
func (c CategoryScores) AsMap() map[string]int {
	return map[string]int{
		CategoryContent:    c.Content,
		CategoryStructure:  c.Structure,
		CategoryKeywords:   c.Keywords,
		CategoryExperience: c.Experience,
		CategorySkills:     c.Skills,
	}
}

// CategoryWeights 类别权重表，各档位配置之和为 1.0
type CategoryWeights struct {
	Content    float64 `json:"content"`
	Structure  float64 `json:"structure"`
	Keywords   float64 `json:"keywords"`
	Experience float64 `json:"experience"`
	Skills     float64 `json:"skills"`
}

// Get 按类别名取权重，未知类别返回 0。
func (w CategoryWeights) Get(category string) float64 {
	switch category {
	case CategoryContent:
		return w.Content
	case CategoryStructure:
		return w.Structure
	case CategoryKeywords:
		return w.Keywords
	case CategoryExperience:
		return w.Experience
	case CategorySkills:
		return w.Skills
	}
	return 0
}

// 岗位类型，决定采用的权重档位
const (
	JobTypeTechnical  = "technical"
	JobTypeManagement = "management"
	JobTypeCreative   = "creative"
	JobTypeGeneral    = "general"
)

// 评分置信度
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ScoreBreakdownEntry 总分构成的单行说明
type ScoreBreakdownEntry struct {
	Category     string  `json:"category"`
	Weight       float64 `json:"weight"`
	Score        int     `json:"score"`
	Contribution float64 `json:"contribution"` // weight × score
}

// ScoringResult 加权评分的完整结果
type ScoringResult struct {
	OverallScore   int                   `json:"overall_score"`
	CategoryScores CategoryScores        `json:"category_scores"`
	Weights        CategoryWeights       `json:"weights"`
	JobType        string                `json:"job_type"`
	Confidence     string                `json:"confidence"`
	Explanation    string                `json:"explanation"`
	Breakdown      []ScoreBreakdownEntry `json:"breakdown"`
}

// PriorityBreakdown 按优先级归类的建议列表
type PriorityBreakdown struct {
	High   []Recommendation `json:"high"`
	Medium []Recommendation `json:"medium"`
	Low    []Recommendation `json:"low"`
}

// RecommendationReport 建议引擎的聚合输出
type RecommendationReport struct {
	Recommendations   []Recommendation  `json:"recommendations"`
	TotalCount        int               `json:"total_count"`
	Summary           string            `json:"summary"`
	PriorityBreakdown PriorityBreakdown `json:"priority_breakdown"`
}

// AnalysisReport 单份简历的完整分析报告，对外接口的响应主体
type AnalysisReport struct {
	Scoring         ScoringResult        `json:"scoring"`
	ATS             ATSAnalysis          `json:"ats"`
	Content         ContentAnalysis      `json:"content"`
	Recommendations RecommendationReport `json:"recommendations"`
	Resume          ResumeContent        `json:"resume"`
}

// CandidateProfile 排序输入中的单个候选人
type CandidateProfile struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	ResumeText string `json:"resume_text"`
}

// 录用建议档位
const (
	HiringStrongHire   = "strong_hire"
	HiringHire         = "hire"
	HiringMaybe        = "maybe"
	HiringNoHire       = "no_hire"
	HiringStrongNoHire = "strong_no_hire"
)

// HiringRecommendation 录用建议
type HiringRecommendation struct {
	Decision  string   `json:"decision"`
	Reasoning string   `json:"reasoning"`
	NextSteps []string `json:"next_steps,omitempty"`
}

// CategoryStrength 候选人的优势类别（得分 ≥ 80）
type CategoryStrength struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// CategoryWeakness 候选人的薄弱类别（得分 < 60）
type CategoryWeakness struct {
	Category string        `json:"category"`
	Score    int           `json:"score"`
	Severity IssueSeverity `json:"severity"`
}

// RankedCandidate 排序后的单个候选人
type RankedCandidate struct {
	CandidateID         string               `json:"candidate_id"`
	Name                string               `json:"name,omitempty"`
	Rank                int                  `json:"rank"`       // 1 起
	Percentile          float64              `json:"percentile"` // (N-rank+1)/N×100
	Scoring             ScoringResult        `json:"scoring"`
	Strengths           []CategoryStrength   `json:"strengths,omitempty"`
	Weaknesses          []CategoryWeakness   `json:"weaknesses,omitempty"`
	Hiring              HiringRecommendation `json:"hiring"`
	BiasWarnings        []string             `json:"bias_warnings,omitempty"`
	Confidence          string               `json:"confidence"` // 偏差告警会下调一档
	CategoryPercentiles map[string]float64   `json:"category_percentiles,omitempty"`
	SimilarCandidates   []string             `json:"similar_candidates,omitempty"`
	Differentiators     []string             `json:"differentiators,omitempty"`
}

// RankingResult 候选人排序的聚合结果
type RankingResult struct {
	RankingID      string            `json:"ranking_id"`
	JobType        string            `json:"job_type"`
	CohortSize     int               `json:"cohort_size"`
	AverageOverall float64           `json:"average_overall"`
	Candidates     []RankedCandidate `json:"candidates"`
}
