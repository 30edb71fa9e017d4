package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"resume-match-go/internal/types"
)

// ResumeAnalyzer 对单份简历执行完整分析 - 与processor包中定义相同
type ResumeAnalyzer interface {
	AnalyzeResume(ctx context.Context, resumeText string, job *types.JobRequirements) (*types.AnalysisReport, error)
}

// RankerConfig 排序行为配置
type RankerConfig struct {
	// OverallScoreWeight 总分比较时的放大系数
	OverallScoreWeight float64 `json:"overall_score_weight" yaml:"overall_score_weight"`
	// CategoryWeights 次级比较用的类别权重
	CategoryWeights map[string]float64 `json:"category_weights" yaml:"category_weights"`
	// Parallelism 候选人分析的并发度
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// DefaultRankerConfig 返回默认排序配置。
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		OverallScoreWeight: 1.0,
		CategoryWeights: map[string]float64{
			types.CategoryContent:    0.25,
			types.CategoryStructure:  0.20,
			types.CategoryKeywords:   0.25,
			types.CategoryExperience: 0.15,
			types.CategorySkills:     0.15,
		},
		Parallelism: 4,
	}
}

// Ranker 多候选人排序器。逐个跑完整分析流水线后按三级比较器排序，
// 并补充录用建议、同辈对比与公平性提示。
type Ranker struct {
	analyzer ResumeAnalyzer
	cfg      RankerConfig
	logger   zerolog.Logger
}

// RankerOption 配置排序器的函数选项
type RankerOption func(*Ranker)

// WithRankerConfig 覆盖排序配置，零值字段回退到默认值。
func WithRankerConfig(cfg RankerConfig) RankerOption {
	return func(r *Ranker) {
		if cfg.OverallScoreWeight > 0 {
			r.cfg.OverallScoreWeight = cfg.OverallScoreWeight
		}
		if len(cfg.CategoryWeights) > 0 {
			r.cfg.CategoryWeights = cfg.CategoryWeights
		}
		if cfg.Parallelism > 0 {
			r.cfg.Parallelism = cfg.Parallelism
		}
	}
}

// WithRankerLogger 设置排序器使用的日志记录器。
func WithRankerLogger(logger zerolog.Logger) RankerOption {
	return func(r *Ranker) {
		r.logger = logger
	}
}

// NewRanker 创建候选人排序器。
func NewRanker(analyzer ResumeAnalyzer, opts ...RankerOption) *Ranker {
	r := &Ranker{
		analyzer: analyzer,
		cfg:      DefaultRankerConfig(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank 对候选人集合评分并排序。空集合返回空结果，不报错；
// 单个候选人分析失败按零分计入，不中断整批。
func (r *Ranker) Rank(ctx context.Context, candidates []types.CandidateProfile, job *types.JobRequirements) (*types.RankingResult, error) {
	result := &types.RankingResult{
		RankingID:  uuid.NewString(),
		JobType:    types.JobTypeGeneral,
		CohortSize: len(candidates),
		Candidates: []types.RankedCandidate{},
	}
	if len(candidates) == 0 {
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	reports := r.analyzeAll(ctx, candidates, job)

	ranked := make([]types.RankedCandidate, len(candidates))
	for i, c := range candidates {
		scoring := reports[i].Scoring
		rc := types.RankedCandidate{
			CandidateID: candidateID(c, i),
			Name:        c.Name,
			Scoring:     scoring,
			Confidence:  scoring.Confidence,
		}
		rc.Strengths, rc.Weaknesses = categoryHighlights(scoring.CategoryScores)
		ranked[i] = rc
	}

	r.sortRanked(ranked)

	n := len(ranked)
	var sum float64
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Percentile = math.Round(float64(n-i)/float64(n)*1000) / 10
		sum += float64(ranked[i].Scoring.OverallScore)
	}
	for i := range ranked {
		ranked[i].Hiring = hiringRecommendation(ranked[i].Scoring.OverallScore, ranked[i].Percentile)
		applyBiasChecks(&ranked[i])
	}
	attachComparatives(ranked)

	result.JobType = ranked[0].Scoring.JobType
	result.AverageOverall = math.Round(sum/float64(n)*10) / 10
	result.Candidates = ranked
	return result, nil
}

// analyzeAll 用有界工作池并发分析候选人，结果按输入顺序落位。
func (r *Ranker) analyzeAll(ctx context.Context, candidates []types.CandidateProfile, job *types.JobRequirements) []*types.AnalysisReport {
	reports := make([]*types.AnalysisReport, len(candidates))

	workers := r.cfg.Parallelism
	if workers < 1 {
		workers = 1
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				report, err := r.analyzer.AnalyzeResume(ctx, candidates[idx].ResumeText, job)
				if err != nil || report == nil {
					r.logger.Warn().Err(err).Int("candidate_index", idx).Msg("候选人分析失败，按零分计入排序")
					report = &types.AnalysisReport{}
					report.Scoring.Confidence = types.ConfidenceLow
				}
				reports[idx] = report
			}
		}()
	}

feed:
	for i := range candidates {
		select {
		case indices <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indices)
	wg.Wait()

	for i := range reports {
		if reports[i] == nil {
			reports[i] = &types.AnalysisReport{}
			reports[i].Scoring.Confidence = types.ConfidenceLow
		}
	}
	return reports
}

// sortRanked 三级比较：加权总分差超过 2 分定胜负；否则加权类别和
// 差超过 1 分定胜负；仍未分出时比置信度，最后保持输入顺序（稳定排序）。
func (r *Ranker) sortRanked(ranked []types.RankedCandidate) {
	weightedOverall := func(c *types.RankedCandidate) float64 {
		return float64(c.Scoring.OverallScore) * r.cfg.OverallScoreWeight
	}
	weightedCategories := func(c *types.RankedCandidate) float64 {
		var total float64
		// 以真实类别为准做加权，配置里多出的类别名不参与
		for cat, score := range c.Scoring.CategoryScores.AsMap() {
			total += r.cfg.CategoryWeights[cat] * float64(score)
		}
		return total
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if d := weightedOverall(a) - weightedOverall(b); math.Abs(d) > 2 {
			return d > 0
		}
		if d := weightedCategories(a) - weightedCategories(b); math.Abs(d) > 1 {
			return d > 0
		}
		if ca, cb := confidenceRank(a.Confidence), confidenceRank(b.Confidence); ca != cb {
			return ca > cb
		}
		return false
	})
}

func confidenceRank(conf string) int {
	switch conf {
	case types.ConfidenceHigh:
		return 2
	case types.ConfidenceMedium:
		return 1
	}
	return 0
}

func candidateID(c types.CandidateProfile, idx int) string {
	if c.ID != "" {
		return c.ID
	}
	return fmt.Sprintf("candidate-%d", idx+1)
}

// categoryHighlights 抽取优势类别（≥80，按分数降序）与薄弱类别
// （<60，按分数升序；<40 记 high，<50 记 medium，其余 low）。
func categoryHighlights(scores types.CategoryScores) ([]types.CategoryStrength, []types.CategoryWeakness) {
	var strengths []types.CategoryStrength
	var weaknesses []types.CategoryWeakness
	for _, cat := range types.CategoryOrder {
		s := scores.Get(cat)
		switch {
		case s >= 80:
			strengths = append(strengths, types.CategoryStrength{Category: cat, Score: s})
		case s < 60:
			severity := types.SeverityLow
			if s < 40 {
				severity = types.SeverityHigh
			} else if s < 50 {
				severity = types.SeverityMedium
			}
			weaknesses = append(weaknesses, types.CategoryWeakness{Category: cat, Score: s, Severity: severity})
		}
	}
	sort.SliceStable(strengths, func(i, j int) bool { return strengths[i].Score > strengths[j].Score })
	sort.SliceStable(weaknesses, func(i, j int) bool { return weaknesses[i].Score < weaknesses[j].Score })
	return strengths, weaknesses
}

// hiringRecommendation 按总分与同辈百分位给出录用建议档位。
func hiringRecommendation(overall int, percentile float64) types.HiringRecommendation {
	switch {
	case overall >= 85 && percentile >= 80:
		return types.HiringRecommendation{
			Decision:  types.HiringStrongHire,
			Reasoning: "Top-of-cohort fit with an excellent overall score.",
			NextSteps: []string{"Fast-track to a final interview", "Prepare a competitive offer"},
		}
	case overall >= 75 && percentile >= 60:
		return types.HiringRecommendation{
			Decision:  types.HiringHire,
			Reasoning: "Strong fit across most scoring categories.",
			NextSteps: []string{"Schedule a full interview loop", "Probe the weaker categories during screening"},
		}
	case overall >= 65 && percentile >= 40:
		return types.HiringRecommendation{
			Decision:  types.HiringMaybe,
			Reasoning: "Moderate fit; several categories need verification.",
			NextSteps: []string{"Run a focused phone screen", "Request work samples for the weak areas"},
		}
	case overall >= 50:
		return types.HiringRecommendation{
			Decision:  types.HiringNoHire,
			Reasoning: "Below the bar for this role in its current form.",
			NextSteps: []string{"Keep on file for adjacent roles"},
		}
	default:
		return types.HiringRecommendation{
			Decision:  types.HiringStrongNoHire,
			Reasoning: "Substantially below the role requirements.",
			NextSteps: []string{"Do not progress this application"},
		}
	}
}

// biasCheck 公平性检查。返回空字符串表示无告警。
type biasCheck struct {
	name  string
	check func(c *types.RankedCandidate) string
}

// 前三项为占位检查，恒不告警：姓名、院校背景与经历空窗都不进入
// 评分信号，保留检查位只是为了让审计清单完整、顺序稳定。
var biasChecks = []biasCheck{
	{name: "name_signal", check: func(*types.RankedCandidate) string { return "" }},
	{name: "education_pedigree", check: func(*types.RankedCandidate) string { return "" }},
	{name: "experience_gap", check: func(*types.RankedCandidate) string { return "" }},
	{name: "overqualification", check: func(c *types.RankedCandidate) string {
		if c.Scoring.OverallScore > 95 {
			return "Score above 95 suggests possible overqualification; verify role fit and retention risk."
		}
		return ""
	}},
}

// applyBiasChecks 执行公平性检查；有任何告警时把呈报的置信度下调一档。
func applyBiasChecks(c *types.RankedCandidate) {
	for _, bc := range biasChecks {
		if msg := bc.check(c); msg != "" {
			c.BiasWarnings = append(c.BiasWarnings, msg)
		}
	}
	if len(c.BiasWarnings) > 0 {
		c.Confidence = downgradeConfidence(c.Confidence)
	}
}

func downgradeConfidence(conf string) string {
	if conf == types.ConfidenceHigh {
		return types.ConfidenceMedium
	}
	return types.ConfidenceLow
}

// attachComparatives 补充同辈对比：各类别百分位、总分相近的候选人
// 以及显著高于均值的差异化优势。
func attachComparatives(ranked []types.RankedCandidate) {
	n := len(ranked)
	if n == 0 {
		return
	}

	avg := make(map[string]float64, len(types.CategoryOrder))
	for _, cat := range types.CategoryOrder {
		sum := 0
		for i := range ranked {
			sum += ranked[i].Scoring.CategoryScores.Get(cat)
		}
		avg[cat] = float64(sum) / float64(n)
	}

	for i := range ranked {
		c := &ranked[i]
		c.CategoryPercentiles = make(map[string]float64, len(types.CategoryOrder))
		for _, cat := range types.CategoryOrder {
			mine := c.Scoring.CategoryScores.Get(cat)
			better := 0
			for j := range ranked {
				if ranked[j].Scoring.CategoryScores.Get(cat) > mine {
					better++
				}
			}
			c.CategoryPercentiles[cat] = math.Round(float64(n-better)/float64(n)*1000) / 10
		}

		for j := range ranked {
			if j == i {
				continue
			}
			diff := c.Scoring.OverallScore - ranked[j].Scoring.OverallScore
			if diff < 0 {
				diff = -diff
			}
			if diff <= 10 {
				c.SimilarCandidates = append(c.SimilarCandidates, ranked[j].CandidateID)
				if len(c.SimilarCandidates) == 3 {
					break
				}
			}
		}

		for _, cat := range types.CategoryOrder {
			s := float64(c.Scoring.CategoryScores.Get(cat))
			if s-avg[cat] > 10 {
				c.Differentiators = append(c.Differentiators,
					fmt.Sprintf("%s %.0f vs cohort average %.0f", cat, s, avg[cat]))
				if len(c.Differentiators) == 3 {
					break
				}
			}
		}
	}
}
