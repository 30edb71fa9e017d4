package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"resume-match-go/internal/types"
)

// ATS 子维度名称，同时用作 Issue.Category
const (
	DimensionFormatting   = "formatting"
	DimensionOrganization = "organization"
	DimensionReadability  = "readability"
	DimensionPresentation = "presentation"
)

// 子维度权重，组合总分时按实际存在的维度归一化
var atsDimensionWeights = map[string]float64{
	DimensionFormatting:   0.30,
	DimensionOrganization: 0.30,
	DimensionReadability:  0.25,
	DimensionPresentation: 0.15,
}

// 格式与日期检查所用的正则
var (
	tabRe        = regexp.MustCompile(`\t`)
	wideSpaceRe  = regexp.MustCompile(` {4,}`)
	boxDrawingRe = regexp.MustCompile(`[┌┐└┘─│├┤┬┴┼═║╔╗╚╝]`)
	decoBulletRe = regexp.MustCompile(`[◆◇■□▪▫●○►▶]`)
	digitRunRe   = regexp.MustCompile(`\d{4,}`)
	punctRunRe   = regexp.MustCompile(`[._\-]{2,}`)
	monthYearRe  = regexp.MustCompile(`\b\d{1,2}/\d{4}\b`)
	monthNameRe  = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}\b`)
	bareYearRe   = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	digitRe      = regexp.MustCompile(`\d`)
)

// 必备章节，缺一项扣 25 分
var requiredSections = []types.SectionKind{
	types.SectionContact,
	types.SectionExperience,
	types.SectionEducation,
	types.SectionSkills,
}

// 推荐章节，缺一项扣 5 分
var recommendedSections = []types.SectionKind{
	types.SectionSummary,
	types.SectionCertifications,
}

// dimensionReport 单个子维度的检查结果，分数从 100 起扣，不低于 0
type dimensionReport struct {
	dimension string
	score     int
	issues    []types.Issue
	recs      []types.Recommendation
}

func newDimensionReport(dimension string) *dimensionReport {
	return &dimensionReport{dimension: dimension, score: 100}
}

// deduct 扣分并记录问题，rec 可为 nil。
func (d *dimensionReport) deduct(points int, severity types.IssueSeverity, description, impact string, rec *types.Recommendation) {
	d.score -= points
	if d.score < 0 {
		d.score = 0
	}
	d.issues = append(d.issues, types.Issue{
		Category:    d.dimension,
		Severity:    severity,
		Description: description,
		Impact:      impact,
	})
	if rec != nil {
		if rec.Category == "" {
			rec.Category = d.dimension
		}
		d.recs = append(d.recs, *rec)
	}
}

func newRec(priority types.RecommendationPriority, title, description string) *types.Recommendation {
	return &types.Recommendation{Priority: priority, Title: title, Description: description}
}

// ATSAnalyzer 以解析器视角检查简历的机读友好度。
// 无状态，可并发使用。
type ATSAnalyzer struct{}

// NewATSAnalyzer 创建 ATS 兼容性分析器。
func NewATSAnalyzer() *ATSAnalyzer {
	return &ATSAnalyzer{}
}

// Analyze 执行四个维度的 ATS 兼容性检查并给出加权总分。
// content 为 nil 时按空简历处理，不会报错。
func (a *ATSAnalyzer) Analyze(content *types.ResumeContent) *types.ATSAnalysis {
	if content == nil {
		content = &types.ResumeContent{}
	}
	reports := []*dimensionReport{
		a.checkFormatting(content),
		a.checkOrganization(content),
		a.checkReadability(content),
		a.checkPresentation(content),
	}

	res := &types.ATSAnalysis{}
	scores := make(map[string]int, len(reports))
	for _, r := range reports {
		scores[r.dimension] = r.score
		res.Issues = append(res.Issues, r.issues...)
		res.Recommendations = append(res.Recommendations, r.recs...)
	}
	res.FormattingScore = scores[DimensionFormatting]
	res.OrganizationScore = scores[DimensionOrganization]
	res.ReadabilityScore = scores[DimensionReadability]
	res.PresentationScore = scores[DimensionPresentation]
	res.OverallScore = combineWeighted(scores, atsDimensionWeights)
	return res
}

// checkFormatting 检查排版噪音：复杂符号、非 ASCII、列表符混用、超长行。
func (a *ATSAnalyzer) checkFormatting(content *types.ResumeContent) *dimensionReport {
	d := newDimensionReport(DimensionFormatting)
	raw := content.RawText
	lines := splitTextLines(raw)

	// 1. 复杂排版符号：制表符、长空格串、制表线、装饰符
	complexCount := len(tabRe.FindAllString(raw, -1)) +
		len(wideSpaceRe.FindAllString(raw, -1)) +
		len(boxDrawingRe.FindAllString(raw, -1)) +
		len(decoBulletRe.FindAllString(raw, -1))
	if complexCount > 5 {
		d.deduct(20, types.SeverityHigh,
			fmt.Sprintf("Complex formatting detected (%d tabs, wide gaps or decorative characters)", complexCount),
			"ATS parsers often scramble tables and decorative layouts",
			newRec(types.PriorityHigh, "Simplify formatting",
				"Replace tables, tab alignment and decorative characters with plain single-column text."))
	}

	// 2. 非 ASCII 字符过多
	nonASCII := 0
	for _, r := range raw {
		if r > 127 {
			nonASCII++
		}
	}
	if nonASCII > 5 {
		d.deduct(10, types.SeverityMedium,
			fmt.Sprintf("%d non-ASCII characters found", nonASCII),
			"Exotic characters may be dropped or mangled during parsing",
			newRec(types.PriorityMedium, "Stick to plain characters",
				"Use standard hyphens and ASCII punctuation instead of decorative symbols."))
	}

	// 3. 列表符号混用
	markers := map[string]bool{}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, m := range []string{"-", "•", "*"} {
			if strings.HasPrefix(trimmed, m) {
				markers[m] = true
			}
		}
	}
	if len(markers) > 1 {
		d.deduct(5, types.SeverityLow,
			"Mixed bullet markers are used across the document", "",
			newRec(types.PriorityLow, "Unify bullet markers",
				"Pick one bullet style and use it for every list."))
	}

	// 4. 超长行占比
	longLines := 0
	for _, line := range lines {
		if len(line) > 100 {
			longLines++
		}
	}
	if len(lines) > 0 && float64(longLines)/float64(len(lines)) > 0.30 {
		d.deduct(10, types.SeverityMedium,
			"Over 30% of lines exceed 100 characters",
			"Long unbroken lines often come from multi-column layouts",
			newRec(types.PriorityMedium, "Break up long lines",
				"Split dense paragraphs into short bullet points."))
	}
	return d
}

// checkOrganization 检查章节齐全度、顺序与关键身份信息。
func (a *ATSAnalyzer) checkOrganization(content *types.ResumeContent) *dimensionReport {
	d := newDimensionReport(DimensionOrganization)

	// 1. 必备章节
	for _, kind := range requiredSections {
		if content.HasSection(kind) {
			continue
		}
		d.deduct(25, types.SeverityHigh,
			fmt.Sprintf("Missing required section: %s", kind),
			"ATS pipelines map fields by section and skip what they cannot find",
			newRec(types.PriorityHigh, fmt.Sprintf("Add a %s section", kind),
				fmt.Sprintf("Create a clearly titled %s section so parsers can locate it.", kind)))
	}

	// 2. 推荐章节
	for _, kind := range recommendedSections {
		if content.HasSection(kind) {
			continue
		}
		d.deduct(5, types.SeverityLow,
			fmt.Sprintf("Missing recommended section: %s", kind), "",
			newRec(types.PriorityLow, fmt.Sprintf("Consider adding a %s section", kind), ""))
	}

	// 3. 章节顺序
	if len(content.Sections) > 0 && content.Sections[0].Kind != types.SectionContact {
		d.deduct(10, types.SeverityMedium,
			"Contact information is not at the top of the document", "",
			newRec(types.PriorityMedium, "Move contact details to the top",
				"Recruiters and parsers both expect name and contact lines first."))
	}
	expIdx := -1
	for i, s := range content.Sections {
		if s.Kind == types.SectionExperience {
			expIdx = i
			break
		}
	}
	if expIdx > 2 {
		d.deduct(5, types.SeverityLow,
			"Experience section appears late in the document", "", nil)
	}

	// 4. 关键身份信息
	if content.Contact.Name == "" {
		d.deduct(15, types.SeverityHigh,
			"Could not identify a candidate name", "",
			newRec(types.PriorityHigh, "Put your full name on the first line", ""))
	}
	if content.Contact.Email == "" {
		d.deduct(15, types.SeverityHigh,
			"No email address found", "",
			newRec(types.PriorityHigh, "Add an email address",
				"Without an email the application cannot be followed up."))
	}

	// 5. 可解析的经历条目
	if len(content.Experience) == 0 {
		d.deduct(15, types.SeverityHigh,
			"No parseable work experience entries", "",
			newRec(types.PriorityHigh, "Format experience as `Title at Company (YYYY-YYYY)`",
				"Give every position a one-line header with title, employer and dates."))
	}
	return d
}

// checkReadability 检查篇幅、留白密度、描述长度与论据密度。
func (a *ATSAnalyzer) checkReadability(content *types.ResumeContent) *dimensionReport {
	d := newDimensionReport(DimensionReadability)

	// 1. 篇幅（按 250 词一页估算）
	pages := float64(content.WordCount) / 250.0
	if pages > 2 {
		d.deduct(15, types.SeverityMedium,
			fmt.Sprintf("Estimated length is %.1f pages", pages),
			"Reviewers rarely read past page two",
			newRec(types.PriorityMedium, "Trim to two pages",
				"Cut older or less relevant entries until the resume fits two pages."))
	}

	// 2. 留白密度
	lines := splitTextLines(content.RawText)
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
		}
	}
	if len(lines) > 0 && float64(blank)/float64(len(lines)) < 0.10 {
		d.deduct(10, types.SeverityLow,
			"Text is dense with almost no blank lines", "",
			newRec(types.PriorityLow, "Add whitespace between sections", ""))
	}

	// 3. 经历描述长度
	for _, exp := range content.Experience {
		if len(exp.Description) < 50 {
			d.deduct(5, types.SeverityLow,
				fmt.Sprintf("Description for %q is very short", exp.Position), "", nil)
		}
	}

	// 4. 动作动词密度
	expText := strings.ToLower(content.ExperienceText())
	verbHits := 0
	for _, v := range readabilityActionVerbs {
		if strings.Contains(expText, v) {
			verbHits++
		}
	}
	if verbHits < 3 {
		d.deduct(10, types.SeverityMedium,
			"Few action verbs in experience descriptions", "",
			newRec(types.PriorityMedium, "Open bullets with action verbs",
				"Start each achievement with verbs like led, built or reduced."))
	}

	// 5. 数字论据
	numericTokens := 0
	for _, tok := range strings.Fields(expText) {
		if digitRe.MatchString(tok) {
			numericTokens++
		}
	}
	if numericTokens < len(content.Experience) {
		d.deduct(10, types.SeverityMedium,
			"Experience entries lack numeric evidence", "",
			newRec(types.PriorityMedium, "Add numbers to your achievements",
				"Attach at least one figure (%, $, headcount) to every position."))
	}
	return d
}

// checkPresentation 检查职业形象信号：邮箱、日期风格、大小写、清单长度。
func (a *ATSAnalyzer) checkPresentation(content *types.ResumeContent) *dimensionReport {
	d := newDimensionReport(DimensionPresentation)

	// 1. 邮箱形象
	if email := content.Contact.Email; email != "" {
		if reason, bad := unprofessionalEmail(email); bad {
			d.deduct(15, types.SeverityMedium,
				fmt.Sprintf("Email address looks unprofessional (%s)", reason), "",
				newRec(types.PriorityMedium, "Use a neutral email address",
					"A firstname.lastname address reads better than nicknames or numbers."))
		}
	}

	// 2. 日期格式一致性
	if countDateFormats(content.RawText) > 1 {
		d.deduct(5, types.SeverityLow,
			"Inconsistent date formatting across entries",
			"Mixed date styles read as sloppy and can confuse parsers",
			newRec(types.PriorityLow, "Unify date formats",
				"Pick one style, e.g. 2020-2023, and apply it everywhere."))
	}

	// 3. 大小写规范
	if badCapitalization(content.Contact.Name, 3) {
		d.deduct(3, types.SeverityLow, "Name capitalization is non-standard", "", nil)
	}
	for _, exp := range content.Experience {
		if badCapitalization(exp.Position, 5) {
			d.deduct(3, types.SeverityLow,
				fmt.Sprintf("Job title capitalization is non-standard: %q", exp.Position), "", nil)
		}
	}
	for _, edu := range content.Education {
		if badCapitalization(edu.Institution, 5) {
			d.deduct(3, types.SeverityLow,
				fmt.Sprintf("Institution capitalization is non-standard: %q", edu.Institution), "", nil)
		}
	}

	// 4. 技能清单长度
	if len(content.Skills) > 15 {
		d.deduct(5, types.SeverityLow,
			fmt.Sprintf("Skills list is long (%d entries)", len(content.Skills)), "",
			newRec(types.PriorityLow, "Curate the skills list",
				"Keep the 10-15 skills that matter for the target role."))
	}

	// 5. LinkedIn
	if content.Contact.LinkedIn == "" {
		d.deduct(5, types.SeverityLow,
			"No LinkedIn profile link", "",
			newRec(types.PriorityLow, "Add your LinkedIn URL", ""))
	}
	return d
}

// unprofessionalEmail 判断邮箱是否有损职业形象，返回命中的原因。
func unprofessionalEmail(email string) (string, bool) {
	local, domain := email, ""
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
		domain = strings.ToLower(email[at+1:])
	}
	if digitRunRe.MatchString(local) {
		return "long digit run", true
	}
	if punctRunRe.MatchString(local) {
		return "repeated punctuation", true
	}
	lowerLocal := strings.ToLower(local)
	for _, tok := range unprofessionalEmailTokens {
		if strings.Contains(lowerLocal, tok) {
			return "slang token", true
		}
	}
	for _, dom := range freeMailDomains {
		if domain == dom {
			return "dated free-mail provider", true
		}
	}
	return "", false
}

// countDateFormats 统计文本中出现的日期风格数。
// 月份格式先从文本中挖掉，避免其中的四位年份把纯年份风格也计为出现。
func countDateFormats(raw string) int {
	formats := 0
	if monthYearRe.MatchString(raw) {
		formats++
	}
	if monthNameRe.MatchString(raw) {
		formats++
	}
	masked := monthYearRe.ReplaceAllString(raw, " ")
	masked = monthNameRe.ReplaceAllString(masked, " ")
	if bareYearRe.MatchString(masked) {
		formats++
	}
	return formats
}

// badCapitalization 报告字符串是否全大写或全小写（长度超过阈值才判定）。
func badCapitalization(s string, minLen int) bool {
	if len(s) <= minLen {
		return false
	}
	letters, upper, lower := 0, 0, 0
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			letters++
			upper++
		case r >= 'a' && r <= 'z':
			letters++
			lower++
		}
	}
	if letters == 0 {
		return false
	}
	return upper == letters || lower == letters
}

// combineWeighted 按权重合成总分，只对实际存在的维度归一化。
func combineWeighted(scores map[string]int, weights map[string]float64) int {
	var total, weightSum float64
	for dim, score := range scores {
		w, ok := weights[dim]
		if !ok {
			continue
		}
		total += float64(score) * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return int(math.Round(total / weightSum))
}

// splitTextLines 统一换行符后按行切分。
func splitTextLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
