package parser

import (
	"regexp"
	"strings"

	"resume-match-go/internal/types"
)

// 年限表述，如 "5+ years"、"1-2 years"、"3 to 5 years"
var yearsRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:[-–~]|to)?\s*(\d{1,2})?\s*\+?\s*years?`)

// 岗位技能词典。匹配时要求词边界，避免 "go" 命中 "google" 这类误报。
var knownSkills = []string{
	"go", "golang", "python", "java", "javascript", "typescript", "c++", "c#",
	"ruby", "php", "swift", "kotlin", "scala", "rust", "html", "css", "sql",
	"react", "angular", "vue", "node.js", "node", "django", "spring", "rails",
	"mysql", "postgresql", "mongodb", "redis", "elasticsearch", "kafka",
	"rabbitmq", "docker", "kubernetes", "terraform", "ansible", "jenkins",
	"aws", "azure", "gcp", "linux", "git", "ci/cd", "graphql", "rest", "grpc",
	"microservices", "machine learning", "data analysis", "excel", "tableau",
	"power bi", "agile", "scrum", "jira", "project management", "leadership",
	"communication", "stakeholder management", "marketing", "seo", "sales",
	"photoshop", "illustrator", "figma", "ux", "ui", "copywriting",
}

// 必备与加分项的行级标记
var (
	requiredMarkers  = []string{"required", "must have", "must-have", "essential", "proficient", "proficiency", "requirements"}
	preferredMarkers = []string{"preferred", "nice to have", "nice-to-have", "bonus", "a plus", "desirable", "familiarity"}
)

// 经验级别关键字覆盖，按优先级排列
var levelKeywordRules = []struct {
	level    string
	keywords []string
}{
	{types.ExperienceLevelExecutive, []string{"director", "vp ", "vice president", "head of", "chief"}},
	{types.ExperienceLevelSenior, []string{"senior", "principal", "staff engineer", "lead "}},
	{types.ExperienceLevelEntry, []string{"entry level", "entry-level", "junior", "graduate", "intern"}},
}

// 行业词典，首个命中生效
var industryRules = []struct {
	industry string
	keywords []string
}{
	{"finance", []string{"fintech", "banking", "financial", "trading", "payments"}},
	{"healthcare", []string{"healthcare", "medical", "clinical", "pharma"}},
	{"e-commerce", []string{"e-commerce", "ecommerce", "retail", "marketplace"}},
	{"education", []string{"edtech", "education", "learning platform"}},
	{"software", []string{"saas", "software", "technology", "cloud"}},
}

// JobAnalyzer 将岗位描述文本解析为结构化的岗位要求。
// 全部基于词典与正则启发式，无状态，可并发使用。
type JobAnalyzer struct{}

// NewJobAnalyzer 创建岗位描述解析器。
func NewJobAnalyzer() *JobAnalyzer {
	return &JobAnalyzer{}
}

// ParseJobDescription 解析岗位描述。title 可为空，此时取文本首个短行。
// 空文本返回仅含 Title 的结果，不会报错。
func (a *JobAnalyzer) ParseJobDescription(title, text string) *types.JobRequirements {
	job := &types.JobRequirements{
		Title:       strings.TrimSpace(title),
		Description: text,
	}
	if strings.TrimSpace(text) == "" {
		if job.Title != "" {
			job.ExperienceLevel = a.inferExperienceLevel(strings.ToLower(job.Title))
		}
		return job
	}

	lower := strings.ToLower(text)
	if job.Title == "" {
		job.Title = firstShortLine(text)
	}

	job.ExperienceLevel = a.inferExperienceLevel(strings.ToLower(job.Title) + "\n" + lower)
	job.RequiredSkills, job.PreferredSkills = a.extractSkillSets(text)
	job.Education = extractEducationRequirements(lower)
	job.Certifications = extractCertificationLines(text)
	job.Keywords = extractJobKeywords(lower)
	for _, rule := range industryRules {
		if containsAny(lower, rule.keywords) {
			job.Industry = rule.industry
			break
		}
	}
	return job
}

// inferExperienceLevel 推断经验级别。
// 年限表述优先（取提到的最大年限）：≥10 executive，≥5 senior-level，
// ≥3 mid-level，否则 entry-level；无年限时按关键字覆盖，均无则 mid-level。
func (a *JobAnalyzer) inferExperienceLevel(lower string) string {
	maxYears := -1
	for _, m := range yearsRe.FindAllStringSubmatch(lower, -1) {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			if n := atoiSafe(g); n > maxYears {
				maxYears = n
			}
		}
	}
	switch {
	case maxYears >= 10:
		return types.ExperienceLevelExecutive
	case maxYears >= 5:
		return types.ExperienceLevelSenior
	case maxYears >= 3:
		return types.ExperienceLevelMid
	case maxYears >= 0:
		return types.ExperienceLevelEntry
	}
	for _, rule := range levelKeywordRules {
		if containsAny(lower, rule.keywords) {
			return rule.level
		}
	}
	return types.ExperienceLevelMid
}

// extractSkillSets 按行扫描技能。行内或所处小节带加分标记的归入
// PreferredSkills，其余命中归入 RequiredSkills。
func (a *JobAnalyzer) extractSkillSets(text string) (required, preferred []string) {
	seen := make(map[string]string) // skill -> "required"|"preferred"
	var order []string

	mode := "required"
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)

		// 小节标题切换后续行的归属
		if len(trimmed) < maxHeaderLen {
			if containsAny(lower, preferredMarkers) {
				mode = "preferred"
			} else if containsAny(lower, requiredMarkers) {
				mode = "required"
			}
		}

		lineMode := mode
		if containsAny(lower, preferredMarkers) {
			lineMode = "preferred"
		}
		for _, skill := range knownSkills {
			if !containsTerm(lower, skill) {
				continue
			}
			if prev, ok := seen[skill]; ok {
				// 必备优先于加分
				if prev == "preferred" && lineMode == "required" {
					seen[skill] = "required"
				}
				continue
			}
			seen[skill] = lineMode
			order = append(order, skill)
		}
	}

	for _, skill := range order {
		if seen[skill] == "preferred" {
			preferred = append(preferred, skill)
		} else {
			required = append(required, skill)
		}
	}
	return required, preferred
}

func extractEducationRequirements(lower string) []string {
	var out []string
	for _, kw := range degreeKeywords {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

func extractCertificationLines(text string) []string {
	var out []string
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || len(trimmed) >= 120 {
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.Contains(lower, "certified") || strings.Contains(lower, "certification") {
			if marker, ok := bulletMarker(trimmed); ok {
				trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
			}
			out = append(out, trimmed)
		}
	}
	return out
}

// 通用职业关键字，岗位文本中出现的会进入 Keywords
var jobKeywordDict = []string{
	"develop", "design", "build", "maintain", "collaborate", "deliver",
	"optimize", "scale", "analyze", "manage", "mentor", "own", "drive",
	"cross-functional", "customer", "quality", "performance", "security",
}

func extractJobKeywords(lower string) []string {
	var out []string
	for _, kw := range jobKeywordDict {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// containsTerm 带词边界的包含判断：命中位置两侧不能是字母或数字。
func containsTerm(lower, term string) bool {
	for start := 0; ; {
		idx := strings.Index(lower[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		before := byte(' ')
		if idx > 0 {
			before = lower[idx-1]
		}
		after := byte(' ')
		if idx+len(term) < len(lower) {
			after = lower[idx+len(term)]
		}
		if !isWordByte(before) && !isWordByte(after) {
			return true
		}
		start = idx + len(term)
		if start >= len(lower) {
			return false
		}
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func firstShortLine(text string) string {
	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && len(trimmed) < 80 {
			return trimmed
		}
	}
	return ""
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
