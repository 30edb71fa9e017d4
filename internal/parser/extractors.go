package parser

import (
	"regexp"
	"strings"

	"resume-match-go/internal/types"
)

// 联系方式与日期抽取所用的正则
var (
	emailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe    = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkedinRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[A-Za-z0-9_\-]+`)
	websiteRe  = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s,;]+|\b[a-z0-9\-]+\.(?:com|org|net|io|dev|co|me)(?:/[^\s,;]*)?\b`)
	locationRe = regexp.MustCompile(`[A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+)*,\s*[A-Z]{2}(?:\s+\d{5})?`)

	yearRangeRe = regexp.MustCompile(`(?i)(\d{4})\s*[-–—]\s*(\d{4}|present|current)`)
	yearRe      = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	parenRe     = regexp.MustCompile(`\([^)]*\)`)
	spaceRe     = regexp.MustCompile(`\s{2,}`)
)

// 教育经历的学位关键字
var degreeKeywords = []string{
	"bachelor", "master", "phd", "doctorate", "associate", "diploma", "certificate",
}

// 技能词的切分符号
var skillSplitRe = regexp.MustCompile(`[,;|•\-]`)

// ExtractContact 抽取联系方式。所有字段只在 contact 章节文本内做
// 正则匹配，无 contact 章节时回退到全文前 500 个字符，避免把正文
// 里提到的邮箱或电话误认为候选人的联系方式。
func (p *SectionParser) ExtractContact(sections []types.ParsedSection, rawText string) types.ContactInfo {
	scope := headRunes(rawText, 500)
	if sec, ok := findSection(sections, types.SectionContact); ok {
		scope = sec.Text
	}

	info := types.ContactInfo{
		Email:    emailRe.FindString(scope),
		Phone:    strings.TrimSpace(phoneRe.FindString(scope)),
		LinkedIn: linkedinRe.FindString(scope),
		Location: locationRe.FindString(scope),
	}
	for _, m := range websiteRe.FindAllString(scope, -1) {
		lower := strings.ToLower(m)
		if strings.Contains(lower, "linkedin.com") {
			continue
		}
		if info.Email != "" && strings.Contains(info.Email, m) {
			continue
		}
		info.Website = m
		break
	}
	info.Name = extractName(scope)
	return info
}

// extractName 返回范围内第一个不含联系方式特征的短行。
func extractName(scope string) string {
	for _, line := range splitLines(scope) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || len(trimmed) >= maxHeaderLen {
			continue
		}
		if _, ok := classifyHeader(trimmed); ok {
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.Contains(trimmed, "@") ||
			strings.Contains(lower, "http") ||
			strings.Contains(lower, "www.") ||
			strings.Contains(lower, "linkedin") ||
			phoneRe.MatchString(trimmed) ||
			locationRe.FindString(trimmed) == trimmed {
			continue
		}
		return trimmed
	}
	return ""
}

// ExtractExperience 从全部 experience 章节中抽取工作经历。
//
// 职位头部行满足：短于 100 字符、非列表项，且含有 " at "、"@"、
// 逗号或四位年份之一。头部行之间的列表项归入成果，普通行并入描述。
func (p *SectionParser) ExtractExperience(sections []types.ParsedSection) []types.WorkExperience {
	var out []types.WorkExperience
	for _, sec := range sections {
		if sec.Kind != types.SectionExperience {
			continue
		}
		out = append(out, parseExperienceBody(sectionBody(sec))...)
	}
	return out
}

func parseExperienceBody(body string) []types.WorkExperience {
	var jobs []types.WorkExperience
	var cur *types.WorkExperience
	var desc []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.Description = strings.TrimSpace(strings.Join(desc, " "))
		jobs = append(jobs, *cur)
		cur = nil
		desc = nil
	}

	for _, line := range splitLines(body) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if marker, ok := bulletMarker(trimmed); ok {
			if cur != nil {
				cur.Achievements = append(cur.Achievements, strings.TrimSpace(strings.TrimPrefix(trimmed, marker)))
			}
			continue
		}
		if isJobHeader(trimmed) {
			flush()
			cur = parseJobHeader(trimmed)
			continue
		}
		if cur != nil {
			desc = append(desc, trimmed)
		}
	}
	flush()
	return jobs
}

// bulletMarker 返回行首的列表符号。
func bulletMarker(line string) (string, bool) {
	for _, m := range []string{"-", "•", "*"} {
		if strings.HasPrefix(line, m) {
			return m, true
		}
	}
	return "", false
}

func isJobHeader(line string) bool {
	if len(line) >= 100 {
		return false
	}
	if _, ok := bulletMarker(line); ok {
		return false
	}
	lower := strings.ToLower(line)
	return strings.Contains(lower, " at ") ||
		strings.Contains(line, "@") ||
		strings.Contains(line, ",") ||
		yearRe.MatchString(line)
}

// parseJobHeader 解析职位头部行：先取日期区间，再剥离括号与年份，
// 剩余部分按 " at " / " @ " / ", " 的顺序切分为职位与公司。
// 均不命中时整体作为职位，公司留空。
func parseJobHeader(line string) *types.WorkExperience {
	exp := &types.WorkExperience{}
	if m := yearRangeRe.FindStringSubmatch(line); m != nil {
		exp.StartDate = m[1]
		if end := strings.ToLower(m[2]); end != "present" && end != "current" {
			exp.EndDate = m[2]
		}
	}
	head := yearRangeRe.ReplaceAllString(line, "")
	head = parenRe.ReplaceAllString(head, "")
	head = yearRe.ReplaceAllString(head, "")
	head = strings.Trim(spaceRe.ReplaceAllString(head, " "), " \t,|-–—")

	for _, sep := range []string{" at ", " @ ", ", "} {
		idx := strings.Index(strings.ToLower(head), sep)
		if idx < 0 || idx+len(sep) > len(head) {
			continue
		}
		exp.Position = strings.TrimSpace(head[:idx])
		exp.Company = strings.TrimSpace(head[idx+len(sep):])
		return exp
	}
	exp.Position = head
	return exp
}

// ExtractEducation 从 education 章节抽取学历记录。
// 仅处理含学位关键字的行；最后一个 1900-2099 年份作为毕业年份。
func (p *SectionParser) ExtractEducation(sections []types.ParsedSection) []types.Education {
	var out []types.Education
	for _, sec := range sections {
		if sec.Kind != types.SectionEducation {
			continue
		}
		for _, line := range splitLines(sectionBody(sec)) {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || !containsAny(strings.ToLower(trimmed), degreeKeywords) {
				continue
			}
			out = append(out, parseEducationLine(trimmed))
		}
	}
	return out
}

func parseEducationLine(line string) types.Education {
	edu := types.Education{}
	if years := yearRe.FindAllString(line, -1); len(years) > 0 {
		edu.GraduationDate = years[len(years)-1]
	}
	stripped := parenRe.ReplaceAllString(line, "")
	stripped = yearRe.ReplaceAllString(stripped, "")
	stripped = strings.Trim(spaceRe.ReplaceAllString(stripped, " "), " \t,-–—")

	degree, rest := splitFirst(stripped, []string{",", " at ", " from "})
	edu.Degree = degree
	edu.Institution = rest
	if idx := strings.Index(strings.ToLower(edu.Degree), " in "); idx >= 0 {
		edu.Field = strings.TrimSpace(edu.Degree[idx+4:])
		edu.Degree = strings.TrimSpace(edu.Degree[:idx])
	}
	return edu
}

// ExtractSkills 从 skills 章节抽取技能词。
// 先剥离冒号前的类别标签，再按分隔符切词，按出现顺序去重。
func (p *SectionParser) ExtractSkills(sections []types.ParsedSection) []string {
	var out []string
	seen := make(map[string]bool)
	for _, sec := range sections {
		if sec.Kind != types.SectionSkills {
			continue
		}
		for i, line := range splitLines(sec.Text) {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if idx := strings.Index(trimmed, ":"); idx >= 0 {
				trimmed = strings.TrimSpace(trimmed[idx+1:])
			} else if i == 0 {
				if _, ok := classifyHeader(trimmed); ok {
					continue // 纯标题行
				}
			}
			for _, tok := range skillSplitRe.Split(trimmed, -1) {
				t := strings.TrimSpace(tok)
				if t == "" || len(t) >= maxHeaderLen {
					continue
				}
				key := strings.ToLower(t)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// ExtractCertifications 从 certifications 章节抽取证书记录，
// 规则与学历一致：末尾年份为获证时间，剩余部分切分为名称与颁发方。
func (p *SectionParser) ExtractCertifications(sections []types.ParsedSection) []types.Certification {
	var out []types.Certification
	for _, sec := range sections {
		if sec.Kind != types.SectionCertifications {
			continue
		}
		for _, line := range splitLines(sectionBody(sec)) {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if marker, ok := bulletMarker(trimmed); ok {
				trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
			}
			cert := types.Certification{}
			if years := yearRe.FindAllString(trimmed, -1); len(years) > 0 {
				cert.Date = years[len(years)-1]
			}
			stripped := parenRe.ReplaceAllString(trimmed, "")
			stripped = yearRe.ReplaceAllString(stripped, "")
			stripped = strings.Trim(spaceRe.ReplaceAllString(stripped, " "), " \t,-–—")
			cert.Name, cert.Issuer = splitFirst(stripped, []string{",", " by ", " from "})
			if cert.Name == "" {
				continue
			}
			out = append(out, cert)
		}
	}
	return out
}

// splitFirst 按给定分隔符顺序尝试切分，命中第一个即返回两段。
func splitFirst(s string, seps []string) (string, string) {
	for _, sep := range seps {
		idx := strings.Index(strings.ToLower(s), sep)
		if idx < 0 || idx+len(sep) > len(s) {
			continue
		}
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+len(sep):])
	}
	return strings.TrimSpace(s), ""
}

func findSection(sections []types.ParsedSection, kind types.SectionKind) (types.ParsedSection, bool) {
	for _, s := range sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return types.ParsedSection{}, false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// headRunes 返回字符串的前 n 个字符（按 rune 计）。
func headRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
