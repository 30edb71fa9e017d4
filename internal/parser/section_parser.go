package parser

import (
	"strings"
	"unicode"

	"resume-match-go/internal/types"
)

// 标题行长度上限，超过即认为是正文
const maxHeaderLen = 50

// sectionRule 章节标题判定规则，按优先级排列
type sectionRule struct {
	kind     types.SectionKind
	keywords []string
}

// 章节标题关键字表。判定分两档：整行（去冒号后）与关键字完全相等，
// 或疑似标题行（见 looksLikeHeader）中包含关键字。
var sectionRules = []sectionRule{
	{types.SectionSummary, []string{"summary", "profile", "objective", "about me", "about"}},
	{types.SectionExperience, []string{"experience", "employment", "work history", "career"}},
	{types.SectionEducation, []string{"education", "academic", "qualifications", "qualification"}},
	{types.SectionSkills, []string{"skills", "technologies", "competencies", "expertise"}},
	{types.SectionCertifications, []string{"certifications", "certification", "licenses", "credentials"}},
	{types.SectionContact, []string{"contact"}},
}

// SectionParser 基于规则表的简历解析器。
// 所有方法均为纯函数式实现，内部无状态，可并发使用。
type SectionParser struct{}

// NewSectionParser 创建章节解析器。
func NewSectionParser() *SectionParser {
	return &SectionParser{}
}

// ParseResume 解析简历全文，聚合章节切分与各类信息抽取的结果。
// 空文本返回全零的 ResumeContent，不会报错。
func (p *SectionParser) ParseResume(text string) *types.ResumeContent {
	content := &types.ResumeContent{
		RawText:   text,
		WordCount: len(strings.Fields(text)),
	}
	content.Sections = p.ParseSections(text)
	content.Contact = p.ExtractContact(content.Sections, text)
	content.Summary = p.extractSummary(content.Sections)
	content.Experience = p.ExtractExperience(content.Sections)
	content.Education = p.ExtractEducation(content.Sections)
	content.Skills = p.ExtractSkills(content.Sections)
	content.Certifications = p.ExtractCertifications(content.Sections)
	return content
}

// ParseSections 按行扫描文本并切分章节。
// 命中标题行时关闭当前章节并开启新章节；首个标题之前的非空行
// 归入隐式 contact 章节。空白文本返回 nil。
func (p *SectionParser) ParseSections(text string) []types.ParsedSection {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := splitLines(text)

	var sections []types.ParsedSection
	var cur *types.ParsedSection
	lastContent := -1 // 当前章节最后一个非空行

	flush := func() {
		if cur == nil {
			return
		}
		cur.EndLine = lastContent
		cur.Text = strings.Join(lines[cur.StartLine:cur.EndLine+1], "\n")
		sections = append(sections, *cur)
		cur = nil
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if kind, ok := classifyHeader(line); ok {
			flush()
			cur = &types.ParsedSection{
				Kind:      kind,
				Title:     strings.TrimSpace(line),
				StartLine: i,
			}
			lastContent = i
			continue
		}
		if cur == nil {
			// 标题出现之前的内容视为联系方式章节
			cur = &types.ParsedSection{Kind: types.SectionContact, StartLine: i}
		}
		lastContent = i
	}
	flush()
	return sections
}

// classifyHeader 判定一行是否为章节标题并返回章节类型。
func classifyHeader(line string) (types.SectionKind, bool) {
	norm := normalizeHeader(line)
	if norm == "" {
		return "", false
	}
	for _, rule := range sectionRules {
		for _, kw := range rule.keywords {
			if norm == kw {
				return rule.kind, true
			}
		}
	}
	if !looksLikeHeader(line) {
		return "", false
	}
	for _, rule := range sectionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(norm, kw) {
				return rule.kind, true
			}
		}
	}
	return "", false
}

// normalizeHeader 将标题行归一化：小写、去首尾空白、去末尾冒号。
func normalizeHeader(line string) string {
	s := strings.ToLower(strings.TrimSpace(line))
	s = strings.TrimSuffix(s, ":")
	return strings.TrimSpace(s)
}

// looksLikeHeader 报告一行是否具有标题形态：
// 短于 50 字符，且全大写、全小写或含冒号。
func looksLikeHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) >= maxHeaderLen {
		return false
	}
	if strings.Contains(trimmed, ":") {
		return true
	}
	letters, upper, lower := 0, 0, 0
	for _, r := range trimmed {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		} else if unicode.IsLower(r) {
			lower++
		}
	}
	if letters == 0 {
		return false
	}
	return upper == letters || lower == letters
}

// extractSummary 返回概述章节的正文（去掉标题行）。
func (p *SectionParser) extractSummary(sections []types.ParsedSection) string {
	for _, sec := range sections {
		if sec.Kind != types.SectionSummary {
			continue
		}
		return strings.TrimSpace(sectionBody(sec))
	}
	return ""
}

// sectionBody 返回章节文本中标题行之后的部分。
func sectionBody(sec types.ParsedSection) string {
	if sec.Title == "" {
		return sec.Text
	}
	lines := splitLines(sec.Text)
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == sec.Title {
		return strings.Join(lines[1:], "\n")
	}
	return sec.Text
}

// splitLines 统一换行符后按行切分。
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
