package types

import "strings"

// SectionKind 表示简历章节类型
type SectionKind string

const (
	// SectionContact 联系方式章节（文档顶部无标题的内容归入该隐式章节）
	SectionContact SectionKind = "contact"
	// SectionSummary 个人概述章节
	SectionSummary SectionKind = "summary"
	// SectionExperience 工作经历章节
	SectionExperience SectionKind = "experience"
	// SectionEducation 教育经历章节
	SectionEducation SectionKind = "education"
	// SectionSkills 技能章节
	SectionSkills SectionKind = "skills"
	// SectionCertifications 证书章节
	SectionCertifications SectionKind = "certifications"
)

// ParsedSection 切分后的简历章节。
// StartLine/EndLine 为原始文本中的行号（0 起，含端点），
// 各章节按出现顺序排列、互不重叠，共同覆盖全部非空行。
type ParsedSection struct {
	Kind      SectionKind `json:"kind"`       // 章节类型
	Title     string      `json:"title"`      // 命中的标题行原文，隐式章节为空
	Text      string      `json:"text"`       // 章节文本（含标题行）
	StartLine int         `json:"start_line"` // 起始行号
	EndLine   int         `json:"end_line"`   // 结束行号（含）
}

// ContactInfo 从简历中抽取的联系方式，未识别的字段为空字符串
type ContactInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
	Location string `json:"location,omitempty"`
}

// WorkExperience 单段工作经历。
// Company 为可选字段：头部行切分不出公司名时保持为空，
// 调用方通过 HasCompany 判断，而不是依赖任何占位字符串。
type WorkExperience struct {
	Position     string   `json:"position"`
	Company      string   `json:"company,omitempty"`
	StartDate    string   `json:"start_date,omitempty"` // 四位年份
	EndDate      string   `json:"end_date,omitempty"`   // 为空表示至今
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"` // 条目行，已去除列表符号
}

// HasCompany 报告该经历是否解析出了公司名。
func (w WorkExperience) HasCompany() bool { return w.Company != "" }

// IsCurrent 报告该经历是否为在职状态（无结束日期）。
func (w WorkExperience) IsCurrent() bool { return w.EndDate == "" }

// Education 单条教育经历
type Education struct {
	Degree         string `json:"degree"`
	Field          string `json:"field,omitempty"` // 专业方向，来自 "in <field>" 片段
	Institution    string `json:"institution,omitempty"`
	GraduationDate string `json:"graduation_date,omitempty"` // 四位年份
}

// Certification 单条证书记录
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"` // 四位年份
}

// ResumeContent 结构化后的完整简历内容，解析器的聚合输出
type ResumeContent struct {
	RawText        string           `json:"raw_text"`
	Sections       []ParsedSection  `json:"sections"`
	Contact        ContactInfo      `json:"contact"`
	Summary        string           `json:"summary,omitempty"`
	Experience     []WorkExperience `json:"experience"`
	Education      []Education      `json:"education"`
	Skills         []string         `json:"skills"`
	Certifications []Certification  `json:"certifications"`
	WordCount      int              `json:"word_count"`
}

// SectionOf 返回第一个指定类型的章节，不存在时第二个返回值为 false。
func (r *ResumeContent) SectionOf(kind SectionKind) (ParsedSection, bool) {
	for _, s := range r.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return ParsedSection{}, false
}

// HasSection 报告指定类型的章节是否存在。
func (r *ResumeContent) HasSection(kind SectionKind) bool {
	_, ok := r.SectionOf(kind)
	return ok
}

// ExperienceText 返回全部工作经历的拼接文本（职位、描述与条目），
// 供可读性与量化分析复用。
func (r *ResumeContent) ExperienceText() string {
	var b strings.Builder
	for _, exp := range r.Experience {
		b.WriteString(exp.Position)
		b.WriteByte('\n')
		if exp.Description != "" {
			b.WriteString(exp.Description)
			b.WriteByte('\n')
		}
		for _, a := range exp.Achievements {
			b.WriteString(a)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// 目标岗位经验级别
const (
	ExperienceLevelEntry     = "entry-level"
	ExperienceLevelMid       = "mid-level"
	ExperienceLevelSenior    = "senior-level"
	ExperienceLevelExecutive = "executive"
)

// JobRequirements 岗位要求，匹配计算的输入。
// 可由调用方直接提供，也可由 JD 文本解析得到。
type JobRequirements struct {
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	RequiredSkills  []string `json:"required_skills,omitempty"`
	PreferredSkills []string `json:"preferred_skills,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Education       []string `json:"education,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Industry        string   `json:"industry,omitempty"`
}

// IsEmpty 报告岗位要求是否不含任何可匹配的信号。
func (j *JobRequirements) IsEmpty() bool {
	if j == nil {
		return true
	}
	return j.Title == "" && j.Description == "" &&
		len(j.RequiredSkills) == 0 && len(j.PreferredSkills) == 0 &&
		len(j.Keywords) == 0
}

// SearchText 返回用于岗位类型推断与关键字统计的岗位全文（小写）。
func (j *JobRequirements) SearchText() string {
	if j == nil {
		return ""
	}
	parts := make([]string, 0, 2+len(j.RequiredSkills)+len(j.PreferredSkills)+len(j.Keywords))
	parts = append(parts, j.Title, j.Description)
	parts = append(parts, j.RequiredSkills...)
	parts = append(parts, j.PreferredSkills...)
	parts = append(parts, j.Keywords...)
	return strings.ToLower(strings.Join(parts, " "))
}
