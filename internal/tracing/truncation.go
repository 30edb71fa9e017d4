package tracing

import (
	"strings"
)

// Span属性的长度上限。简历正文和JD原文只保留一小段摘要，
// 完整内容永远不进追踪后端。
const (
	DefaultMaxLength = 200
	MaxSQLLength     = 500
	MaxRedisLength   = 100
	MaxHeaderLength  = 100
	MaxResumeLength  = 150
	MaxJobDescLength = 150
)

// 属性名里出现这些片段时，值按PII处理
var sensitiveNameParts = []string{
	"email", "phone", "password", "secret", "token",
	"id_card", "身份证", "address", "地址", "name", "姓名", "age", "年龄",
}

// SafeAttributeValue 把任意字符串收敛成可以放上Span的属性值：
// 属性名命中敏感片段时掩码，否则按 maxLength 截断。
func SafeAttributeValue(name string, value string, maxLength int) string {
	lower := strings.ToLower(name)
	for _, part := range sensitiveNameParts {
		if strings.Contains(lower, part) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 掩码个人信息，只露出首尾少量字符。
// 长度按rune计，中文姓名和邮箱走同一套规则。
func MaskPII(value string) string {
	runes := []rune(value)
	switch n := len(runes); {
	case n == 0:
		return ""
	case n == 1:
		return "*"
	case n == 2:
		return string(runes[:1]) + "*"
	case n <= 4:
		return string(runes[:1]) + strings.Repeat("*", n-2) + string(runes[n-1:])
	default:
		return string(runes[:2]) + strings.Repeat("*", n-4) + string(runes[n-2:])
	}
}

// TruncateString 超长时保留首尾两段，中间以...连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// SafeSQL 收敛SQL语句长度
func SafeSQL(sql string) string {
	return TruncateString(sql, MaxSQLLength)
}

// SafeRedisKey 收敛Redis键长度
func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisLength)
}

// SafeResumeContent 收敛简历正文，Span上只留摘要
func SafeResumeContent(content string) string {
	return TruncateString(content, MaxResumeLength)
}

// SafeJobDescription 收敛JD原文，Span上只留摘要
func SafeJobDescription(content string) string {
	return TruncateString(content, MaxJobDescLength)
}
