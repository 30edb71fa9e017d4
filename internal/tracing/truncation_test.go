package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMaskPII 测试不同长度下的掩码规则
func TestMaskPII(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"", ""},
		{"a", "*"},
		{"ab", "a*"},
		{"abc", "a*c"},
		{"abcd", "a**d"},
		{"张三", "张*"},
		{"王小明", "王*明"},
		{"13812345678", "13*******78"},
		{"myemail@example.com", "my***************om"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskPII(tt.value), tt.value)
	}
}

// TestTruncateString 测试截断规则：保留首尾并以省略号连接
func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 10))
	assert.Equal(t, "hello", TruncateString("hello", 5))
	assert.Equal(t, "abc", TruncateString("abcdef", 3))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
	assert.Equal(t, "ab...ij", TruncateString("abcdefghij", 7))
	// maxLength 过小时首尾至少各保留一个字符
	assert.Equal(t, "a...f", TruncateString("abcdef", 4))
	// 按 rune 截断，多字节字符不会被切坏
	assert.Equal(t, "一二...九十", TruncateString("一二三四五六七八九十", 7))
}

// TestSafeAttributeValue 测试敏感字段掩码与普通字段截断
func TestSafeAttributeValue(t *testing.T) {
	assert.Equal(t, "ja************om", SafeAttributeValue("user.email", "jane@example.com", 200))
	assert.Equal(t, "13*******78", SafeAttributeValue("phone_number", "13812345678", 200))
	assert.Equal(t, "ab****34", SafeAttributeValue("auth.token", "abcd1234", 200))
	assert.Equal(t, "张*三", SafeAttributeValue("姓名", "张小三", 200))

	// 非敏感字段只做截断
	assert.Equal(t, "GET", SafeAttributeValue("http.method", "GET", 200))
	assert.Equal(t, "xxx...xxx", SafeAttributeValue("sql.query", strings.Repeat("x", 20), 10))
}

// TestSafeHelpers 测试各场景包装函数的长度上限
func TestSafeHelpers(t *testing.T) {
	resume := SafeResumeContent(strings.Repeat("r", 200))
	assert.Contains(t, resume, "...")
	assert.Len(t, []rune(resume), 149)

	key := SafeRedisKey(strings.Repeat("k", 150))
	assert.Len(t, []rune(key), 99)

	sql := "SELECT submission_uuid FROM resume_submissions WHERE raw_file_md5 = ?"
	assert.Equal(t, sql, SafeSQL(sql))

	jd := SafeJobDescription(strings.Repeat("j", 150))
	assert.Equal(t, strings.Repeat("j", 150), jd)
}
