package tracing

import (
	"strings"
)

const (
	// DefaultMaxLength 默认最大属性长度
	DefaultMaxLength = 200

	// MaxRedisLength Redis键值最大长度
	MaxRedisLength = 100

	// MaxResumeLength 简历内容最大长度
	MaxResumeLength = 150
)

// TruncateString 截断字符串，保留首尾，中间用 ... 连接
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

// SafeRedisKey 安全处理Redis键
func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisLength)
}

// SafeResumeContent 简历文本在写入 span 属性前截断, 并隐去邮箱和手机号
func SafeResumeContent(content string) string {
	fields := strings.Fields(content)
	for i, f := range fields {
		if looksLikeContact(f) {
			fields[i] = MaskPII(f)
		}
	}
	return TruncateString(strings.Join(fields, " "), MaxResumeLength)
}

func looksLikeContact(token string) bool {
	if strings.Contains(token, "@") {
		return true
	}
	digits := 0
	for _, r := range token {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}

// MaskPII 对个人敏感信息进行掩码处理, 保留首尾各两个字符
// "myemail@example.com" -> "my***************om"
func MaskPII(value string) string {
	if value == "" {
		return ""
	}

	runes := []rune(value)
	length := len(runes)

	if length <= 1 {
		return "*"
	}
	if length <= 4 {
		if length == 2 {
			return string(runes[0:1]) + "*"
		}
		return string(runes[0:1]) + strings.Repeat("*", length-2) + string(runes[length-1:])
	}
	return string(runes[0:2]) + strings.Repeat("*", length-4) + string(runes[length-2:])
}
