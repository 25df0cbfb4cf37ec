package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// CalculateMD5 computes the MD5 hash of a byte slice.
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// TruncateRunes 截取前 limit 个字符 (rune), 返回结果以及是否发生截断
func TruncateRunes(s string, limit int) (string, bool) {
	if limit < 0 {
		limit = 0
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i], true
		}
		count++
	}
	return s, false
}

// JoinOr 用 ", " 连接非空列表, 列表为空时返回 fallback
func JoinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
