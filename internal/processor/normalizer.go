package processor

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeText 将所有连续空白压缩为单个空格, 去除首尾空白并转为小写
// 结果满足 NormalizeText(NormalizeText(x)) == NormalizeText(x)
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	// cases.Caser 有状态, 不能跨 goroutine 共享
	lower := cases.Lower(language.Und).String(text)
	return strings.Join(strings.Fields(lower), " ")
}
