package processor

import (
	"context"
	"sort"
	"strings"

	"ats-score-go/internal/config"
	"ats-score-go/internal/constants"
	"ats-score-go/internal/types"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeywordSkillExtractor 在规范化文本中对静态词表做子串匹配
// 子串匹配意味着 "java" 也会命中 "javascript"
type KeywordSkillExtractor struct {
	vocabulary []string
}

// NewKeywordSkillExtractor 使用给定词表创建抽取器, 词表为空时使用内置词表
// 匹配对象是小写文本, 词表项统一转为小写并去掉首尾空白
func NewKeywordSkillExtractor(vocabulary ...string) *KeywordSkillExtractor {
	if len(vocabulary) == 0 {
		vocabulary = constants.SkillVocabulary
	}
	lower := cases.Lower(language.Und)
	vocab := make([]string, 0, len(vocabulary))
	seen := make(map[string]struct{}, len(vocabulary))
	for _, term := range vocabulary {
		term = lower.String(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)
	return &KeywordSkillExtractor{vocabulary: vocab}
}

// ExtractSkills 返回出现在文本中的词表项, 区分大小写
func (k *KeywordSkillExtractor) ExtractSkills(_ context.Context, text string) (types.SkillSet, error) {
	skills := make(types.SkillSet)
	if text == "" {
		return skills, nil
	}
	for _, term := range k.vocabulary {
		if strings.Contains(text, term) {
			skills.Add(term)
		}
	}
	return skills, nil
}

// Vocabulary 返回排序后的词表副本
func (k *KeywordSkillExtractor) Vocabulary() []string {
	out := make([]string, len(k.vocabulary))
	copy(out, k.vocabulary)
	return out
}

// InputMode 关键词策略使用规范化文本
func (k *KeywordSkillExtractor) InputMode() InputMode {
	return InputNormalized
}

// Name 策略名称
func (k *KeywordSkillExtractor) Name() string {
	return config.SkillStrategyKeyword
}
