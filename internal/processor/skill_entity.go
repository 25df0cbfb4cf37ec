package processor

import (
	"context"
	"fmt"
	"strings"

	"ats-score-go/internal/config"
	"ats-score-go/internal/types"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EntitySkillExtractor 用命名实体识别抽取技能
// 只保留标签在白名单中的实体, 实体文本转小写后去重
type EntitySkillExtractor struct {
	recognizer EntityRecognizer
	labels     map[string]struct{}
}

// NewEntitySkillExtractor 创建实体策略抽取器
func NewEntitySkillExtractor(recognizer EntityRecognizer, labels []string) (*EntitySkillExtractor, error) {
	if recognizer == nil {
		return nil, NewModelUnavailableError("entity_extractor_init", fmt.Errorf("实体识别器为空"))
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("实体标签白名单不能为空")
	}
	allowed := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		allowed[strings.ToUpper(strings.TrimSpace(label))] = struct{}{}
	}
	return &EntitySkillExtractor{recognizer: recognizer, labels: allowed}, nil
}

// ExtractSkills 识别实体并按标签过滤
func (e *EntitySkillExtractor) ExtractSkills(ctx context.Context, text string) (types.SkillSet, error) {
	skills := make(types.SkillSet)
	if strings.TrimSpace(text) == "" {
		return skills, nil
	}

	entities, err := e.recognizer.RecognizeEntities(ctx, text)
	if err != nil {
		return nil, NewModelUnavailableError("entity_extract", err)
	}

	lower := cases.Lower(language.Und)
	for _, ent := range entities {
		if _, ok := e.labels[strings.ToUpper(ent.Label)]; !ok {
			continue
		}
		skills.Add(strings.TrimSpace(lower.String(ent.Text)))
	}
	return skills, nil
}

// InputMode 实体识别需要保留大小写的原始文本
func (e *EntitySkillExtractor) InputMode() InputMode {
	return InputRaw
}

// Name 策略名称
func (e *EntitySkillExtractor) Name() string {
	return config.SkillStrategyEntity
}
