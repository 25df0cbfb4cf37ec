package parser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"ats-score-go/internal/types"

	"github.com/jdkato/prose/v2"
)

const nerProbeText = "Jane works at Google in London and uses Docker."

// ProseEntityRecognizer 基于 prose 的命名实体识别
// 模型只加载一次; 推理串行执行
type ProseEntityRecognizer struct {
	mu    sync.Mutex
	model *prose.Model
	name  string
}

// NewProseEntityRecognizer 加载 NER 模型
// modelPath 为空时使用 prose 内置模型, 否则从磁盘目录加载
func NewProseEntityRecognizer(modelPath string) (r *ProseEntityRecognizer, err error) {
	// prose 在模型文件损坏时直接 panic
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("加载 NER 模型失败: %v", rec)
		}
	}()

	if modelPath != "" {
		info, statErr := os.Stat(modelPath)
		if statErr != nil {
			return nil, fmt.Errorf("NER 模型目录不可用: %w", statErr)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("NER 模型路径不是目录: %s", modelPath)
		}
		return &ProseEntityRecognizer{model: prose.ModelFromDisk(modelPath), name: modelPath}, nil
	}

	doc, err := prose.NewDocument(nerProbeText, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("加载内置 NER 模型失败: %w", err)
	}
	if doc.Model == nil {
		return nil, fmt.Errorf("内置 NER 模型为空")
	}
	return &ProseEntityRecognizer{model: doc.Model, name: "prose-default"}, nil
}

// Name 返回模型标识
func (p *ProseEntityRecognizer) Name() string {
	return p.name
}

// RecognizeEntities 返回文本中的命名实体, 保持出现顺序
func (p *ProseEntityRecognizer) RecognizeEntities(ctx context.Context, text string) (entities []types.Entity, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			entities = nil
			err = fmt.Errorf("NER 推理失败: %v", rec)
		}
	}()

	doc, err := prose.NewDocument(text,
		prose.UsingModel(p.model),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("NER 推理失败: %w", err)
	}

	for _, ent := range doc.Entities() {
		entities = append(entities, types.Entity{Text: ent.Text, Label: ent.Label})
	}
	return entities, nil
}
