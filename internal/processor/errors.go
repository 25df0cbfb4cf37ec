package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	// ErrExtraction 简历或 JD 在规范化后没有可用文本
	ErrExtraction = errors.New("文本提取失败")
	// ErrModelUnavailable 向量模型或 NER 模型无法加载/调用
	ErrModelUnavailable = errors.New("模型不可用")
	// ErrInvalidInput 输入为空或格式错误
	ErrInvalidInput = errors.New("输入无效")
)

// ScoreError 包含详细错误信息的自定义错误
type ScoreError struct {
	Op      string
	BaseErr error
	Detail  string
	Cause   error
}

func (e *ScoreError) Error() string {
	msg := fmt.Sprintf("%s (操作:%s)", e.BaseErr, e.Op)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap 同时暴露基础错误和底层原因
func (e *ScoreError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.BaseErr, e.Cause}
	}
	return []error{e.BaseErr}
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ScoreError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// NewExtractionError 简历/JD 无可用文本
func NewExtractionError(op, detail string) error {
	return &ScoreError{Op: op, BaseErr: ErrExtraction, Detail: detail}
}

// NewModelUnavailableError 模型加载或调用失败
func NewModelUnavailableError(op string, cause error) error {
	return &ScoreError{Op: op, BaseErr: ErrModelUnavailable, Cause: cause}
}

// NewInvalidInputError 输入校验失败
func NewInvalidInputError(op, detail string) error {
	return &ScoreError{Op: op, BaseErr: ErrInvalidInput, Detail: detail}
}

// NewExtractionErrorWithCause 文本抽取失败并保留底层原因 (例如 PDF 无法解析)
func NewExtractionErrorWithCause(op string, cause error) error {
	return &ScoreError{Op: op, BaseErr: ErrExtraction, Cause: cause}
}
