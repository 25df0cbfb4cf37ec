// Package report 把 ScoreResult 转换为展示用的结构
package report

import (
	"strconv"

	"ats-score-go/internal/constants"
	"ats-score-go/internal/types"
	"ats-score-go/pkg/utils"
)

// ScoreView 结果页和 JSON 接口共用的展示数据
type ScoreView struct {
	Score             float64  `json:"match_score"`
	ScoreText         string   `json:"score_text"`
	MatchedSkills     []string `json:"matched_skills"`
	MissingSkills     []string `json:"missing_skills"`
	MatchedSkillsText string   `json:"matched_skills_text"`
	MissingSkillsText string   `json:"missing_skills_text"`
	ResumePreview     string   `json:"resume_preview"`
	PreviewTruncated  bool     `json:"preview_truncated"`
	Strategy          string   `json:"strategy"`
}

// BuildView 生成展示数据
// 预览取规范化简历的前 ResumePreviewLength 个字符, 截断时追加省略号
func BuildView(result *types.ScoreResult) ScoreView {
	if result == nil {
		return ScoreView{
			ScoreText:         FormatScore(0),
			MatchedSkills:     []string{},
			MissingSkills:     []string{},
			MatchedSkillsText: constants.NoMatchedSkillsMessage,
			MissingSkillsText: constants.NoMissingSkillsMessage,
		}
	}

	preview, truncated := utils.TruncateRunes(result.NormalizedResumeText, constants.ResumePreviewLength)
	if truncated {
		preview += constants.PreviewEllipsis
	}

	return ScoreView{
		Score:             result.MatchScore,
		ScoreText:         FormatScore(result.MatchScore),
		MatchedSkills:     nonNil(result.MatchedSkills),
		MissingSkills:     nonNil(result.MissingSkills),
		MatchedSkillsText: utils.JoinOr(result.MatchedSkills, constants.NoMatchedSkillsMessage),
		MissingSkillsText: utils.JoinOr(result.MissingSkills, constants.NoMissingSkillsMessage),
		ResumePreview:     preview,
		PreviewTruncated:  truncated,
		Strategy:          result.Strategy,
	}
}

// FormatScore 把分数格式化为百分比文本, 例如 73.46%
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64) + "%"
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
