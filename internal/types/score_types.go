package types

import "sort"

// SkillSet 技能集合, 元素为小写技能名
type SkillSet map[string]struct{}

// NewSkillSet 由给定技能构造集合
func NewSkillSet(skills ...string) SkillSet {
	s := make(SkillSet, len(skills))
	for _, skill := range skills {
		s.Add(skill)
	}
	return s
}

// Add 加入一个技能, 空串忽略
func (s SkillSet) Add(skill string) {
	if skill == "" {
		return
	}
	s[skill] = struct{}{}
}

// Contains 判断技能是否在集合中
func (s SkillSet) Contains(skill string) bool {
	_, ok := s[skill]
	return ok
}

// Len 集合大小
func (s SkillSet) Len() int {
	return len(s)
}

// Intersect 返回 s ∩ other
func (s SkillSet) Intersect(other SkillSet) SkillSet {
	out := make(SkillSet)
	for skill := range s {
		if other.Contains(skill) {
			out[skill] = struct{}{}
		}
	}
	return out
}

// Difference 返回 s − other
func (s SkillSet) Difference(other SkillSet) SkillSet {
	out := make(SkillSet)
	for skill := range s {
		if !other.Contains(skill) {
			out[skill] = struct{}{}
		}
	}
	return out
}

// Sorted 返回按字典序排列的技能列表, 空集合返回空切片而非 nil
func (s SkillSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for skill := range s {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

// Entity 命名实体识别结果
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// ScoreResult 一次简历/JD 匹配的结果
type ScoreResult struct {
	// 匹配分数, 余弦相似度 ×100, 保留两位小数
	MatchScore float64 `json:"match_score"`
	// JD 技能中简历也具备的部分 (已排序)
	MatchedSkills []string `json:"matched_skills"`
	// JD 技能中简历缺失的部分 (已排序)
	MissingSkills []string `json:"missing_skills"`
	// 规范化后的简历文本
	NormalizedResumeText string `json:"normalized_resume_text"`

	ResumeSkills []string `json:"resume_skills"`
	JobSkills    []string `json:"job_skills"`
	Strategy     string   `json:"strategy"`
}
