package constants

// SkillVocabulary 关键词策略使用的静态技能词表 (小写, 子串匹配)
var SkillVocabulary = []string{
	"python", "java", "c++", "sql", "excel", "power bi", "tableau",
	"machine learning", "deep learning", "nlp", "data analysis",
	"data visualization", "communication", "problem solving", "teamwork",
	"leadership", "project management", "aws", "azure", "git", "docker",
	"kubernetes", "linux", "html", "css", "javascript",
}

const (
	// ResumePreviewLength 结果页简历预览的最大字符数
	ResumePreviewLength = 2000
	// PreviewEllipsis 预览被截断时追加的标记
	PreviewEllipsis = "..."

	// NoMatchedSkillsMessage 无匹配技能时的提示
	NoMatchedSkillsMessage = "No matched skills found."
	// NoMissingSkillsMessage 无缺失技能时的提示
	NoMissingSkillsMessage = "No missing skills detected."

	// WarmupProbeText 启动时用于验证模型可用的探测文本
	WarmupProbeText = "Experienced Python developer at Google working with Docker and AWS."

	// PDFMagic PDF 文件头
	PDFMagic = "%PDF-"

	// RequestIDHeader 请求 ID 头
	RequestIDHeader = "X-Request-ID"
)
