package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 嵌入模型提供方
const (
	EmbeddingProviderAliyun  = "aliyun"  // OpenAI 兼容的 /embeddings 接口 (DashScope 或自建服务)
	EmbeddingProviderHashing = "hashing" // 本地特征哈希，离线可用
)

const (
	defaultHashingModel      = "hashing-v1"
	defaultHashingDimensions = 384
)

// PDF 解析器
const (
	PDFProviderEino = "eino" // 进程内解析
	PDFProviderTika = "tika" // Apache Tika 服务
)

// 技能抽取策略
const (
	SkillStrategyKeyword = "keyword"
	SkillStrategyEntity  = "entity"
)

// Config 应用程序配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Skills    SkillsConfig    `yaml:"skills"`
	PDF       PDFConfig       `yaml:"pdf"`
	Redis     RedisConfig     `yaml:"redis"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Logger    LoggerConfig    `yaml:"logger"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address     string `yaml:"address"`       // 例如 ":8080" or "0.0.0.0:8080"
	MaxUploadMB int    `yaml:"max_upload_mb"` // 上传请求体上限(MB)
}

// EmbeddingConfig 句向量模型配置
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"` // aliyun | hashing
	APIKey         string `yaml:"api_key,omitempty"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	Dimensions     int    `yaml:"dimensions"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	QPM            int    `yaml:"qpm"`             // 每分钟请求数限制, 0 表示不限
	CacheTTLHours  int    `yaml:"cache_ttl_hours"` // 向量缓存过期时间(小时)
}

// SkillsConfig 技能抽取配置
type SkillsConfig struct {
	Strategy     string   `yaml:"strategy"`       // keyword | entity
	EntityLabels []string `yaml:"entity_labels"`  // entity 策略保留的实体标签
	NERModelPath string   `yaml:"ner_model_path"` // 为空时使用 prose 内置模型
}

// PDFConfig PDF 解析配置
type PDFConfig struct {
	Provider       string `yaml:"provider"` // eino | tika
	TikaURL        string `yaml:"tika_url"` // 例如 "http://localhost:9998"
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RedisConfig holds configuration for Redis
// Address 为空时不启用向量缓存
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
}

// TracingConfig OpenTelemetry 链路追踪配置
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // OTLP gRPC 地址, 例如 "localhost:4317"
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// LoadConfig 从文件加载配置, 应用环境变量覆盖和默认值
// configPath 为空时返回默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		config := DefaultConfig()
		applyEnvOverrides(config)
		return config, nil
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		config.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		config.Embedding.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		config.Embedding.Model = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		config.Redis.Address = v
	}
	if v := os.Getenv("TIKA_URL"); v != "" {
		config.PDF.TikaURL = v
	}
}

// applyDefaults 只填充零值字段
func applyDefaults(config *Config) {
	def := DefaultConfig()

	if config.Server.Address == "" {
		config.Server.Address = def.Server.Address
	}
	if config.Server.MaxUploadMB <= 0 {
		config.Server.MaxUploadMB = def.Server.MaxUploadMB
	}

	if config.Embedding.Provider == "" {
		config.Embedding.Provider = def.Embedding.Provider
	}
	config.Embedding.Provider = strings.ToLower(config.Embedding.Provider)
	if config.Embedding.Provider == EmbeddingProviderHashing {
		if config.Embedding.Model == "" {
			config.Embedding.Model = defaultHashingModel
		}
		if config.Embedding.Dimensions == 0 {
			config.Embedding.Dimensions = defaultHashingDimensions
		}
	} else {
		if config.Embedding.Model == "" {
			config.Embedding.Model = def.Embedding.Model
		}
		if config.Embedding.Dimensions == 0 {
			config.Embedding.Dimensions = def.Embedding.Dimensions
		}
		if config.Embedding.BaseURL == "" {
			config.Embedding.BaseURL = def.Embedding.BaseURL
		}
	}
	if config.Embedding.TimeoutSeconds <= 0 {
		config.Embedding.TimeoutSeconds = def.Embedding.TimeoutSeconds
	}
	if config.Embedding.CacheTTLHours <= 0 {
		config.Embedding.CacheTTLHours = def.Embedding.CacheTTLHours
	}

	if config.Skills.Strategy == "" {
		config.Skills.Strategy = def.Skills.Strategy
	}
	config.Skills.Strategy = strings.ToLower(config.Skills.Strategy)
	if len(config.Skills.EntityLabels) == 0 {
		config.Skills.EntityLabels = def.Skills.EntityLabels
	}

	if config.PDF.Provider == "" {
		config.PDF.Provider = def.PDF.Provider
	}
	config.PDF.Provider = strings.ToLower(config.PDF.Provider)
	if config.PDF.TimeoutSeconds <= 0 {
		config.PDF.TimeoutSeconds = def.PDF.TimeoutSeconds
	}

	if config.Redis.PoolSize <= 0 {
		config.Redis.PoolSize = def.Redis.PoolSize
	}
	if config.Redis.DialTimeoutSeconds <= 0 {
		config.Redis.DialTimeoutSeconds = def.Redis.DialTimeoutSeconds
	}
	if config.Redis.ReadTimeoutSeconds <= 0 {
		config.Redis.ReadTimeoutSeconds = def.Redis.ReadTimeoutSeconds
	}
	if config.Redis.WriteTimeoutSeconds <= 0 {
		config.Redis.WriteTimeoutSeconds = def.Redis.WriteTimeoutSeconds
	}

	if config.Tracing.ServiceName == "" {
		config.Tracing.ServiceName = def.Tracing.ServiceName
	}
	if config.Tracing.SampleRatio <= 0 {
		config.Tracing.SampleRatio = def.Tracing.SampleRatio
	}

	if config.Logger.Level == "" {
		config.Logger.Level = def.Logger.Level
	}
	if config.Logger.Format == "" {
		config.Logger.Format = def.Logger.Format
	}
}

// Validate 检查枚举类字段
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case EmbeddingProviderAliyun, EmbeddingProviderHashing:
	default:
		return fmt.Errorf("不支持的 embedding.provider: %q", c.Embedding.Provider)
	}
	switch c.Skills.Strategy {
	case SkillStrategyKeyword, SkillStrategyEntity:
	default:
		return fmt.Errorf("不支持的 skills.strategy: %q", c.Skills.Strategy)
	}
	switch c.PDF.Provider {
	case PDFProviderEino:
	case PDFProviderTika:
		if c.PDF.TikaURL == "" {
			return fmt.Errorf("pdf.provider 为 tika 时必须配置 pdf.tika_url")
		}
	default:
		return fmt.Errorf("不支持的 pdf.provider: %q", c.PDF.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions 必须为正数, 当前为 %d", c.Embedding.Dimensions)
	}
	return nil
}

// DefaultConfig 返回默认配置
// 句向量使用 OpenAI 兼容接口, 未配置 api_key 时服务启动失败
func DefaultConfig() *Config {
	config := &Config{}

	config.Server.Address = ":8080"
	config.Server.MaxUploadMB = 10

	config.Embedding.Provider = EmbeddingProviderAliyun
	config.Embedding.Model = "text-embedding-v3"
	config.Embedding.Dimensions = 1024
	config.Embedding.BaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/embeddings"
	config.Embedding.TimeoutSeconds = 30
	config.Embedding.CacheTTLHours = 24

	config.Skills.Strategy = SkillStrategyKeyword
	config.Skills.EntityLabels = []string{"ORG", "PRODUCT", "GPE", "WORK_OF_ART", "LANGUAGE"}

	config.PDF.Provider = PDFProviderEino
	config.PDF.TimeoutSeconds = 30

	config.Redis.PoolSize = 10
	config.Redis.MinIdleConns = 2
	config.Redis.DialTimeoutSeconds = 5
	config.Redis.ReadTimeoutSeconds = 3
	config.Redis.WriteTimeoutSeconds = 3

	config.Tracing.ServiceName = "ats-score-go"
	config.Tracing.SampleRatio = 1.0
	config.Tracing.Insecure = true

	config.Logger.Level = "info"
	config.Logger.Format = "pretty"
	config.Logger.TimeFormat = "2006-01-02 15:04:05"

	return config
}

// OfflineConfig 返回无需外部服务即可运行的配置, 句向量改用本地特征哈希
// 仅用于测试和离线 CLI, 得分是词面相似度而非语义相似度
func OfflineConfig() *Config {
	config := DefaultConfig()
	config.UseOfflineEmbedding()
	return config
}

// UseOfflineEmbedding 切换到本地特征哈希向量
func (c *Config) UseOfflineEmbedding() {
	c.Embedding.Provider = EmbeddingProviderHashing
	c.Embedding.Model = defaultHashingModel
	c.Embedding.Dimensions = defaultHashingDimensions
	c.Embedding.APIKey = ""
	c.Embedding.BaseURL = ""
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// EmbeddingTimeout 返回嵌入请求超时
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSeconds) * time.Second
}

// EmbeddingCacheTTL 返回向量缓存过期时间
func (c *Config) EmbeddingCacheTTL() time.Duration {
	return time.Duration(c.Embedding.CacheTTLHours) * time.Hour
}

// PDFTimeout 返回 PDF 解析超时
func (c *Config) PDFTimeout() time.Duration {
	return time.Duration(c.PDF.TimeoutSeconds) * time.Second
}

// MaxUploadBytes 返回请求体上限(字节)
func (c *Config) MaxUploadBytes() int {
	return c.Server.MaxUploadMB * 1024 * 1024
}
