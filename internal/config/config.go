// Package config 提供配置加载和管理功能
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Vector        VectorConfig        `yaml:"vector" mapstructure:"vector"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Embedding     EmbeddingConfig     `yaml:"embedding" mapstructure:"embedding"`
	Assistant     AssistantConfig     `yaml:"assistant" mapstructure:"assistant"`
	Ingest        IngestConfig        `yaml:"ingest" mapstructure:"ingest"`
	WebSearch     WebSearchConfig     `yaml:"web_search" mapstructure:"web_search"`
	Voice         VoiceConfig         `yaml:"voice" mapstructure:"voice"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// VectorConfig 向量数据库配置
type VectorConfig struct {
	Milvus MilvusConfig `yaml:"milvus" mapstructure:"milvus"`
}

// MilvusConfig Milvus 配置
type MilvusConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	CollectionPrefix   string `yaml:"collection_prefix" mapstructure:"collection_prefix"`
	IndexType          string `yaml:"index_type" mapstructure:"index_type"`
	MetricType         string `yaml:"metric_type" mapstructure:"metric_type"`
	HNSWM              int    `yaml:"hnsw_m" mapstructure:"hnsw_m"`
	HNSWEfConstruction int    `yaml:"hnsw_ef_construction" mapstructure:"hnsw_ef_construction"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider" mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// EmbeddingConfig Embedding 配置
type EmbeddingConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	Dimension int    `yaml:"dimension" mapstructure:"dimension"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
}

// AssistantConfig 问答流水线配置
type AssistantConfig struct {
	// TopK 向量检索召回数量
	TopK int `yaml:"top_k" mapstructure:"top_k"`
	// MaxContextChunks 融合上下文的分块上限，0 表示不限制
	MaxContextChunks int `yaml:"max_context_chunks" mapstructure:"max_context_chunks"`
	// WebSearchDefault 请求未指定时是否启用联网检索
	WebSearchDefault bool `yaml:"web_search_default" mapstructure:"web_search_default"`
}

// IngestConfig 文档摄取配置
type IngestConfig struct {
	ChunkSize    int    `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	DataDir      string `yaml:"data_dir" mapstructure:"data_dir"`
	// MaxUploadBytes 上传文件大小上限
	MaxUploadBytes int64 `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// WebSearchConfig 联网检索配置
type WebSearchConfig struct {
	Tavily TavilyConfig `yaml:"tavily" mapstructure:"tavily"`
	// TriggerKeywords 命中后直接返回固定结果集的关键词（大小写不敏感的子串匹配）
	TriggerKeywords []string `yaml:"trigger_keywords" mapstructure:"trigger_keywords"`
	// Overrides 关键词命中时返回的固定结果集
	Overrides []OverrideResultConfig `yaml:"overrides" mapstructure:"overrides"`
	// Snapshots 按序匹配的（域名片段 -> 本地快照文件）表，先命中者生效
	Snapshots []SnapshotRuleConfig `yaml:"snapshots" mapstructure:"snapshots"`
	// FetchTimeout 单个页面抓取超时
	FetchTimeout time.Duration `yaml:"fetch_timeout" mapstructure:"fetch_timeout"`
	// FetchConcurrency 并发抓取上限
	FetchConcurrency int `yaml:"fetch_concurrency" mapstructure:"fetch_concurrency"`
}

// TavilyConfig Tavily 搜索 API 配置
type TavilyConfig struct {
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	MaxResults int           `yaml:"max_results" mapstructure:"max_results"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// OverrideResultConfig 固定检索结果
type OverrideResultConfig struct {
	Title   string `yaml:"title" mapstructure:"title"`
	URL     string `yaml:"url" mapstructure:"url"`
	Content string `yaml:"content" mapstructure:"content"`
}

// SnapshotRuleConfig 快照规则：URL 含 Pattern 时读取 File，不发起网络请求
type SnapshotRuleConfig struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	File    string `yaml:"file" mapstructure:"file"`
	// SourceURL 供 snapshot 命令抓取快照时使用
	SourceURL string `yaml:"source_url" mapstructure:"source_url"`
}

// VoiceConfig 语音服务配置（OpenAI 兼容接口）
type VoiceConfig struct {
	Endpoint        string        `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey          string        `yaml:"api_key" mapstructure:"api_key"`
	TranscribeModel string        `yaml:"transcribe_model" mapstructure:"transcribe_model"`
	SpeechModel     string        `yaml:"speech_model" mapstructure:"speech_model"`
	Voice           string        `yaml:"voice" mapstructure:"voice"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Exporter   string  `yaml:"exporter" mapstructure:"exporter"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int  `yaml:"burst" mapstructure:"burst"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}

// Validate 校验启动所必需的配置项，缺失即失败
func (c *Config) Validate() error {
	provider := strings.TrimSpace(c.LLM.DefaultProvider)
	if provider == "" {
		return fmt.Errorf("llm.default_provider is required")
	}
	pc, ok := c.LLM.Providers[provider]
	if !ok {
		return fmt.Errorf("llm.providers.%s is not configured", provider)
	}
	if strings.TrimSpace(pc.APIKey) == "" {
		return fmt.Errorf("llm.providers.%s.api_key is required", provider)
	}
	if strings.TrimSpace(c.Embedding.APIKey) == "" {
		return fmt.Errorf("embedding.api_key is required")
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap must be smaller than ingest.chunk_size")
	}
	return nil
}
