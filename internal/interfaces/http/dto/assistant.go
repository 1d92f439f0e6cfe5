// Package dto 定义 HTTP 请求和响应的数据传输对象
package dto

// AskRequest 问答请求
type AskRequest struct {
	Question  string `json:"question" binding:"required"` // 用户问题
	WebSearch *bool  `json:"web_search,omitempty"`        // 是否启用联网检索，缺省时走服务端默认
}

// AskResponse 问答响应
type AskResponse struct {
	Answer string `json:"answer"`
}

// TranscriptionResponse 语音转写响应
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// SpeechRequest 语音合成请求
type SpeechRequest struct {
	Text string `json:"text" binding:"required"`
}

// IngestResponse 文档摄取响应
type IngestResponse struct {
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
}

// IngestDirectoryResponse 目录摄取响应
type IngestDirectoryResponse struct {
	Files  int `json:"files"`
	Chunks int `json:"chunks"`
}

// SearchRequest 向量检索请求，用于调试召回质量
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchHit 检索命中
type SearchHit struct {
	Source  string `json:"source"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// SearchResponse 向量检索响应
type SearchResponse struct {
	Hits []SearchHit `json:"hits"`
}
