package handler

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"ali-assistant-api/internal/interfaces/http/dto"
	pkgerrors "ali-assistant-api/pkg/errors"
	"ali-assistant-api/pkg/metrics"
)

// Asker 问答服务接口
type Asker interface {
	Run(ctx context.Context, question string, webSearchEnabled bool) (string, error)
}

// AssistantHandler 助手问答处理器
type AssistantHandler struct {
	asker            Asker
	synthesizer      Synthesizer
	webSearchDefault bool
}

// NewAssistantHandler 创建助手问答处理器
func NewAssistantHandler(asker Asker, synthesizer Synthesizer, webSearchDefault bool) *AssistantHandler {
	return &AssistantHandler{
		asker:            asker,
		synthesizer:      synthesizer,
		webSearchDefault: webSearchDefault,
	}
}

// Ask 处理文本问答
// POST /v1/assistant/ask
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "invalid request body").WithError(err))
		return
	}

	webSearch := h.webSearchDefault
	if req.WebSearch != nil {
		webSearch = *req.WebSearch
	}

	answer, err := h.asker.Run(c.Request.Context(), req.Question, webSearch)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, dto.AskResponse{Answer: answer})
}

// AskVoice 处理语音回复问答：输入与 Ask 相同，回答以合成语音返回
// POST /v1/assistant/ask-voice
func (h *AssistantHandler) AskVoice(c *gin.Context) {
	if h.synthesizer == nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeServiceUnavailable, "voice service not configured"))
		return
	}

	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "invalid request body").WithError(err))
		return
	}

	webSearch := h.webSearchDefault
	if req.WebSearch != nil {
		webSearch = *req.WebSearch
	}

	ctx := c.Request.Context()

	answer, err := h.asker.Run(ctx, req.Question, webSearch)
	if err != nil {
		metrics.VoiceRequestsTotal.WithLabelValues("ask_voice", "error").Inc()
		respondError(c, err)
		return
	}

	audio, err := h.synthesizer.Synthesize(ctx, answer)
	if err != nil {
		metrics.VoiceRequestsTotal.WithLabelValues("ask_voice", "error").Inc()
		respondError(c, err)
		return
	}

	metrics.VoiceRequestsTotal.WithLabelValues("ask_voice", "ok").Inc()

	// 回答文本通过响应头带回，便于客户端同时展示文字
	c.Header("X-Answer-Text", headerSafe(answer))
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// headerSafe 清理换行并截断，保证文本能放进响应头。
// 截断点落在 rune 边界上，避免切出非法的 UTF-8 序列。
func headerSafe(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	const maxLen = 1024
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
