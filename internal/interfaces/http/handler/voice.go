package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"ali-assistant-api/internal/interfaces/http/dto"
	pkgerrors "ali-assistant-api/pkg/errors"
)

// Transcriber 语音转写接口
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}

// Synthesizer 语音合成接口
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// VoiceHandler 语音处理器
type VoiceHandler struct {
	transcriber Transcriber
	synthesizer Synthesizer
}

// NewVoiceHandler 创建语音处理器
func NewVoiceHandler(transcriber Transcriber, synthesizer Synthesizer) *VoiceHandler {
	return &VoiceHandler{
		transcriber: transcriber,
		synthesizer: synthesizer,
	}
}

// Transcribe 语音转文字
// POST /v1/voice/transcriptions
func (h *VoiceHandler) Transcribe(c *gin.Context) {
	if h.transcriber == nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeServiceUnavailable, "voice service not configured"))
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "audio file is required").WithError(err))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "failed to open audio file").WithError(err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "failed to read audio file").WithError(err))
		return
	}

	text, err := h.transcriber.Transcribe(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Success(c, dto.TranscriptionResponse{Text: text})
}

// Speak 文字转语音
// POST /v1/voice/speech
func (h *VoiceHandler) Speak(c *gin.Context) {
	if h.synthesizer == nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeServiceUnavailable, "voice service not configured"))
		return
	}

	var req dto.SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "invalid request body").WithError(err))
		return
	}

	audio, err := h.synthesizer.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}
