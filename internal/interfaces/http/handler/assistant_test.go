package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ali-assistant-api/internal/interfaces/http/dto"
	pkgerrors "ali-assistant-api/pkg/errors"
)

type fakeAsker struct {
	answer  string
	err     error
	lastQ   string
	lastWeb bool
	calls   int
}

func (a *fakeAsker) Run(ctx context.Context, question string, webSearchEnabled bool) (string, error) {
	a.calls++
	a.lastQ = question
	a.lastWeb = webSearchEnabled
	return a.answer, a.err
}

type fakeSynthesizer struct {
	audio    []byte
	err      error
	lastText string
}

func (s *fakeSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.lastText = text
	return s.audio, s.err
}

func newAskRouter(h *AssistantHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/v1/assistant/ask", h.Ask)
	r.POST("/v1/assistant/ask-voice", h.AskVoice)
	return r
}

func doAsk(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/assistant/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAsk(t *testing.T) {
	asker := &fakeAsker{answer: "Ali is the CTO of Frellectra AI."}
	r := newAskRouter(NewAssistantHandler(asker, nil, true))

	w := doAsk(t, r, `{"question":"who is ali?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.AskResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "Ali is the CTO of Frellectra AI.", resp.Data.Answer)

	assert.Equal(t, "who is ali?", asker.lastQ)
	// 未指定 web_search 时使用服务端默认
	assert.True(t, asker.lastWeb)
}

func TestAskWebSearchOverride(t *testing.T) {
	asker := &fakeAsker{answer: "answer"}
	r := newAskRouter(NewAssistantHandler(asker, nil, true))

	w := doAsk(t, r, `{"question":"hello","web_search":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, asker.lastWeb)
}

func TestAskMissingQuestion(t *testing.T) {
	asker := &fakeAsker{}
	r := newAskRouter(NewAssistantHandler(asker, nil, true))

	w := doAsk(t, r, `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, asker.calls)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(pkgerrors.CodeInvalidParam), resp.Error.ErrorCode)
}

func TestAskPipelineError(t *testing.T) {
	asker := &fakeAsker{err: pkgerrors.New(pkgerrors.CodeLLMCallFailed, "llm call failed")}
	r := newAskRouter(NewAssistantHandler(asker, nil, true))

	w := doAsk(t, r, `{"question":"hello"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "llm call failed", resp.Message)
}

func doAskVoice(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/assistant/ask-voice", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAskVoice(t *testing.T) {
	asker := &fakeAsker{answer: "Ali is the CTO of Frellectra AI."}
	synth := &fakeSynthesizer{audio: []byte("mp3-bytes")}
	r := newAskRouter(NewAssistantHandler(asker, synth, true))

	// 输入与 /assistant/ask 相同：JSON 问题体，回答以语音返回
	w := doAskVoice(t, r, `{"question":"who is ali?","web_search":false}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "mp3-bytes", w.Body.String())
	assert.Equal(t, "Ali is the CTO of Frellectra AI.", w.Header().Get("X-Answer-Text"))

	assert.Equal(t, "who is ali?", asker.lastQ)
	assert.False(t, asker.lastWeb)
	assert.Equal(t, "Ali is the CTO of Frellectra AI.", synth.lastText)
}

func TestAskVoiceMissingQuestion(t *testing.T) {
	asker := &fakeAsker{}
	r := newAskRouter(NewAssistantHandler(asker, &fakeSynthesizer{}, true))

	w := doAskVoice(t, r, `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, asker.calls)
}

func TestAskVoiceNotConfigured(t *testing.T) {
	r := newAskRouter(NewAssistantHandler(&fakeAsker{}, nil, true))

	w := doAskVoice(t, r, `{"question":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHeaderSafe(t *testing.T) {
	assert.Equal(t, "line one line two", headerSafe("line one\nline two"))
	assert.Equal(t, "a b", headerSafe("a\r\nb"))

	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, headerSafe(string(long)), 1024)

	// 截断不会切开多字节字符
	multibyte := strings.Repeat("答", 600)
	got := headerSafe(multibyte)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 1024)
	assert.NotEmpty(t, got)
}
