// Package voice 提供语音转写与合成客户端（OpenAI 兼容接口）
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"ali-assistant-api/internal/config"
	pkgerrors "ali-assistant-api/pkg/errors"
	"ali-assistant-api/pkg/metrics"
)

type Client struct {
	endpoint        string
	apiKey          string
	transcribeModel string
	speechModel     string
	voice           string
	httpClient      *http.Client
}

func NewClient(cfg *config.VoiceConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:        strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:          cfg.APIKey,
		transcribeModel: cfg.TranscribeModel,
		speechModel:     cfg.SpeechModel,
		voice:           cfg.Voice,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type transcribeResponse struct {
	Text string `json:"text"`
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Transcribe 将音频转写为文本
func (c *Client) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeInvalidParam, "audio payload is empty")
	}
	if c.apiKey == "" {
		return "", pkgerrors.New(pkgerrors.CodeAudioFailed, "voice api key is not configured")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "failed to build multipart form")
	}
	if _, err := part.Write(audio); err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "failed to write audio payload")
	}
	if err := mw.WriteField("model", c.transcribeModel); err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "failed to write model field")
	}
	if err := mw.Close(); err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "failed to finalize multipart form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/audio/transcriptions", &buf)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "failed to create transcription request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.VoiceRequestsTotal.WithLabelValues("transcribe", "error").Inc()
		return "", pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "transcription request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.VoiceRequestsTotal.WithLabelValues("transcribe", "error").Inc()
		return "", pkgerrors.New(pkgerrors.CodeAudioFailed,
			fmt.Sprintf("transcription request failed: status=%d", resp.StatusCode))
	}

	var out transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.VoiceRequestsTotal.WithLabelValues("transcribe", "error").Inc()
		return "", pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "failed to decode transcription response")
	}

	metrics.VoiceRequestsTotal.WithLabelValues("transcribe", "ok").Inc()
	return strings.TrimSpace(out.Text), nil
}

// Synthesize 将文本合成为 MP3 音频
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, "text is required")
	}
	if c.apiKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeAudioFailed, "voice api key is not configured")
	}

	reqBody, err := json.Marshal(&speechRequest{
		Model:          c.speechModel,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "failed to marshal speech request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/audio/speech", bytes.NewReader(reqBody))
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "failed to create speech request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.VoiceRequestsTotal.WithLabelValues("synthesize", "error").Inc()
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "speech request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.VoiceRequestsTotal.WithLabelValues("synthesize", "error").Inc()
		return nil, pkgerrors.New(pkgerrors.CodeAudioFailed,
			fmt.Sprintf("speech request failed: status=%d", resp.StatusCode))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.VoiceRequestsTotal.WithLabelValues("synthesize", "error").Inc()
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeAudioFailed, "failed to read audio response")
	}

	metrics.VoiceRequestsTotal.WithLabelValues("synthesize", "ok").Inc()
	return audio, nil
}
