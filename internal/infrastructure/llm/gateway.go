package llm

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	pkgerrors "ali-assistant-api/pkg/errors"
	"ali-assistant-api/pkg/metrics"
)

// Gateway 面向应用层的文本生成网关：单提示词进、纯文本出
type Gateway struct {
	factory  *EinoFactory
	provider string
}

// NewGateway 创建生成网关，provider 为空时使用默认提供商
func NewGateway(factory *EinoFactory, provider string) *Gateway {
	return &Gateway{factory: factory, provider: provider}
}

// Generate 调用大模型生成回答文本，失败返回带码错误
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.factory == nil {
		return "", pkgerrors.New(pkgerrors.CodeLLMProviderError, "llm factory not configured")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", pkgerrors.New(pkgerrors.CodeInvalidParam, "prompt is required")
	}

	chatModel, err := g.factory.Get(ctx, g.provider)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CodeLLMProviderError, "failed to get chat model")
	}

	provider := g.provider
	if provider == "" {
		provider = g.factory.config.DefaultProvider
	}
	modelName := g.factory.ModelName(g.provider)

	start := time.Now()
	msg, err := chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	metrics.LLMCallDuration.WithLabelValues(provider, modelName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(provider, modelName, "error").Inc()
		return "", pkgerrors.Wrap(err, pkgerrors.CodeLLMCallFailed, "llm generation failed")
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		metrics.LLMCallTotal.WithLabelValues(provider, modelName, "error").Inc()
		return "", pkgerrors.New(pkgerrors.CodeLLMCallFailed, "empty llm response")
	}

	metrics.LLMCallTotal.WithLabelValues(provider, modelName, "ok").Inc()
	return msg.Content, nil
}
