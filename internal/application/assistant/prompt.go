package assistant

import (
	"fmt"
	"strings"

	"ali-assistant-api/internal/domain/document"
)

const personaPreamble = `You are the personal AI assistant of Ali Haider, ` +
	`a 17-year-old co-founder and CTO of Frellectra AI. ` +
	`You answer questions about Ali, his work and his company on his behalf.`

// BuildRewritePrompt 构造查询改写提示词：把口语问题改写为适合检索的查询
func BuildRewritePrompt(question string) string {
	return fmt.Sprintf(`Rewrite the following question into a short, self-contained search query. Keep names and key terms. Return only the query, nothing else.

Question: %s`, question)
}

// BuildAnswerPrompt 构造回答提示词：人设 + 上下文块（按融合顺序、空行分隔）+ 原始问题
func BuildAnswerPrompt(question string, chunks []document.Chunk) string {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		text := strings.TrimSpace(c.Content)
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	contextBlock := strings.Join(texts, "\n\n")
	if contextBlock == "" {
		contextBlock = "(no context available)"
	}

	return fmt.Sprintf(`%s

Use the context below to answer the question. Prefer information from the context. If the context does not contain the answer, say you are not sure instead of guessing. Keep the answer concise.

Context:
%s

Question: %s`, personaPreamble, contextBlock, question)
}
