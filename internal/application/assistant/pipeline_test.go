package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ali-assistant-api/internal/application/ingest"
	"ali-assistant-api/internal/application/webretrieval"
	"ali-assistant-api/internal/domain/document"
	"ali-assistant-api/internal/infrastructure/websearch"
	pkgerrors "ali-assistant-api/pkg/errors"
)

// fakeGenerator 按调用顺序返回预置响应，并记录收到的提示词
type fakeGenerator struct {
	responses []string
	errs      []error
	prompts   []string
	calls     int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	i := g.calls
	g.calls++
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	var resp string
	if i < len(g.responses) {
		resp = g.responses[i]
	}
	return resp, err
}

type fakeSearcher struct {
	chunks    []document.Chunk
	err       error
	lastQuery string
	lastTopK  int
	calls     int
}

func (s *fakeSearcher) Search(ctx context.Context, query string, topK int) ([]document.Chunk, error) {
	s.calls++
	s.lastQuery = query
	s.lastTopK = topK
	return s.chunks, s.err
}

type fakeWebRetriever struct {
	chunks []document.Chunk
	calls  int
}

func (w *fakeWebRetriever) Retrieve(ctx context.Context, query string) []document.Chunk {
	w.calls++
	return w.chunks
}

func chunkOf(text string) document.Chunk {
	return document.NewChunk(text, map[string]string{document.MetaSource: "test"})
}

func TestPipelineRun(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"frellectra ai founder", "  Ali is the CTO.  "}}
	searcher := &fakeSearcher{chunks: []document.Chunk{chunkOf("vector context")}}
	web := &fakeWebRetriever{chunks: []document.Chunk{chunkOf("web context")}}

	p := NewPipeline(gen, searcher, web, 50, 0)
	answer, err := p.Run(context.Background(), "who founded frellectra?", true)
	require.NoError(t, err)

	assert.Equal(t, "Ali is the CTO.", answer)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, 1, web.calls)

	// 改写结果用于检索
	assert.Equal(t, "frellectra ai founder", searcher.lastQuery)
	assert.Equal(t, 50, searcher.lastTopK)

	// 回答提示词包含向量与联网上下文，向量在前
	require.Len(t, gen.prompts, 2)
	answerPrompt := gen.prompts[1]
	assert.Contains(t, answerPrompt, "vector context")
	assert.Contains(t, answerPrompt, "web context")
	assert.Less(t, strings.Index(answerPrompt, "vector context"), strings.Index(answerPrompt, "web context"))
	// 原始问题而非改写后的查询出现在回答提示词中
	assert.Contains(t, answerPrompt, "who founded frellectra?")
}

func TestPipelineRunWebDisabled(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"query", "answer"}}
	searcher := &fakeSearcher{chunks: []document.Chunk{chunkOf("vector context")}}
	web := &fakeWebRetriever{chunks: []document.Chunk{chunkOf("web context")}}

	p := NewPipeline(gen, searcher, web, 0, 0)
	answer, err := p.Run(context.Background(), "hello", false)
	require.NoError(t, err)

	assert.Equal(t, "answer", answer)
	assert.Equal(t, 0, web.calls)
	assert.NotContains(t, gen.prompts[1], "web context")
}

func TestPipelineRunEmptyQuestion(t *testing.T) {
	p := NewPipeline(&fakeGenerator{}, &fakeSearcher{}, nil, 0, 0)

	_, err := p.Run(context.Background(), "   ", true)
	require.Error(t, err)

	require.True(t, pkgerrors.IsAppError(err))
	appErr := pkgerrors.AsAppError(err)
	assert.Equal(t, pkgerrors.CodeInvalidParam, appErr.Code)
}

func TestPipelineRunEmptyRewriteFallsBack(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"   ", "answer"}}
	searcher := &fakeSearcher{}

	p := NewPipeline(gen, searcher, nil, 0, 0)
	_, err := p.Run(context.Background(), "original question", false)
	require.NoError(t, err)

	assert.Equal(t, "original question", searcher.lastQuery)
}

func TestPipelineRunGeneratorFailure(t *testing.T) {
	genErr := pkgerrors.New(pkgerrors.CodeLLMCallFailed, "llm call failed")
	gen := &fakeGenerator{errs: []error{genErr}}

	p := NewPipeline(gen, &fakeSearcher{}, nil, 0, 0)
	_, err := p.Run(context.Background(), "question", false)
	require.Error(t, err)

	require.True(t, pkgerrors.IsAppError(err))
	appErr := pkgerrors.AsAppError(err)
	assert.Equal(t, pkgerrors.CodeLLMCallFailed, appErr.Code)
}

func TestPipelineRunSearcherFailurePropagates(t *testing.T) {
	searchErr := pkgerrors.New(pkgerrors.CodeEmbeddingFailed, "failed to embed query")
	gen := &fakeGenerator{responses: []string{"query"}}
	searcher := &fakeSearcher{err: searchErr}

	p := NewPipeline(gen, searcher, nil, 0, 0)
	_, err := p.Run(context.Background(), "question", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, searchErr))
}

func TestPipelineRunNilWebRetrieverTolerated(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"query", "answer"}}

	p := NewPipeline(gen, &fakeSearcher{}, nil, 0, 0)
	answer, err := p.Run(context.Background(), "question", true)
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)
}

type failingWebSearcher struct{}

func (failingWebSearcher) Search(ctx context.Context, query string) ([]websearch.Result, error) {
	return nil, errors.New("search api unavailable")
}

func TestPipelineRunWebSearchFailureDegradesToVectorOnly(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"query", "vector-only answer"}}
	searcher := &fakeSearcher{chunks: []document.Chunk{chunkOf("vector context")}}
	web := webretrieval.NewRetriever(failingWebSearcher{}, nil, ingest.NewSplitter(1000, 200), webretrieval.Options{})

	p := NewPipeline(gen, searcher, web, 0, 0)
	answer, err := p.Run(context.Background(), "question", true)
	require.NoError(t, err)

	// 实时搜索故障被吸收，回答只基于向量上下文
	assert.Equal(t, "vector-only answer", answer)
	assert.Contains(t, gen.prompts[1], "vector context")
}

func TestPipelineRunMaxContextChunks(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"query", "answer"}}
	searcher := &fakeSearcher{chunks: []document.Chunk{chunkOf("block alpha"), chunkOf("block bravo"), chunkOf("block charlie")}}
	web := &fakeWebRetriever{chunks: []document.Chunk{chunkOf("block delta")}}

	p := NewPipeline(gen, searcher, web, 0, 2)
	_, err := p.Run(context.Background(), "question", true)
	require.NoError(t, err)

	answerPrompt := gen.prompts[1]
	assert.Contains(t, answerPrompt, "block alpha")
	assert.Contains(t, answerPrompt, "block bravo")
	assert.NotContains(t, answerPrompt, "block charlie")
	assert.NotContains(t, answerPrompt, "block delta")
}

func TestFuse(t *testing.T) {
	vector := []document.Chunk{chunkOf("v1"), chunkOf("v2")}
	web := []document.Chunk{chunkOf("w1")}

	fused := Fuse(vector, web)
	require.Len(t, fused, 3)
	assert.Equal(t, "v1", fused[0].Content)
	assert.Equal(t, "v2", fused[1].Content)
	assert.Equal(t, "w1", fused[2].Content)

	// 任意一侧为空时，结果即另一侧原样
	onlyWeb := Fuse(nil, web)
	require.Len(t, onlyWeb, 1)
	assert.Equal(t, "w1", onlyWeb[0].Content)

	onlyVector := Fuse(vector, nil)
	require.Len(t, onlyVector, 2)
	assert.Equal(t, "v1", onlyVector[0].Content)
	assert.Equal(t, "v2", onlyVector[1].Content)

	assert.Empty(t, Fuse(nil, nil))
}
