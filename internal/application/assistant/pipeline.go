// Package assistant 实现问答流水线：查询改写、检索、上下文融合与回答生成
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ali-assistant-api/internal/domain/document"
	pkgerrors "ali-assistant-api/pkg/errors"
	"ali-assistant-api/pkg/logger"
	"ali-assistant-api/pkg/metrics"
)

// QueryContext 单次问答的请求态，贯穿各阶段
type QueryContext struct {
	Question         string
	Query            string
	VectorHits       []document.Chunk
	WebHits          []document.Chunk
	Fused            []document.Chunk
	Answer           string
	WebSearchEnabled bool
}

// Pipeline 问答流水线。
// 阶段机：transform_query -> retrieve_vector -> [retrieve_web] -> fuse_context -> generate_answer。
// 联网检索失败由下层吸收；嵌入与生成失败按错误上抛。
type Pipeline struct {
	generator Generator
	searcher  ContextSearcher
	web       WebRetriever

	topK             int
	maxContextChunks int
}

// NewPipeline 创建流水线；maxContextChunks 为 0 时不限制融合分块数
func NewPipeline(generator Generator, searcher ContextSearcher, web WebRetriever, topK, maxContextChunks int) *Pipeline {
	if topK <= 0 {
		topK = 100
	}
	return &Pipeline{
		generator:        generator,
		searcher:         searcher,
		web:              web,
		topK:             topK,
		maxContextChunks: maxContextChunks,
	}
}

// Run 执行一次完整问答，返回回答文本
func (p *Pipeline) Run(ctx context.Context, question string, webEnabled bool) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", pkgerrors.New(pkgerrors.CodeInvalidParam, "question is required")
	}
	if p == nil || p.generator == nil || p.searcher == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternalError, "pipeline is not configured")
	}

	qc := &QueryContext{
		Question:         question,
		WebSearchEnabled: webEnabled,
	}

	stage := StageTransformQuery
	for stage != StageDone {
		start := time.Now()
		next, err := p.step(ctx, stage, qc)
		metrics.PipelineStageDuration.WithLabelValues(stage.String()).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
			logger.Error(ctx, "pipeline stage failed", err, "stage", stage.String())
			return "", err
		}
		stage = next
	}

	metrics.PipelineRunsTotal.WithLabelValues("ok").Inc()
	return qc.Answer, nil
}

// step 执行单个阶段并返回下一阶段
func (p *Pipeline) step(ctx context.Context, stage Stage, qc *QueryContext) (Stage, error) {
	switch stage {
	case StageTransformQuery:
		return p.transformQuery(ctx, qc)
	case StageRetrieveVector:
		return p.retrieveVector(ctx, qc)
	case StageRetrieveWeb:
		return p.retrieveWeb(ctx, qc)
	case StageFuseContext:
		return p.fuseContext(ctx, qc)
	case StageGenerateAnswer:
		return p.generateAnswer(ctx, qc)
	default:
		return StageDone, fmt.Errorf("unexpected pipeline stage: %s", stage)
	}
}

func (p *Pipeline) transformQuery(ctx context.Context, qc *QueryContext) (Stage, error) {
	out, err := p.generator.Generate(ctx, BuildRewritePrompt(qc.Question))
	if err != nil {
		return StageDone, err
	}
	qc.Query = strings.TrimSpace(out)
	if qc.Query == "" {
		// 空改写没有检索意义，回退使用原始问题
		qc.Query = qc.Question
	}
	logger.Debug(ctx, "query transformed", "query", qc.Query)
	return StageRetrieveVector, nil
}

func (p *Pipeline) retrieveVector(ctx context.Context, qc *QueryContext) (Stage, error) {
	hits, err := p.searcher.Search(ctx, qc.Query, p.topK)
	if err != nil {
		return StageDone, err
	}
	qc.VectorHits = hits
	logger.Debug(ctx, "vector context retrieved", "hits", len(hits))

	if qc.WebSearchEnabled {
		return StageRetrieveWeb, nil
	}
	return StageFuseContext, nil
}

func (p *Pipeline) retrieveWeb(ctx context.Context, qc *QueryContext) (Stage, error) {
	if p.web != nil {
		qc.WebHits = p.web.Retrieve(ctx, qc.Query)
	}
	logger.Debug(ctx, "web context retrieved", "hits", len(qc.WebHits))
	return StageFuseContext, nil
}

func (p *Pipeline) fuseContext(ctx context.Context, qc *QueryContext) (Stage, error) {
	qc.Fused = Fuse(qc.VectorHits, qc.WebHits)
	if p.maxContextChunks > 0 && len(qc.Fused) > p.maxContextChunks {
		qc.Fused = qc.Fused[:p.maxContextChunks]
	}
	return StageGenerateAnswer, nil
}

func (p *Pipeline) generateAnswer(ctx context.Context, qc *QueryContext) (Stage, error) {
	answer, err := p.generator.Generate(ctx, BuildAnswerPrompt(qc.Question, qc.Fused))
	if err != nil {
		return StageDone, err
	}
	qc.Answer = strings.TrimSpace(answer)
	return StageDone, nil
}
