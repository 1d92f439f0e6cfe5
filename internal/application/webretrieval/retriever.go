// Package webretrieval 提供联网检索：搜索、快照优先的页面解析与分块
package webretrieval

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"ali-assistant-api/internal/application/ingest"
	"ali-assistant-api/internal/domain/document"
	"ali-assistant-api/internal/infrastructure/websearch"
	"ali-assistant-api/pkg/logger"
	"ali-assistant-api/pkg/metrics"
)

// Searcher 应用层对联网搜索能力的最小依赖（port）
type Searcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

// PageFetcher 应用层对页面抓取能力的最小依赖（port）
type PageFetcher interface {
	FetchText(ctx context.Context, pageURL string) (string, error)
}

// SnapshotRule 快照规则：URL 含 Pattern 时读取本地文件 File，不发起网络请求。
// 规则按声明顺序匹配，先命中者生效。
type SnapshotRule struct {
	Pattern string
	File    string
}

// Options 检索器可选配置
type Options struct {
	// TriggerKeywords 命中后跳过实时搜索、直接返回 Overrides 的关键词
	TriggerKeywords []string
	// Overrides 关键词命中时返回的固定结果集
	Overrides []websearch.Result
	// Snapshots 快照规则表
	Snapshots []SnapshotRule
	// Concurrency 并发抓取上限
	Concurrency int
}

// Retriever 联网检索器。
// 搜索与抓取失败一律吸收（记录日志、返回空/部分结果），不会让问答请求失败。
type Retriever struct {
	searcher Searcher
	fetcher  PageFetcher
	splitter *ingest.Splitter

	triggers    []string
	overrides   []websearch.Result
	snapshots   []SnapshotRule
	concurrency int
}

func NewRetriever(searcher Searcher, fetcher PageFetcher, splitter *ingest.Splitter, opts Options) *Retriever {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Retriever{
		searcher:    searcher,
		fetcher:     fetcher,
		splitter:    splitter,
		triggers:    opts.TriggerKeywords,
		overrides:   opts.Overrides,
		snapshots:   opts.Snapshots,
		concurrency: concurrency,
	}
}

// Search 返回候选结果列表。
// 查询命中触发关键词时直接返回固定结果集（不访问网络）；
// 否则执行实时搜索，失败时吸收为错误日志并返回空结果。
func (r *Retriever) Search(ctx context.Context, query string) []websearch.Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	for _, kw := range r.triggers {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if containsKeyword(q, kw) {
			metrics.WebSearchTotal.WithLabelValues("override", "ok").Inc()
			logger.Debug(ctx, "search keyword override matched", "keyword", kw)
			out := make([]websearch.Result, len(r.overrides))
			copy(out, r.overrides)
			return out
		}
	}

	if r.searcher == nil {
		logger.Debug(ctx, "web search not configured, returning empty results")
		return nil
	}

	results, err := r.searcher.Search(ctx, query)
	if err != nil {
		metrics.WebSearchTotal.WithLabelValues("live", "error").Inc()
		logger.Warn(ctx, "web search failed, returning empty results", "error", err.Error())
		return nil
	}
	metrics.WebSearchTotal.WithLabelValues("live", "ok").Inc()
	return results
}

// containsKeyword 检查 q 是否在词边界上包含 kw。
// 纯子串匹配会让 "ali" 命中 "quality" 这类词，所以要求关键词
// 两侧都不是字母或数字。
func containsKeyword(q, kw string) bool {
	for start := 0; start <= len(q)-len(kw); {
		i := strings.Index(q[start:], kw)
		if i < 0 {
			return false
		}
		i += start

		beforeOK := i == 0
		if !beforeOK {
			r, _ := utf8.DecodeLastRuneInString(q[:i])
			beforeOK = !isWordRune(r)
		}
		afterOK := i+len(kw) == len(q)
		if !afterOK {
			r, _ := utf8.DecodeRuneInString(q[i+len(kw):])
			afterOK = !isWordRune(r)
		}
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Retrieve 搜索并解析每个候选 URL 为分块。
// 各 URL 并发抓取但输出保持结果顺序；单个 URL 失败记录日志后丢弃，保留其余结果。
func (r *Retriever) Retrieve(ctx context.Context, query string) []document.Chunk {
	results := r.Search(ctx, query)
	if len(results) == 0 {
		return nil
	}

	chunksByResult := make([][]document.Chunk, len(results))
	errsByResult := make([]error, len(results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i := range results {
		i := i
		res := results[i]
		g.Go(func() error {
			chunks, err := r.resolve(gctx, res)
			if err != nil {
				errsByResult[i] = err
				return nil
			}
			chunksByResult[i] = chunks
			return nil
		})
	}
	_ = g.Wait()

	var out []document.Chunk
	for i := range results {
		if err := errsByResult[i]; err != nil {
			logger.Warn(ctx, "failed to resolve search result, dropping",
				"url", results[i].URL, "error", err.Error())
			continue
		}
		out = append(out, chunksByResult[i]...)
	}
	return out
}

// resolve 将单个搜索结果解析为分块：先按序匹配快照表，未命中再实时抓取
func (r *Retriever) resolve(ctx context.Context, res websearch.Result) ([]document.Chunk, error) {
	for _, rule := range r.snapshots {
		if rule.Pattern == "" || !strings.Contains(res.URL, rule.Pattern) {
			continue
		}
		data, err := os.ReadFile(rule.File)
		if err != nil {
			metrics.WebFetchTotal.WithLabelValues("snapshot", "error").Inc()
			return nil, fmt.Errorf("failed to read snapshot %s: %w", rule.File, err)
		}
		metrics.WebFetchTotal.WithLabelValues("snapshot", "ok").Inc()
		return r.chunk(string(data), res), nil
	}

	if r.fetcher == nil {
		return nil, fmt.Errorf("page fetcher not configured")
	}
	text, err := r.fetcher.FetchText(ctx, res.URL)
	if err != nil {
		metrics.WebFetchTotal.WithLabelValues("live", "error").Inc()
		return nil, err
	}
	metrics.WebFetchTotal.WithLabelValues("live", "ok").Inc()
	return r.chunk(text, res), nil
}

func (r *Retriever) chunk(text string, res websearch.Result) []document.Chunk {
	parts := r.splitter.Split(text)
	chunks := make([]document.Chunk, 0, len(parts))
	for _, part := range parts {
		chunks = append(chunks, document.NewChunk(part, map[string]string{
			document.MetaSource: res.URL,
			document.MetaTitle:  res.Title,
		}))
	}
	return chunks
}
