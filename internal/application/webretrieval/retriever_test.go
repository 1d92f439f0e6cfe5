package webretrieval

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ali-assistant-api/internal/application/ingest"
	"ali-assistant-api/internal/domain/document"
	"ali-assistant-api/internal/infrastructure/websearch"
)

type fakeSearcher struct {
	results []websearch.Result
	err     error
	calls   int32
}

func (s *fakeSearcher) Search(ctx context.Context, query string) ([]websearch.Result, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.results, s.err
}

type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls int32
}

func (f *fakeFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if err, ok := f.errs[pageURL]; ok {
		return "", err
	}
	return f.pages[pageURL], nil
}

func newTestRetriever(searcher Searcher, fetcher PageFetcher, opts Options) *Retriever {
	return NewRetriever(searcher, fetcher, ingest.NewSplitter(1000, 200), opts)
}

func TestSearchKeywordOverride(t *testing.T) {
	searcher := &fakeSearcher{results: []websearch.Result{{URL: "https://live.example"}}}
	overrides := []websearch.Result{
		{Title: "Site", URL: "https://www.frellectra.ai", Content: "official"},
	}

	r := newTestRetriever(searcher, nil, Options{
		TriggerKeywords: []string{"frellectra"},
		Overrides:       overrides,
	})

	results := r.Search(context.Background(), "Tell me about Frellectra AI")
	require.Len(t, results, 1)
	assert.Equal(t, "https://www.frellectra.ai", results[0].URL)

	// 关键词命中时不访问实时搜索
	assert.EqualValues(t, 0, atomic.LoadInt32(&searcher.calls))
}

func TestSearchKeywordOverrideWithFailingSearcher(t *testing.T) {
	// 实时搜索不可用不影响关键词命中路径
	searcher := &fakeSearcher{err: errors.New("tavily down")}

	r := newTestRetriever(searcher, nil, Options{
		TriggerKeywords: DefaultTriggerKeywords,
		Overrides:       DefaultOverrideResults,
	})

	results := r.Search(context.Background(), "who is ali haider?")
	assert.Len(t, results, len(DefaultOverrideResults))
	assert.EqualValues(t, 0, atomic.LoadInt32(&searcher.calls))
}

func TestSearchKeywordRequiresWordBoundary(t *testing.T) {
	live := []websearch.Result{{URL: "https://live.example"}}
	searcher := &fakeSearcher{results: live}

	r := newTestRetriever(searcher, nil, Options{
		TriggerKeywords: []string{"ali"},
		Overrides:       DefaultOverrideResults,
	})

	// "quality"/"realize" 含 "ali" 子串，但不是独立的词，不触发固定结果集
	results := r.Search(context.Background(), "we need quality tools to realize this")
	require.Len(t, results, 1)
	assert.Equal(t, "https://live.example", results[0].URL)
	assert.EqualValues(t, 1, atomic.LoadInt32(&searcher.calls))

	// 独立出现的 "ali" 正常触发
	results = r.Search(context.Background(), "who is ali?")
	assert.Len(t, results, len(DefaultOverrideResults))
	assert.EqualValues(t, 1, atomic.LoadInt32(&searcher.calls))
}

func TestContainsKeyword(t *testing.T) {
	cases := []struct {
		query string
		kw    string
		want  bool
	}{
		{"who is ali?", "ali", true},
		{"ali haider biography", "ali", true},
		{"quality tools", "ali", false},
		{"realize the plan", "ali", false},
		{"tell me about frellectra ai", "frellectra ai", true},
		{"ali", "ali", true},
		{"alias", "ali", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, containsKeyword(tc.query, tc.kw), "query=%q kw=%q", tc.query, tc.kw)
	}
}

func TestSearchLiveFailureAbsorbed(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("tavily down")}

	r := newTestRetriever(searcher, nil, Options{})
	results := r.Search(context.Background(), "weather in tokyo")
	assert.Empty(t, results)
}

func TestSearchNoSearcherConfigured(t *testing.T) {
	r := newTestRetriever(nil, nil, Options{})
	assert.Empty(t, r.Search(context.Background(), "anything"))
}

func TestRetrieveSnapshotFirst(t *testing.T) {
	dir := t.TempDir()
	snapFile := filepath.Join(dir, "site.txt")
	require.NoError(t, os.WriteFile(snapFile, []byte("snapshot content"), 0o644))

	fetcher := &fakeFetcher{}
	searcher := &fakeSearcher{results: []websearch.Result{
		{Title: "Site", URL: "https://www.frellectra.ai/about"},
	}}

	r := newTestRetriever(searcher, fetcher, Options{
		Snapshots: []SnapshotRule{{Pattern: "frellectra.ai", File: snapFile}},
	})

	chunks := r.Retrieve(context.Background(), "query")
	require.Len(t, chunks, 1)
	assert.Equal(t, "snapshot content", chunks[0].Content)
	assert.Equal(t, "https://www.frellectra.ai/about", chunks[0].Metadata[document.MetaSource])
	assert.Equal(t, "Site", chunks[0].Metadata[document.MetaTitle])

	// 快照命中时零网络抓取
	assert.EqualValues(t, 0, atomic.LoadInt32(&fetcher.calls))
}

func TestRetrievePartialFetchFailure(t *testing.T) {
	searcher := &fakeSearcher{results: []websearch.Result{
		{Title: "A", URL: "https://a.example"},
		{Title: "B", URL: "https://b.example"},
		{Title: "C", URL: "https://c.example"},
	}}
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://a.example": "content a",
			"https://c.example": "content c",
		},
		errs: map[string]error{
			"https://b.example": errors.New("timeout"),
		},
	}

	r := newTestRetriever(searcher, fetcher, Options{Concurrency: 2})

	chunks := r.Retrieve(context.Background(), "query")

	// 单个 URL 失败被丢弃，其余保留且顺序不变
	require.Len(t, chunks, 2)
	assert.Equal(t, "content a", chunks[0].Content)
	assert.Equal(t, "content c", chunks[1].Content)
}

func TestRetrieveOrderPreserved(t *testing.T) {
	results := []websearch.Result{
		{Title: "1", URL: "https://one.example"},
		{Title: "2", URL: "https://two.example"},
		{Title: "3", URL: "https://three.example"},
		{Title: "4", URL: "https://four.example"},
	}
	pages := map[string]string{
		"https://one.example":   "page one",
		"https://two.example":   "page two",
		"https://three.example": "page three",
		"https://four.example":  "page four",
	}

	r := newTestRetriever(&fakeSearcher{results: results}, &fakeFetcher{pages: pages}, Options{Concurrency: 4})

	chunks := r.Retrieve(context.Background(), "query")
	require.Len(t, chunks, 4)
	assert.Equal(t, "page one", chunks[0].Content)
	assert.Equal(t, "page two", chunks[1].Content)
	assert.Equal(t, "page three", chunks[2].Content)
	assert.Equal(t, "page four", chunks[3].Content)
}

func TestRetrieveMissingSnapshotDropped(t *testing.T) {
	searcher := &fakeSearcher{results: []websearch.Result{
		{Title: "Site", URL: "https://www.frellectra.ai"},
		{Title: "Other", URL: "https://other.example"},
	}}
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://other.example": "other content",
	}}

	r := newTestRetriever(searcher, fetcher, Options{
		Snapshots: []SnapshotRule{{Pattern: "frellectra.ai", File: "/nonexistent/snapshot.txt"}},
	})

	chunks := r.Retrieve(context.Background(), "query")
	require.Len(t, chunks, 1)
	assert.Equal(t, "other content", chunks[0].Content)
}

func TestRetrieveEmptySearch(t *testing.T) {
	r := newTestRetriever(&fakeSearcher{}, &fakeFetcher{}, Options{})
	assert.Empty(t, r.Retrieve(context.Background(), "query"))
	assert.Empty(t, r.Retrieve(context.Background(), "   "))
}
