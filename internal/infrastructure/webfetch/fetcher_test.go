package webfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchText(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><body><h1>Heading</h1><p>Some   body text</p></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(0)
	text, err := f.FetchText(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "Some body text")
	assert.Equal(t, defaultUserAgent, gotUA)
}

func TestFetchTextNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(0)
	_, err := f.FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")
}

func TestFetchTextEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><script>ignored()</script></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(0)
	_, err := f.FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extractable text")
}

func TestFetchTextEmptyURL(t *testing.T) {
	f := NewFetcher(0)
	_, err := f.FetchText(context.Background(), "   ")
	require.Error(t, err)
}

func TestExtractText(t *testing.T) {
	html := `<html><head>
<script>var hidden = true;</script>
<style>.hidden { display: none; }</style>
</head><body>
<h1>Title</h1>
<p>First    line</p>

<p>Second line</p>
</body></html>`

	text, err := ExtractText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "First line")
	assert.Contains(t, text, "Second line")
	assert.NotContains(t, text, "hidden")
	// 空行被丢弃
	assert.NotContains(t, text, "\n\n")
}
