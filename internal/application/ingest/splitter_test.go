package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitterShortText(t *testing.T) {
	sp := NewSplitter(1000, 200)

	parts := sp.Split("short text")
	require.Len(t, parts, 1)
	assert.Equal(t, "short text", parts[0])
}

func TestSplitterEmpty(t *testing.T) {
	sp := NewSplitter(1000, 200)

	assert.Nil(t, sp.Split(""))
	assert.Nil(t, sp.Split("   \n\t  "))
}

func TestSplitterOverlap(t *testing.T) {
	sp := NewSplitter(10, 4)

	text := "abcdefghijklmnopqrstuvwxyz"
	parts := sp.Split(text)
	require.True(t, len(parts) >= 3)

	// 相邻分块首尾重叠
	assert.Equal(t, "abcdefghij", parts[0])
	assert.Equal(t, "ghijklmnop", parts[1])
	assert.True(t, strings.HasPrefix(parts[1], parts[0][6:]))

	// 拼接去重后覆盖全文
	assert.Equal(t, "z", parts[len(parts)-1][len(parts[len(parts)-1])-1:])
}

func TestSplitterMultibyte(t *testing.T) {
	sp := NewSplitter(5, 0)

	text := strings.Repeat("界", 12)
	parts := sp.Split(text)
	require.Len(t, parts, 3)
	for _, p := range parts[:2] {
		assert.Equal(t, 5, len([]rune(p)))
	}
	assert.Equal(t, 2, len([]rune(parts[2])))
}

func TestSplitterDegenerateOverlap(t *testing.T) {
	// overlap >= size 时按整块步进，不产生死循环
	sp := NewSplitter(5, 10)

	parts := sp.Split("abcdefghij")
	require.Len(t, parts, 2)
	assert.Equal(t, "abcde", parts[0])
	assert.Equal(t, "fghij", parts[1])
}
