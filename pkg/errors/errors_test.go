package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidParam, "bad input")

	assert.Equal(t, CodeInvalidParam, err.Code)
	assert.Equal(t, "bad input", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, "[1001] bad input", err.Error())
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeVectorDBError, "milvus unavailable")

	assert.Equal(t, CodeVectorDBError, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeUnsupportedDocument, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeFileNotFound, http.StatusNotFound},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeServiceUnavailable, http.StatusServiceUnavailable},
		{CodeLLMCallFailed, http.StatusInternalServerError},
		{CodeEmbeddingFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.code, "msg").HTTPStatus, "code=%s", tt.code)
	}
}

func TestWithDetailAndError(t *testing.T) {
	cause := errors.New("root cause")
	err := New(CodeIngestFailed, "ingest failed").WithDetail("file too big").WithError(cause)

	assert.Equal(t, "file too big", err.Detail)
	assert.True(t, errors.Is(err, cause))
}

func TestAsAppError(t *testing.T) {
	appErr := New(CodeNotFound, "missing")
	assert.Same(t, appErr, AsAppError(appErr))

	wrapped := AsAppError(errors.New("plain error"))
	require.NotNil(t, wrapped)
	assert.Equal(t, CodeUnknown, wrapped.Code)
	assert.True(t, IsAppError(wrapped))
	assert.False(t, IsAppError(errors.New("plain error")))
}
