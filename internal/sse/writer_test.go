package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriterSetsHeaders(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	_, err := NewWriter(rec)
	require.NoError(t, err)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
}

// noFlushWriter satisfies http.ResponseWriter but not http.Flusher.
type noFlushWriter struct {
	header http.Header
}

func (w noFlushWriter) Header() http.Header       { return w.header }
func (noFlushWriter) Write(p []byte) (int, error) { return len(p), nil }
func (noFlushWriter) WriteHeader(int)             {}

func TestNewWriterRequiresFlusher(t *testing.T) {
	t.Parallel()

	_, err := NewWriter(noFlushWriter{header: http.Header{}})
	assert.Error(t, err)
}

func TestWriterSendFrames(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.Send(ctx, Delta("Hello")))
	require.NoError(t, w.Send(ctx, Done()))

	body := rec.Body.String()
	assert.Contains(t, body, "event: content_delta\ndata: {\"type\":\"content_delta\",\"text\":\"Hello\"}\n\n")
	assert.Contains(t, body, "event: done\ndata: {\"type\":\"done\"}\n\n")
	assert.True(t, rec.Flushed)
}

func TestWriterSendCanceledContext(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = w.Send(ctx, Done())
	assert.Error(t, err)
	assert.Empty(t, rec.Body.String())
}
