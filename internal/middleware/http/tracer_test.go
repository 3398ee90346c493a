package middleware_http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestTraceMiddleware_SetsTraceHeaderAndSpan(t *testing.T) {
	spans := withRecorder(t)

	var handlerSpan trace.SpanContext
	h := TraceMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerSpan = trace.SpanContextFromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"missing"}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/product/last-review?product_id=NOPE", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.True(t, handlerSpan.IsValid())
	assert.Equal(t, handlerSpan.TraceID().String(), rec.Header().Get("X-Trace-ID"))

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /product/last-review", ended[0].Name())
	assert.Equal(t, "client error", ended[0].Status().Description)
}

func TestResponseWriter_CapturesBody(t *testing.T) {
	rw := &ResponseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, int64(5), rw.size)
	assert.Equal(t, "hello", rw.buf.String())
}

func TestErrFromRecover(t *testing.T) {
	boom := errors.New("boom")
	assert.Equal(t, boom, errFromRecover(boom))
	assert.Equal(t, "panic: 42", errFromRecover(42).Error())
}
