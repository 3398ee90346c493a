package logger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrMap(attrs []slog.Attr) map[string]slog.Value {
	m := make(map[string]slog.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func TestFlattenJSON_KeepsFirstAndLastArrayElements(t *testing.T) {
	body := []byte(`{"data":[{"name":"a"},{"name":"b"},{"name":"c"}],"ok":true,"note":null}`)

	got := attrMap(jsonAttrs(body))

	assert.Equal(t, "a", got["http.body.data.0.name"].String())
	assert.Equal(t, "c", got["http.body.data.2.name"].String())
	assert.NotContains(t, got, "http.body.data.1.name")
	assert.True(t, got["http.body.ok"].Bool())
	assert.NotContains(t, got, "http.body.note")
}

func TestDecodeBody_ContentTypes(t *testing.T) {
	attrs, err := DecodeBody("application/x-www-form-urlencoded", []byte("user=u1&password=hunter2"))
	require.NoError(t, err)
	got := attrMap(attrs)
	assert.Equal(t, "u1", got["http.body.user"].String())

	attrs, err = DecodeBody("application/octet-stream", []byte(strings.Repeat("x", 300)))
	require.NoError(t, err)
	got = attrMap(attrs)
	assert.Equal(t, int64(300), got["http.body.size_bytes"].Int64())

	attrs, err = DecodeBody("application/json", nil)
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestRedactIfNeeded(t *testing.T) {
	assert.Equal(t, "***", redactIfNeeded("my Password is x"))
	assert.Equal(t, "Good value", redactIfNeeded("Good value"))
}

func TestHeaderAttrs_RedactsAuthorization(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abc")
	h.Set("Content-Type", "application/json")
	h.Set("X-Internal", "skip")

	got := attrMap(HeaderAttrs(h))
	assert.Equal(t, "***", got["http.header.authorization"].String())
	assert.Equal(t, "application/json", got["http.header.content-type"].String())
	assert.NotContains(t, got, "http.header.x-internal")
}

func TestLogHTTPRequest_RestoresBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/product/reviews?product_id=ELEC001", strings.NewReader(`{"rating":4}`))
	r.Header.Set("Content-Type", "application/json")

	got := attrMap(LogHTTPRequest(r.Context(), r, "incoming::request"))
	assert.Equal(t, "ELEC001", got["http.query.product_id"].String())
	assert.Equal(t, float64(4), got["http.body.rating"].Float64())

	var payload map[string]int
	require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	assert.Equal(t, 4, payload["rating"])
}

func TestBuildLogEntry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := buildLogEntry("info", "Catalog loaded", []slog.Attr{slog.Int("inserted", 12)}, now)

	b, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded struct {
		Streams []struct {
			Stream map[string]string `json:"stream"`
			Values [][]string        `json:"values"`
		} `json:"streams"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Len(t, decoded.Streams, 1)
	assert.Equal(t, "info", decoded.Streams[0].Stream["level"])
	require.Len(t, decoded.Streams[0].Values, 1)
	assert.Equal(t, "1709294400000000000", decoded.Streams[0].Values[0][0])

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(decoded.Streams[0].Values[0][1]), &line))
	assert.Equal(t, "Catalog loaded", line["message"])
	assert.Equal(t, float64(12), line["inserted"])
}

func TestErrAttr(t *testing.T) {
	assert.Equal(t, "boom", Err(errors.New("boom")).Value.String())
	assert.Equal(t, "", Err(nil).Value.String())
}

func TestFlush_NoPendingReturnsImmediately(t *testing.T) {
	assert.True(t, Flush(100*time.Millisecond))
}

func TestEnrich_DefaultsAndScopedAttrs(t *testing.T) {
	SetDefaults(slog.String("service", "fleximart-catalog"), slog.String("catalog.db", "fleximart_nosql"))
	t.Cleanup(func() { SetDefaults() })

	ctx := With(context.Background(), slog.String("catalog.step", "load"))
	ctx = With(ctx, slog.String("catalog.collection", "products"))

	got := attrMap(enrich(ctx, slog.Int("inserted", 12)))
	assert.Equal(t, int64(12), got["inserted"].Int64())
	assert.Equal(t, "load", got["catalog.step"].String())
	assert.Equal(t, "products", got["catalog.collection"].String())
	assert.Equal(t, "fleximart-catalog", got["service"].String())
	assert.Equal(t, "fleximart_nosql", got["catalog.db"].String())
	assert.NotContains(t, got, "trace_id")
}

func TestWith_DoesNotLeakIntoParent(t *testing.T) {
	parent := With(context.Background(), slog.String("catalog.step", "load"))
	_ = With(parent, slog.String("catalog.step", "top_rated"))

	got := attrMap(enrich(parent))
	assert.Equal(t, "load", got["catalog.step"].String())
	assert.Equal(t, parent, With(parent))
}
