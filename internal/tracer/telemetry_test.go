package tracer

import (
	"context"
	"testing"

	"fleximart-catalog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewExporter_Selection(t *testing.T) {
	ctx := context.Background()

	exp, err := newExporter(ctx, &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, exp)

	exp, err = newExporter(ctx, &config.Config{TraceStdout: true})
	require.NoError(t, err)
	require.NotNil(t, exp)
	assert.NoError(t, exp.Shutdown(ctx))

	exp, err = newExporter(ctx, &config.Config{RemoteTraceRpcURI: "localhost:4317", TraceStdout: true})
	require.NoError(t, err)
	require.NotNil(t, exp)
	assert.NoError(t, exp.Shutdown(ctx))
}

func TestNewResource(t *testing.T) {
	res, err := newResource(context.Background(), &config.Config{AppName: "catalog-loader", MongoDBName: "fleximart_nosql"})
	require.NoError(t, err)

	attrs := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "catalog-loader", attrs["service.name"])
	assert.Equal(t, "fleximart_nosql", attrs["db.name"])
}

func TestInstance_NoExporter(t *testing.T) {
	shutdown, err := Instance(context.Background(), &config.Config{AppName: "catalog-loader"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}
