package database

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fleximart-catalog/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

const pingTimeout = 5 * time.Second

type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var (
	instance    *Mongo
	instanceErr error
	once        sync.Once
)

// Options returns the client options every connection in this repo uses:
// otelmongo command monitoring plus the configured operation timeout.
func Options(uri string, timeout time.Duration) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(uri).
		SetMonitor(otelmongo.NewMonitor())
	if timeout > 0 {
		opts.SetTimeout(timeout)
	}
	return opts
}

func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*Mongo, error) {
	if uri == "" || dbName == "" {
		return nil, errors.New("mongo uri and database name are required")
	}

	log := logger.Instance()
	client, err := mongo.Connect(ctx, Options(uri, timeout))
	if err != nil {
		log.Error("Failed to connect to MongoDB", slog.String("error", err.Error()))
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		log.Error("MongoDB ping failed", slog.String("error", err.Error()))
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Info("Connected to MongoDB successfully", slog.String("database", dbName))

	return &Mongo{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// Instance connects once per process; later calls return the same handle
// and the same error.
func Instance(globalCtx context.Context, uri, dbName string, timeout time.Duration) (*Mongo, error) {
	once.Do(func() {
		instance, instanceErr = Connect(globalCtx, uri, dbName, timeout)
	})

	return instance, instanceErr
}

func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}
