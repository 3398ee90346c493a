package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fleximart-catalog/internal/logger"
	"fleximart-catalog/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateKey    = errors.New("duplicate product_id in collection")
)

var ProductRepositoryTracer = otel.Tracer("ProductRepository")

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database, collection string) *ProductRepository {
	return &ProductRepository{
		collection: db.Collection(collection),
	}
}

func (r *ProductRepository) start(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository."+op,
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.mongodb.collection", r.collection.Name()),
		),
	)
	logger.Info(ctx, "Repository", slog.String("op", op), slog.String("collection", r.collection.Name()))
	return ctx, span
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Reset drops the whole collection, indexes included.
func (r *ProductRepository) Reset(ctx context.Context) error {
	ctx, span := r.start(ctx, "Reset")
	defer span.End()

	if err := r.collection.Drop(ctx); err != nil {
		return fail(span, err)
	}
	return nil
}

func (r *ProductRepository) InsertMany(ctx context.Context, docs []interface{}) (int, error) {
	ctx, span := r.start(ctx, "InsertMany")
	defer span.End()

	if len(docs) == 0 {
		return 0, nil
	}

	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return 0, fail(span, err)
	}
	span.SetAttributes(attribute.Int("db.inserted", len(res.InsertedIDs)))
	return len(res.InsertedIDs), nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := r.start(ctx, "Count")
	defer span.End()

	n, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fail(span, err)
	}
	return n, nil
}

// EnsureProductIDIndex creates the unique product_id index and returns its name.
func (r *ProductRepository) EnsureProductIDIndex(ctx context.Context) (string, error) {
	ctx, span := r.start(ctx, "EnsureProductIDIndex")
	defer span.End()

	name, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}},
		Options: options.Index().SetName(ProductIDIndexName).SetUnique(true),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return "", fail(span, err)
	}
	return name, nil
}

// FindByCategoryUnderPrice returns products of category with price < maxPrice,
// cheapest first.
func (r *ProductRepository) FindByCategoryUnderPrice(ctx context.Context, category string, maxPrice float64) ([]model.ProductSummary, error) {
	ctx, span := r.start(ctx, "FindByCategoryUnderPrice")
	defer span.End()

	opts := options.Find().
		SetProjection(summaryProjection()).
		SetSort(bson.D{{Key: "price", Value: 1}})

	cursor, err := r.collection.Find(ctx, affordableFilter(category, maxPrice), opts)
	if err != nil {
		return nil, fail(span, err)
	}
	defer cursor.Close(ctx)

	products := []model.ProductSummary{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fail(span, err)
	}
	return products, nil
}

func (r *ProductRepository) TopRated(ctx context.Context, minAvg float64) ([]model.RatedProduct, error) {
	ctx, span := r.start(ctx, "TopRated")
	defer span.End()

	cursor, err := r.collection.Aggregate(ctx, topRatedPipeline(minAvg))
	if err != nil {
		return nil, fail(span, err)
	}
	defer cursor.Close(ctx)

	products := []model.RatedProduct{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fail(span, err)
	}
	return products, nil
}

// AddReview appends review to the product and stamps updated_at.
func (r *ProductRepository) AddReview(ctx context.Context, productID string, review model.Review, now time.Time) error {
	ctx, span := r.start(ctx, "AddReview")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.product_id", productID))

	res, err := r.collection.UpdateOne(ctx,
		bson.D{{Key: "product_id", Value: productID}},
		addReviewUpdate(review, now),
	)
	if err != nil {
		return fail(span, err)
	}
	if res.MatchedCount == 0 {
		return fail(span, fmt.Errorf("%w: %s", ErrProductNotFound, productID))
	}
	return nil
}

func (r *ProductRepository) LastReview(ctx context.Context, productID string) (*model.ProductLastReview, error) {
	ctx, span := r.start(ctx, "LastReview")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.product_id", productID))

	cursor, err := r.collection.Aggregate(ctx, lastReviewPipeline(productID))
	if err != nil {
		return nil, fail(span, err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fail(span, err)
		}
		return nil, fail(span, fmt.Errorf("%w: %s", ErrProductNotFound, productID))
	}

	var result model.ProductLastReview
	if err := cursor.Decode(&result); err != nil {
		return nil, fail(span, err)
	}
	return &result, nil
}

func (r *ProductRepository) AveragePriceByCategory(ctx context.Context) ([]model.CategoryPriceStats, error) {
	ctx, span := r.start(ctx, "AveragePriceByCategory")
	defer span.End()

	cursor, err := r.collection.Aggregate(ctx, categoryPricePipeline())
	if err != nil {
		return nil, fail(span, err)
	}
	defer cursor.Close(ctx)

	stats := []model.CategoryPriceStats{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fail(span, err)
	}
	return stats, nil
}
