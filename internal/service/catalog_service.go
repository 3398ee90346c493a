package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fleximart-catalog/internal/logger"
	"fleximart-catalog/internal/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var ErrInvalidInput = errors.New("invalid input")

// Step names, in the order Run executes them.
const (
	StepLoad          = "load_catalog"
	StepAffordable    = "affordable_in_category"
	StepTopRated      = "top_rated"
	StepAddReview     = "add_review"
	StepCategoryStats = "category_price_stats"
)

// CatalogStore is the collection-level API the service drives.
type CatalogStore interface {
	Reset(ctx context.Context) error
	InsertMany(ctx context.Context, docs []interface{}) (int, error)
	Count(ctx context.Context) (int64, error)
	EnsureProductIDIndex(ctx context.Context) (string, error)
	FindByCategoryUnderPrice(ctx context.Context, category string, maxPrice float64) ([]model.ProductSummary, error)
	TopRated(ctx context.Context, minAvg float64) ([]model.RatedProduct, error)
	AddReview(ctx context.Context, productID string, review model.Review, now time.Time) error
	LastReview(ctx context.Context, productID string) (*model.ProductLastReview, error)
	AveragePriceByCategory(ctx context.Context) ([]model.CategoryPriceStats, error)
}

// StepError records which step of a run failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type LoadResult struct {
	Dropped   bool   `json:"dropped"`
	Inserted  int    `json:"inserted"`
	Total     int64  `json:"total"`
	IndexName string `json:"index_name"`
}

// Plan parameterises one run of the catalog sequence.
type Plan struct {
	Category        string
	MaxPrice        float64
	MinAvgRating    float64
	ReviewProductID string
	Review          model.Review
	SkipUpdate      bool
}

// DefaultPlan is the FlexiMart sequence: Electronics under 50000, products
// rated 4.0 or better, and a "Good value" review from U999 on ELEC001.
func DefaultPlan() Plan {
	return Plan{
		Category:        "Electronics",
		MaxPrice:        50000,
		MinAvgRating:    4.0,
		ReviewProductID: "ELEC001",
		Review: model.Review{
			UserID:   "U999",
			Username: "U999",
			Rating:   4,
			Comment:  "Good value",
		},
	}
}

type Report struct {
	Load          LoadResult                 `json:"load"`
	Affordable    []model.ProductSummary     `json:"affordable"`
	TopRated      []model.RatedProduct       `json:"top_rated"`
	Updated       *model.ProductLastReview   `json:"updated,omitempty"`
	CategoryStats []model.CategoryPriceStats `json:"category_stats"`
	Durations     map[string]time.Duration   `json:"-"`
}

var CatalogServiceTracer = otel.Tracer("CatalogService")

type CatalogService struct {
	store CatalogStore
	now   func() time.Time
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{store: store, now: time.Now}
}

// LoadCatalog replaces the collection contents with docs and creates the
// unique product_id index afterwards.
func (s *CatalogService) LoadCatalog(ctx context.Context, docs []interface{}) (LoadResult, error) {
	ctx, span := CatalogServiceTracer.Start(ctx, "CatalogService.LoadCatalog")
	defer span.End()

	var res LoadResult
	if len(docs) == 0 {
		return res, fmt.Errorf("%w: no documents to load", ErrInvalidInput)
	}

	if err := s.store.Reset(ctx); err != nil {
		return res, fmt.Errorf("drop collection: %w", err)
	}
	res.Dropped = true

	inserted, err := s.store.InsertMany(ctx, docs)
	if err != nil {
		return res, fmt.Errorf("insert documents: %w", err)
	}
	res.Inserted = inserted

	total, err := s.store.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count documents: %w", err)
	}
	res.Total = total

	name, err := s.store.EnsureProductIDIndex(ctx)
	if err != nil {
		return res, fmt.Errorf("create product_id index: %w", err)
	}
	res.IndexName = name

	span.SetAttributes(attribute.Int("catalog.inserted", inserted), attribute.Int64("catalog.total", total))
	logger.Info(ctx, "Data loaded into collection",
		slog.Int("inserted", inserted),
		slog.Int64("total", total),
		slog.String("index", name),
	)
	return res, nil
}

func (s *CatalogService) AffordableInCategory(ctx context.Context, category string, maxPrice float64) ([]model.ProductSummary, error) {
	ctx, span := CatalogServiceTracer.Start(ctx, "CatalogService.AffordableInCategory")
	defer span.End()

	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	if maxPrice <= 0 {
		return nil, fmt.Errorf("%w: max price must be positive, got %v", ErrInvalidInput, maxPrice)
	}

	return s.store.FindByCategoryUnderPrice(ctx, category, maxPrice)
}

func (s *CatalogService) TopRated(ctx context.Context, minAvg float64) ([]model.RatedProduct, error) {
	ctx, span := CatalogServiceTracer.Start(ctx, "CatalogService.TopRated")
	defer span.End()

	if minAvg < 0 || minAvg > model.MaxRating {
		return nil, fmt.Errorf("%w: minimum rating must be within 0..%d, got %v", ErrInvalidInput, model.MaxRating, minAvg)
	}

	return s.store.TopRated(ctx, minAvg)
}

// AddReview appends review to productID and returns the product with only
// its newest review. A zero review date is stamped with the current time.
func (s *CatalogService) AddReview(ctx context.Context, productID string, review model.Review) (*model.ProductLastReview, error) {
	ctx, span := CatalogServiceTracer.Start(ctx, "CatalogService.AddReview")
	defer span.End()

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
	}
	if err := review.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now()
	if review.Date.IsZero() {
		review.Date = model.NewReviewDate(now)
	}

	if err := s.store.AddReview(ctx, productID, review, now); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Review added", slog.String("product_id", productID), slog.String("user_id", review.UserID))
	return s.store.LastReview(ctx, productID)
}

func (s *CatalogService) LastReview(ctx context.Context, productID string) (*model.ProductLastReview, error) {
	ctx, span := CatalogServiceTracer.Start(ctx, "CatalogService.LastReview")
	defer span.End()

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
	}
	return s.store.LastReview(ctx, productID)
}

func (s *CatalogService) CategoryPriceStats(ctx context.Context) ([]model.CategoryPriceStats, error) {
	ctx, span := CatalogServiceTracer.Start(ctx, "CatalogService.CategoryPriceStats")
	defer span.End()

	return s.store.AveragePriceByCategory(ctx)
}

// Run executes the whole sequence in order and stops at the first failure.
// The returned report holds every step that completed.
func (s *CatalogService) Run(ctx context.Context, docs []interface{}, plan Plan) (*Report, error) {
	ctx, span := CatalogServiceTracer.Start(ctx, "CatalogService.Run")
	defer span.End()

	report := &Report{Durations: make(map[string]time.Duration)}

	step := func(name string, fn func(context.Context) error) error {
		stepCtx := logger.With(ctx, slog.String("catalog.step", name))
		start := time.Now()
		err := fn(stepCtx)
		report.Durations[name] = time.Since(start)
		if err != nil {
			logger.Error(stepCtx, "Catalog step failed", logger.Err(err))
			return &StepError{Step: name, Err: err}
		}
		return nil
	}

	if err := step(StepLoad, func(ctx context.Context) (err error) {
		report.Load, err = s.LoadCatalog(ctx, docs)
		return err
	}); err != nil {
		return report, err
	}

	if err := step(StepAffordable, func(ctx context.Context) (err error) {
		report.Affordable, err = s.AffordableInCategory(ctx, plan.Category, plan.MaxPrice)
		return err
	}); err != nil {
		return report, err
	}

	if err := step(StepTopRated, func(ctx context.Context) (err error) {
		report.TopRated, err = s.TopRated(ctx, plan.MinAvgRating)
		return err
	}); err != nil {
		return report, err
	}

	if !plan.SkipUpdate {
		if err := step(StepAddReview, func(ctx context.Context) (err error) {
			report.Updated, err = s.AddReview(ctx, plan.ReviewProductID, plan.Review)
			return err
		}); err != nil {
			return report, err
		}
	}

	if err := step(StepCategoryStats, func(ctx context.Context) (err error) {
		report.CategoryStats, err = s.CategoryPriceStats(ctx)
		return err
	}); err != nil {
		return report, err
	}

	logger.Info(ctx, "All operations completed")
	return report, nil
}
