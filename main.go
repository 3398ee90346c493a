package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"fleximart-catalog/internal/config"
	"fleximart-catalog/internal/database"
	"fleximart-catalog/internal/logger"
	"fleximart-catalog/internal/repository"
	"fleximart-catalog/internal/seed"
	"fleximart-catalog/internal/service"
	"fleximart-catalog/internal/tracer"
	"fleximart-catalog/internal/utils"
	"fleximart-catalog/internal/version"

	"github.com/spf13/pflag"
)

type options struct {
	seedFile   string
	dbName     string
	collection string
	plan       service.Plan
}

func parseFlags(args []string, cfg *config.Config) (options, error) {
	plan := service.DefaultPlan()
	opts := options{plan: plan}

	fs := pflag.NewFlagSet("catalog-loader", pflag.ContinueOnError)
	fs.StringVar(&opts.seedFile, "seed", cfg.SeedFile, "product catalog JSON file")
	fs.StringVar(&opts.dbName, "db", cfg.MongoDBName, "database name")
	fs.StringVar(&opts.collection, "collection", cfg.MongoCollection, "collection to reload")
	fs.StringVar(&opts.plan.Category, "category", plan.Category, "category for the price filter")
	fs.Float64Var(&opts.plan.MaxPrice, "max-price", plan.MaxPrice, "exclusive price ceiling for the price filter")
	fs.Float64Var(&opts.plan.MinAvgRating, "min-rating", plan.MinAvgRating, "minimum average review rating")
	fs.StringVar(&opts.plan.ReviewProductID, "review-product", plan.ReviewProductID, "product that receives the new review")
	fs.BoolVar(&opts.plan.SkipUpdate, "skip-update", false, "do not append the review")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func logReport(ctx context.Context, report *service.Report) {
	logger.Info(ctx, "Operation 1: data loaded",
		slog.Bool("dropped", report.Load.Dropped),
		slog.Int("inserted", report.Load.Inserted),
		slog.Int64("total_documents", report.Load.Total),
		slog.String("unique_index", report.Load.IndexName),
	)
	logger.Info(ctx, "Operation 2: products under price in category",
		slog.Int("count", len(report.Affordable)),
		slog.String("results", utils.ToJSONString(report.Affordable)),
	)
	logger.Info(ctx, "Operation 3: products by average rating",
		slog.Int("count", len(report.TopRated)),
		slog.String("results", utils.ToJSONString(report.TopRated)),
	)
	if report.Updated != nil {
		logger.Info(ctx, "Operation 4: review added",
			slog.String("product_id", report.Updated.ProductID),
			slog.String("last_review", utils.ToJSONString(report.Updated.LastReview)),
		)
	}
	logger.Info(ctx, "Operation 5: average price by category",
		slog.Int("count", len(report.CategoryStats)),
		slog.String("results", utils.ToJSONString(report.CategoryStats)),
	)
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	catalog, err := seed.Load(opts.seedFile)
	if err != nil {
		return err
	}
	logger.Info(ctx, "Seed file parsed", slog.String("file", catalog.Source), slog.Int("documents", catalog.Len()))

	db, err := database.Connect(ctx, cfg.MongoURI, opts.dbName, cfg.MongoTimeout)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(closeCtx)
	}()

	productRepo := repository.NewProductRepository(db.Database, opts.collection)
	catalogService := service.NewCatalogService(productRepo)

	report, err := catalogService.Run(ctx, catalog.Docs(), opts.plan)
	if report != nil {
		logReport(ctx, report)
	}
	return err
}

func main() {
	globalCtx := context.Background()
	log := logger.Instance()
	cfg := config.Instance()

	log.Info(cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	opts, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		log.Error("Invalid flags", slog.String("error", err.Error()))
		os.Exit(2)
	}

	logger.SetDefaults(
		slog.String("service", cfg.AppName),
		slog.String("catalog.db", opts.dbName),
		slog.String("catalog.collection", opts.collection),
	)

	shutdown, err := tracer.Instance(globalCtx, cfg)
	if err != nil {
		log.Warn("Tracing disabled", slog.String("error", err.Error()))
	}

	ctx, span := service.CatalogServiceTracer.Start(globalCtx, "catalog-loader")
	err = run(ctx, cfg, opts)
	span.End()

	shutdown()
	logger.Flush(5 * time.Second)

	if err != nil {
		log.Error("Catalog load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
