package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"fleximart-catalog/internal/logger"
	"fleximart-catalog/internal/model"
	"fleximart-catalog/internal/repository"
	"fleximart-catalog/internal/service"

	"go.opentelemetry.io/otel"
)

// CatalogService is the part of service.CatalogService the handler exposes.
type CatalogService interface {
	AffordableInCategory(ctx context.Context, category string, maxPrice float64) ([]model.ProductSummary, error)
	TopRated(ctx context.Context, minAvg float64) ([]model.RatedProduct, error)
	AddReview(ctx context.Context, productID string, review model.Review) (*model.ProductLastReview, error)
	LastReview(ctx context.Context, productID string) (*model.ProductLastReview, error)
	CategoryPriceStats(ctx context.Context) ([]model.CategoryPriceStats, error)
}

type CatalogHandler struct {
	service CatalogService
	plan    service.Plan
}

var CatalogHandlerTracer = otel.Tracer("CatalogHandler")

// NewCatalogHandler uses plan for query parameters the client leaves out.
func NewCatalogHandler(svc CatalogService, plan service.Plan) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		plan:    plan,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrProductNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logger.Error(ctx, "CatalogHandler", logger.Err(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func floatParam(r *http.Request, name string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return v, nil
}

// Affordable serves GET /products/affordable?category=&max_price=
func (h *CatalogHandler) Affordable(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	ctx, span := CatalogHandlerTracer.Start(ctx, "CatalogHandler.Affordable")
	defer span.End()

	category := r.URL.Query().Get("category")
	if category == "" {
		category = h.plan.Category
	}
	maxPrice, err := floatParam(r, "max_price", h.plan.MaxPrice)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	products, err := h.service.AffordableInCategory(ctx, category, maxPrice)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// TopRated serves GET /products/top-rated?min_rating=
func (h *CatalogHandler) TopRated(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	ctx, span := CatalogHandlerTracer.Start(ctx, "CatalogHandler.TopRated")
	defer span.End()

	minAvg, err := floatParam(r, "min_rating", h.plan.MinAvgRating)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	products, err := h.service.TopRated(ctx, minAvg)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) PriceStats(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	ctx, span := CatalogHandlerTracer.Start(ctx, "CatalogHandler.PriceStats")
	defer span.End()

	stats, err := h.service.CategoryPriceStats(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AddReview serves POST /product/reviews?product_id=
func (h *CatalogHandler) AddReview(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	ctx, span := CatalogHandlerTracer.Start(ctx, "CatalogHandler.AddReview")
	defer span.End()

	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}

	var review model.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	updated, err := h.service.AddReview(ctx, productID, review)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	logger.Info(ctx, "CatalogHandler", slog.String("product_id", productID))
	writeJSON(w, http.StatusCreated, updated)
}

// LastReview serves GET /product/last-review?product_id=
func (h *CatalogHandler) LastReview(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	ctx, span := CatalogHandlerTracer.Start(ctx, "CatalogHandler.LastReview")
	defer span.End()

	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}

	last, err := h.service.LastReview(ctx, productID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// Routes registers the catalog endpoints on mux.
func (h *CatalogHandler) Routes(mux *http.ServeMux) {
	get := func(fn func(context.Context, http.ResponseWriter, *http.Request)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			fn(r.Context(), w, r)
		}
	}

	mux.HandleFunc("/products/affordable", get(h.Affordable))
	mux.HandleFunc("/products/top-rated", get(h.TopRated))
	mux.HandleFunc("/categories/price-stats", get(h.PriceStats))
	mux.HandleFunc("/product/last-review", get(h.LastReview))
	mux.HandleFunc("/product/reviews", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.AddReview(r.Context(), w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
