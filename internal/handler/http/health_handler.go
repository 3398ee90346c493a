package http

import (
	"context"
	"encoding/json"
	"net/http"

	"fleximart-catalog/internal/logger"
	"fleximart-catalog/internal/service"

	"go.opentelemetry.io/otel"
)

type HealthHandler struct {
	service *service.HealthService
}

var HttpHealthHandlerTracer = otel.Tracer("HttpHealthHandler")

func NewHealthHandler(service *service.HealthService) *HealthHandler {
	return &HealthHandler{
		service: service,
	}
}

func (h *HealthHandler) Check(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	ctx, span := HttpHealthHandlerTracer.Start(ctx, "HttpHealthHandler.Check")
	defer span.End()
	logger.Info(ctx, "HttpHealthHandler")

	status := h.service.Check(ctx)

	overall := "UP"
	code := http.StatusOK
	if status.Mongo == "DOWN" {
		overall = "DOWN"
		code = http.StatusServiceUnavailable
	}

	resp := map[string]interface{}{
		"status": overall,
		"data": map[string]string{
			"mongodb": status.Mongo,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
