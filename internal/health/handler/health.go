package handler

import (
	"context"
	"net/http"
	"time"

	httputil "stayhub/pkg/http"
	"stayhub/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const pingTimeout = 2 * time.Second

type HealthHandler struct {
	mongo *mongo.Client
	log   *logger.Logger
}

func NewHealthHandler(mongoClient *mongo.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		mongo: mongoClient,
		log:   log,
	}
}

// Liveness reports process health only; it must stay green while
// dependencies flap so the orchestrator does not restart a working process.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, map[string]string{"status": "up"}); err != nil {
		h.log.Error("failed to write health response", "error", err)
	}
}

// Readiness pings the database; a failure takes the instance out of the
// load balancer without killing it.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.mongo.Ping(ctx, readpref.Primary()); err != nil {
		h.log.Warn("Readiness check failed", "error", err)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down", "reason": "database unreachable"}); writeErr != nil {
			h.log.Error("failed to write readiness response", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"status": "ready"}); err != nil {
		h.log.Error("failed to write readiness response", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Liveness)
	router.GET("/ready", h.Readiness)
}
