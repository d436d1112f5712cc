package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything the health check can probe, e.g. the Redis credential store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Version     string    `json:"version"`
	APIBaseURL  string    `json:"api_base_url,omitempty"`
	Credentials string    `json:"credentials,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	apiBaseURL  string
	store       Pinger
}

// NewHealthHandler builds the handler; store may be nil when the credential
// backend has nothing to probe.
func NewHealthHandler(serviceName, version, apiBaseURL string, store Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		apiBaseURL:  apiBaseURL,
		store:       store,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	storeStatus := "local"
	if h.store != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.store.Ping(pingCtx); err != nil {
			storeStatus = "down"
		} else {
			storeStatus = "up"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Service:     h.serviceName,
		Version:     h.version,
		APIBaseURL:  h.apiBaseURL,
		Credentials: storeStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
