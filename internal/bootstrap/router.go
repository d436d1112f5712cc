package bootstrap

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/igmoiiz/Project-Portal-AUMC/internal/api/http"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/api/http/middleware"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/auth"
	authhttp "github.com/igmoiiz/Project-Portal-AUMC/internal/auth/http"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/browse"
	projectshttp "github.com/igmoiiz/Project-Portal-AUMC/internal/projects/http"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/upload"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	APIBaseURL     string
	ValidatorBase  string
	AllowedOrigins []string
	MaxUploadBytes int64

	Sessions *auth.Manager
	Browse   *browse.Controller
	Upload   *upload.Controller
	// StorePinger is probed by /health; nil for local stores.
	StorePinger httpapi.Pinger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.APIBaseURL, dep.StorePinger)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	sessionHandler := authhttp.New(dep.Sessions, func(ctx context.Context) {
		dep.Upload.ReloadDepartment(ctx)
	})
	sessionHandler.Register(api.Group("/session"))

	projectsHandler := projectshttp.New(dep.Browse, dep.Upload, dep.ValidatorBase, dep.MaxUploadBytes)
	projectsHandler.Register(api)

	return r
}
