// Package httpapi serves the dashboard queries as JSON over HTTP.
package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/godilite/workforce-intel/internal/http/middleware"
)

type RouterConfig struct {
	CORSOrigins []string
	AdminKey    string
}

func Router(cfg RouterConfig, dashboard DashboardService, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger.Named("http")))

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	h := &Handler{
		Dashboard: dashboard,
		Validator: validator.New(),
		Logger:    logger.Named("http-handler"),
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api/v1")
	{
		api.GET("/dashboard", h.DashboardStats)
		api.GET("/partners", h.ListPartners)
		api.GET("/partners/:name", h.Partner)
		api.GET("/engineers/:email", h.Engineer)
		api.GET("/tdls", h.ListTDLs)
		api.GET("/tdls/:tdl", h.TDLStats)
		api.GET("/top/engineers", h.TopEngineers)
		api.GET("/top/partners", h.TopPartners)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/rebuild", h.Rebuild)
	}

	return r
}
