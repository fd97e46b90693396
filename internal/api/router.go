// Package api exposes the analysis service over HTTP.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/avatar-analyzer/internal/metrics"
	"github.com/BerylCAtieno/avatar-analyzer/internal/service"
)

type Options struct {
	Service     *service.Service
	Metrics     *metrics.Metrics
	Log         logrus.FieldLogger
	CORSOrigins []string
}

// NewRouter builds the gin engine with every API route. Callers may add
// further routes (the A2A endpoint) before serving it.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(opts.Log, opts.Metrics))
	router.Use(CORS(opts.CORSOrigins))
	router.NoRoute(NotFound)

	h := NewHandler(opts.Service, opts.Log)

	router.GET("/health", h.Health)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.POST("/analyze", h.Analyze)

		api.GET("/analyses", h.ListAnalyses)
		api.GET("/analyses/:id", h.GetAnalysis)
		api.GET("/analyses/:id/report", h.Report)
		api.GET("/analyses/:id/view", h.View)
		api.GET("/analyses/:id/export", h.Export)

		api.POST("/render", h.Render)
		api.POST("/export", h.ExportRecord)

		api.GET("/nichos", h.ListNichos)
		api.POST("/nichos", h.SearchNichos)
		api.GET("/templates/:nicho", h.Template)
	}

	return router
}
