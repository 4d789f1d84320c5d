package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-blockplan-api/internal/middleware"
	"github.com/noah-isme/sma-blockplan-api/internal/service"
	"github.com/noah-isme/sma-blockplan-api/pkg/config"
	"github.com/noah-isme/sma-blockplan-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-blockplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-blockplan-api/pkg/middleware/requestid"
)

// NewRouter assembles the gin engine with middlewares and planner routes.
func NewRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, plannerSvc *service.PlannerService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if metricsSvc != nil {
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}

	plannerHandler := NewPlannerHandler(plannerSvc)
	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/planner/groupings", plannerHandler.CreateGrouping)
		api.POST("/planner/schedules", plannerHandler.CreateSchedule)
		api.GET("/planner/plans/:id/export", plannerHandler.ExportPlan)
	}

	return r
}
