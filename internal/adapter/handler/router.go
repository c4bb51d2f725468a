package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/meetingops/taskbridge/internal/infrastructure/http/middleware"
	"github.com/meetingops/taskbridge/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	auth             *middleware.AuthMiddleware
	analysisHandler  *Analysis
	quickTaskHandler *QuickTask
	catalogHandler   *Catalog
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	auth *middleware.AuthMiddleware,
	analysisHandler *Analysis,
	quickTaskHandler *QuickTask,
	catalogHandler *Catalog,
) *Router {
	return &Router{
		cfg:              cfg,
		auth:             auth,
		analysisHandler:  analysisHandler,
		quickTaskHandler: quickTaskHandler,
		catalogHandler:   catalogHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1", rt.auth.Authenticate)

	v1.POST("/analyses", rt.analysisHandler.AnalyzeDocument)
	v1.POST("/analyses/text", rt.analysisHandler.AnalyzeText)
	v1.GET("/analyses", rt.analysisHandler.ListRuns)
	v1.GET("/analyses/:id", rt.analysisHandler.GetRun)
	v1.POST("/analyses/:id/tasks", rt.analysisHandler.CreateTasks)

	v1.POST("/quick-tasks", rt.quickTaskHandler.Interpret)

	v1.GET("/catalog", rt.catalogHandler.List)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
