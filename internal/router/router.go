package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskpulse/api/handler"
)

type Handlers struct {
	Health   *apiHandler.HealthHandler
	Task     *apiHandler.TaskHandler
	Jobs     *apiHandler.JobsHandler
	Settings *apiHandler.SettingsHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Task workflow
	r.POST("/api/v1/tasks/{id}/status", authMiddleware(handlers.Task.Transition))
	r.POST("/api/v1/tasks/{id}/assignee", authMiddleware(handlers.Task.Assign))
	r.GET("/api/v1/tasks/{id}/history", authMiddleware(handlers.Task.History))

	r.GET("/api/v1/settings", authMiddleware(handlers.Settings.Get))
	r.PUT("/api/v1/settings", authMiddleware(handlers.Settings.Update))

	// Scheduler admin
	r.GET("/api/v1/jobs", authMiddleware(handlers.Jobs.List))
	r.POST("/api/v1/jobs/{name}/restart", authMiddleware(handlers.Jobs.Restart))

	return r
}
