package handler

import (
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/internal/scheduler"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
)

// JobController is the admin surface of the scheduler.
type JobController interface {
	Jobs() []scheduler.JobInfo
	Status() map[string]bool
	Restart(name string) error
}

type JobsHandler struct {
	baseHandler
	jobs JobController
}

func NewJobsHandler(jobs JobController, adapter *httpcontext.Adapter, logger *zap.Logger) *JobsHandler {
	return &JobsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		jobs:        jobs,
	}
}

// @Summary List scheduled jobs
// @Tags jobs
// @Router /api/v1/jobs [get]
func (h *JobsHandler) List(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.jobs.Jobs())
}

// @Summary Restart one job
// @Tags jobs
// @Router /api/v1/jobs/{name}/restart [post]
func (h *JobsHandler) Restart(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}
	name := pathParam(ctx, "name")

	if err := h.jobs.Restart(name); err != nil {
		if errors.Is(err, scheduler.ErrUnknownJob) {
			h.respondError(ctx, domain.WrapError(domain.ErrCodeNotFound, "job not found", err))
			return
		}
		h.respondError(ctx, domain.WrapError(domain.ErrCodeInternal, "restart job", err))
		return
	}

	h.logger.Info("job restarted via api", zap.String("job", name), zap.String("actor", actor))
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"job": name, "scheduled": h.jobs.Status()[name]})
}
