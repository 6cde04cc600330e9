package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/api/transport"
	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase/transition"
)

// TaskWorkflow is the status transition engine as seen by the API.
type TaskWorkflow interface {
	Transition(ctx context.Context, taskID string, target domain.Status, actorID string) (*transition.Result, error)
	Assign(ctx context.Context, taskID, assigneeID, actorID string) (*transition.Result, error)
}

type TaskHandler struct {
	baseHandler
	workflow TaskWorkflow
	history  repository.TransitionRepository
}

func NewTaskHandler(workflow TaskWorkflow, history repository.TransitionRepository, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		workflow:    workflow,
		history:     history,
	}
}

// @Summary Change task status
// @Tags tasks
// @Router /api/v1/tasks/{id}/status [post]
func (h *TaskHandler) Transition(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	var req transport.TransitionRequest
	if !h.decode(ctx, &req) {
		return
	}
	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.respondWorkflowError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.workflow.Transition(stdCtx, pathParam(ctx, "id"), target, actor)
	if err != nil {
		h.respondWorkflowError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, toTransitionResponse(result))
}

// @Summary Assign task
// @Tags tasks
// @Router /api/v1/tasks/{id}/assignee [post]
func (h *TaskHandler) Assign(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	var req transport.AssignRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.workflow.Assign(stdCtx, pathParam(ctx, "id"), req.AssigneeID, actor)
	if err != nil {
		h.respondWorkflowError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, toTransitionResponse(result))
}

// @Summary Task status history
// @Tags tasks
// @Router /api/v1/tasks/{id}/history [get]
func (h *TaskHandler) History(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	changes, err := h.history.ListByTask(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if changes == nil {
		changes = []domain.StatusChange{}
	}
	h.respondSuccess(ctx, http.StatusOK, changes)
}

func (h *TaskHandler) respondWorkflowError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("task workflow failed", zap.ByteString("path", ctx.Path()), zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(code, transport.ErrorDetail{
		Message:     err.Error(),
		UserMessage: transition.UserMessage(err),
	}, nil))
}

func toTransitionResponse(result *transition.Result) transport.TransitionResponse {
	return transport.TransitionResponse{
		Task:           result.Task,
		PreviousStatus: result.Previous,
		Changed:        result.Changed,
		Allowed:        result.Task.Status.AllowedTransitions(),
	}
}
