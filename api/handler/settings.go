package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/httpcontext"
	"github.com/fastygo/taskpulse/usecase/preferences"
)

// Preferences reads and updates per-user notification settings.
type Preferences interface {
	Get(ctx context.Context, userID string) (domain.DigestSettings, error)
	Update(ctx context.Context, userID string, patch preferences.Patch) (domain.DigestSettings, error)
}

type SettingsHandler struct {
	baseHandler
	prefs Preferences
}

func NewSettingsHandler(prefs Preferences, adapter *httpcontext.Adapter, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		prefs:       prefs,
	}
}

// @Summary Get notification settings of the caller
// @Tags settings
// @Router /api/v1/settings [get]
func (h *SettingsHandler) Get(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	settings, err := h.prefs.Get(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, settings)
}

// @Summary Update notification settings of the caller
// @Tags settings
// @Router /api/v1/settings [put]
func (h *SettingsHandler) Update(ctx *fasthttp.RequestCtx) {
	actor := h.actorID(ctx)
	if actor == "" {
		return
	}

	var patch preferences.Patch
	if !h.decode(ctx, &patch) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	settings, err := h.prefs.Update(stdCtx, actor, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, settings)
}
