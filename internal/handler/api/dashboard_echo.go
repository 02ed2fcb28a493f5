package api

import (
	"context"

	"NewsImpact/internal/domain/models"
	"NewsImpact/internal/service/ratelimit"
	"NewsImpact/internal/usecase"
	xhttp "NewsImpact/pkg/http"
	xlogger "NewsImpact/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Sessions looks up and creates dashboard sessions.
type Sessions interface {
	Create() (string, *usecase.Controller)
	Get(id string) (*usecase.Controller, bool)
}

// DashboardEchoHandler maps the dashboard's intents onto HTTP routes.
type DashboardEchoHandler struct {
	logger   *xlogger.Logger
	sessions Sessions
	limiter  ratelimit.Limiter
}

func NewDashboardEchoHandler(logger *xlogger.Logger, sessions Sessions, limiter ratelimit.Limiter) *DashboardEchoHandler {
	return &DashboardEchoHandler{logger: logger, sessions: sessions, limiter: limiter}
}

type sessionResponse struct {
	ID       string          `json:"id"`
	Snapshot models.Snapshot `json:"snapshot"`
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/sessions")
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id/form", h.EditForm)
	g.POST("/:id/submit", h.Submit)
	g.PUT("/:id/range", h.ChangeRange)
	g.PUT("/:id/filter", h.ChangeFilter)
	g.POST("/:id/theme", h.ToggleTheme)
	g.GET("/:id/stream", h.Stream)
}

func (h *DashboardEchoHandler) controller(id string) (*usecase.Controller, error) {
	ctrl, ok := h.sessions.Get(id)
	if !ok {
		return nil, xhttp.NotFoundErrorf("session %s not found", id)
	}
	return ctrl, nil
}

func (h *DashboardEchoHandler) Create(c echo.Context) error {
	id, ctrl := h.sessions.Create()
	return xhttp.CreatedResponse(c, sessionResponse{ID: id, Snapshot: ctrl.Snapshot()})
}

func (h *DashboardEchoHandler) Get(c echo.Context) error {
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctrl, err := h.controller(req.ID)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, ctrl.Snapshot())
}

func (h *DashboardEchoHandler) EditForm(c echo.Context) error {
	req := &models.FormRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctrl, err := h.controller(req.ID)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, ctrl.EditForm(req.Ticker, req.Date))
}

func (h *DashboardEchoHandler) Submit(c echo.Context) error {
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctrl, err := h.controller(req.ID)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	ctx := c.Request().Context()
	allowed, err := h.limiter.Allow(ctx, req.ID)
	if err != nil {
		// fail open: the limiter only protects the upstream services
		h.logger.Warn("rate limiter unavailable", xlogger.String("session", req.ID), xlogger.Error(err))
		allowed = true
	}
	if !allowed {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many submissions, slow down"))
	}

	// the pipeline commits even if the caller goes away; stream observers still want the result
	snap := ctrl.Submit(context.WithoutCancel(ctx))
	return xhttp.SuccessResponse(c, snap)
}

func (h *DashboardEchoHandler) ChangeRange(c echo.Context) error {
	req := &models.RangeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := models.ParseTimeRange(req.Range)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	ctrl, err := h.controller(req.ID)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, ctrl.ChangeTimeRange(r))
}

func (h *DashboardEchoHandler) ChangeFilter(c echo.Context) error {
	req := &models.FilterRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := models.ParseSentimentFilter(req.Filter)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	ctrl, err := h.controller(req.ID)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, ctrl.ChangeSentimentFilter(f))
}

func (h *DashboardEchoHandler) ToggleTheme(c echo.Context) error {
	req := &models.SessionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctrl, err := h.controller(req.ID)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, ctrl.ToggleTheme())
}
