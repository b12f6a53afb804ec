package schedule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inboxai/internal/logger"
	"inboxai/pkg/errors"
)

type Handler struct {
	service Service
	logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		schedules := v1.Group("/agents/:id/schedules")
		{
			schedules.GET("", h.ListSchedules)
			schedules.POST("", h.CreateSchedule)
			schedules.GET("/:schedule_id", h.GetSchedule)
			schedules.PUT("/:schedule_id", h.UpdateSchedule)
			schedules.DELETE("/:schedule_id", h.DeleteSchedule)
		}
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

func (h *Handler) ListSchedules(c *gin.Context) {
	schedules, err := h.service.ListSchedules(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	if schedules == nil {
		schedules = []Schedule{}
	}
	c.JSON(http.StatusOK, schedules)
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	sched, err := h.service.CreateSchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sched)
}

func (h *Handler) GetSchedule(c *gin.Context) {
	sched, err := h.service.GetSchedule(c.Request.Context(), c.Param("schedule_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	sched, err := h.service.UpdateSchedule(c.Request.Context(), c.Param("schedule_id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

func (h *Handler) DeleteSchedule(c *gin.Context) {
	if err := h.service.DeleteSchedule(c.Request.Context(), c.Param("schedule_id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
