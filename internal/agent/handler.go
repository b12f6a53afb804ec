package agent

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"inboxai/internal/logger"
	"inboxai/pkg/errors"
)

type BaseHandler struct {
	Service Service
	Logger  logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

type Handler struct {
	BaseHandler
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{
			Service: service,
			Logger:  log,
		},
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		agents := v1.Group("/agents")
		{
			agents.GET("", h.ListAgents)
			agents.POST("", h.CreateAgent)
			agents.GET("/:id", h.GetAgent)
			agents.PUT("/:id", h.UpdateAgent)
			agents.DELETE("/:id", h.DeleteAgent)
			agents.POST("/:id/summarize", h.Summarize)
			agents.GET("/:id/history", h.History)
		}
	}
}

func (h *Handler) ListAgents(c *gin.Context) {
	agents, err := h.Service.ListAgents(c.Request.Context(), c.Query("org_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if agents == nil {
		agents = []Agent{}
	}
	c.JSON(http.StatusOK, agents)
}

func (h *Handler) CreateAgent(c *gin.Context) {
	var req CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	a, err := h.Service.CreateAgent(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAgent(c *gin.Context) {
	a, err := h.Service.GetAgent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAgent(c *gin.Context) {
	var req UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	a, err := h.Service.UpdateAgent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAgent(c *gin.Context) {
	if err := h.Service.DeleteAgent(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Summarize runs the digest pipeline synchronously and returns the summary
// records. Partial failure inside the batch is still a 200; only auth and
// listing failures surface as errors.
func (h *Handler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	records, err := h.Service.Summarize(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	digests, err := h.Service.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, digests)
}
