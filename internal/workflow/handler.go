package workflow

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the workflow engine over HTTP.
type Handler struct {
	service Service
	actorFn func(*gin.Context) (Actor, bool)
}

// NewHandler creates a workflow handler. actorFn resolves the authenticated
// actor from the request context.
func NewHandler(service Service, actorFn func(*gin.Context) (Actor, bool)) *Handler {
	return &Handler{service: service, actorFn: actorFn}
}

// RegisterRoutes mounts the workflow endpoints on a router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	workflows := rg.Group("/workflows")
	{
		workflows.POST("", h.Create)
		workflows.GET("/:id", h.Get)
		workflows.PUT("/:id", h.Update)
		workflows.GET("/:id/history", h.History)
	}
	rg.GET("/clients/:id/workflows", h.ListForClient)
}

type createWorkflowBody struct {
	ClientID    uuid.UUID  `json:"client_id" binding:"required"`
	Kind        Kind       `json:"kind" binding:"required"`
	PeriodStart time.Time  `json:"period_start" binding:"required"`
	PeriodEnd   time.Time  `json:"period_end" binding:"required"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := h.actorFn(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var body createWorkflowBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w, err := h.service.CreateWorkflow(c.Request.Context(), CreateWorkflowRequest{
		ClientID:    body.ClientID,
		Kind:        body.Kind,
		PeriodStart: body.PeriodStart,
		PeriodEnd:   body.PeriodEnd,
		AssigneeID:  body.AssigneeID,
	}, actor)
	if err != nil {
		if errors.Is(err, ErrDuplicatePeriod) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, ErrUnknownKind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow id"})
		return
	}
	w, err := h.service.GetWorkflow(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrWorkflowNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, w)
}

type updateWorkflowBody struct {
	NewStage      *Stage     `json:"new_stage"`
	AssigneeID    *uuid.UUID `json:"assignee_id"`
	Notes         string     `json:"notes"`
	AllowOverride bool       `json:"allow_override"`
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := h.actorFn(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow id"})
		return
	}

	var body updateWorkflowBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.UpdateWorkflow(c.Request.Context(), UpdateWorkflowRequest{
		WorkflowID:    id,
		NewStage:      body.NewStage,
		AssigneeID:    body.AssigneeID,
		Notes:         body.Notes,
		AllowOverride: body.AllowOverride,
	}, actor)
	if err != nil {
		var rejection *InvalidTransitionError
		if errors.As(err, &rejection) {
			// The UI renders a confirmation prompt from this payload and
			// re-issues the request with allow_override set.
			c.JSON(http.StatusConflict, rejection)
			return
		}
		if errors.Is(err, ErrWorkflowNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, ErrUnknownStage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow id"})
		return
	}
	entries, err := h.service.ListHistory(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) ListForClient(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}
	workflows, err := h.service.ListForClient(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, workflows)
}
