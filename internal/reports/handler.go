package reports

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ledgerline/practice-portal/practice-portal-backend/internal/clients"
	"ledgerline/practice-portal/practice-portal-backend/internal/workflow"
)

// Handler serves report downloads.
type Handler struct {
	service      *Service
	clients      clients.Service
	workflows    workflow.Service
	practiceName string
}

func NewHandler(service *Service, clientSvc clients.Service, workflowSvc workflow.Service, practiceName string) *Handler {
	return &Handler{service: service, clients: clientSvc, workflows: workflowSvc, practiceName: practiceName}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/workload", h.Workload)
		reports.GET("/workload.xlsx", h.WorkloadExcel)
	}
	rg.GET("/workflows/:id/chase-letter.pdf", h.ChaseLetter)
}

func (h *Handler) Workload(c *gin.Context) {
	rows, err := h.service.Workload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) WorkloadExcel(c *gin.Context) {
	rows, err := h.service.Workload(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	buf, err := writeWorkloadSheet(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="deadline-workload.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) ChaseLetter(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow id"})
		return
	}
	w, err := h.workflows.GetWorkflow(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, workflow.ErrWorkflowNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clients.Get(c.Request.Context(), w.ClientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	buf, err := ChaseLetter(client, w, h.practiceName, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="chase-letter.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
