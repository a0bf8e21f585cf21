package v1

import (
	"net/http"
	"strconv"

	"keyskeeper-backend/internal/delivery/http/response"
	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type MaintenanceHandler struct {
	maintenanceUC domain.MaintenanceUsecase
}

func NewMaintenanceHandler(protected *gin.RouterGroup, maintenanceUC domain.MaintenanceUsecase) {
	handler := &MaintenanceHandler{maintenanceUC: maintenanceUC}

	maintenance := protected.Group("/maintenance")
	{
		maintenance.POST("", handler.File)
		maintenance.GET("", handler.ListByStatus)
		maintenance.PUT("/:id/status", handler.Transition)
	}

	tenants := protected.Group("/tenants")
	{
		tenants.GET("/maintenance", handler.ListMine)
	}
}

type FileMaintenanceRequest struct {
	ListingID   int64  `json:"listing_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority"`
}

// File godoc
// @Summary      File a maintenance request
// @Tags         maintenance
// @Accept       json
// @Produce      json
// @Param        body  body      FileMaintenanceRequest  true  "Request details"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /maintenance [post]
// @Security     BearerAuth
func (h *MaintenanceHandler) File(c *gin.Context) {
	var req FileMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	created, err := h.maintenanceUC.FileRequest(c, req.ListingID, req.Title, req.Description, domain.MaintenancePriority(req.Priority))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Maintenance request filed", created)
}

// ListByStatus godoc
// @Summary      List maintenance requests by status
// @Tags         maintenance
// @Produce      json
// @Param        status     query     string  false  "Status filter"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /maintenance [get]
// @Security     BearerAuth
func (h *MaintenanceHandler) ListByStatus(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	reqs, total, err := h.maintenanceUC.ListByStatus(c, domain.MaintenanceStatus(c.Query("status")), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Maintenance requests", gin.H{
		"requests":  reqs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListMine godoc
// @Summary      List the caller's maintenance requests
// @Tags         tenants
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200  {object}  response.Response
// @Router       /tenants/maintenance [get]
// @Security     BearerAuth
func (h *MaintenanceHandler) ListMine(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	reqs, total, err := h.maintenanceUC.ListMine(c, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "My maintenance requests", gin.H{
		"requests":  reqs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// Transition godoc
// @Summary      Move a maintenance request forward
// @Description  open to in_progress or resolved; in_progress to resolved
// @Tags         maintenance
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Request ID"
// @Param        body  body      TransitionRequest  true  "Target status"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /maintenance/{id}/status [put]
// @Security     BearerAuth
func (h *MaintenanceHandler) Transition(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.maintenanceUC.Transition(c, id, domain.MaintenanceStatus(req.Status)); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Maintenance request updated", nil)
}
