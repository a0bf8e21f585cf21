package v1

import (
	"net/http"
	"strconv"
	"time"

	"keyskeeper-backend/internal/delivery/http/response"
	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ViewingHandler struct {
	viewingUC domain.ViewingUsecase
}

func NewViewingHandler(protected *gin.RouterGroup, viewingUC domain.ViewingUsecase) {
	handler := &ViewingHandler{viewingUC: viewingUC}

	viewings := protected.Group("/viewings")
	{
		viewings.POST("", handler.Request)
		viewings.PUT("/:id/respond", handler.Respond)
	}

	protected.GET("/listings/:id/viewings", handler.ListForListing)
	protected.GET("/tenants/viewings", handler.ListMine)
}

type RequestViewingRequest struct {
	ListingID int64     `json:"listing_id" binding:"required"`
	SlotAt    time.Time `json:"slot_at" binding:"required"`
	Message   string    `json:"message"`
}

// Request godoc
// @Summary      Request a viewing slot
// @Tags         viewings
// @Accept       json
// @Produce      json
// @Param        body  body      RequestViewingRequest  true  "Slot details"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /viewings [post]
// @Security     BearerAuth
func (h *ViewingHandler) Request(c *gin.Context) {
	var req RequestViewingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	var message *string
	if req.Message != "" {
		message = &req.Message
	}

	created, err := h.viewingUC.RequestViewing(c, req.ListingID, req.SlotAt, message)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Viewing requested", created)
}

// ListForListing godoc
// @Summary      List viewings for a listing
// @Tags         viewings
// @Produce      json
// @Param        id         path      int  true   "Listing ID"
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /listings/{id}/viewings [get]
// @Security     BearerAuth
func (h *ViewingHandler) ListForListing(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	viewings, total, err := h.viewingUC.ListForListing(c, id, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Viewings", gin.H{
		"viewings":  viewings,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListMine godoc
// @Summary      List the caller's viewing requests
// @Tags         tenants
// @Produce      json
// @Param        page       query     int  false  "Page number"
// @Param        page_size  query     int  false  "Page size"
// @Success      200  {object}  response.Response
// @Router       /tenants/viewings [get]
// @Security     BearerAuth
func (h *ViewingHandler) ListMine(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	viewings, total, err := h.viewingUC.ListMine(c, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "My viewings", gin.H{
		"viewings":  viewings,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type RespondViewingRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// Respond godoc
// @Summary      Approve or decline a viewing request
// @Tags         viewings
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Viewing ID"
// @Param        body  body      RespondViewingRequest  true  "Decision"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /viewings/{id}/respond [put]
// @Security     BearerAuth
func (h *ViewingHandler) Respond(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return
	}

	var req RespondViewingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.viewingUC.Respond(c, id, *req.Approve); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Viewing response recorded", nil)
}
