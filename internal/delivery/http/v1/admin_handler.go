package v1

import (
	"net/http"
	"strconv"

	"keyskeeper-backend/internal/delivery/http/middleware"
	"keyskeeper-backend/internal/delivery/http/response"
	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminUC domain.AdminUsecase
}

func NewAdminHandler(protected *gin.RouterGroup, adminUC domain.AdminUsecase) {
	handler := &AdminHandler{adminUC: adminUC}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		admin.GET("/users", handler.ListUsers)
		admin.PUT("/users/:id/verify", handler.VerifyUser)
		admin.PUT("/users/:id/role", handler.AssignRole)
		admin.PUT("/listings/:id/compliance", handler.OverrideCompliance)
		admin.GET("/stats", handler.Stats)
	}
}

// ListUsers godoc
// @Summary      List user profiles
// @Tags         admin
// @Produce      json
// @Param        role       query     string  false  "Role filter"
// @Param        page       query     int     false  "Page number"
// @Param        page_size  query     int     false  "Page size"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/users [get]
// @Security     BearerAuth
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	profiles, total, err := h.adminUC.ListProfiles(c, domain.Role(c.Query("role")), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User profiles", gin.H{
		"profiles":  profiles,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type VerifyUserRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

// VerifyUser godoc
// @Summary      Set a profile's verified flag
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Profile ID"
// @Param        body  body      VerifyUserRequest  true  "Verified flag"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/users/{id}/verify [put]
// @Security     BearerAuth
func (h *AdminHandler) VerifyUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return
	}

	var req VerifyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.adminUC.VerifyProfile(c, id, *req.Verified); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile verification updated", nil)
}

type AssignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// AssignRole godoc
// @Summary      Assign a role to a profile
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Profile ID"
// @Param        body  body      AssignRoleRequest  true  "Role"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/users/{id}/role [put]
// @Security     BearerAuth
func (h *AdminHandler) AssignRole(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.adminUC.AssignRole(c, id, domain.Role(req.Role)); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Role assigned", nil)
}

type OverrideComplianceRequest struct {
	Status string `json:"status" binding:"required"`
}

// OverrideCompliance godoc
// @Summary      Override a listing's compliance status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int                        true  "Listing ID"
// @Param        body  body      OverrideComplianceRequest  true  "Compliance status"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/listings/{id}/compliance [put]
// @Security     BearerAuth
func (h *AdminHandler) OverrideCompliance(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return
	}

	var req OverrideComplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.adminUC.OverrideCompliance(c, id, domain.ComplianceStatus(req.Status)); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Compliance status updated", nil)
}

// Stats godoc
// @Summary      Platform statistics
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /admin/stats [get]
// @Security     BearerAuth
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminUC.Stats(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Platform stats", stats)
}
