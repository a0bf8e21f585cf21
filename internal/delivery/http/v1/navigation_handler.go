package v1

import (
	"net/http"

	"keyskeeper-backend/internal/delivery/http/response"
	"keyskeeper-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type NavigationHandler struct{}

func NewNavigationHandler(protected *gin.RouterGroup) {
	handler := &NavigationHandler{}
	protected.GET("/navigation", handler.Get)
}

// Get godoc
// @Summary      Role navigation
// @Description  Returns the landing route and nav entries for the caller's role
// @Tags         navigation
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /navigation [get]
// @Security     BearerAuth
func (h *NavigationHandler) Get(c *gin.Context) {
	role := domain.Role(c.GetString(string(domain.KeyUserRole)))

	response.Success(c, http.StatusOK, "Navigation", gin.H{
		"role":        role,
		"landing":     role.LandingRoute(),
		"nav_entries": role.NavEntries(),
	})
}
