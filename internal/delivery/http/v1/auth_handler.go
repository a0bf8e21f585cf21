package v1

import (
	"net/http"

	"keyskeeper-backend/internal/delivery/http/response"
	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

func NewAuthHandler(tokenOnly *gin.RouterGroup, protected *gin.RouterGroup, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	// Token-only routes: valid Supabase token, profile row may not exist yet
	auth := tokenOnly.Group("/auth")
	{
		auth.POST("/ensure-profile", handler.EnsureProfile)
		auth.POST("/resend-verification", handler.ResendVerification)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
		protectedAuth.PUT("/contact", handler.UpdateContact)
	}
}

type EnsureProfileRequest struct {
	Role string `json:"role"`
}

// EnsureProfile godoc
// @Summary      Ensure a profile row exists
// @Description  Creates the profile row for a confirmed auth user (idempotent)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      EnsureProfileRequest  false  "Requested role"
// @Success      200   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /auth/ensure-profile [post]
// @Security     BearerAuth
func (h *AuthHandler) EnsureProfile(c *gin.Context) {
	authID := c.GetString(string(domain.KeyUserID))
	email := c.GetString(string(domain.KeyUserEmail))
	if authID == "" {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	var req EnsureProfileRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	profile, err := h.authUC.EnsureProfile(c, authID, email, domain.Role(req.Role))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile ready", gin.H{
		"profile":     profile,
		"redirect_to": profile.Role.LandingRoute(),
	})
}

// ResendVerification godoc
// @Summary      Resend the verification email
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /auth/resend-verification [post]
// @Security     BearerAuth
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	email := c.GetString(string(domain.KeyUserEmail))
	if email == "" {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return
	}

	if err := h.authUC.ResendVerification(c, email); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Verification email sent", nil)
}

// Me godoc
// @Summary      Current profile
// @Description  Returns the resolved profile plus role routing data
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	authID := c.GetString(string(domain.KeyUserID))

	profile, err := h.authUC.GetCurrentProfile(c, authID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Current profile", gin.H{
		"profile":     profile,
		"landing":     profile.Role.LandingRoute(),
		"nav_entries": profile.Role.NavEntries(),
	})
}

type UpdateContactRequest struct {
	FullName string `json:"full_name" binding:"omitempty,valid_name"`
	Phone    string `json:"phone" binding:"omitempty,valid_phone"`
}

// UpdateContact godoc
// @Summary      Update contact details
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      UpdateContactRequest  true  "Contact details"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /auth/contact [put]
// @Security     BearerAuth
func (h *AuthHandler) UpdateContact(c *gin.Context) {
	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	authID := c.GetString(string(domain.KeyUserID))

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	if err := h.authUC.UpdateContactDetails(c, authID, toPtr(req.FullName), toPtr(req.Phone)); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Contact details updated", nil)
}
