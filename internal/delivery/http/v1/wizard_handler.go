package v1

import (
	"net/http"

	"keyskeeper-backend/internal/delivery/http/response"
	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type WizardHandler struct {
	wizardUC domain.WizardUsecase
}

func NewWizardHandler(protected *gin.RouterGroup, wizardUC domain.WizardUsecase, uploadLimiter gin.HandlerFunc) {
	handler := &WizardHandler{wizardUC: wizardUC}

	wizards := protected.Group("/wizard/:flow")
	{
		wizards.POST("/start", handler.Start)
		wizards.GET("", handler.Get)
		wizards.PUT("/fields", handler.SetFields)
		wizards.POST("/toggle", handler.Toggle)
		wizards.POST("/next", handler.Next)
		wizards.POST("/prev", handler.Prev)
		wizards.POST("/submit", uploadLimiter, handler.Submit)
	}
}

// Start godoc
// @Summary      Start a wizard flow
// @Description  Creates a fresh session for the flow, replacing any existing one
// @Tags         wizard
// @Produce      json
// @Param        flow  path  string  true  "Flow name"
// @Success      201  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /wizard/{flow}/start [post]
// @Security     BearerAuth
func (h *WizardHandler) Start(c *gin.Context) {
	s, err := h.wizardUC.Start(c, c.Param("flow"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Wizard started", s)
}

// Get godoc
// @Summary      Get the wizard session
// @Tags         wizard
// @Produce      json
// @Param        flow  path  string  true  "Flow name"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /wizard/{flow} [get]
// @Security     BearerAuth
func (h *WizardHandler) Get(c *gin.Context) {
	s, err := h.wizardUC.Get(c, c.Param("flow"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Wizard session", s)
}

// SetFields godoc
// @Summary      Set wizard field values
// @Description  Merges the given fields into the session's value bag
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        flow    path  string          true  "Flow name"
// @Param        fields  body  map[string]any  true  "Field values"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /wizard/{flow}/fields [put]
// @Security     BearerAuth
func (h *WizardHandler) SetFields(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	s, err := h.wizardUC.SetFields(c, c.Param("flow"), fields)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Fields updated", s)
}

type ToggleRequest struct {
	Collection string `json:"collection" binding:"required"`
	Value      string `json:"value" binding:"required"`
}

// Toggle godoc
// @Summary      Toggle a value in a wizard collection
// @Description  Adds the value if absent, removes it if present
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Param        flow  path  string         true  "Flow name"
// @Param        body  body  ToggleRequest  true  "Collection and value"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /wizard/{flow}/toggle [post]
// @Security     BearerAuth
func (h *WizardHandler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	s, err := h.wizardUC.Toggle(c, c.Param("flow"), req.Collection, req.Value)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Value toggled", s)
}

// Next godoc
// @Summary      Advance the wizard one step
// @Description  Validates the current step first. On failure the session comes back unchanged with the error list populated.
// @Tags         wizard
// @Produce      json
// @Param        flow  path  string  true  "Flow name"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /wizard/{flow}/next [post]
// @Security     BearerAuth
func (h *WizardHandler) Next(c *gin.Context) {
	s, err := h.wizardUC.Next(c, c.Param("flow"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Wizard session", s)
}

// Prev godoc
// @Summary      Go back one wizard step
// @Description  Always succeeds above step one; entered values are preserved
// @Tags         wizard
// @Produce      json
// @Param        flow  path  string  true  "Flow name"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /wizard/{flow}/prev [post]
// @Security     BearerAuth
func (h *WizardHandler) Prev(c *gin.Context) {
	s, err := h.wizardUC.Prev(c, c.Param("flow"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Wizard session", s)
}

// Submit godoc
// @Summary      Submit the wizard
// @Description  Re-validates every step, then runs the flow's pipeline. Listing submissions accept photos as multipart files.
// @Tags         wizard
// @Accept       multipart/form-data
// @Produce      json
// @Param        flow  path  string  true  "Flow name"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /wizard/{flow}/submit [post]
// @Security     BearerAuth
func (h *WizardHandler) Submit(c *gin.Context) {
	var images []domain.ImageUpload

	// Photos ride along as multipart files; JSON submits carry none.
	if form, err := c.MultipartForm(); err == nil && form != nil {
		opened, closeAll, err := openImages(form.File["images"])
		if err != nil {
			c.Error(apperror.BadRequest("could not read uploaded files"))
			return
		}
		defer closeAll()
		images = opened
	}

	result, err := h.wizardUC.Submit(c, c.Param("flow"), images)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Wizard submitted", result)
}
