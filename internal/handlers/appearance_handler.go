package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/services"
)

// AppearanceHandler serves and changes the application branding.
type AppearanceHandler struct {
	appearanceService services.AppearanceServicer
	auditService      services.AuditServicer
}

// NewAppearanceHandler creates a new AppearanceHandler.
func NewAppearanceHandler(appearanceService services.AppearanceServicer, auditService services.AuditServicer) *AppearanceHandler {
	return &AppearanceHandler{appearanceService: appearanceService, auditService: auditService}
}

// AppearanceUpdatedMessage acknowledges a saved appearance change.
const AppearanceUpdatedMessage = "Appearance updated"

// GetAppearance returns the current branding
// @Summary     Current appearance
// @Description The newest appearance settings: application name, icon and logo paths under /storage
// @Tags        appearance
// @Produce     json
// @Success     200 {object} models.Appearance "Current appearance"
// @Failure     404 {object} ErrorResponse "No appearance configured"
// @Router      /appearance [get]
func (h *AppearanceHandler) GetAppearance(c *gin.Context) {
	current, err := h.appearanceService.Current(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"appearance": current})
}

// GetAppearanceHistory returns every saved appearance, newest first
// @Summary     Appearance history
// @Tags        appearance
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Appearance] "Paginated history"
// @Router      /settings/appearance/history [get]
func (h *AppearanceHandler) GetAppearanceHistory(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.appearanceService.History(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateAppearance saves new branding settings
// @Summary     Update appearance
// @Description Append new appearance settings. Icon and logo are optional; when omitted the current files are kept.
// @Tags        appearance
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       name_app formData string false "Application name"
// @Param       icon_app formData file   false "Icon (jpg, jpeg, png, ico; max 2 MiB)"
// @Param       logo_app formData file   false "Logo (jpg, jpeg, png; max 2 MiB)"
// @Success     201 {object} models.Appearance "Appearance saved"
// @Failure     400 {object} ErrorResponse "Invalid upload"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings/appearance [post]
func (h *AppearanceHandler) UpdateAppearance(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	in := services.AppearanceInput{}
	if name, ok := c.GetPostForm("name_app"); ok {
		if len(name) > 100 {
			respondWithError(c, apperrors.WithFields(apperrors.ErrInvalidInput, "Validation failed",
				map[string]string{"name_app": "must be at most 100 characters"}))
			return
		}
		in.NameApp = &name
	}
	if in.Icon, err = optionalFile(c, "icon_app"); err != nil {
		respondWithError(c, err)
		return
	}
	if in.Logo, err = optionalFile(c, "logo_app"); err != nil {
		respondWithError(c, err)
		return
	}

	current, err := h.appearanceService.Apply(c.Request.Context(), actor, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "UPDATE_APPEARANCE", "appearance", current.ID,
		map[string]interface{}{"name_app": current.NameApp, "icon_app": current.IconApp, "logo_app": current.LogoApp})

	c.JSON(http.StatusCreated, gin.H{
		"message":    AppearanceUpdatedMessage,
		"appearance": current,
	})
}

// optionalFile returns the uploaded file for field, or nil when none was sent.
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err == nil {
		return fh, nil
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}
