package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"quietseed/internal/model"
	"quietseed/internal/service"
)

// SettingsHandler serves site settings and static pages.
type SettingsHandler struct {
	settingsService service.SettingsService
	pageService     service.PageService
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settingsService service.SettingsService, pageService service.PageService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, pageService: pageService}
}

// UpdateSettingsRequest carries the new tagline, 10 to 200 characters.
type UpdateSettingsRequest struct {
	Tagline *string `json:"tagline" validate:"required,min=10,max=200"`
}

// UpdatePageRequest is a partial page update.
type UpdatePageRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string `json:"content"`
}

// GetSettings godoc
// @Summary Get site settings
// @Tags settings
// @Produce json
// @Success 200 {object} model.SiteSettings
// @Failure 500 {object} errors.ErrorResponse
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	settings, err := h.settingsService.Get(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Update the site tagline
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateSettingsRequest true "Settings"
// @Success 200 {object} model.SiteSettings
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	var req UpdateSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	settings, err := h.settingsService.Update(c.Request().Context(), model.SiteSettingsPatch{Tagline: req.Tagline})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// GetPage godoc
// @Summary Get static page content
// @Tags pages
// @Produce json
// @Param id path string true "Page ID" example(about)
// @Success 200 {object} model.PageContent
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /pages/{id} [get]
func (h *SettingsHandler) GetPage(c echo.Context) error {
	page, err := h.pageService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// UpdatePage godoc
// @Summary Create or update static page content
// @Tags pages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Page ID"
// @Param request body UpdatePageRequest true "Fields to change"
// @Success 200 {object} model.PageContent
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /pages/{id} [put]
func (h *SettingsHandler) UpdatePage(c echo.Context) error {
	id := c.Param("id")
	if id == "" || len(id) > 64 {
		return badRequest("invalid page ID", "INVALID_ID")
	}

	var req UpdatePageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	page, err := h.pageService.Update(c.Request().Context(), id, model.PageContentPatch{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}
