package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetingops/taskbridge/errors"
	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/internal/usecase/catalog"
)

// Catalog exposes the configured subjects per meeting category
type Catalog struct {
	service *catalog.Service
	logger  *zap.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *catalog.Service, logger *zap.Logger) *Catalog {
	return &Catalog{
		service: service,
		logger:  logger,
	}
}

// List handles GET /catalog
// @Summary      List configured subjects
// @Description  Returns the subjects available per meeting category; entries with placeholder project IDs are flagged unconfigured
// @Tags         Catalog
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Limit to one meeting category"
// @Success      200       {object}  map[string][]catalog.SubjectInfo
// @Failure      400       {object}  map[string]interface{}  "Unknown meeting category"
// @Router       /catalog [get]
func (h *Catalog) List(c echo.Context) error {
	if param := c.QueryParam("category"); param != "" {
		category := entities.MeetingCategory(param)
		if !category.Valid() {
			return HandleError(c, h.logger, apperrors.ErrUnknownMeetingCategory(param))
		}
		return c.JSON(http.StatusOK, map[string][]catalog.SubjectInfo{
			param: h.service.Subjects(category),
		})
	}

	out := make(map[string][]catalog.SubjectInfo, 4)
	for _, category := range []entities.MeetingCategory{
		entities.CategorySalesCall,
		entities.CategoryInternalMeeting,
		entities.CategoryProjectMeeting,
		entities.CategoryExistingCustomer,
	} {
		out[string(category)] = h.service.Subjects(category)
	}
	return c.JSON(http.StatusOK, out)
}
