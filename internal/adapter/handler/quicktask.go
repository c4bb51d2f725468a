package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	quicktaskdto "github.com/meetingops/taskbridge/internal/adapter/dto/quicktask"
	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/internal/usecase/analysis"
)

// QuickTask handles free-form quick task HTTP requests
type QuickTask struct {
	service *analysis.Service
	logger  *zap.Logger
}

// NewQuickTaskHandler creates a new quick task handler
func NewQuickTaskHandler(service *analysis.Service, logger *zap.Logger) *QuickTask {
	return &QuickTask{
		service: service,
		logger:  logger,
	}
}

// Interpret handles POST /quick-tasks
// @Summary      Interpret free-form text into tasks
// @Description  Segments the text into independent tasks and structures each one; optionally creates them in Asana
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      quicktask.QuickTaskRequest  true  "Free-form task text"
// @Success      200      {object}  quicktask.QuickTaskResponse
// @Failure      400      {object}  map[string]interface{}  "Invalid request"
// @Failure      422      {object}  map[string]interface{}  "Project not configured for subject"
// @Router       /quick-tasks [post]
func (h *QuickTask) Interpret(c echo.Context) error {
	var req quicktaskdto.QuickTaskRequest
	if err := BindAndValidate(c, &req); err != nil {
		return HandleError(c, h.logger, err)
	}

	mctx := entities.MeetingContext{
		Category:    entities.MeetingCategory(req.MeetingCategory),
		SubjectName: req.SubjectName,
	}
	items, created, err := h.service.QuickTasks(c.Request().Context(), req.Text, mctx, req.CreateTasks)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, quicktaskdto.QuickTaskResponse{
		Tasks:        items,
		CreatedTasks: created,
	})
}
