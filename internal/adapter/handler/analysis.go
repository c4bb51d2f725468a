package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetingops/taskbridge/errors"
	analysisdto "github.com/meetingops/taskbridge/internal/adapter/dto/analysis"
	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/internal/usecase/analysis"
)

// Analysis handles transcript analysis HTTP requests
type Analysis struct {
	service *analysis.Service
	logger  *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *analysis.Service, logger *zap.Logger) *Analysis {
	return &Analysis{
		service: service,
		logger:  logger,
	}
}

// AnalyzeText handles POST /analyses/text
// @Summary      Analyze transcript text
// @Description  Extracts action items, summary and key decisions from raw transcript text
// @Tags         Analyses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      analysis.AnalyzeTextRequest  true  "Transcript and meeting context"
// @Success      201      {object}  analysis.RunResponse  "Extraction run created"
// @Failure      400      {object}  map[string]interface{}  "Invalid request or unknown meeting category"
// @Failure      500      {object}  map[string]interface{}  "Extraction pipeline failure"
// @Router       /analyses/text [post]
func (h *Analysis) AnalyzeText(c echo.Context) error {
	var req analysisdto.AnalyzeTextRequest
	if err := BindAndValidate(c, &req); err != nil {
		return HandleError(c, h.logger, err)
	}

	run, err := h.service.AnalyzeText(c.Request().Context(), req.Transcript, req.ToMeetingContext())
	if err != nil {
		return HandleError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, analysisdto.FromRun(run))
}

// AnalyzeDocument handles POST /analyses
// @Summary      Analyze an uploaded document
// @Description  Extracts text from an uploaded PDF or plain-text file, then analyzes it
// @Tags         Analyses
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file              formData  file    true   "Transcript document (.pdf or .txt, max 50MB)"
// @Param        meeting_category  formData  string  true   "sales_call | internal_meeting | project_meeting | existing_customer"
// @Param        subject_name      formData  string  true   "Customer, department or project name"
// @Param        department        formData  string  false  "Department for internal meetings"
// @Param        project           formData  string  false  "Project for project meetings"
// @Param        customer_context  formData  string  false  "Free-text account background"
// @Param        recording_link    formData  string  false  "Recording URL"
// @Success      201  {object}  analysis.RunResponse  "Extraction run created"
// @Failure      400  {object}  map[string]interface{}  "Invalid file or meeting context"
// @Failure      422  {object}  map[string]interface{}  "Text extraction failed"
// @Router       /analyses [post]
func (h *Analysis) AnalyzeDocument(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return HandleError(c, h.logger, apperrors.ErrInvalidArgument("file is required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return HandleError(c, h.logger, apperrors.ErrInternal(err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return HandleError(c, h.logger, apperrors.ErrInternal(err))
	}

	mctx := entities.MeetingContext{
		Category:        entities.MeetingCategory(c.FormValue("meeting_category")),
		SubjectName:     c.FormValue("subject_name"),
		Department:      c.FormValue("department"),
		Project:         c.FormValue("project"),
		CustomerContext: c.FormValue("customer_context"),
		RecordingLink:   c.FormValue("recording_link"),
	}

	run, err := h.service.AnalyzeDocument(c.Request().Context(), fileHeader.Filename, data, mctx)
	if err != nil {
		return HandleError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, analysisdto.FromRun(run))
}

// GetRun handles GET /analyses/:id
// @Summary      Get one extraction run
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Extraction run ID"
// @Success      200  {object}  analysis.RunResponse
// @Failure      404  {object}  map[string]interface{}  "Run not found"
// @Router       /analyses/{id} [get]
func (h *Analysis) GetRun(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(c, h.logger, apperrors.ErrInvalidArgument("id must be a UUID"))
	}

	run, err := h.service.GetRun(c.Request().Context(), id)
	if err != nil {
		return HandleError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, analysisdto.FromRun(run))
}

// ListRuns handles GET /analyses
// @Summary      List extraction runs
// @Tags         Analyses
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size (max 100)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {object}  analysis.ListRunsResponse
// @Router       /analyses [get]
func (h *Analysis) ListRuns(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	runs, err := h.service.ListRuns(c.Request().Context(), limit, offset)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	resp := analysisdto.ListRunsResponse{Runs: make([]analysisdto.RunResponse, 0, len(runs))}
	for i := range runs {
		resp.Runs = append(resp.Runs, analysisdto.FromRun(&runs[i]))
	}
	resp.Total = len(resp.Runs)
	return c.JSON(http.StatusOK, resp)
}

// CreateTasks handles POST /analyses/:id/tasks
// @Summary      Create tasks from an extraction run
// @Description  Enriches the run's action items and creates them in the configured Asana project
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Extraction run ID"
// @Param        request  body      analysis.CreateTasksRequest  false  "Optional section override"
// @Success      201  {object}  analysis.CreateTasksResponse  "Tasks created (possibly fewer than requested)"
// @Failure      404  {object}  map[string]interface{}  "Run not found"
// @Failure      422  {object}  map[string]interface{}  "Project not configured for subject"
// @Failure      502  {object}  map[string]interface{}  "Task sink unavailable"
// @Router       /analyses/{id}/tasks [post]
func (h *Analysis) CreateTasks(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(c, h.logger, apperrors.ErrInvalidArgument("id must be a UUID"))
	}

	var req analysisdto.CreateTasksRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(c, h.logger, apperrors.ErrInvalidPayload())
	}

	run, created, err := h.service.CreateTasks(c.Request().Context(), id, req.SectionName)
	if err != nil {
		return HandleError(c, h.logger, err)
	}

	requested := len(analysisdto.FromRun(run).ActionItems)
	return c.JSON(http.StatusCreated, analysisdto.CreateTasksResponse{
		RunID:     run.ID.String(),
		Requested: requested,
		Created:   len(created),
		Tasks:     created,
	})
}
