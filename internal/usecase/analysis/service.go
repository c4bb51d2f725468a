package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/meetingops/taskbridge/errors"
	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/internal/usecase/catalog"
	"github.com/meetingops/taskbridge/internal/usecase/document"
	"github.com/meetingops/taskbridge/internal/usecase/extraction"
)

// RunRepository is the persistence surface the service needs.
type RunRepository interface {
	Create(ctx context.Context, run *entities.ExtractionRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.ExtractionRun, error)
	List(ctx context.Context, limit, offset int) ([]entities.ExtractionRun, error)
	RecordCreatedTasks(ctx context.Context, id uuid.UUID, tasks datatypes.JSON) error
}

// TaskSink creates tasks in the external system of record. Partial failure
// is allowed: the returned slice may be shorter than items.
type TaskSink interface {
	CreateTasks(ctx context.Context, projectID, sectionName string, items []entities.ActionItem) ([]entities.CreatedTask, error)
}

// ObjectStore archives uploaded source documents. Optional.
type ObjectStore interface {
	UploadDocument(ctx context.Context, objectKey string, data []byte, contentType string) error
}

// ResultCache memoizes analyses by transcript content. Optional.
type ResultCache interface {
	Key(transcript string, mctx entities.MeetingContext) string
	Get(ctx context.Context, key string) *entities.TranscriptAnalysis
	Set(ctx context.Context, key string, analysis *entities.TranscriptAnalysis)
}

// Service orchestrates the full flow from uploaded bytes or raw text to a
// persisted extraction run and, on request, tasks in the sink.
type Service struct {
	engine      *extraction.Engine
	interpreter *extraction.Interpreter
	documents   *document.Provider
	catalog     *catalog.Service
	sink        TaskSink
	repo        RunRepository
	store       ObjectStore
	cache       ResultCache
	logger      *zap.Logger
}

func NewService(
	engine *extraction.Engine,
	interpreter *extraction.Interpreter,
	documents *document.Provider,
	catalogSvc *catalog.Service,
	sink TaskSink,
	repo RunRepository,
	store ObjectStore,
	cache ResultCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		engine:      engine,
		interpreter: interpreter,
		documents:   documents,
		catalog:     catalogSvc,
		sink:        sink,
		repo:        repo,
		store:       store,
		cache:       cache,
		logger:      logger,
	}
}

// AnalyzeText extracts action items from raw transcript text and persists
// the run.
func (s *Service) AnalyzeText(ctx context.Context, transcript string, mctx entities.MeetingContext) (*entities.ExtractionRun, error) {
	transcript = document.CleanText(transcript)
	if transcript == "" {
		return nil, apperrors.ErrInvalidArgument("transcript must not be empty")
	}
	if mctx.SubjectName == "" {
		return nil, apperrors.ErrInvalidArgument("subject_name is required")
	}
	return s.analyze(ctx, transcript, mctx, "", "text")
}

// AnalyzeDocument validates and extracts text from an uploaded file, then
// runs the same pipeline as AnalyzeText. The original bytes are archived in
// object storage when a store is configured.
func (s *Service) AnalyzeDocument(ctx context.Context, filename string, data []byte, mctx entities.MeetingContext) (*entities.ExtractionRun, error) {
	if mctx.SubjectName == "" {
		return nil, apperrors.ErrInvalidArgument("subject_name is required")
	}
	if err := s.documents.Validate(filename, data); err != nil {
		return nil, err
	}

	text, method := s.documents.Extract(data)
	if method == document.MethodNone {
		return nil, apperrors.ErrDocumentExtractionFailed(filename)
	}

	objectKey := ""
	if s.store != nil {
		objectKey = fmt.Sprintf("documents/%s-%s", uuid.New(), filepath.Base(filename))
		contentType := mime.TypeByExtension(filepath.Ext(filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := s.store.UploadDocument(ctx, objectKey, data, contentType); err != nil {
			// Archiving is best effort; the analysis still proceeds.
			s.logger.Warn("⚠️ Failed to archive source document",
				zap.String("filename", filename),
				zap.Error(err))
			objectKey = ""
		}
	}

	return s.analyze(ctx, text, mctx, objectKey, method)
}

func (s *Service) analyze(ctx context.Context, transcript string, mctx entities.MeetingContext, objectKey, method string) (*entities.ExtractionRun, error) {
	started := time.Now()

	var cacheKey string
	var result *entities.TranscriptAnalysis
	if s.cache != nil {
		cacheKey = s.cache.Key(transcript, mctx)
		if cached := s.cache.Get(ctx, cacheKey); cached != nil {
			s.logger.Info("📦 Analysis served from cache", zap.String("subject", mctx.SubjectName))
			result = cached
		}
	}
	if result == nil {
		analysis, err := s.engine.Extract(ctx, transcript, mctx)
		if err != nil {
			return nil, err
		}
		result = analysis
		if s.cache != nil {
			s.cache.Set(ctx, cacheKey, result)
		}
	}

	run := entities.NewExtractionRun(mctx)
	run.MeetingTitle = result.MeetingTitle
	run.Summary = result.Summary
	run.Degraded = result.IsDegraded()
	run.SourceObjectKey = objectKey
	run.SourceMethod = method
	run.ProcessingTime = int(time.Since(started).Milliseconds())
	run.ActionItems, _ = json.Marshal(result.ActionItems)
	run.Participants, _ = json.Marshal(result.Participants)
	run.KeyDecisions, _ = json.Marshal(result.KeyDecisions)

	if err := s.repo.Create(ctx, run); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create extraction run", err)
	}
	return run, nil
}

// CreateTasks enriches the run's action items and pushes them to the task
// sink, grouped under a dated section inside the subject's project.
func (s *Service) CreateTasks(ctx context.Context, runID uuid.UUID, sectionName string) (*entities.ExtractionRun, []entities.CreatedTask, error) {
	run, err := s.repo.GetByID(ctx, runID)
	if err != nil {
		return nil, nil, apperrors.ErrDBQueryFailed("get extraction run", err)
	}
	if run == nil {
		return nil, nil, apperrors.ErrNotFound("extraction run")
	}

	projectID, err := s.catalog.ResolveProject(entities.MeetingCategory(run.Category), run.SubjectName)
	if err != nil {
		return nil, nil, err
	}

	var items []entities.ActionItem
	if len(run.ActionItems) > 0 {
		if err := json.Unmarshal(run.ActionItems, &items); err != nil {
			return nil, nil, apperrors.ErrInternal(fmt.Errorf("decode stored action items: %w", err))
		}
	}
	if len(items) == 0 {
		return nil, nil, apperrors.ErrInvalidArgument("extraction run has no action items")
	}

	day := run.CreatedAt.Format("01/02")
	if sectionName == "" {
		sectionName = fmt.Sprintf("%s - %s", day, run.MeetingTitle)
	}
	opts := extraction.EnrichOptions{
		MeetingContext: fmt.Sprintf("%s - %s: %s", day, run.SubjectName, run.MeetingTitle),
		RecordingLink:  run.RecordingLink,
	}
	enriched := make([]entities.ActionItem, 0, len(items))
	for _, item := range items {
		enriched = append(enriched, extraction.Enrich(item, opts))
	}

	created, err := s.sink.CreateTasks(ctx, projectID, sectionName, enriched)
	if err != nil {
		return nil, nil, apperrors.ErrAsanaFailed("create tasks", err)
	}

	tasksJSON, _ := json.Marshal(created)
	if err := s.repo.RecordCreatedTasks(ctx, run.ID, tasksJSON); err != nil {
		s.logger.Warn("⚠️ Tasks created but confirmation was not persisted",
			zap.String("run_id", run.ID.String()),
			zap.Error(err))
	}
	return run, created, nil
}

// QuickTasks interprets short free-form text into structured tasks and
// optionally pushes them straight to the sink.
func (s *Service) QuickTasks(ctx context.Context, freeText string, mctx entities.MeetingContext, createTasks bool) ([]entities.ActionItem, []entities.CreatedTask, error) {
	freeText = strings.TrimSpace(freeText)
	if freeText == "" {
		return nil, nil, apperrors.ErrInvalidArgument("text must not be empty")
	}
	if !mctx.Category.Valid() {
		return nil, nil, apperrors.ErrUnknownMeetingCategory(string(mctx.Category))
	}
	if mctx.SubjectName == "" {
		return nil, nil, apperrors.ErrInvalidArgument("subject_name is required")
	}

	items := s.interpreter.Interpret(ctx, freeText, mctx.SubjectName, categoryLabel(mctx.Category))
	if len(items) == 0 {
		return items, nil, nil
	}
	if !createTasks {
		return items, nil, nil
	}

	projectID, err := s.catalog.ResolveProject(mctx.Category, mctx.SubjectName)
	if err != nil {
		return nil, nil, err
	}

	sectionName := fmt.Sprintf("Quick Tasks - %s", time.Now().Format("01/02"))
	created, err := s.sink.CreateTasks(ctx, projectID, sectionName, items)
	if err != nil {
		return nil, nil, apperrors.ErrAsanaFailed("create quick tasks", err)
	}
	return items, created, nil
}

// GetRun loads one extraction run by ID.
func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*entities.ExtractionRun, error) {
	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("get extraction run", err)
	}
	if run == nil {
		return nil, apperrors.ErrNotFound("extraction run")
	}
	return run, nil
}

// ListRuns pages through past extraction runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit, offset int) ([]entities.ExtractionRun, error) {
	runs, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list extraction runs", err)
	}
	return runs, nil
}

func categoryLabel(category entities.MeetingCategory) string {
	switch category {
	case entities.CategorySalesCall:
		return "sales prospect"
	case entities.CategoryInternalMeeting:
		return "internal team"
	case entities.CategoryProjectMeeting:
		return "project"
	case entities.CategoryExistingCustomer:
		return "existing customer"
	default:
		return string(category)
	}
}
