package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/internal/infrastructure/http/middleware"
	"github.com/meetingops/taskbridge/internal/usecase/analysis"
	"github.com/meetingops/taskbridge/internal/usecase/catalog"
	"github.com/meetingops/taskbridge/internal/usecase/document"
	"github.com/meetingops/taskbridge/internal/usecase/extraction"
	"github.com/meetingops/taskbridge/pkg/ai"
	"github.com/meetingops/taskbridge/pkg/config"
	pkgvalidator "github.com/meetingops/taskbridge/pkg/validator"
)

type stubModel struct {
	replies []string
	calls   int
}

func (s *stubModel) Generate(_ context.Context, _ ai.GenerateRequest) (string, error) {
	if s.calls >= len(s.replies) {
		return "", errors.New("stub exhausted")
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

type memoryRepo struct {
	runs map[uuid.UUID]*entities.ExtractionRun
}

func (r *memoryRepo) Create(_ context.Context, run *entities.ExtractionRun) error {
	r.runs[run.ID] = run
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.ExtractionRun, error) {
	return r.runs[id], nil
}

func (r *memoryRepo) List(_ context.Context, _, _ int) ([]entities.ExtractionRun, error) {
	out := make([]entities.ExtractionRun, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, *run)
	}
	return out, nil
}

func (r *memoryRepo) RecordCreatedTasks(_ context.Context, id uuid.UUID, tasks datatypes.JSON) error {
	if run, ok := r.runs[id]; ok {
		run.CreatedTasks = tasks
	}
	return nil
}

type fakeSink struct{}

func (fakeSink) CreateTasks(_ context.Context, _, _ string, items []entities.ActionItem) ([]entities.CreatedTask, error) {
	created := make([]entities.CreatedTask, 0, len(items))
	for _, item := range items {
		created = append(created, entities.CreatedTask{GID: "gid", Name: item.Title})
	}
	return created, nil
}

const analysisReply = `{
	"action_items": [
		{"title": "` + extraction.MandatorySummaryTitle + `", "description": "Recap.", "priority": "medium"},
		{"title": "Send pricing sheet", "description": "", "priority": "high"}
	],
	"summary": "Good call.",
	"participants": [],
	"key_decisions": [],
	"meeting_title": "Acme discovery"
}`

func newTestAPI(t *testing.T, model ai.ModelClient) (*echo.Echo, *memoryRepo) {
	t.Helper()
	logger := zap.NewNop()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "customers.json"), []byte(`{"Acme Corp": "1207000000000001"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	catalogService, err := catalog.NewService(&config.CatalogConfig{Dir: dir}, logger)
	if err != nil {
		t.Fatal(err)
	}

	gcfg := &config.GeminiConfig{Temperature: 0.1, MaxTokens: 4096}
	engine := extraction.NewEngine(extraction.NewRouter(nil, logger), model, gcfg, logger)
	interpreter := extraction.NewInterpreter(model, gcfg, logger)
	repo := &memoryRepo{runs: make(map[uuid.UUID]*entities.ExtractionRun)}
	service := analysis.NewService(engine, interpreter, document.NewProvider(logger), catalogService, fakeSink{}, repo, nil, nil, logger)

	cfg := &config.Config{}
	cfg.Auth.Disabled = true

	e := echo.New()
	e.Validator = pkgvalidator.New()
	router := NewRouter(cfg, middleware.NewAuthMiddleware(&cfg.Auth),
		NewAnalysisHandler(service, logger),
		NewQuickTaskHandler(service, logger),
		NewCatalogHandler(catalogService, logger))
	router.Setup(e)
	return e, repo
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeTextEndpoint(t *testing.T) {
	e, repo := newTestAPI(t, &stubModel{replies: []string{analysisReply}})

	rec := doJSON(e, http.MethodPost, "/v1/analyses/text", `{
		"transcript": "Ana: welcome\nProspect: thanks",
		"meeting_category": "sales_call",
		"subject_name": "Acme Corp"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID          string                `json:"id"`
		ActionItems []entities.ActionItem `json:"action_items"`
		Degraded    bool                  `json:"degraded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Degraded {
		t.Error("analysis flagged degraded")
	}
	if len(resp.ActionItems) == 0 || resp.ActionItems[0].Title != extraction.MandatorySummaryTitle {
		t.Errorf("unexpected action items: %+v", resp.ActionItems)
	}
	if _, err := uuid.Parse(resp.ID); err != nil {
		t.Errorf("id is not a UUID: %q", resp.ID)
	}
	if len(repo.runs) != 1 {
		t.Errorf("persisted %d runs, want 1", len(repo.runs))
	}
}

func TestAnalyzeTextValidation(t *testing.T) {
	e, _ := newTestAPI(t, &stubModel{})

	tests := []struct {
		name string
		body string
	}{
		{"missing transcript", `{"meeting_category": "sales_call", "subject_name": "Acme Corp"}`},
		{"bad category", `{"transcript": "t", "meeting_category": "standup", "subject_name": "Acme Corp"}`},
		{"missing subject", `{"transcript": "t", "meeting_category": "sales_call"}`},
	}
	for _, tt := range tests {
		rec := doJSON(e, http.MethodPost, "/v1/analyses/text", tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.name, rec.Code)
		}
	}
}

func TestCreateTasksEndpoint(t *testing.T) {
	e, repo := newTestAPI(t, &stubModel{replies: []string{analysisReply}})

	rec := doJSON(e, http.MethodPost, "/v1/analyses/text", `{
		"transcript": "transcript",
		"meeting_category": "sales_call",
		"subject_name": "Acme Corp"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("setup failed: %s", rec.Body.String())
	}
	var runID string
	for id := range repo.runs {
		runID = id.String()
	}

	rec = doJSON(e, http.MethodPost, "/v1/analyses/"+runID+"/tasks", `{}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Requested int                    `json:"requested"`
		Created   int                    `json:"created"`
		Tasks     []entities.CreatedTask `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Created != resp.Requested || len(resp.Tasks) != resp.Created {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetRunNotFound(t *testing.T) {
	e, _ := newTestAPI(t, &stubModel{})

	rec := doJSON(e, http.MethodGet, "/v1/analyses/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/v1/analyses/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQuickTasksEndpoint(t *testing.T) {
	e, _ := newTestAPI(t, &stubModel{replies: []string{
		`{"task_count": 1, "tasks": ["Follow up with Jane"]}`,
		`{"title": "Follow up with Jane", "description": "", "priority": "low"}`,
	}})

	rec := doJSON(e, http.MethodPost, "/v1/quick-tasks", `{
		"text": "Follow up with Jane",
		"meeting_category": "sales_call",
		"subject_name": "Acme Corp"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Tasks []entities.ActionItem `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Tasks) != 1 {
		t.Errorf("tasks = %+v", resp.Tasks)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	e, _ := newTestAPI(t, &stubModel{})

	rec := doJSON(e, http.MethodGet, "/v1/catalog?category=sales_call", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string][]catalog.SubjectInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp["sales_call"]) != 1 || resp["sales_call"][0].Name != "Acme Corp" {
		t.Errorf("resp = %v", resp)
	}

	rec = doJSON(e, http.MethodGet, "/v1/catalog?category=nope", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown category status = %d, want 400", rec.Code)
	}
}
