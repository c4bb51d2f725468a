package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/meetingops/taskbridge/errors"
	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/pkg/config"
)

func writeCatalogFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	writeCatalogFile(t, dir, "customers.json", `{
		"Acme Corp": "1207000000000001",
		"Globex": "YOUR_CUSTOMER_PROJECT_ID"
	}`)
	writeCatalogFile(t, dir, "departments.json", `{"Sales": "1207000000000002"}`)
	writeCatalogFile(t, dir, "roster.json", `{"sales lead": "Dana"}`)

	svc, err := NewService(&config.CatalogConfig{Dir: dir}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestResolveProject(t *testing.T) {
	svc := newTestService(t)

	id, err := svc.ResolveProject(entities.CategorySalesCall, "Acme Corp")
	if err != nil {
		t.Fatalf("ResolveProject: %v", err)
	}
	if id != "1207000000000001" {
		t.Errorf("id = %q", id)
	}
}

func TestResolveProjectCaseInsensitive(t *testing.T) {
	svc := newTestService(t)

	id, err := svc.ResolveProject(entities.CategorySalesCall, "acme corp")
	if err != nil {
		t.Fatalf("ResolveProject: %v", err)
	}
	if id != "1207000000000001" {
		t.Errorf("id = %q", id)
	}
}

func TestResolveProjectPlaceholderBlocked(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ResolveProject(entities.CategorySalesCall, "Globex")
	if err == nil {
		t.Fatal("placeholder project ID must block resolution")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_PROJECT_NOT_CONFIGURED {
		t.Errorf("got %v, want PROJECT_NOT_CONFIGURED", err)
	}
}

func TestResolveProjectUnknownSubject(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ResolveProject(entities.CategorySalesCall, "Initech")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_NOT_FOUND {
		t.Errorf("got %v, want NOT_FOUND", err)
	}
}

func TestMissingCatalogFileIsEmpty(t *testing.T) {
	svc := newTestService(t)

	// projects.json was never written.
	if got := svc.Subjects(entities.CategoryProjectMeeting); len(got) != 0 {
		t.Errorf("missing catalog file should yield no subjects, got %v", got)
	}
}

func TestSubjectsSortedWithPlaceholderFlag(t *testing.T) {
	svc := newTestService(t)

	subjects := svc.Subjects(entities.CategorySalesCall)
	if len(subjects) != 2 {
		t.Fatalf("got %d subjects", len(subjects))
	}
	if subjects[0].Name != "Acme Corp" || !subjects[0].Configured {
		t.Errorf("first subject = %+v", subjects[0])
	}
	if subjects[1].Name != "Globex" || subjects[1].Configured {
		t.Errorf("second subject = %+v", subjects[1])
	}
}

func TestRoster(t *testing.T) {
	svc := newTestService(t)

	if svc.Roster()["sales lead"] != "Dana" {
		t.Errorf("roster = %v", svc.Roster())
	}
}
