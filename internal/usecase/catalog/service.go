package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/meetingops/taskbridge/errors"
	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/pkg/config"
)

// PlaceholderPrefix marks a project ID that was copied from the example
// catalog but never filled in. Task creation is blocked for these subjects.
const PlaceholderPrefix = "YOUR_"

// Catalog file names, one per meeting category.
const (
	customersFile         = "customers.json"
	departmentsFile       = "departments.json"
	projectsFile          = "projects.json"
	existingCustomersFile = "existing_customers.json"
	rosterFile            = "roster.json"
)

// Service owns the subject-to-project mapping and the delegation roster.
// The catalog is read once at startup; edits require a restart.
type Service struct {
	logger     *zap.Logger
	byCategory map[entities.MeetingCategory]map[string]string
	roster     map[string]string
}

func NewService(cfg *config.CatalogConfig, logger *zap.Logger) (*Service, error) {
	s := &Service{
		logger:     logger,
		byCategory: make(map[entities.MeetingCategory]map[string]string),
		roster:     make(map[string]string),
	}

	files := map[entities.MeetingCategory]string{
		entities.CategorySalesCall:        customersFile,
		entities.CategoryInternalMeeting:  departmentsFile,
		entities.CategoryProjectMeeting:   projectsFile,
		entities.CategoryExistingCustomer: existingCustomersFile,
	}
	for category, file := range files {
		mapping, err := loadMapping(filepath.Join(cfg.Dir, file))
		if err != nil {
			return nil, fmt.Errorf("load catalog file %s: %w", file, err)
		}
		s.byCategory[category] = mapping
	}

	roster, err := loadMapping(filepath.Join(cfg.Dir, rosterFile))
	if err != nil {
		return nil, fmt.Errorf("load catalog file %s: %w", rosterFile, err)
	}
	s.roster = roster

	logger.Info("📇 Catalog loaded",
		zap.String("dir", cfg.Dir),
		zap.Int("customers", len(s.byCategory[entities.CategorySalesCall])),
		zap.Int("departments", len(s.byCategory[entities.CategoryInternalMeeting])),
		zap.Int("projects", len(s.byCategory[entities.CategoryProjectMeeting])),
		zap.Int("existing_customers", len(s.byCategory[entities.CategoryExistingCustomer])),
		zap.Int("roster", len(roster)))
	return s, nil
}

// loadMapping reads one flat string-to-string JSON catalog file. A missing
// file is treated as an empty mapping so partial catalogs still boot.
func loadMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// ResolveProject returns the Asana project ID configured for the subject.
// Unknown subjects and placeholder IDs both fail; a placeholder means the
// catalog entry exists but was never filled in.
func (s *Service) ResolveProject(category entities.MeetingCategory, subjectName string) (string, error) {
	mapping, ok := s.byCategory[category]
	if !ok {
		return "", apperrors.ErrUnknownMeetingCategory(string(category))
	}

	projectID, ok := mapping[subjectName]
	if !ok {
		// Fall back to a case-insensitive scan so "acme corp" still
		// resolves the "Acme Corp" entry.
		for name, id := range mapping {
			if strings.EqualFold(name, subjectName) {
				projectID, ok = id, true
				break
			}
		}
	}
	if !ok {
		return "", apperrors.ErrNotFound(fmt.Sprintf("subject %q", subjectName))
	}
	if strings.HasPrefix(projectID, PlaceholderPrefix) {
		return "", apperrors.ErrProjectNotConfigured(subjectName)
	}
	return projectID, nil
}

// Roster returns the role-to-assignee delegation defaults for prompt
// injection.
func (s *Service) Roster() map[string]string {
	return s.roster
}

// Subjects lists the configured subject names for a category, sorted, with
// a flag for entries still carrying a placeholder project ID.
func (s *Service) Subjects(category entities.MeetingCategory) []SubjectInfo {
	mapping := s.byCategory[category]
	subjects := make([]SubjectInfo, 0, len(mapping))
	for name, id := range mapping {
		subjects = append(subjects, SubjectInfo{
			Name:       name,
			Configured: !strings.HasPrefix(id, PlaceholderPrefix),
		})
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects
}

// SubjectInfo is one catalog entry as exposed over the API. The project ID
// itself stays server-side.
type SubjectInfo struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}
