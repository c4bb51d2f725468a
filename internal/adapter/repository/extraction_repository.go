package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/meetingops/taskbridge/internal/domain/entities"
)

// ExtractionRepository handles extraction run persistence
type ExtractionRepository struct {
	db *gorm.DB
}

// NewExtractionRepository creates a new extraction repository
func NewExtractionRepository(db *gorm.DB) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

// Create persists a new extraction run
func (r *ExtractionRepository) Create(ctx context.Context, run *entities.ExtractionRun) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	return r.db.WithContext(ctx).Create(run).Error
}

// GetByID retrieves an extraction run by ID, nil when it does not exist
func (r *ExtractionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.ExtractionRun, error) {
	var run entities.ExtractionRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// List retrieves extraction runs ordered by newest first
func (r *ExtractionRepository) List(ctx context.Context, limit, offset int) ([]entities.ExtractionRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var runs []entities.ExtractionRun
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// RecordCreatedTasks stamps the sink confirmations onto an existing run
func (r *ExtractionRepository) RecordCreatedTasks(ctx context.Context, id uuid.UUID, tasks datatypes.JSON) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&entities.ExtractionRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"created_tasks":    tasks,
			"tasks_created_at": &now,
		}).Error
}
