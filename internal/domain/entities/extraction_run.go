package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExtractionRun is the persisted audit record of one extraction call.
// The analysis itself stays immutable; this row only remembers what was
// extracted and which tasks were eventually created from it.
type ExtractionRun struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Category        string         `json:"meeting_category" gorm:"column:meeting_category;type:varchar(50);not null;index"`
	SubjectName     string         `json:"subject_name" gorm:"type:varchar(255);not null"`
	MeetingTitle    string         `json:"meeting_title" gorm:"type:varchar(255)"`
	Summary         string         `json:"summary" gorm:"type:text"`
	ActionItems     datatypes.JSON `json:"action_items,omitempty" gorm:"type:jsonb"`
	Participants    datatypes.JSON `json:"participants,omitempty" gorm:"type:jsonb"`
	KeyDecisions    datatypes.JSON `json:"key_decisions,omitempty" gorm:"type:jsonb"`
	RecordingLink   string         `json:"recording_link,omitempty" gorm:"type:text"`
	SourceObjectKey string         `json:"source_object_key,omitempty" gorm:"type:varchar(512)"`
	SourceMethod    string         `json:"source_method,omitempty" gorm:"type:varchar(50)"`
	Degraded        bool           `json:"degraded" gorm:"default:false"`
	CreatedTasks    datatypes.JSON `json:"created_tasks,omitempty" gorm:"type:jsonb"`
	TasksCreatedAt  *time.Time     `json:"tasks_created_at,omitempty"`
	ProcessingTime  int            `json:"processing_time,omitempty"` // in milliseconds
	CreatedAt       time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for ExtractionRun
func (ExtractionRun) TableName() string {
	return "extraction_runs"
}

// NewExtractionRun creates a new ExtractionRun entity
func NewExtractionRun(ctx MeetingContext) *ExtractionRun {
	return &ExtractionRun{
		ID:            uuid.New(),
		Category:      string(ctx.Category),
		SubjectName:   ctx.SubjectName,
		RecordingLink: ctx.RecordingLink,
	}
}

// CreatedTask is one confirmation record returned by the task sink.
type CreatedTask struct {
	GID          string `json:"gid"`
	Name         string `json:"name"`
	PermalinkURL string `json:"permalink_url,omitempty"`
}
