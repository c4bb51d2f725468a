package analysis

import (
	"encoding/json"
	"time"

	"github.com/meetingops/taskbridge/internal/domain/entities"
)

// AnalyzeTextRequest is the request to analyze raw transcript text
type AnalyzeTextRequest struct {
	Transcript      string `json:"transcript" validate:"required"`
	MeetingCategory string `json:"meeting_category" validate:"required,oneof=sales_call internal_meeting project_meeting existing_customer"`
	SubjectName     string `json:"subject_name" validate:"required,min=1,max=255"`
	Department      string `json:"department,omitempty"`
	Project         string `json:"project,omitempty"`
	CustomerContext string `json:"customer_context,omitempty"`
	RecordingLink   string `json:"recording_link,omitempty" validate:"omitempty,url"`
}

// ToMeetingContext converts the request into the routing context
func (r *AnalyzeTextRequest) ToMeetingContext() entities.MeetingContext {
	return entities.MeetingContext{
		Category:        entities.MeetingCategory(r.MeetingCategory),
		SubjectName:     r.SubjectName,
		Department:      r.Department,
		Project:         r.Project,
		CustomerContext: r.CustomerContext,
		RecordingLink:   r.RecordingLink,
	}
}

// CreateTasksRequest is the request to push a run's items to the task sink
type CreateTasksRequest struct {
	SectionName string `json:"section_name,omitempty" validate:"omitempty,max=255"`
}

// RunResponse is one extraction run as returned by the API
type RunResponse struct {
	ID               string                 `json:"id"`
	MeetingCategory  string                 `json:"meeting_category"`
	SubjectName      string                 `json:"subject_name"`
	MeetingTitle     string                 `json:"meeting_title"`
	Summary          string                 `json:"summary"`
	ActionItems      []entities.ActionItem  `json:"action_items"`
	Participants     []string               `json:"participants"`
	KeyDecisions     []string               `json:"key_decisions"`
	RecordingLink    string                 `json:"recording_link,omitempty"`
	SourceMethod     string                 `json:"source_method,omitempty"`
	Degraded         bool                   `json:"degraded"`
	CreatedTasks     []entities.CreatedTask `json:"created_tasks,omitempty"`
	TasksCreatedAt   *time.Time             `json:"tasks_created_at,omitempty"`
	ProcessingTimeMs int                    `json:"processing_time_ms"`
	CreatedAt        time.Time              `json:"created_at"`
}

// FromRun maps the persisted run back into the API shape
func FromRun(run *entities.ExtractionRun) RunResponse {
	resp := RunResponse{
		ID:               run.ID.String(),
		MeetingCategory:  run.Category,
		SubjectName:      run.SubjectName,
		MeetingTitle:     run.MeetingTitle,
		Summary:          run.Summary,
		ActionItems:      []entities.ActionItem{},
		Participants:     []string{},
		KeyDecisions:     []string{},
		RecordingLink:    run.RecordingLink,
		SourceMethod:     run.SourceMethod,
		Degraded:         run.Degraded,
		TasksCreatedAt:   run.TasksCreatedAt,
		ProcessingTimeMs: run.ProcessingTime,
		CreatedAt:        run.CreatedAt,
	}
	if len(run.ActionItems) > 0 {
		json.Unmarshal(run.ActionItems, &resp.ActionItems)
	}
	if len(run.Participants) > 0 {
		json.Unmarshal(run.Participants, &resp.Participants)
	}
	if len(run.KeyDecisions) > 0 {
		json.Unmarshal(run.KeyDecisions, &resp.KeyDecisions)
	}
	if len(run.CreatedTasks) > 0 {
		json.Unmarshal(run.CreatedTasks, &resp.CreatedTasks)
	}
	return resp
}

// ListRunsResponse pages through past runs
type ListRunsResponse struct {
	Runs  []RunResponse `json:"runs"`
	Total int           `json:"total"`
}

// CreateTasksResponse reports sink confirmations. Created may be shorter
// than Requested when individual tasks failed.
type CreateTasksResponse struct {
	RunID     string                 `json:"run_id"`
	Requested int                    `json:"requested"`
	Created   int                    `json:"created"`
	Tasks     []entities.CreatedTask `json:"tasks"`
}
