package quicktask

import (
	"github.com/meetingops/taskbridge/internal/domain/entities"
)

// QuickTaskRequest is the request to interpret free-form text into tasks
type QuickTaskRequest struct {
	Text            string `json:"text" validate:"required"`
	MeetingCategory string `json:"meeting_category" validate:"required,oneof=sales_call internal_meeting project_meeting existing_customer"`
	SubjectName     string `json:"subject_name" validate:"required,min=1,max=255"`
	CreateTasks     bool   `json:"create_tasks"`
}

// QuickTaskResponse carries the interpreted tasks and, when requested, the
// sink confirmations
type QuickTaskResponse struct {
	Tasks        []entities.ActionItem  `json:"tasks"`
	CreatedTasks []entities.CreatedTask `json:"created_tasks,omitempty"`
}
