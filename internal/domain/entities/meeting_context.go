package entities

// MeetingCategory is the top-level routing tag that selects a prompt
// template family.
type MeetingCategory string

const (
	CategorySalesCall        MeetingCategory = "sales_call"
	CategoryInternalMeeting  MeetingCategory = "internal_meeting"
	CategoryProjectMeeting   MeetingCategory = "project_meeting"
	CategoryExistingCustomer MeetingCategory = "existing_customer"
)

// Valid reports whether the category is one of the recognized routing tags.
func (c MeetingCategory) Valid() bool {
	switch c {
	case CategorySalesCall, CategoryInternalMeeting, CategoryProjectMeeting, CategoryExistingCustomer:
		return true
	}
	return false
}

// MeetingContext is the routing key controlling prompt selection. It is
// constructed by the caller and never mutated by the extraction core.
type MeetingContext struct {
	Category        MeetingCategory `json:"meeting_category"`
	SubjectName     string          `json:"subject_name"`
	Department      string          `json:"department,omitempty"`
	Project         string          `json:"project,omitempty"`
	CustomerContext string          `json:"customer_context,omitempty"`
	RecordingLink   string          `json:"recording_link,omitempty"`
}
