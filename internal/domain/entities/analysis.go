package entities

// TranscriptAnalysis is the structured result of one extraction call.
// Action item order follows the model output and is never re-sorted.
// The value is created fresh per extraction call and treated as immutable
// once handed to the enrichment stage.
type TranscriptAnalysis struct {
	ActionItems  []ActionItem `json:"action_items"`
	Summary      string       `json:"summary"`
	Participants []string     `json:"participants"`
	KeyDecisions []string     `json:"key_decisions"`
	MeetingTitle string       `json:"meeting_title"`
}

// ErrorAnalysisSummary is the uniform summary for model-call failures.
// Callers branch on the degraded shape (no items + error-flavored summary),
// not on exceptions.
const ErrorAnalysisSummary = "Error analyzing transcript"

// FallbackMeetingTitle is used when extraction degrades before the model
// produced a title.
const FallbackMeetingTitle = "Meeting Analysis"

// NewDegradedAnalysis returns a structurally valid but empty analysis whose
// summary carries the failure description.
func NewDegradedAnalysis(summary string) *TranscriptAnalysis {
	return &TranscriptAnalysis{
		ActionItems:  []ActionItem{},
		Summary:      summary,
		Participants: []string{},
		KeyDecisions: []string{},
		MeetingTitle: FallbackMeetingTitle,
	}
}

// IsDegraded reports whether the analysis is the empty-but-valid error shape.
func (a *TranscriptAnalysis) IsDegraded() bool {
	return len(a.ActionItems) == 0 && a.Summary != ""
}
