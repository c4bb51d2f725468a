package extraction

import (
	"strings"

	"github.com/meetingops/taskbridge/internal/domain/entities"
)

const customerQuestionPrefix = "Customer Question: "

// EnrichOptions carries the per-meeting strings woven into each task
// description before hand-off to the task sink.
type EnrichOptions struct {
	// MeetingContext is the human-readable "MM/DD - subject: title" line.
	MeetingContext string
	RecordingLink  string
}

// Enrich decorates one action item with the meeting header and question
// prefix. It is pure: no model call, no sink call. The question prefix is
// only applied once even if the item was already enriched.
func Enrich(item entities.ActionItem, opts EnrichOptions) entities.ActionItem {
	if item.IsQuestion && !strings.HasPrefix(item.Title, customerQuestionPrefix) {
		item.Title = customerQuestionPrefix + item.Title
	}

	var header []string
	if opts.MeetingContext != "" {
		header = append(header, opts.MeetingContext)
	}
	if opts.RecordingLink != "" {
		header = append(header, "Recording: "+opts.RecordingLink)
		if item.Timestamp != nil && *item.Timestamp != "" {
			header = append(header, "Timestamp: "+*item.Timestamp)
		}
	}
	if len(header) > 0 {
		item.Description = strings.Join(header, "\n") + "\n---\n" + item.Description
	}

	item.Priority = entities.NormalizePriority(item.Priority)
	return item
}

// EnrichAll applies Enrich to every item of an analysis and returns the
// decorated copies, leaving the analysis itself untouched.
func EnrichAll(analysis *entities.TranscriptAnalysis, opts EnrichOptions) []entities.ActionItem {
	enriched := make([]entities.ActionItem, 0, len(analysis.ActionItems))
	for _, item := range analysis.ActionItems {
		enriched = append(enriched, Enrich(item, opts))
	}
	return enriched
}
