package extraction

import (
	"strings"
	"testing"

	"github.com/meetingops/taskbridge/internal/domain/entities"
)

func strPtr(s string) *string { return &s }

func TestEnrichQuestionPrefixNotDoubled(t *testing.T) {
	item := entities.ActionItem{
		Title:      "What is the SSO pricing?",
		IsQuestion: true,
		Priority:   "medium",
	}

	once := Enrich(item, EnrichOptions{})
	if once.Title != "Customer Question: What is the SSO pricing?" {
		t.Fatalf("title after first enrich = %q", once.Title)
	}
	twice := Enrich(once, EnrichOptions{})
	if twice.Title != once.Title {
		t.Errorf("double enrich changed title to %q", twice.Title)
	}
}

func TestEnrichHeaderOrdering(t *testing.T) {
	item := entities.ActionItem{
		Title:       "Fix the export bug",
		Description: "Reported twice this week.",
		Priority:    "high",
		Timestamp:   strPtr("12:34"),
	}
	opts := EnrichOptions{
		MeetingContext: "08/31 - Globex: Account review",
		RecordingLink:  "https://rec.example/abc",
	}

	got := Enrich(item, opts).Description

	ctxIdx := strings.Index(got, "08/31 - Globex: Account review")
	recIdx := strings.Index(got, "Recording: https://rec.example/abc")
	tsIdx := strings.Index(got, "Timestamp: 12:34")
	sepIdx := strings.Index(got, "---")
	origIdx := strings.Index(got, "Reported twice this week.")
	if ctxIdx < 0 || recIdx < 0 || tsIdx < 0 || sepIdx < 0 || origIdx < 0 {
		t.Fatalf("description missing expected lines:\n%s", got)
	}
	if !(ctxIdx < recIdx && recIdx < tsIdx && tsIdx < sepIdx && sepIdx < origIdx) {
		t.Errorf("header lines out of order:\n%s", got)
	}
	if !strings.HasSuffix(got, "Reported twice this week.") {
		t.Errorf("original description altered:\n%s", got)
	}
}

func TestEnrichTimestampNeedsRecordingLink(t *testing.T) {
	item := entities.ActionItem{
		Title:       "T",
		Description: "d",
		Priority:    "low",
		Timestamp:   strPtr("01:02"),
	}

	got := Enrich(item, EnrichOptions{MeetingContext: "08/31 - Team: Sync"}).Description
	if strings.Contains(got, "Timestamp:") {
		t.Errorf("timestamp line emitted without a recording link:\n%s", got)
	}
}

func TestEnrichNoHeaderLeavesDescriptionAlone(t *testing.T) {
	item := entities.ActionItem{Title: "T", Description: "plain", Priority: "low"}

	got := Enrich(item, EnrichOptions{})
	if got.Description != "plain" {
		t.Errorf("description = %q, want unchanged", got.Description)
	}
}

func TestEnrichCoercesPriority(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HIGH", entities.ActionItemPriorityHigh},
		{"Medium", entities.ActionItemPriorityMedium},
		{"someday", entities.ActionItemPriorityMedium},
		{"", entities.ActionItemPriorityMedium},
	}
	for _, tt := range tests {
		got := Enrich(entities.ActionItem{Title: "T", Priority: tt.in}, EnrichOptions{})
		if got.Priority != tt.want {
			t.Errorf("priority %q → %q, want %q", tt.in, got.Priority, tt.want)
		}
	}
}
