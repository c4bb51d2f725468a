package extraction

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/meetingops/taskbridge/errors"
	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/pkg/ai"
	"github.com/meetingops/taskbridge/pkg/config"
)

// stubModel replays canned replies and records every request it saw.
type stubModel struct {
	replies []string
	errs    []error
	reqs    []ai.GenerateRequest
}

func (s *stubModel) Generate(_ context.Context, req ai.GenerateRequest) (string, error) {
	idx := len(s.reqs)
	s.reqs = append(s.reqs, req)
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.replies) {
		return s.replies[idx], nil
	}
	return "", errors.New("stub exhausted")
}

func testGeminiConfig() *config.GeminiConfig {
	return &config.GeminiConfig{Temperature: 0.1, MaxTokens: 4096}
}

func newTestEngine(model ai.ModelClient) *Engine {
	logger := zap.NewNop()
	return NewEngine(NewRouter(Roster{"sales lead": "Dana"}, logger), model, testGeminiConfig(), logger)
}

const validReply = `{
	"action_items": [
		{"title": "` + MandatorySummaryTitle + `", "description": "Summary of the sync.", "priority": "medium"},
		{"title": "Update the pricing page", "description": "New tiers ship Friday.", "priority": "HIGH"},
		{"title": "Ping legal about the DPA", "description": "", "priority": "weird", "is_question": true}
	],
	"summary": "Weekly sync.",
	"participants": ["Ana", "Bo"],
	"key_decisions": ["Ship Friday"],
	"meeting_title": "Pricing sync"
}`

func internalContext() entities.MeetingContext {
	return entities.MeetingContext{
		Category:    entities.CategoryInternalMeeting,
		SubjectName: "Marketing",
		Department:  "marketing",
	}
}

func TestExtractValidReply(t *testing.T) {
	model := &stubModel{replies: []string{validReply}}
	engine := newTestEngine(model)

	analysis, err := engine.Extract(context.Background(), "line one\nline two", internalContext())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got, want := len(analysis.ActionItems), 3; got != want {
		t.Fatalf("got %d action items, want %d", got, want)
	}
	if analysis.ActionItems[0].Title != MandatorySummaryTitle {
		t.Errorf("first item title = %q, want %q", analysis.ActionItems[0].Title, MandatorySummaryTitle)
	}
	for _, item := range analysis.ActionItems {
		switch item.Priority {
		case entities.ActionItemPriorityLow, entities.ActionItemPriorityMedium, entities.ActionItemPriorityHigh:
		default:
			t.Errorf("item %q has priority %q outside the allowed set", item.Title, item.Priority)
		}
		if item.IsQuestion {
			t.Errorf("item %q kept is_question=true in an internal meeting", item.Title)
		}
	}
	if analysis.ActionItems[1].Priority != entities.ActionItemPriorityHigh {
		t.Errorf("priority not lowercased: got %q", analysis.ActionItems[1].Priority)
	}
	if analysis.MeetingTitle != "Pricing sync" {
		t.Errorf("meeting title = %q", analysis.MeetingTitle)
	}
}

func TestExtractDropsItemMissingTitle(t *testing.T) {
	reply := `{
		"action_items": [
			{"title": "` + MandatorySummaryTitle + `", "description": "Recap."},
			{"description": "no title here"},
			{"title": "Book the venue", "description": "For the offsite."}
		],
		"summary": "Planning.",
		"meeting_title": "Offsite planning"
	}`
	model := &stubModel{replies: []string{reply}}
	engine := newTestEngine(model)

	analysis, err := engine.Extract(context.Background(), "transcript", internalContext())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got, want := len(analysis.ActionItems), 2; got != want {
		t.Fatalf("got %d action items, want %d (invalid item dropped, not the batch)", got, want)
	}
}

func TestExtractUnparseableReplyDegrades(t *testing.T) {
	model := &stubModel{replies: []string{"I could not find any tasks, sorry!"}}
	engine := newTestEngine(model)

	analysis, err := engine.Extract(context.Background(), "transcript", internalContext())
	if err != nil {
		t.Fatalf("Extract returned error instead of degrading: %v", err)
	}
	if len(analysis.ActionItems) != 0 {
		t.Errorf("degraded analysis has %d items, want 0", len(analysis.ActionItems))
	}
	if analysis.Summary == "" {
		t.Error("degraded analysis has empty summary, want failure description")
	}
	if analysis.MeetingTitle != entities.FallbackMeetingTitle {
		t.Errorf("degraded title = %q, want %q", analysis.MeetingTitle, entities.FallbackMeetingTitle)
	}
}

func TestExtractModelErrorDegrades(t *testing.T) {
	model := &stubModel{errs: []error{errors.New("quota exceeded")}}
	engine := newTestEngine(model)

	analysis, err := engine.Extract(context.Background(), "transcript", internalContext())
	if err != nil {
		t.Fatalf("Extract returned error instead of degrading: %v", err)
	}
	if analysis.Summary != entities.ErrorAnalysisSummary {
		t.Errorf("summary = %q, want %q", analysis.Summary, entities.ErrorAnalysisSummary)
	}
	if !analysis.IsDegraded() {
		t.Error("analysis not flagged as degraded")
	}
}

func TestExtractUnknownCategoryFailsBeforeModelCall(t *testing.T) {
	model := &stubModel{replies: []string{validReply}}
	engine := newTestEngine(model)

	_, err := engine.Extract(context.Background(), "transcript", entities.MeetingContext{Category: "standup"})
	if err == nil {
		t.Fatal("expected configuration error for unknown category")
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_UNKNOWN_CATEGORY {
		t.Errorf("got error %v, want UNKNOWN_CATEGORY AppError", err)
	}
	if len(model.reqs) != 0 {
		t.Errorf("model was called %d times for an unroutable context", len(model.reqs))
	}
}

func TestExtractSalesCallMandatoryItems(t *testing.T) {
	// Model forgot every mandatory item; the engine must still lead with
	// the summary item and include both follow-ups.
	reply := `{
		"action_items": [
			{"title": "Send pricing sheet", "description": "Requested on the call."}
		],
		"summary": "Good discovery call.",
		"meeting_title": "Acme discovery"
	}`
	model := &stubModel{replies: []string{reply}}
	engine := newTestEngine(model)

	analysis, err := engine.Extract(context.Background(), "short transcript", entities.MeetingContext{
		Category:    entities.CategorySalesCall,
		SubjectName: "Acme Corp",
	})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if analysis.ActionItems[0].Title != MandatorySummaryTitle {
		t.Errorf("first item = %q, want %q", analysis.ActionItems[0].Title, MandatorySummaryTitle)
	}
	for _, want := range []string{"Send follow-up email to Acme Corp", "Schedule next meeting with Acme Corp"} {
		if !containsTitle(analysis.ActionItems, want) {
			t.Errorf("mandatory item %q missing", want)
		}
	}
	if !containsTitle(analysis.ActionItems, "Send pricing sheet") {
		t.Error("model-produced item was lost")
	}
}

func TestExtractSalesSyncDoublesTokenBudget(t *testing.T) {
	model := &stubModel{replies: []string{validReply, validReply}}
	engine := newTestEngine(model)

	_, _ = engine.Extract(context.Background(), "t", internalContext())
	_, _ = engine.Extract(context.Background(), "t", entities.MeetingContext{
		Category:    entities.CategoryInternalMeeting,
		SubjectName: "Sales",
		Department:  "Sales",
	})

	if got := model.reqs[0].MaxOutputTokens; got != 4096 {
		t.Errorf("default budget = %d, want 4096", got)
	}
	if got := model.reqs[1].MaxOutputTokens; got != 8192 {
		t.Errorf("sales sync budget = %d, want 8192", got)
	}
}
