package extraction

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/meetingops/taskbridge/internal/domain/entities"
)

func newTestInterpreter(model *stubModel) *Interpreter {
	return NewInterpreter(model, testGeminiConfig(), zap.NewNop())
}

func TestInterpretSegmentsAndInfersPriority(t *testing.T) {
	// Structuring replies omit priority so the urgency lexicon decides.
	model := &stubModel{replies: []string{
		`{"task_count": 2, "tasks": ["Send proposal to Acme tomorrow", "call Bob next week"]}`,
		`{"title": "Send proposal to Acme", "description": "Due tomorrow."}`,
		`{"title": "Call Bob", "description": ""}`,
	}}
	interp := newTestInterpreter(model)

	items := interp.Interpret(context.Background(), "Send proposal to Acme tomorrow; also call Bob next week", "Acme Corp", "customer")
	if len(items) != 2 {
		t.Fatalf("got %d tasks, want 2", len(items))
	}
	if items[0].Priority != entities.ActionItemPriorityHigh {
		t.Errorf("first task priority = %q, want high (via %q)", items[0].Priority, "tomorrow")
	}
	if items[1].Priority != entities.ActionItemPriorityMedium {
		t.Errorf("second task priority = %q, want medium (via %q)", items[1].Priority, "next week")
	}
}

func TestInterpretSegmentationFailureFallsBack(t *testing.T) {
	model := &stubModel{
		errs: []error{errors.New("timeout"), nil},
		replies: []string{
			"",
			`{"title": "Follow up with Jane", "description": "", "priority": "low"}`,
		},
	}
	interp := newTestInterpreter(model)

	items := interp.Interpret(context.Background(), "Follow up with Jane", "Internal", "department")
	if len(items) != 1 {
		t.Fatalf("got %d tasks, want exactly 1 via whole-input fallback", len(items))
	}
	if items[0].Title != "Follow up with Jane" {
		t.Errorf("task title = %q", items[0].Title)
	}
}

func TestInterpretBlankSegmentsFallBack(t *testing.T) {
	model := &stubModel{replies: []string{
		`{"task_count": 2, "tasks": ["   ", "\n"]}`,
		`{"title": "Follow up with Jane", "description": "", "priority": "low"}`,
	}}
	interp := newTestInterpreter(model)

	items := interp.Interpret(context.Background(), "Follow up with Jane", "Internal", "department")
	if len(items) != 1 {
		t.Fatalf("got %d tasks, want 1 via whole-input fallback", len(items))
	}
	if items[0].Title != "Follow up with Jane" {
		t.Errorf("task title = %q", items[0].Title)
	}
}

func TestInterpretDropsFailedSegmentOnly(t *testing.T) {
	model := &stubModel{
		errs: []error{nil, errors.New("boom"), nil},
		replies: []string{
			`{"task_count": 2, "tasks": ["first thing", "second thing"]}`,
			"",
			`{"title": "Second thing", "description": "", "priority": "low"}`,
		},
	}
	interp := newTestInterpreter(model)

	items := interp.Interpret(context.Background(), "first thing; second thing", "Team", "department")
	if len(items) != 1 {
		t.Fatalf("got %d tasks, want 1 (failed segment dropped, sibling kept)", len(items))
	}
	if items[0].Title != "Second thing" {
		t.Errorf("surviving task = %q", items[0].Title)
	}
}

func TestInterpretDropsSegmentWithoutTitle(t *testing.T) {
	model := &stubModel{replies: []string{
		`{"task_count": 2, "tasks": ["a", "b"]}`,
		`{"description": "no title"}`,
		`{"title": "B", "description": "", "priority": "medium"}`,
	}}
	interp := newTestInterpreter(model)

	items := interp.Interpret(context.Background(), "a; b", "Team", "department")
	if len(items) != 1 || items[0].Title != "B" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestInferPriority(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"fix the outage ASAP", entities.ActionItemPriorityHigh},
		{"send the deck today", entities.ActionItemPriorityHigh},
		{"review the contract this week", entities.ActionItemPriorityMedium},
		{"tidy the backlog eventually", entities.ActionItemPriorityLow},
		{"order new stickers", entities.ActionItemPriorityLow},
	}
	for _, tt := range tests {
		if got := inferPriority(tt.text); got != tt.want {
			t.Errorf("inferPriority(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
