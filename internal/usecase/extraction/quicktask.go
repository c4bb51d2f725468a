package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/pkg/ai"
	"github.com/meetingops/taskbridge/pkg/config"
)

var segmentationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"task_count": {Type: genai.TypeInteger},
		"tasks":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"task_count", "tasks"},
}

var quickTaskSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"priority":    {Type: genai.TypeString, Enum: []string{"low", "medium", "high"}},
	},
	Required: []string{"title", "description"},
}

const segmentationPromptTemplate = `The text below was typed by a team member as one or more quick tasks.
Decide whether it contains one task or several independent tasks. Tasks are
usually separated by newlines, semicolons, list markers, or coordinating
phrases like "also" or "and then".

<text>
%s
</text>

Return JSON with "task_count" and "tasks", where "tasks" holds each task's
original wording.`

const quickTaskPromptTemplate = `Turn this quick task note into a structured task for %s (%s).

<task>
%s
</task>

Rules:
- title: short and imperative
- description: one or two sentences of context, empty if the note has none
- priority: "high" for urgent/ASAP/today/tomorrow/critical wording,
  "medium" for this-week/soon wording, "low" otherwise

Return JSON with "title", "description" and "priority".`

// Interpreter turns short free-form notes into structured action items
// using a segmentation call followed by one structuring call per segment.
type Interpreter struct {
	model       ai.ModelClient
	logger      *zap.Logger
	temperature float32
	maxTokens   int32
}

func NewInterpreter(model ai.ModelClient, cfg *config.GeminiConfig, logger *zap.Logger) *Interpreter {
	return &Interpreter{
		model:       model,
		logger:      logger,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
	}
}

// Interpret segments freeText into independent tasks and structures each
// one. A failed segmentation call falls back to the whole input as one
// segment; a failed structuring call drops only that segment.
func (q *Interpreter) Interpret(ctx context.Context, freeText, subjectName, contextLabel string) []entities.ActionItem {
	segments := q.segment(ctx, freeText)

	items := make([]entities.ActionItem, 0, len(segments))
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		item, err := q.structure(ctx, segment, subjectName, contextLabel)
		if err != nil {
			q.logger.Warn("⚠️ Dropping quick-task segment",
				zap.String("segment", segment),
				zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items
}

func (q *Interpreter) segment(ctx context.Context, freeText string) []string {
	raw, err := q.model.Generate(ctx, ai.GenerateRequest{
		Prompt:          fmt.Sprintf(segmentationPromptTemplate, freeText),
		Schema:          segmentationSchema,
		Temperature:     q.temperature,
		MaxOutputTokens: q.maxTokens,
	})
	if err != nil {
		q.logger.Warn("⚠️ Segmentation call failed, treating input as one task", zap.Error(err))
		return []string{freeText}
	}

	var reply struct {
		TaskCount int      `json:"task_count"`
		Tasks     []string `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &reply); err != nil {
		q.logger.Warn("⚠️ Unusable segmentation reply, treating input as one task", zap.Error(err))
		return []string{freeText}
	}

	segments := make([]string, 0, len(reply.Tasks))
	for _, task := range reply.Tasks {
		if task = strings.TrimSpace(task); task != "" {
			segments = append(segments, task)
		}
	}
	if len(segments) == 0 {
		q.logger.Warn("⚠️ Segmentation produced no usable tasks, treating input as one task")
		return []string{freeText}
	}
	return segments
}

func (q *Interpreter) structure(ctx context.Context, segment, subjectName, contextLabel string) (entities.ActionItem, error) {
	raw, err := q.model.Generate(ctx, ai.GenerateRequest{
		Prompt:          fmt.Sprintf(quickTaskPromptTemplate, subjectName, contextLabel, segment),
		Schema:          quickTaskSchema,
		Temperature:     q.temperature,
		MaxOutputTokens: q.maxTokens,
	})
	if err != nil {
		return entities.ActionItem{}, fmt.Errorf("structure segment: %w", err)
	}

	var reply struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &reply); err != nil {
		return entities.ActionItem{}, fmt.Errorf("decode quick task: %w", err)
	}
	if strings.TrimSpace(reply.Title) == "" {
		return entities.ActionItem{}, entities.ErrItemMissingTitle
	}

	item := entities.NewActionItem(reply.Title, reply.Description)
	priority := strings.ToLower(strings.TrimSpace(reply.Priority))
	switch priority {
	case entities.ActionItemPriorityLow, entities.ActionItemPriorityMedium, entities.ActionItemPriorityHigh:
		item.Priority = priority
	default:
		item.Priority = inferPriority(segment)
	}
	return item, nil
}

// inferPriority is the deterministic urgency lexicon used when the model
// does not commit to a priority.
func inferPriority(text string) string {
	lowered := strings.ToLower(text)
	for _, signal := range []string{"urgent", "asap", "today", "tomorrow", "critical", "immediately"} {
		if strings.Contains(lowered, signal) {
			return entities.ActionItemPriorityHigh
		}
	}
	for _, signal := range []string{"this week", "next week", "soon", "next few days"} {
		if strings.Contains(lowered, signal) {
			return entities.ActionItemPriorityMedium
		}
	}
	return entities.ActionItemPriorityLow
}
