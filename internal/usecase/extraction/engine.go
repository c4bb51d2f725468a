package extraction

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/meetingops/taskbridge/internal/domain/entities"
	"github.com/meetingops/taskbridge/pkg/ai"
	"github.com/meetingops/taskbridge/pkg/config"
)

// analysisSchema constrains the model reply to the TranscriptAnalysis shape.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"action_items": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":        {Type: genai.TypeString},
					"description":  {Type: genai.TypeString},
					"priority":     {Type: genai.TypeString, Enum: []string{"low", "medium", "high"}},
					"mentioned_by": {Type: genai.TypeString},
					"timestamp":    {Type: genai.TypeString},
					"is_question":  {Type: genai.TypeBoolean},
				},
				Required: []string{"title", "description"},
			},
		},
		"summary":       {Type: genai.TypeString},
		"participants":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"key_decisions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"meeting_title": {Type: genai.TypeString},
	},
	Required: []string{"action_items", "summary"},
}

// Engine turns a transcript plus meeting context into a TranscriptAnalysis.
// Aside from routing errors it never fails: model and parse failures come
// back as a degraded, empty-but-valid analysis whose summary carries the
// error text.
type Engine struct {
	router      *Router
	model       ai.ModelClient
	logger      *zap.Logger
	temperature float32
	maxTokens   int32
}

func NewEngine(router *Router, model ai.ModelClient, cfg *config.GeminiConfig, logger *zap.Logger) *Engine {
	return &Engine{
		router:      router,
		model:       model,
		logger:      logger,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
	}
}

// Extract runs the full pipeline: build prompt, call the model, parse,
// validate items, and guarantee the mandatory leading items.
func (e *Engine) Extract(ctx context.Context, transcript string, mctx entities.MeetingContext) (*entities.TranscriptAnalysis, error) {
	prompt, err := e.router.BuildPrompt(transcript, mctx)
	if err != nil {
		return nil, err
	}

	budget := e.maxTokens
	if isSalesSync(mctx) {
		// Pipeline reviews enumerate every active deal and routinely
		// blow through the default budget.
		budget *= 2
	}

	started := time.Now()
	raw, err := e.model.Generate(ctx, ai.GenerateRequest{
		Prompt:          prompt,
		Schema:          analysisSchema,
		Temperature:     e.temperature,
		MaxOutputTokens: budget,
	})
	if err != nil {
		e.logger.Error("❌ Model call failed, returning degraded analysis",
			zap.String("category", string(mctx.Category)),
			zap.Error(err))
		return entities.NewDegradedAnalysis(entities.ErrorAnalysisSummary), nil
	}

	analysis, err := parseAnalysis(raw, e.logger)
	if err != nil {
		e.logger.Error("❌ Model reply is not valid JSON, returning degraded analysis",
			zap.String("category", string(mctx.Category)),
			zap.Error(err))
		return entities.NewDegradedAnalysis(entities.ErrorAnalysisSummary + ": response was not valid JSON"), nil
	}

	if mctx.Category != entities.CategorySalesCall {
		for i := range analysis.ActionItems {
			analysis.ActionItems[i].IsQuestion = false
		}
	}
	analysis.ActionItems = ensureMandatoryItems(analysis.ActionItems, mctx, analysis.Summary)

	e.logger.Info("✅ Transcript analyzed",
		zap.String("category", string(mctx.Category)),
		zap.String("subject", mctx.SubjectName),
		zap.Int("action_items", len(analysis.ActionItems)),
		zap.Duration("took", time.Since(started)))
	return analysis, nil
}

// ensureMandatoryItems guarantees the call-summary item leads the list and,
// for sales calls, that the two follow-up items exist. Items the model
// already produced are kept in place rather than duplicated.
func ensureMandatoryItems(items []entities.ActionItem, mctx entities.MeetingContext, summary string) []entities.ActionItem {
	required := mandatoryItemsFor(mctx, summary)

	missing := make([]entities.ActionItem, 0, len(required))
	for _, req := range required {
		if !containsTitle(items, req.Title) {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		items = append(missing, items...)
	}

	// The summary item must come first even when the model emitted it
	// somewhere else in the list.
	for i, item := range items {
		if item.Title == MandatorySummaryTitle && i > 0 {
			reordered := make([]entities.ActionItem, 0, len(items))
			reordered = append(reordered, item)
			reordered = append(reordered, items[:i]...)
			reordered = append(reordered, items[i+1:]...)
			return reordered
		}
	}
	return items
}

func containsTitle(items []entities.ActionItem, title string) bool {
	for _, item := range items {
		if item.Title == title {
			return true
		}
	}
	return false
}
