package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/meetingops/taskbridge/internal/domain/entities"
)

// wireAnalysis mirrors the model's JSON reply. Action items stay raw so a
// single malformed item can be dropped without losing its siblings.
type wireAnalysis struct {
	ActionItems  []json.RawMessage `json:"action_items"`
	Summary      string            `json:"summary"`
	Participants []string          `json:"participants"`
	KeyDecisions []string          `json:"key_decisions"`
	MeetingTitle string            `json:"meeting_title"`
}

type wireActionItem struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
	Priority    string          `json:"priority"`
	MentionedBy *string         `json:"mentioned_by"`
	Timestamp   *string         `json:"timestamp"`
	IsQuestion  bool            `json:"is_question"`
}

// extractJSON strips markdown code fences the model sometimes wraps around
// its reply and trims to the outermost JSON object.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// repairJSON is the single bounded repair transform applied when the first
// parse fails. It handles the two replies seen in practice: the whole object
// returned as one JSON-encoded string, and bodies with stray escaped quotes.
// It never calls the network.
func repairJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' {
		if unquoted, err := strconv.Unquote(s); err == nil {
			return strings.TrimSpace(unquoted)
		}
	}
	return strings.ReplaceAll(s, `\"`, `"`)
}

// parseAnalysis decodes the model reply into a TranscriptAnalysis. Items
// failing field validation are logged and dropped; decoding the envelope
// itself failing (even after one repair pass) is returned as an error so the
// engine can degrade.
func parseAnalysis(raw string, logger *zap.Logger) (*entities.TranscriptAnalysis, error) {
	body := extractJSON(raw)

	var wire wireAnalysis
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		repaired := repairJSON(body)
		if retryErr := json.Unmarshal([]byte(repaired), &wire); retryErr != nil {
			return nil, fmt.Errorf("decode analysis reply: %w", err)
		}
	}

	analysis := &entities.TranscriptAnalysis{
		ActionItems:  make([]entities.ActionItem, 0, len(wire.ActionItems)),
		Summary:      wire.Summary,
		Participants: wire.Participants,
		KeyDecisions: wire.KeyDecisions,
		MeetingTitle: wire.MeetingTitle,
	}
	if analysis.MeetingTitle == "" {
		analysis.MeetingTitle = entities.FallbackMeetingTitle
	}

	for i, rawItem := range wire.ActionItems {
		item, err := parseActionItem(rawItem)
		if err != nil {
			if logger != nil {
				logger.Warn("⚠️ Dropping invalid action item",
					zap.Int("index", i),
					zap.Error(err))
			}
			continue
		}
		analysis.ActionItems = append(analysis.ActionItems, item)
	}
	return analysis, nil
}

// parseActionItem validates one item at the JSON boundary: title and
// description must both be present JSON strings, and title must be
// non-empty. Everything else has a default.
func parseActionItem(raw json.RawMessage) (entities.ActionItem, error) {
	var wire wireActionItem
	if err := json.Unmarshal(raw, &wire); err != nil {
		return entities.ActionItem{}, fmt.Errorf("decode action item: %w", err)
	}

	title, err := requireString(wire.Title, "title")
	if err != nil {
		return entities.ActionItem{}, err
	}
	if strings.TrimSpace(title) == "" {
		return entities.ActionItem{}, fmt.Errorf("%w: title is empty", entities.ErrItemMissingTitle)
	}
	description, err := requireString(wire.Description, "description")
	if err != nil {
		return entities.ActionItem{}, err
	}

	return entities.ActionItem{
		Title:       title,
		Description: description,
		Priority:    entities.NormalizePriority(wire.Priority),
		MentionedBy: wire.MentionedBy,
		Timestamp:   wire.Timestamp,
		IsQuestion:  wire.IsQuestion,
	}, nil
}

func requireString(raw json.RawMessage, field string) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("%w: %s is missing", entities.ErrItemInvalidField, field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s is not a string", entities.ErrItemInvalidField, field)
	}
	return s, nil
}
