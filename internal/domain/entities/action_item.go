package entities

import "strings"

// ActionItem is one extracted task candidate from a transcript or free text.
// Title and Description are required; everything else has a safe default.
type ActionItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	MentionedBy *string `json:"mentioned_by,omitempty"`
	Timestamp   *string `json:"timestamp,omitempty"`
	IsQuestion  bool    `json:"is_question"`
}

// ActionItemPriority constants
const (
	ActionItemPriorityLow    = "low"
	ActionItemPriorityMedium = "medium"
	ActionItemPriorityHigh   = "high"
)

// NewActionItem creates an ActionItem with the default priority
func NewActionItem(title, description string) ActionItem {
	return ActionItem{
		Title:       title,
		Description: description,
		Priority:    ActionItemPriorityMedium,
	}
}

// NormalizePriority lowercases the priority and coerces anything outside
// {low, medium, high} to medium.
func NormalizePriority(priority string) string {
	switch strings.ToLower(strings.TrimSpace(priority)) {
	case ActionItemPriorityLow:
		return ActionItemPriorityLow
	case ActionItemPriorityHigh:
		return ActionItemPriorityHigh
	case ActionItemPriorityMedium:
		return ActionItemPriorityMedium
	default:
		return ActionItemPriorityMedium
	}
}
