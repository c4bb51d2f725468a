package extraction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meetingops/taskbridge/internal/domain/entities"
)

// Roster maps a role to the default assignee hint injected into prompts.
// It is supplied by the catalog as data so routing stays testable without
// string-diffing template text.
type Roster map[string]string

// Mandatory leading action items. The templates instruct the model to emit
// them and the engine re-inserts them when the model forgets, so the first
// item of every analysis is the call summary.
const (
	MandatorySummaryTitle = "Call Summary & Key Points"

	mandatoryFollowUpEmailTitle   = "Send follow-up email to %s"
	mandatoryScheduleMeetingTitle = "Schedule next meeting with %s"
)

// Template preambles. Each carries the domain knowledge for its branch:
// who is in the room, what products are on the table, and who picks up
// unowned work by default.

const salesCallPreamble = `You are analyzing a sales call transcript for the prospect "%s".
%s
Our side runs discovery and demo calls for the TaskBridge platform. The
account executive owns commercial follow-ups; solution engineers own
technical follow-ups. Anything the prospect asked that we could not answer
on the call becomes a follow-up item owned by the account executive.`

const onboardingPreamble = `You are analyzing an internal onboarding team meeting.
The onboarding team moves newly signed customers from contract to first
value: kickoff scheduling, environment provisioning, data imports, and
training sessions. Unowned work defaults to the onboarding lead.`

const salesSyncPreamble = `You are analyzing an internal sales team sync.
These meetings walk the active pipeline deal by deal: stage changes, blockers,
next steps, and forecast risk. Each deal mentioned usually produces its own
follow-up item owned by the account executive who covers it. Unowned work
defaults to the sales lead.`

const supportPreamble = `You are analyzing an internal support team meeting.
The support team reviews open tickets, escalations, and recurring product
issues. Items referencing a specific ticket or customer escalation are high
priority by default. Unowned work defaults to the support lead.`

const genericInternalPreamble = `You are analyzing an internal meeting of the "%s" team.
Extract the concrete work the team agreed to do. Unowned work defaults to the
team lead.`

const integrationProjectPreamble = `You are analyzing a project meeting for the "%s" integration workstream.
This workstream covers the Finpay payment-rails integration and the LSQ
lead-routing integration: API contract alignment, sandbox testing, certification,
and go-live planning. Tasks usually split between our integration engineers and
the partner's technical contact. Unowned work defaults to the project manager.`

const escalationPreamble = `You are analyzing a call with the existing customer "%s".
%s
This is an account-health conversation: treat complaints, blockers, and at-risk
signals as actionable. Items that block the customer's production usage are
high priority. Unowned work defaults to the customer success manager.`

// Shared instruction block. The %s placeholders are the mandatory-items
// clause and the question-handling clause, which differ per branch.
const instructionBlock = `<instructions>
Analyze the transcript above and extract:
1. Action items - specific tasks that need to be completed
2. A brief summary of the meeting
3. List of participants (names mentioned in the transcript)
4. Key decisions that were made
5. A short meeting title (10-30 characters)

For action items:
- Make titles brief and actionable (start with a verb when possible)
- Include relevant context in the description
- If someone specific is assigned or mentioned for a task, set mentioned_by
- When the transcript shows timestamps, copy the MM:SS or HH:MM:SS
  timestamp of the moment the task came up into the timestamp field
- Priority rubric: blocking or deadline-bound work is high; agreed next
  steps with no deadline are medium; nice-to-haves are low
%s%s
Return a structured JSON response with all extracted information.
</instructions>`

const mandatorySummaryClause = `- The FIRST action item must always be a non-actionable item titled
  "` + MandatorySummaryTitle + `" whose description restates the summary and
  key decisions
`

const salesMandatoryClause = `- Always include an item "Send follow-up email to %[1]s" and an item
  "Schedule next meeting with %[1]s" even if not explicitly discussed
- Mark items that capture a question the prospect asked with
  is_question=true
`

const noQuestionClause = `- is_question must be false for every item in this meeting type
`

// buildRosterSection renders the role-to-assignee defaults as prompt data.
// Roles are sorted so the prompt is deterministic for a given roster.
func buildRosterSection(roster Roster) string {
	if len(roster) == 0 {
		return ""
	}
	roles := make([]string, 0, len(roster))
	for role := range roster {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	var sb strings.Builder
	sb.WriteString("Default task owners by role:\n")
	for _, role := range roles {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", role, roster[role]))
	}
	return sb.String()
}

// assemblePrompt puts preamble, roster, transcript and instructions together
// in the <context>/<transcript>/<instructions> layout.
func assemblePrompt(preamble string, roster Roster, transcript, mandatoryClause, questionClause string) string {
	var sb strings.Builder
	sb.WriteString("<context>\n")
	sb.WriteString(preamble)
	sb.WriteString("\n")
	if rosterSection := buildRosterSection(roster); rosterSection != "" {
		sb.WriteString("\n")
		sb.WriteString(rosterSection)
	}
	sb.WriteString("</context>\n\n<transcript>\n")
	sb.WriteString(transcript)
	sb.WriteString("\n</transcript>\n\n")
	sb.WriteString(fmt.Sprintf(instructionBlock, mandatoryClause, questionClause))
	return sb.String()
}

// mandatoryItemsFor returns the leading items the engine guarantees for the
// given context, in order.
func mandatoryItemsFor(mctx entities.MeetingContext, summary string) []entities.ActionItem {
	items := []entities.ActionItem{
		{
			Title:       MandatorySummaryTitle,
			Description: summary,
			Priority:    entities.ActionItemPriorityMedium,
		},
	}
	if mctx.Category == entities.CategorySalesCall {
		items = append(items,
			entities.NewActionItem(
				fmt.Sprintf(mandatoryFollowUpEmailTitle, mctx.SubjectName),
				"Recap the call, answer open questions, and share agreed next steps.",
			),
			entities.NewActionItem(
				fmt.Sprintf(mandatoryScheduleMeetingTitle, mctx.SubjectName),
				"Propose times for the next conversation before momentum fades.",
			),
		)
	}
	return items
}
