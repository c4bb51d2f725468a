package extraction

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/meetingops/taskbridge/errors"
	"github.com/meetingops/taskbridge/internal/domain/entities"
)

// Router selects the prompt template for a meeting context and interpolates
// the transcript, roster and context variables into it.
type Router struct {
	roster Roster
	logger *zap.Logger
}

func NewRouter(roster Roster, logger *zap.Logger) *Router {
	return &Router{
		roster: roster,
		logger: logger,
	}
}

// BuildPrompt maps the meeting context to one template, first match wins.
// An unrecognized category is a configuration error and never reaches the
// model.
func (r *Router) BuildPrompt(transcript string, mctx entities.MeetingContext) (string, error) {
	switch mctx.Category {
	case entities.CategorySalesCall:
		preamble := fmt.Sprintf(salesCallPreamble, mctx.SubjectName, customerBackground(mctx.CustomerContext))
		clause := fmt.Sprintf(salesMandatoryClause, mctx.SubjectName)
		return assemblePrompt(preamble, r.roster, transcript, mandatorySummaryClause, clause), nil

	case entities.CategoryInternalMeeting:
		return assemblePrompt(r.internalPreamble(mctx), r.roster, transcript, mandatorySummaryClause, noQuestionClause), nil

	case entities.CategoryProjectMeeting:
		project := strings.ToLower(mctx.Project)
		if !strings.Contains(project, "finpay") && !strings.Contains(project, "lsq") {
			// No generic project template exists yet, so every project
			// falls through to the integration template. Logged because
			// the preamble's domain facts may not match the project.
			if r.logger != nil {
				r.logger.Warn("⚠️ No template for project, falling back to integration template",
					zap.String("project", mctx.Project))
			}
		}
		preamble := fmt.Sprintf(integrationProjectPreamble, mctx.Project)
		return assemblePrompt(preamble, r.roster, transcript, mandatorySummaryClause, noQuestionClause), nil

	case entities.CategoryExistingCustomer:
		preamble := fmt.Sprintf(escalationPreamble, mctx.SubjectName, customerBackground(mctx.CustomerContext))
		return assemblePrompt(preamble, r.roster, transcript, mandatorySummaryClause, noQuestionClause), nil

	default:
		return "", apperrors.ErrUnknownMeetingCategory(string(mctx.Category))
	}
}

func (r *Router) internalPreamble(mctx entities.MeetingContext) string {
	department := strings.ToLower(strings.TrimSpace(mctx.Department))
	switch {
	case department == "onboarding":
		return onboardingPreamble
	case department == "sales":
		return salesSyncPreamble
	case strings.Contains(department, "support"):
		return supportPreamble
	default:
		return fmt.Sprintf(genericInternalPreamble, mctx.SubjectName)
	}
}

// isSalesSync reports whether the context is an internal sales team sync,
// which gets the enlarged token budget.
func isSalesSync(mctx entities.MeetingContext) bool {
	return mctx.Category == entities.CategoryInternalMeeting &&
		strings.EqualFold(strings.TrimSpace(mctx.Department), "sales")
}

func customerBackground(customerContext string) string {
	if strings.TrimSpace(customerContext) == "" {
		return ""
	}
	return "Background on this account: " + customerContext
}
