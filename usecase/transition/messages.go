package transition

import (
	"fmt"
	"time"

	"github.com/fastygo/taskpulse/domain"
)

// UserMessage turns a transition error into text suitable for the person who asked for it.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return "Task not found."
	case domain.IsDomainError(err, domain.ErrCodeInvalidTransition):
		return "This status change is not allowed."
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return "Unknown status."
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return "The task was changed by someone else, please try again."
	default:
		return "System error, the status was not changed. Please try again later."
	}
}

func activityText(from, to domain.Status, actorID string, at time.Time) string {
	return fmt.Sprintf("Status changed from %s to %s by %s at %s",
		from, to, actorID, at.UTC().Format(time.RFC3339))
}
