package sweep

import (
	"fmt"
	"time"

	"github.com/fastygo/taskpulse/domain"
)

const dueLayout = "Mon 02 Jan 15:04"

func (uc *UseCase) buildNotification(task *domain.Task, recipient string, window domain.WindowType, now time.Time) domain.Notification {
	var text string
	due := task.DueDate.In(uc.cfg.Location)
	if window == domain.WindowOverdue {
		text = fmt.Sprintf("Overdue: %q was due %s (%s ago).", task.Title, due.Format(dueLayout), humanize(now.Sub(*task.DueDate)))
	} else {
		text = fmt.Sprintf("Reminder: %q is due %s (in %s).", task.Title, due.Format(dueLayout), humanize(task.DueDate.Sub(now)))
	}

	return domain.Notification{
		RecipientID: recipient,
		Text:        text,
		Actions: [][]domain.Action{{
			{Label: "Start", Data: "task:status:" + task.ID + ":" + string(domain.StatusInProgress)},
			{Label: "Done", Data: "task:status:" + task.ID + ":" + string(domain.StatusDone)},
		}},
	}
}

func humanize(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
