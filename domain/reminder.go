package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// WindowType labels a reminder window in the ledger.
type WindowType string

// WindowOverdue is the ledger label for the daily overdue escalation.
const WindowOverdue WindowType = "overdue"

// ReminderWindow is a lead time before a task's due date.
type ReminderWindow struct {
	Type WindowType    `json:"type"`
	Lead time.Duration `json:"lead"`
}

// DefaultWindows returns the 2h/6h/24h windows in ascending lead order.
func DefaultWindows() []ReminderWindow {
	return []ReminderWindow{
		{Type: "2h", Lead: 2 * time.Hour},
		{Type: "6h", Lead: 6 * time.Hour},
		{Type: "24h", Lead: 24 * time.Hour},
	}
}

// ParseWindows reads a comma separated list of durations ("24h,6h,2h") into windows sorted by ascending lead.
// Each window is labelled by its duration, so labels stay unique.
func ParseWindows(raw string) ([]ReminderWindow, error) {
	var windows []ReminderWindow
	seen := make(map[WindowType]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lead, err := time.ParseDuration(part)
		if err != nil {
			return nil, fmt.Errorf("parse reminder window %q: %w", part, err)
		}
		if lead <= 0 {
			return nil, fmt.Errorf("reminder window %q must be positive", part)
		}
		label := WindowType(part)
		if label == WindowOverdue {
			return nil, fmt.Errorf("reminder window label %q is reserved", part)
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("duplicate reminder window %q", part)
		}
		seen[label] = struct{}{}
		windows = append(windows, ReminderWindow{Type: label, Lead: lead})
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("no reminder windows configured")
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Lead < windows[j].Lead })
	return windows, nil
}

// ReminderEntry is one ledger row: a (task, recipient, window) notification that has been sent.
type ReminderEntry struct {
	TaskID string     `json:"task_id"`
	UserID string     `json:"user_id"`
	Type   WindowType `json:"type"`
	SentAt *time.Time `json:"sent_at,omitempty"`
}

// IsSent reports whether the entry records a delivered notification.
func (e *ReminderEntry) IsSent() bool {
	return e != nil && e.SentAt != nil
}
