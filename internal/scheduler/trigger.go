package scheduler

import (
	"fmt"
	"time"
)

type triggerKind int

const (
	kindInterval triggerKind = iota + 1
	kindDaily
)

// Trigger says when a job fires: every fixed interval, or daily at a wall-clock time
// in the scheduler's location.
type Trigger struct {
	kind   triggerKind
	every  time.Duration
	hour   int
	minute int
}

// Interval fires every d. d must be at least one second.
func Interval(d time.Duration) Trigger {
	return Trigger{kind: kindInterval, every: d}
}

// DailyAt fires once a day at hour:minute.
func DailyAt(hour, minute int) Trigger {
	return Trigger{kind: kindDaily, hour: hour, minute: minute}
}

// spec renders the trigger for a seconds-enabled cron parser.
func (t Trigger) spec() (string, error) {
	switch t.kind {
	case kindInterval:
		if t.every < time.Second {
			return "", fmt.Errorf("interval %s is shorter than one second", t.every)
		}
		return "@every " + t.every.String(), nil
	case kindDaily:
		if t.hour < 0 || t.hour > 23 || t.minute < 0 || t.minute > 59 {
			return "", fmt.Errorf("invalid time of day %02d:%02d", t.hour, t.minute)
		}
		return fmt.Sprintf("0 %d %d * * *", t.minute, t.hour), nil
	default:
		return "", fmt.Errorf("empty trigger")
	}
}

func (t Trigger) String() string {
	switch t.kind {
	case kindInterval:
		return "every " + t.every.String()
	case kindDaily:
		return fmt.Sprintf("daily at %02d:%02d", t.hour, t.minute)
	default:
		return "never"
	}
}
