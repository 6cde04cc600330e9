package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Comment is an activity comment that could not be posted to the board card.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Text      string    `json:"text"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	LastError string    `json:"last_error,omitempty"`

	bucketKey []byte
}

func (c *Comment) normalize() {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
}
