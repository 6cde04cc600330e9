package domain

// Action is an inline button attached to an outbound message.
type Action struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Notification is a message addressed to a single recipient.
type Notification struct {
	RecipientID string     `json:"recipient_id"`
	Text        string     `json:"text"`
	Actions     [][]Action `json:"actions,omitempty"`
}
