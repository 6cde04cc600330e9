package transport

import "github.com/fastygo/taskpulse/domain"

// TransitionResponse is returned by the status and assignee endpoints.
type TransitionResponse struct {
	Task           *domain.Task    `json:"task"`
	PreviousStatus domain.Status   `json:"previous_status"`
	Changed        bool            `json:"changed"`
	Allowed        []domain.Status `json:"allowed_transitions"`
}

// ErrorDetail carries a message that can be shown to the person who made the request.
type ErrorDetail struct {
	Message     string `json:"message"`
	UserMessage string `json:"user_message,omitempty"`
}
