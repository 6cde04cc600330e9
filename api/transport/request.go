package transport

// TransitionRequest asks for a task status change.
type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// AssignRequest sets the assignee of a task.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id" validate:"required,max=64"`
}
