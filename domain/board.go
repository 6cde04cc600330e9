package domain

// BoardList is a column on the external kanban board.
type BoardList struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Position float64 `json:"position"`
}
