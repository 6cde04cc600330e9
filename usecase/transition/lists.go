package transition

import (
	"sort"
	"strings"

	"github.com/fastygo/taskpulse/domain"
)

// listCandidates ranks the list names tried for each status, best match first.
// Matching is a case-insensitive substring test against the board list name.
var listCandidates = map[domain.Status][]string{
	domain.StatusTodo:       {"to do", "todo", "backlog", "new", "open", "planned"},
	domain.StatusInProgress: {"in progress", "progress", "doing", "in work", "working", "active"},
	domain.StatusInReview:   {"in review", "review", "testing", "qa", "verify", "check"},
	domain.StatusDone:       {"done", "completed", "complete", "finished", "closed", "resolved"},
}

// listFallback is the board position used when no list name matches. -1 means the last list.
var listFallback = map[domain.Status]int{
	domain.StatusTodo:       0,
	domain.StatusInProgress: 1,
	domain.StatusInReview:   2,
	domain.StatusDone:       -1,
}

// ResolveList picks the board list that represents status.
// Candidates are tried in rank order across lists sorted by position; when nothing
// matches the positional fallback applies. A fallback never lands on the list that
// done resolves to for another status. It reports false when no list fits.
func ResolveList(lists []domain.BoardList, status domain.Status) (string, bool) {
	if len(lists) == 0 || !status.IsValid() {
		return "", false
	}

	ordered := make([]domain.BoardList, len(lists))
	copy(ordered, lists)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	if id, ok := matchByName(ordered, status); ok {
		return id, true
	}

	id, ok := byPosition(ordered, status)
	if !ok || status == domain.StatusDone {
		return id, ok
	}
	if doneID, _ := ResolveList(ordered, domain.StatusDone); id == doneID {
		return "", false
	}
	return id, true
}

func matchByName(ordered []domain.BoardList, status domain.Status) (string, bool) {
	for _, candidate := range listCandidates[status] {
		for _, list := range ordered {
			if strings.Contains(strings.ToLower(list.Name), candidate) {
				return list.ID, true
			}
		}
	}
	return "", false
}

func byPosition(ordered []domain.BoardList, status domain.Status) (string, bool) {
	idx := listFallback[status]
	if idx < 0 {
		idx = len(ordered) - 1
	}
	if idx >= len(ordered) {
		return "", false
	}
	return ordered[idx].ID, true
}
