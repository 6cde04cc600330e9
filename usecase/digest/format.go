package digest

import (
	"fmt"
	"strings"

	"github.com/fastygo/taskpulse/domain"
)

type builder struct {
	strings.Builder
}

func (b *builder) line(s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}

func (b *builder) blank() {
	b.WriteByte('\n')
}

// section lists at most limit tasks and rolls the rest up into a count. Empty sections are omitted.
func (b *builder) section(title string, tasks []domain.Task, limit int, render func(domain.Task) string) {
	if len(tasks) == 0 {
		return
	}
	b.blank()
	b.line(title)
	for i, t := range tasks {
		if i == limit {
			b.line(fmt.Sprintf("...and %d more", len(tasks)-limit))
			break
		}
		b.line("- " + render(t))
	}
}

func (b *builder) String() string {
	return strings.TrimRight(b.Builder.String(), "\n")
}
