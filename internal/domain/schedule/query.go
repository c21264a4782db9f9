package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/planwise/core/internal/domain/entities"
)

// QueryFilter narrows the active task list. Zero values mean "no filter".
type QueryFilter struct {
	SubjectID string
	Text      string
}

// Query filters and sorts the active (non-archived) task list for display.
// Pipeline: subject filter, case-insensitive text match over title+detail,
// archival exclusion, then a stable three-band sort: tasks with a due
// instant soonest-first, then tasks without one newest-first, completed
// tasks last.
func Query(tasks []entities.Task, f QueryFilter, now time.Time) []entities.Task {
	needle := strings.ToLower(f.Text)
	out := make([]entities.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.SubjectID != "" && t.SubjectID != f.SubjectID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Title+t.Detail), needle) {
			continue
		}
		if t.IsArchived(now) {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return taskLess(out[i], out[j])
	})
	return out
}

func taskLess(a, b entities.Task) bool {
	aDone := a.Status == entities.TaskStatusDone
	bDone := b.Status == entities.TaskStatusDone
	if aDone != bDone {
		return !aDone
	}
	switch {
	case a.DueAt != nil && b.DueAt != nil:
		return a.DueAt.Before(*b.DueAt)
	case a.DueAt != nil:
		return true
	case b.DueAt != nil:
		return false
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}

// Summary is the trivial dashboard aggregation over the active list.
type Summary struct {
	Total      int                           `json:"total"`
	ByStatus   map[entities.TaskStatus]int   `json:"byStatus"`
	ByCategory map[entities.TaskCategory]int `json:"byCategory"`
	Overdue    int                           `json:"overdue"`
}

// Summarize counts the active tasks by status and category.
func Summarize(tasks []entities.Task, now time.Time) Summary {
	s := Summary{
		ByStatus:   make(map[entities.TaskStatus]int),
		ByCategory: make(map[entities.TaskCategory]int),
	}
	for _, t := range tasks {
		if t.IsArchived(now) {
			continue
		}
		s.Total++
		s.ByStatus[t.Status]++
		if t.Category != "" {
			s.ByCategory[t.Category]++
		}
		if t.DueAt != nil && t.DueAt.Before(now) && t.Status != entities.TaskStatusDone {
			s.Overdue++
		}
	}
	return s
}
