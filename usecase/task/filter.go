package task

import (
	"math"
	"strings"

	"github.com/fastygo/taskdesk/domain"
)

// FilterTasks derives the visible subset of tasks. Status, search and
// category narrow the same working set in that order. tasks is not modified.
func FilterTasks(tasks []domain.Task, filter domain.TaskFilter) []domain.Task {
	query := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		switch filter.Status {
		case domain.FilterActive:
			if t.Status == domain.TaskCompleted {
				continue
			}
		case domain.FilterCompleted:
			if t.Status != domain.TaskCompleted {
				continue
			}
		}

		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}

		if filter.Category != nil && t.Category != *filter.Category {
			continue
		}

		out = append(out, t)
	}
	return out
}

// ComputeStats counts tasks by completion; the rate is rounded to a whole percent.
func ComputeStats(tasks []domain.Task) domain.TaskStats {
	stats := domain.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == domain.TaskCompleted {
			stats.Completed++
		}
	}
	stats.Active = stats.Total - stats.Completed
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats
}
