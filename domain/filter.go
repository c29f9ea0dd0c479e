package domain

// StatusFilter narrows the task view by completion.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterActive    StatusFilter = "active"
	FilterCompleted StatusFilter = "completed"
)

func (f StatusFilter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

// TaskFilter is the transient view state held by the task store. A nil Category
// means no category narrowing.
type TaskFilter struct {
	Status   StatusFilter
	Search   string
	Category *string
}

// DefaultTaskFilter returns the filter a fresh store starts with.
func DefaultTaskFilter() TaskFilter {
	return TaskFilter{Status: FilterAll}
}
