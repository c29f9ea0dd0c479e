package task

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskdesk/domain"
)

func sampleTasks() []domain.Task {
	return []domain.Task{
		{ID: "1", Title: "Buy Milk", Status: domain.TaskPending, Category: "Groceries"},
		{ID: "2", Title: "Write report", Description: "quarterly MILKSHAKE numbers", Status: domain.TaskCompleted, Category: "Work"},
		{ID: "3", Title: "Call plumber", Status: domain.TaskInProgress},
		{ID: "4", Title: "Archive mail", Status: domain.TaskCancelled, Category: "Work"},
		{ID: "5", Title: "File taxes", Status: domain.TaskCompleted},
	}
}

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestFilterTasks_PureAndNonMutating(t *testing.T) {
	tasks := sampleTasks()
	original := sampleTasks()
	filter := domain.TaskFilter{Status: domain.FilterActive, Search: "milk"}

	first := FilterTasks(tasks, filter)
	second := FilterTasks(tasks, filter)

	require.Equal(t, first, second)
	require.Equal(t, original, tasks)
}

func TestFilterTasks_StatusPartitions(t *testing.T) {
	tasks := sampleTasks()

	all := FilterTasks(tasks, domain.DefaultTaskFilter())
	active := FilterTasks(tasks, domain.TaskFilter{Status: domain.FilterActive})
	completed := FilterTasks(tasks, domain.TaskFilter{Status: domain.FilterCompleted})

	require.Equal(t, tasks, all)
	require.Len(t, all, len(active)+len(completed))
	require.NotContains(t, ids(active), "2")
	require.ElementsMatch(t, ids(all), append(ids(active), ids(completed)...))
	for _, task := range completed {
		require.Equal(t, domain.TaskCompleted, task.Status)
	}
}

func TestFilterTasks_Search(t *testing.T) {
	tasks := []domain.Task{{ID: "1", Title: "Buy Milk"}}

	cases := []struct {
		query string
		want  []string
	}{
		{"milk", []string{"1"}},
		{"MILK", []string{"1"}},
		{"  milk  ", []string{"1"}},
		{"bread", []string{}},
		{"   ", []string{"1"}},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			got := FilterTasks(tasks, domain.TaskFilter{Status: domain.FilterAll, Search: tc.query})
			require.Equal(t, tc.want, ids(got))
		})
	}
}

func TestFilterTasks_SearchMatchesDescription(t *testing.T) {
	got := FilterTasks(sampleTasks(), domain.TaskFilter{Status: domain.FilterAll, Search: "milk"})
	require.Equal(t, []string{"1", "2"}, ids(got))
}

func TestFilterTasks_NarrowingIsConjunctive(t *testing.T) {
	tasks := sampleTasks()

	got := FilterTasks(tasks, domain.TaskFilter{Status: domain.FilterCompleted, Search: "milk", Category: strPtr("Work")})
	require.Equal(t, []string{"2"}, ids(got))

	got = FilterTasks(tasks, domain.TaskFilter{Status: domain.FilterActive, Search: "milk", Category: strPtr("Work")})
	require.Empty(t, got)

	got = FilterTasks(tasks, domain.TaskFilter{Status: domain.FilterAll, Category: strPtr("Home")})
	require.Empty(t, got)

	got = FilterTasks(tasks, domain.TaskFilter{Status: domain.FilterAll, Category: strPtr("")})
	require.Equal(t, []string{"3", "5"}, ids(got))
}

func TestComputeStats(t *testing.T) {
	require.Equal(t, domain.TaskStats{}, ComputeStats(nil))

	stats := ComputeStats(sampleTasks())
	require.Equal(t, domain.TaskStats{Total: 5, Active: 3, Completed: 2, CompletionRate: 40}, stats)

	stats = ComputeStats([]domain.Task{
		{Status: domain.TaskCompleted},
		{Status: domain.TaskCompleted},
		{Status: domain.TaskPending},
	})
	require.Equal(t, 67, stats.CompletionRate)
}
