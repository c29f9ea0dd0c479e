package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fastygo/taskdesk/domain"
)

func (rt *runtime) render(w io.Writer, v interface{}, text func(io.Writer) error) error {
	if rt.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

func writeTasks(w io.Writer, tasks []domain.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tCATEGORY\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Status, t.Priority, orDash(t.DueDate), orDash(t.Category), t.Title)
	}
	return tw.Flush()
}

func writeTask(w io.Writer, t domain.Task) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Description:\t%s\n", orDash(t.Description))
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status)
	fmt.Fprintf(tw, "Priority:\t%s\n", t.Priority)
	fmt.Fprintf(tw, "Due:\t%s\n", orDash(t.DueDate))
	fmt.Fprintf(tw, "Category:\t%s\n", orDash(t.Category))
	fmt.Fprintf(tw, "Updated:\t%s\n", t.UpdatedAt.Local().Format(time.RFC822))
	return tw.Flush()
}

func writeCategories(w io.Writer, categories []domain.Category) error {
	if len(categories) == 0 {
		_, err := fmt.Fprintln(w, "No categories yet.")
		return err
	}
	for _, c := range categories {
		if _, err := fmt.Fprintln(w, c.Name); err != nil {
			return err
		}
	}
	return nil
}

func writeStats(w io.Writer, s domain.TaskStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total:\t%d\n", s.Total)
	fmt.Fprintf(tw, "Active:\t%d\n", s.Active)
	fmt.Fprintf(tw, "Completed:\t%d\n", s.Completed)
	fmt.Fprintf(tw, "Completion rate:\t%d%%\n", s.CompletionRate)
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
