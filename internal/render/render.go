// Package render writes boards, tasks, search results and offline actions in
// the CLI's output formats: an aligned table, pretty JSON, and JSONL.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/olekukonko/tablewriter"

	"github.com/dyluth/kanban/internal/board"
	"github.com/dyluth/kanban/internal/offline"
	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/search"
)

// Output formats accepted by -o.
const (
	FormatDefault = "default"
	FormatJSON    = "json"
	FormatJSONL   = "jsonl"
)

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	return f == FormatDefault || f == FormatJSON || f == FormatJSONL
}

// Board writes every column and its tasks as one table. Columns appear in
// slice order. Returns the number of tasks written.
func Board(w io.Writer, b *board.Board, now time.Time) (int, error) {
	fmt.Fprintf(w, "%s\n", b.Name)
	if b.Description != "" {
		fmt.Fprintf(w, "%s\n", b.Description)
	}
	fmt.Fprintln(w)

	if len(b.Columns) == 0 {
		fmt.Fprintf(w, "No columns on board '%s'\n", b.ID)
		return 0, nil
	}

	rows := make([][]string, 0, b.TaskCount()+len(b.Columns))
	for _, col := range b.Columns {
		heading := fmt.Sprintf("%s %s (%d)", printer.Swatch(col.Color), col.Name, len(col.Tasks))
		if len(col.Tasks) == 0 {
			rows = append(rows, []string{heading, "", "-", "", "", "", ""})
			continue
		}
		for i, t := range col.Tasks {
			label := ""
			if i == 0 {
				label = heading
			}
			rows = append(rows, []string{
				label,
				strconv.Itoa(t.Position),
				formatID(t.ID),
				formatTitle(t.Title),
				printer.Priority(string(t.Priority)),
				formatSubtasks(t.Subtasks),
				formatDue(t.DueDate, now),
			})
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Column", "#", "ID", "Title", "Priority", "Subtasks", "Due"})
	if err := table.Bulk(rows); err != nil {
		return 0, fmt.Errorf("failed to build board table: %w", err)
	}
	if err := table.Render(); err != nil {
		return 0, fmt.Errorf("failed to render board table: %w", err)
	}

	n := b.TaskCount()
	fmt.Fprintf(w, "\n%d %s in %d %s\n", n, plural(n, "task"), len(b.Columns), plural(len(b.Columns), "column"))
	return n, nil
}

// Task writes the full detail view of one task.
func Task(w io.Writer, t *board.Task, col *board.Column, now time.Time) {
	fmt.Fprintf(w, "%s\n", t.Title)
	fmt.Fprintf(w, "  ID:        %s\n", t.ID)
	if col != nil {
		fmt.Fprintf(w, "  Column:    %s (position %d)\n", col.Name, t.Position)
	}
	fmt.Fprintf(w, "  Status:    %s\n", t.Status)
	fmt.Fprintf(w, "  Priority:  %s\n", printer.Priority(string(t.Priority)))
	if t.AssigneeID != "" {
		fmt.Fprintf(w, "  Assignee:  %s\n", t.AssigneeID)
	}
	fmt.Fprintf(w, "  Due:       %s\n", formatDue(t.DueDate, now))
	fmt.Fprintf(w, "  Updated:   %s\n", formatAge(t.UpdatedAt, now))
	if len(t.Labels) > 0 {
		names := make([]string, len(t.Labels))
		for i, l := range t.Labels {
			names[i] = l.Name
		}
		fmt.Fprintf(w, "  Labels:    %s\n", strings.Join(names, ", "))
	}
	if t.Description != "" {
		fmt.Fprintf(w, "\n%s\n", t.Description)
	}

	if len(t.Subtasks) > 0 {
		fmt.Fprintf(w, "\nSubtasks %s:\n", formatSubtasks(t.Subtasks))
		for _, s := range t.Subtasks {
			mark := " "
			if s.Completed {
				mark = "x"
			}
			fmt.Fprintf(w, "  [%s] %s  (%s)\n", mark, s.Title, formatID(s.ID))
		}
	}

	if len(t.Comments) > 0 {
		fmt.Fprintf(w, "\nComments:\n")
		for _, c := range t.Comments {
			author := c.AuthorID
			if author == "" {
				author = "anonymous"
			}
			fmt.Fprintf(w, "  %s, %s: %s\n", author, formatAge(c.CreatedAt, now), c.Content)
		}
	}
}

// SearchResults writes search hits as a table.
func SearchResults(w io.Writer, query string, results []search.Result) error {
	if len(results) == 0 {
		fmt.Fprintf(w, "No results for '%s'\n", query)
		return nil
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{r.Type, formatID(r.ID), formatTitle(r.Title), r.URL}
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Type", "ID", "Title", "URL"})
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build results table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render results table: %w", err)
	}
	fmt.Fprintf(w, "\n%d %s\n", len(results), plural(len(results), "result"))
	return nil
}

// Actions writes the offline queue as a table.
func Actions(w io.Writer, actions []offline.Action, now time.Time) error {
	if len(actions) == 0 {
		fmt.Fprintln(w, "No offline actions queued")
		return nil
	}

	rows := make([][]string, len(actions))
	for i, a := range actions {
		state := "pending"
		if a.Synced {
			state = "synced"
		}
		rows[i] = []string{formatID(a.ID), string(a.Type), a.Entity, a.EntityID, formatAge(a.Timestamp, now), state}
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Type", "Entity", "Entity ID", "Queued", "State"})
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build actions table: %w", err)
	}
	return table.Render()
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// JSONL writes each task of the board as one compact JSON object per line,
// in column order.
func JSONL(w io.Writer, b *board.Board) error {
	for _, col := range b.Columns {
		for _, t := range col.Tasks {
			data, err := sonic.ConfigStd.Marshal(t)
			if err != nil {
				return fmt.Errorf("failed to marshal task to JSON: %w", err)
			}
			if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
				return fmt.Errorf("failed to write JSONL output: %w", err)
			}
		}
	}
	return nil
}

// formatID truncates UUIDs to their first 8 characters. Short IDs such as
// the demo's task-1 are shown in full.
func formatID(id string) string {
	if len(id) == 36 && strings.Count(id, "-") == 4 {
		return id[:8]
	}
	return id
}

// formatTitle keeps the first non-empty line, truncated to 40 characters.
func formatTitle(title string) string {
	var first string
	for _, line := range strings.Split(title, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			first = trimmed
			break
		}
	}
	if first == "" {
		return "-"
	}
	if len([]rune(first)) > 40 {
		return string([]rune(first)[:37]) + "..."
	}
	return first
}

func formatSubtasks(subtasks []*board.Subtask) string {
	if len(subtasks) == 0 {
		return "-"
	}
	done := 0
	for _, s := range subtasks {
		if s.Completed {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(subtasks))
}

// formatDue shows a due date relative to now: "in 3d", "today", "2d overdue".
func formatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return "-"
	}
	dueDay := truncateDay(*due)
	today := truncateDay(now)
	days := int(dueDay.Sub(today).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days > 0:
		return fmt.Sprintf("in %dd", days)
	default:
		return fmt.Sprintf("%dd overdue", -days)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// formatAge shows how long ago t was: "42s ago", "5m ago", "3h ago", "2d ago".
func formatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
