package resolver

import (
	"fmt"
	"strings"

	"github.com/dyluth/kanban/internal/board"
)

// MinPrefixLength is the shortest prefix accepted for a generated ID.
const MinPrefixLength = 4

// ResolveTask turns a user reference into a task ID. An exact ID always
// wins; otherwise ref is matched as an ID prefix.
func ResolveTask(b *board.Board, ref string) (string, error) {
	var ids []string
	for _, col := range b.Columns {
		for _, t := range col.Tasks {
			if t.ID == ref {
				return t.ID, nil
			}
			ids = append(ids, t.ID)
		}
	}
	return resolvePrefix("task", ref, ids)
}

// ResolveColumn turns a user reference into a column ID. It tries, in order:
// exact ID, case-insensitive name, ID prefix.
func ResolveColumn(b *board.Board, ref string) (string, error) {
	if c := b.FindColumn(ref); c != nil {
		return c.ID, nil
	}

	var byName, ids []string
	for _, c := range b.Columns {
		if strings.EqualFold(c.Name, strings.TrimSpace(ref)) {
			byName = append(byName, c.ID)
		}
		ids = append(ids, c.ID)
	}
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
	default:
		return "", &AmbiguousError{Kind: "column", Ref: ref, Matches: byName}
	}

	return resolvePrefix("column", ref, ids)
}

// ResolveSubtask turns a user reference into the ID of one of t's subtasks.
func ResolveSubtask(t *board.Task, ref string) (string, error) {
	ids := make([]string, 0, len(t.Subtasks))
	for _, s := range t.Subtasks {
		if s.ID == ref {
			return s.ID, nil
		}
		ids = append(ids, s.ID)
	}
	return resolvePrefix("subtask", ref, ids)
}

func resolvePrefix(kind, ref string, ids []string) (string, error) {
	if len(ref) < MinPrefixLength {
		return "", &NotFoundError{Kind: kind, Ref: ref}
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Kind: kind, Ref: ref}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{Kind: kind, Ref: ref, Matches: matches}
	}
}

// NotFoundError indicates nothing matched the reference.
type NotFoundError struct {
	Kind string
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found matching '%s'", e.Kind, e.Ref)
}

// AmbiguousError indicates several items matched the reference.
type AmbiguousError struct {
	Kind    string
	Ref     string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous %s reference '%s' matches %d items", e.Kind, e.Ref, len(e.Matches))
}

// FormatAmbiguousError lists the candidates (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "'%s' matches %d %ss:\n", err.Ref, len(err.Matches), err.Kind)

	shown := len(err.Matches)
	if shown > 10 {
		shown = 10
	}
	for _, m := range err.Matches[:shown] {
		fmt.Fprintf(&sb, "  %s\n", m)
	}
	if len(err.Matches) > 10 {
		fmt.Fprintf(&sb, "  ...and %d more\n", len(err.Matches)-10)
	}

	fmt.Fprintf(&sb, "\nUse a longer prefix to pick one %s.", err.Kind)
	return sb.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
