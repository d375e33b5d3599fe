package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dyluth/kanban/internal/board"
)

// Lookup is the backend a Searcher consults on a cache miss.
type Lookup interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, query string) ([]Result, error)

func (f LookupFunc) Search(ctx context.Context, query string) ([]Result, error) {
	return f(ctx, query)
}

// MockLookup fabricates one project, task and board hit around the query
// after a simulated round-trip delay.
type MockLookup struct {
	Delay      time.Duration
	MaxResults int
}

func (m MockLookup) Search(ctx context.Context, query string) ([]Result, error) {
	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	candidates := []Result{
		{
			ID:          "1",
			Type:        "project",
			Title:       fmt.Sprintf("Project: %s Dashboard", query),
			Description: "A comprehensive project management dashboard",
			URL:         "/projects/1",
			Metadata:    map[string]any{"priority": "high"},
		},
		{
			ID:          "2",
			Type:        "task",
			Title:       fmt.Sprintf("Task: Implement %s feature", query),
			Description: "Add new functionality to the application",
			URL:         "/tasks/2",
			Metadata:    map[string]any{"status": "in-progress"},
		},
		{
			ID:          "3",
			Type:        "board",
			Title:       fmt.Sprintf("%s Board", query),
			Description: "Kanban board for project management",
			URL:         "/boards/3",
			Metadata:    map[string]any{"taskCount": 15},
		},
	}
	return limit(filter(candidates, query), m.MaxResults), nil
}

// BoardLookup searches the tasks of a loaded board by title and description.
type BoardLookup struct {
	Manager    *board.Manager
	MaxResults int
}

func (l BoardLookup) Search(ctx context.Context, query string) ([]Result, error) {
	b, ok := l.Manager.Board()
	if !ok {
		return nil, board.ErrNotLoaded
	}

	var out []Result
	for _, col := range b.Columns {
		for _, t := range col.Tasks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out = append(out, Result{
				ID:          t.ID,
				Type:        "task",
				Title:       t.Title,
				Description: t.Description,
				URL:         "/tasks/" + t.ID,
				Metadata: map[string]any{
					"status":   string(t.Status),
					"priority": string(t.Priority),
					"column":   col.Name,
				},
			})
		}
	}
	return limit(filter(out, query), l.MaxResults), nil
}

// filter keeps results whose title or description contains query,
// case-insensitively.
func filter(results []Result, query string) []Result {
	q := strings.ToLower(query)
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Description), q) {
			out = append(out, r)
		}
	}
	return out
}

func limit(results []Result, max int) []Result {
	if max > 0 && len(results) > max {
		return results[:max]
	}
	return results
}
