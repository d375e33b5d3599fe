package commands

import (
	"errors"
	"fmt"

	"github.com/dyluth/kanban/internal/board"
	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/resolver"
)

func resolveColumn(b *board.Board, ref string) (string, error) {
	id, err := resolver.ResolveColumn(b, ref)
	return id, refError("column", ref, err)
}

func resolveTask(b *board.Board, ref string) (string, error) {
	id, err := resolver.ResolveTask(b, ref)
	return id, refError("task", ref, err)
}

func refError(kind, ref string, err error) error {
	var amb *resolver.AmbiguousError
	switch {
	case err == nil:
		return nil
	case resolver.IsNotFoundError(err):
		return printer.Error(
			fmt.Sprintf("%s not found", kind),
			fmt.Sprintf("No %s matches '%s' on this board.", kind, ref),
			[]string{"List the board:\n  kanban board show"},
		)
	case errors.As(err, &amb):
		return printer.Error(fmt.Sprintf("ambiguous %s", kind), resolver.FormatAmbiguousError(amb), nil)
	default:
		return err
	}
}
