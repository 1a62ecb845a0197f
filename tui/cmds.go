package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chupakbra/pbadm/internal/collection"
)

const requestTimeout = 20 * time.Second

// loadedMsg carries a page load back to the screen that issued it. The
// sequence token inside the result decides whether it is still wanted.
type loadedMsg[T collection.Entity] struct {
	res collection.LoadResult[T]
}

// mutatedMsg carries a persisted row change back to its screen.
type mutatedMsg[T collection.Entity] struct {
	res   collection.MutationResult[T]
	label string // e.g. `User "ann@example.com" blocked`
}

// committedMsg carries an edit session commit back to its screen.
type committedMsg[T collection.Entity] struct {
	res collection.CommitResult
}

func loadCmd[T collection.Entity](req collection.LoadRequest[T]) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return loadedMsg[T]{res: req.Do(ctx)}
	}
}

func mutateCmd[T collection.Entity](req collection.MutationRequest[T], label string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return mutatedMsg[T]{res: req.Do(ctx), label: label}
	}
}

func commitCmd[T collection.Entity](req collection.CommitRequest[T]) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return committedMsg[T]{res: req.Do(ctx)}
	}
}
