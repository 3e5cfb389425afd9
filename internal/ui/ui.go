// Released under an MIT license. See LICENSE.

// Package ui provides an interactive line editor for the REPL.
package ui

import (
	"context"
	"errors"

	"github.com/michaelmacinnis/srepl/internal/ctxlog"
	"github.com/michaelmacinnis/srepl/internal/system/history"
	"github.com/peterh/liner"
)

// Completer lists the completions for a partial line.
type Completer interface {
	Completions(line string) []string
}

// T (ui) reads lines from a terminal. Evaluation between reads happens
// with the terminal in its original mode.
type T struct {
	cli      *liner.State
	cooked   liner.ModeApplier
	history  string
	prompt   string
	uncooked liner.ModeApplier
}

// New puts the terminal under the line editor's control. When history is
// true, earlier input is loaded and saved again on Close.
func New(ctx context.Context, prompt string, c Completer, keep bool) (*T, error) {
	cooked, err := liner.TerminalMode()
	if err != nil {
		return nil, err
	}

	cli := liner.NewLiner()

	uncooked, err := liner.TerminalMode()
	if err != nil {
		cli.Close()
		return nil, err
	}

	u := &T{cli: cli, cooked: cooked, prompt: prompt, uncooked: uncooked}

	cli.SetCtrlCAborts(true)
	cli.SetTabCompletionStyle(liner.TabPrints)
	cli.SetCompleter(c.Completions)

	if keep {
		u.history, err = history.Path()
		if err == nil {
			err = history.Load(u.history, cli.ReadHistory)
		}

		if err != nil {
			ctxlog.FromContext(ctx).Warn("History not loaded.", "error", err)
			u.history = ""
		}
	}

	return u, nil
}

// Read prompts for a line. An aborted line is returned as empty.
func (u *T) Read(_ context.Context) (string, error) {
	if err := u.uncooked.ApplyMode(); err != nil {
		return "", err
	}

	line, err := u.cli.Prompt(u.prompt)

	if merr := u.cooked.ApplyMode(); merr != nil {
		return "", merr
	}

	switch {
	case err == nil:
		if line != "" {
			u.cli.AppendHistory(line)
		}

		return line, nil
	case errors.Is(err, liner.ErrPromptAborted):
		return "", nil
	}

	return "", err
}

// Close saves the history and restores the terminal.
func (u *T) Close(ctx context.Context) error {
	if u.history != "" {
		if err := history.Save(u.history, u.cli.WriteHistory); err != nil {
			ctxlog.FromContext(ctx).Warn("History not saved.", "error", err)
		}
	}

	return u.cli.Close()
}
