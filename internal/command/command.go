// Released under an MIT license. See LICENSE.

// Package command maps command names to executables and dispatches REPL
// input to them.
package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/michaelmacinnis/srepl/internal/result"
)

// Result is the terminal outcome of a command.
type Result = result.T[any, error]

// Func is the executable part of a command.
type Func func(ctx context.Context, args []string) Result

// T (command) is a named executable.
type T struct {
	Name        string
	Description string
	Usage       string
	Run         Func
}

// NotFoundError reports input naming no command.
type NotFoundError struct {
	Name        string
	Suggestions []string
	Hint        string
}

func (e *NotFoundError) Error() string {
	s := "command not found: " + e.Name

	if len(e.Suggestions) > 0 {
		s += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}

	if e.Hint != "" {
		s += "; " + e.Hint
	}

	return s
}

// UsageError reports a command invoked with the wrong arguments.
type UsageError struct {
	Command string
	Usage   string
	Problem string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s (usage: %s)", e.Command, e.Problem, e.Usage)
}

// Arguments splits the argument string of c into between min and max
// whitespace separated fields.
func Arguments(c *T, args []string, min, max int) ([]string, error) {
	var fields []string
	if len(args) > 0 {
		fields = strings.Fields(args[0])
	}

	n := len(fields)
	if n >= min && n <= max {
		return fields, nil
	}

	want := Count(min, "argument", "s")
	if min != max {
		want = fmt.Sprintf("%d to %s", min, Count(max, "argument", "s"))
	}

	return nil, &UsageError{
		Command: c.Name,
		Usage:   c.Usage,
		Problem: fmt.Sprintf("expected %s, passed %d", want, n),
	}
}

// Count formats n with label, pluralised with p.
func Count(n int, label string, p string) string {
	if n == 1 {
		p = ""
	}

	return fmt.Sprintf("%d %s%s", n, label, p)
}

// Text is a Success holding s.
func Text(s string) Result {
	return result.Successful[any, error](s)
}

// Fail is a Failure holding err.
func Fail(err error) Result {
	return result.Failed[any](err)
}

// Raise is an Exception holding err.
func Raise(err error) Result {
	return result.Excepted[any, error](err)
}

func suggest(name string, names []string) []string {
	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) == 0 {
		// Try the other way round: a typo with extra letters.
		for _, n := range names {
			if fuzzy.MatchFold(n, name) {
				ranks = append(ranks, fuzzy.Rank{Target: n, Distance: len(name) - len(n)})
			}
		}
	}

	sort.Sort(ranks)

	const most = 3

	out := make([]string, 0, most)
	for _, r := range ranks {
		if len(out) == most {
			break
		}
		out = append(out, r.Target)
	}

	return out
}
