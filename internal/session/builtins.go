// Released under an MIT license. See LICENSE.

package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/michaelmacinnis/srepl/internal/command"
)

func (s *T) builtins() {
	p := s.commands.Prefix()

	for _, c := range []*command.T{
		{Name: "context", Description: "show the loaded language and strategy", Usage: p + "context", Run: s.context},
		{Name: "exit", Description: "leave the REPL", Usage: p + "exit", Run: s.leave("exit")},
		{Name: "help", Description: "list commands or describe one", Usage: p + "help [COMMAND]", Run: s.help},
		{Name: "languages", Description: "list the languages that can be loaded", Usage: p + "languages", Run: s.list},
		{Name: "load", Description: "load a language and install its commands", Usage: p + "load LANGUAGE", Run: s.load},
		{Name: "quit", Description: "leave the REPL", Usage: p + "quit", Run: s.leave("quit")},
		{Name: "reset", Description: "discard interpreter environments", Usage: p + "reset", Run: s.reset},
		{Name: "strategy", Description: "list strategies or select one", Usage: p + "strategy [NAME]", Run: s.strategy},
		{Name: "trees", Description: "turn syntax tree drawing on or off", Usage: p + "trees [on|off]", Run: s.trees},
	} {
		s.commands.AddBuiltin(c)
	}
}

func (s *T) usage(name string, args []string, min, max int) ([]string, error) {
	c, _ := s.commands.Lookup(name)

	return command.Arguments(c, args, min, max)
}

func (s *T) context(_ context.Context, args []string) command.Result {
	if _, err := s.usage("context", args, 0, 0); err != nil {
		return command.Fail(err)
	}

	var b strings.Builder

	impl := s.Language()
	if impl == nil {
		b.WriteString("language: none\n")
	} else {
		f := impl.Facets()

		actions := make([]string, 0, len(f.Actions))
		for _, a := range f.Actions {
			actions = append(actions, a.Name)
		}

		fmt.Fprintf(&b, "language: %s (%s)\n", impl.Name(), impl.ID())
		fmt.Fprintf(&b, "analysis: %t\n", f.Analysis)
		fmt.Fprintf(&b, "actions: %s\n", strings.Join(actions, ", "))
	}

	st := s.strategies.Current()
	state := "uninitialized"

	if st.State().Initialized() {
		state = "initialized for " + st.State().ID()
	}

	fmt.Fprintf(&b, "strategy: %s (%s)\n", st.Name(), state)
	fmt.Fprintf(&b, "project: %s", s.project.Root)

	return command.Text(b.String())
}

func (s *T) leave(name string) command.Func {
	return func(_ context.Context, args []string) command.Result {
		if _, err := s.usage(name, args, 0, 0); err != nil {
			return command.Fail(err)
		}

		s.stopped = true

		return command.Text("")
	}
}

func (s *T) help(_ context.Context, args []string) command.Result {
	fields, err := s.usage("help", args, 0, 1)
	if err != nil {
		return command.Fail(err)
	}

	if len(fields) == 1 {
		name := strings.TrimPrefix(fields[0], s.commands.Prefix())

		c, ok := s.commands.Lookup(name)
		if !ok {
			return command.Fail(&command.NotFoundError{Name: name})
		}

		return command.Text(c.Usage + "\n    " + c.Description)
	}

	cmds := s.commands.Commands()

	width := 0
	for _, c := range cmds {
		width = max(width, len(c.Name))
	}

	lines := make([]string, 0, len(cmds)+1)
	for _, c := range cmds {
		lines = append(lines, fmt.Sprintf("%s%-*s  %s", s.commands.Prefix(), width, c.Name, c.Description))
	}

	lines = append(lines, "Any other input is evaluated.")

	return command.Text(strings.Join(lines, "\n"))
}

func (s *T) list(_ context.Context, args []string) command.Result {
	if _, err := s.usage("languages", args, 0, 0); err != nil {
		return command.Fail(err)
	}

	current := ""
	if impl := s.Language(); impl != nil {
		current = impl.Name()
	}

	lines := []string{}

	for _, name := range s.languages() {
		mark := " "
		if name == current {
			mark = "*"
		}

		lines = append(lines, fmt.Sprintf("%s %s  %s", mark, name, s.catalog[name].Description()))
	}

	return command.Text(strings.Join(lines, "\n"))
}

func (s *T) load(ctx context.Context, args []string) command.Result {
	fields, err := s.usage("load", args, 1, 1)
	if err != nil {
		return command.Fail(err)
	}

	impl, err := s.Load(ctx, fields[0])
	if err != nil {
		return command.Fail(err)
	}

	return command.Text("loaded " + impl.ID())
}

func (s *T) reset(ctx context.Context, args []string) command.Result {
	if _, err := s.usage("reset", args, 0, 0); err != nil {
		return command.Fail(err)
	}

	s.Reset(ctx)

	return command.Text("environments discarded")
}

func (s *T) strategy(ctx context.Context, args []string) command.Result {
	fields, err := s.usage("strategy", args, 0, 1)
	if err != nil {
		return command.Fail(err)
	}

	if len(fields) == 1 {
		st, err := s.Select(ctx, fields[0])
		if err != nil {
			return command.Fail(err)
		}

		return command.Text("evaluating with " + st.Name())
	}

	current := s.strategies.Current().Name()
	lines := []string{}

	for _, name := range s.strategies.Names() {
		st, _ := s.strategies.Get(name)

		mark := " "
		if name == current {
			mark = "*"
		}

		lines = append(lines, fmt.Sprintf("%s %s  init=%s eval=%s", mark, name, st.Rules().Init, st.Rules().Eval))
	}

	return command.Text(strings.Join(lines, "\n"))
}

func (s *T) trees(_ context.Context, args []string) command.Result {
	fields, err := s.usage("trees", args, 0, 1)
	if err != nil {
		return command.Fail(err)
	}

	if len(fields) == 1 {
		switch fields[0] {
		case "on":
			s.sink.SetTrees(true)
		case "off":
			s.sink.SetTrees(false)
		default:
			return command.Fail(&command.UsageError{
				Command: "trees",
				Usage:   s.commands.Prefix() + "trees [on|off]",
				Problem: "expected on or off, passed " + fields[0],
			})
		}
	}

	state := "off"
	if s.sink.Trees() {
		state = "on"
	}

	return command.Text("trees " + state)
}
