// Released under an MIT license. See LICENSE.

// Package session owns the state of one REPL session: the command registry,
// the evaluation strategies and the loaded language.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/michaelmacinnis/srepl/internal/command"
	"github.com/michaelmacinnis/srepl/internal/ctxlog"
	"github.com/michaelmacinnis/srepl/internal/lang"
	"github.com/michaelmacinnis/srepl/internal/pipeline"
	"github.com/michaelmacinnis/srepl/internal/result"
	"github.com/michaelmacinnis/srepl/internal/strategy"
)

// Names of the commands installed for a loaded language.
const (
	Parse   = "parse"
	Analyze = "analyze"
	Eval    = "eval"
)

// ErrUnknownLanguage is returned when loading a language not in the catalog.
var ErrUnknownLanguage = errors.New("unknown language")

// Sink receives the outcome of every command.
type Sink interface {
	result.Visitor[any, error]
	Trees() bool
	SetTrees(on bool)
}

// Config holds what a session is built from.
type Config struct {
	Prefix     string
	Catalog    map[string]lang.Implementation
	Provider   lang.ContextProvider
	Loader     lang.RuntimeLoader
	Strategies map[string]strategy.Rules
	Strategy   string
	Project    lang.Project
	Sink       Sink
}

// T (session) routes input lines to commands.
type T struct {
	catalog    map[string]lang.Implementation
	commands   *command.Registry
	composer   *pipeline.Composer
	project    lang.Project
	provider   lang.ContextProvider
	shapes     *pipeline.Shapes
	sink       Sink
	stopped    bool
	strategies *strategy.Registry
}

// New creates a session with the built-in commands and no language loaded.
func New(cfg Config) (*T, error) {
	if len(cfg.Strategies) == 0 {
		return nil, fmt.Errorf("%w: no strategies", strategy.ErrUnknown)
	}

	s := &T{
		catalog:    cfg.Catalog,
		commands:   command.NewRegistry(cfg.Prefix, Eval),
		composer:   &pipeline.Composer{Provider: cfg.Provider},
		project:    cfg.Project,
		provider:   cfg.Provider,
		sink:       cfg.Sink,
		strategies: strategy.NewRegistry(cfg.Loader, cfg.Strategies),
	}

	if cfg.Strategy != "" {
		if _, err := s.strategies.Select(cfg.Strategy); err != nil {
			return nil, err
		}
	}

	s.commands.SetHint("no language loaded, try " + cfg.Prefix + "load LANGUAGE")
	s.builtins()

	return s, nil
}

// Commands returns the session's command registry.
func (s *T) Commands() *command.Registry {
	return s.commands
}

// Strategies returns the session's strategies.
func (s *T) Strategies() *strategy.Registry {
	return s.strategies
}

// Language returns the loaded language, or nil.
func (s *T) Language() lang.Implementation {
	if s.shapes == nil {
		return nil
	}

	return s.shapes.Language()
}

// Stopped reports whether an exit command has run.
func (s *T) Stopped() bool {
	return s.stopped
}

// Execute runs line and reports the outcome to the sink.
func (s *T) Execute(ctx context.Context, line string) {
	s.commands.Execute(ctx, line, s.sink)
}

// Reject reports input that could not be read as a line.
func (s *T) Reject(_ context.Context, err error) {
	s.sink.Failure(err)
}

// Completions returns the prefixed command names starting with line.
func (s *T) Completions(line string) []string {
	var c []string

	for _, name := range s.commands.Names() {
		full := s.commands.Prefix() + name
		if strings.HasPrefix(full, line) {
			c = append(c, full)
		}
	}

	return c
}

// Load makes the named language current and installs its commands.
func (s *T) Load(ctx context.Context, name string) (lang.Implementation, error) {
	impl, ok := s.catalog[name]
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownLanguage, name)

		if like := fuzzy.FindFold(name, s.languages()); len(like) > 0 {
			err = fmt.Errorf("%w (did you mean %s?)", err, like[0])
		}

		return nil, err
	}

	s.shapes = s.composer.Compose(impl, s.project)
	s.install(ctx)

	ctxlog.FromContext(ctx).Debug("Language loaded.", "language", impl.ID())

	return impl, nil
}

// Select makes the named strategy current. The evaluation command of a
// loaded language is rebuilt to use it.
func (s *T) Select(ctx context.Context, name string) (*strategy.T, error) {
	st, err := s.strategies.Select(name)
	if err != nil {
		return nil, err
	}

	if s.shapes != nil {
		s.install(ctx)
	}

	ctxlog.FromContext(ctx).Debug("Strategy selected.", "strategy", name)

	return st, nil
}

// Reset discards every interpreter environment and, when the provider
// supports it, the loaded language's contexts.
func (s *T) Reset(ctx context.Context) {
	s.strategies.ResetAll()

	if f, ok := s.provider.(interface{ Forget(lang.Implementation) }); ok && s.shapes != nil {
		f.Forget(s.shapes.Language())
	}

	ctxlog.FromContext(ctx).Debug("Session reset.")
}

func (s *T) install(ctx context.Context) {
	shapes := s.shapes
	impl := shapes.Language()
	facets := impl.Facets()

	cmds := []*command.T{
		{
			Name:        Parse,
			Description: "parse the argument and show its syntax tree",
			Usage:       s.commands.Prefix() + Parse + " SOURCE",
			Run:         run(shapes.Parsed),
		},
		{
			Name:        Analyze,
			Description: "parse and analyze the argument",
			Usage:       s.commands.Prefix() + Analyze + " SOURCE",
			Run:         run(shapes.Analyzed),
		},
		{
			Name:        Eval,
			Description: "evaluate the argument with the " + s.strategies.Current().Name() + " strategy",
			Usage:       s.commands.Prefix() + Eval + " SOURCE",
			Run:         run(shapes.Eval(s.strategies.Current())),
		},
	}

	reserved := map[string]bool{Parse: true, Analyze: true, Eval: true}

	for _, a := range facets.Actions {
		if reserved[a.Name] {
			ctxlog.FromContext(ctx).Warn("Action hidden by a core command.", "action", a.Name)
			continue
		}

		cmds = append(cmds, &command.T{
			Name:        a.Name,
			Description: a.Description,
			Usage:       s.commands.Prefix() + a.Name + " SOURCE",
			Run:         run(shapes.Transform(a)),
		})
	}

	s.commands.Install(cmds...)
}

func (s *T) languages() []string {
	names := make([]string, 0, len(s.catalog))
	for name := range s.catalog {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func run[S any](st pipeline.Stage[string, S]) command.Func {
	return func(ctx context.Context, args []string) command.Result {
		text := ""
		if len(args) > 0 {
			text = args[0]
		}

		return result.Bimap(st(ctx, text), box[S], reason)
	}
}

func box[S any](v S) any {
	return v
}

func reason(i *pipeline.Invalid) error {
	return i
}
