// Released under an MIT license. See LICENSE.

// Package pipeline builds the processing stages for a loaded language and
// composes them into the shapes commands run.
//
// Every stage is built with stage.Lift or stage.Validated: an error from the
// toolchain becomes an Exception and an invalid unit becomes a Failure
// holding an *Invalid. Nothing escapes a stage boundary.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/michaelmacinnis/srepl/internal/lang"
	"github.com/michaelmacinnis/srepl/internal/result"
	"github.com/michaelmacinnis/srepl/internal/stage"
)

// Result is the outcome of a pipeline stage.
type Result[S any] = result.T[S, *Invalid]

// Stage is a pipeline stage.
type Stage[A, B any] = stage.T[A, B, *Invalid]

// Evaluator evaluates a term in the context of a language implementation.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, impl lang.Implementation, t lang.Term, c lang.Context) (lang.Term, error)
}

var errNoUnit = errors.New("toolchain returned no unit")

// InputStage binds raw text to impl and project.
func InputStage(impl lang.Implementation, project lang.Project) Stage[string, *Input] {
	return stage.Lift[string, *Input, *Invalid]("input", func(_ context.Context, text string) (*Input, error) {
		if impl == nil {
			return nil, lang.ErrNoLanguage
		}

		return &Input{
			Source:   lang.Source{Name: "repl", Text: text, Project: project},
			Language: impl,
		}, nil
	})
}

// ParseStage parses an input.
func ParseStage() Stage[*Input, *Parsed] {
	return stage.Validated("parse", func(ctx context.Context, in *Input) (*Parsed, error) {
		u, err := in.Language.Service().Parse(ctx, in.Source)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, fmt.Errorf("parse: %w", errNoUnit)
		}

		return &Parsed{input: in, unit: u}, nil
	}, func(p *Parsed) *Invalid {
		return &Invalid{Stage: "parse", Input: p.input, Unit: p.unit}
	})
}

// AnalyzeStage analyzes a parsed unit, requesting a context from provider
// unless the unit already carries one.
func AnalyzeStage(provider lang.ContextProvider) Stage[Unit, *Analyzed] {
	return stage.Validated("analyze", func(ctx context.Context, u Unit) (*Analyzed, error) {
		impl := u.Input().Language

		analyzer, ok := impl.Service().(lang.Analyzer)
		if !ok || !impl.Facets().Analysis {
			return nil, fmt.Errorf("%w: %s has no analysis", lang.ErrMissingFacet, impl.Name())
		}

		c, err := contextFor(ctx, provider, u)
		if err != nil {
			return nil, err
		}

		au, err := analyzer.Analyze(ctx, u.Unit(), c)
		if err != nil {
			return nil, err
		}
		if au == nil {
			return nil, fmt.Errorf("analyze: %w", errNoUnit)
		}

		return &Analyzed{parsed: u, unit: au, context: c}, nil
	}, func(a *Analyzed) *Invalid {
		return &Invalid{Stage: "analyze", Input: a.Input(), Unit: a.unit}
	})
}

// TransformStage applies action to a parsed or analyzed unit.
func TransformStage(provider lang.ContextProvider, action lang.Action) Stage[Unit, *Transformed] {
	name := "transform " + action.Name

	return stage.Validated(name, func(ctx context.Context, u Unit) (*Transformed, error) {
		impl := u.Input().Language

		transformer, ok := impl.Service().(lang.Transformer)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no transformations", lang.ErrMissingFacet, impl.Name())
		}

		c, err := contextFor(ctx, provider, u)
		if err != nil {
			return nil, err
		}

		units, err := transformer.Transform(ctx, u.Unit(), c, action.Goal)
		if err != nil {
			return nil, err
		}

		for _, tu := range units {
			if tu == nil {
				return nil, fmt.Errorf("%s: %w", name, errNoUnit)
			}
		}

		return &Transformed{source: u, action: action, units: units, context: c}, nil
	}, func(t *Transformed) *Invalid {
		return &Invalid{Stage: name, Input: t.source.Input(), Unit: t.invalid()}
	})
}

// EvaluateStage evaluates the tree of a parsed or analyzed unit with ev.
// After a successful evaluation the tree is committed to the unit's
// context when the context is a lang.Committer.
func EvaluateStage(provider lang.ContextProvider, ev Evaluator) Stage[Unit, *Evaluated] {
	return stage.Lift[Unit, *Evaluated, *Invalid]("evaluate", func(ctx context.Context, u Unit) (*Evaluated, error) {
		t := u.Tree()
		if t == nil {
			return nil, errors.New("evaluate: unit has no syntax tree")
		}

		c, err := contextFor(ctx, provider, u)
		if err != nil {
			return nil, err
		}

		v, err := ev.Evaluate(ctx, u.Input().Language, t, c)
		if err != nil {
			return nil, err
		}

		if cm, ok := c.(lang.Committer); ok {
			cm.Commit(ctx, t)
		}

		return &Evaluated{source: u, strategy: ev.Name(), value: v}, nil
	})
}

func contextFor(ctx context.Context, provider lang.ContextProvider, u Unit) (lang.Context, error) {
	if c := u.Context(); c != nil {
		return c, nil
	}

	if provider == nil {
		return nil, nil
	}

	in := u.Input()

	c, err := provider.Get(ctx, in.Source, in.Language)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}

	return c, nil
}

func widen[U Unit](u U) Unit {
	return u
}
