// Released under an MIT license. See LICENSE.

package pipeline

import (
	"github.com/michaelmacinnis/srepl/internal/lang"
	"github.com/michaelmacinnis/srepl/internal/stage"
)

// Composer assembles the stages for a language.
type Composer struct {
	Provider lang.ContextProvider
}

// Shapes are the composed pipelines for one loaded language. Whether the
// analyze stage is part of evaluation is fixed when the shapes are built.
type Shapes struct {
	// Parsed is text -> Input -> Parse.
	Parsed Stage[string, Unit]

	// Analyzed is text -> Input -> Parse -> Analyze.
	Analyzed Stage[string, Unit]

	impl     lang.Implementation
	provider lang.ContextProvider
	analysis bool
}

// Compose builds the shapes for impl within project.
func (c *Composer) Compose(impl lang.Implementation, project lang.Project) *Shapes {
	parsed := stage.Compose(
		stage.Compose(InputStage(impl, project), ParseStage()),
		stage.Pure[*Parsed, Unit, *Invalid](widen[*Parsed]),
	)

	analyzed := stage.Compose(
		parsed,
		stage.Compose(AnalyzeStage(c.Provider), stage.Pure[*Analyzed, Unit, *Invalid](widen[*Analyzed])),
	)

	analysis := false
	if impl != nil {
		analysis = impl.Facets().Analysis
	}

	return &Shapes{
		Parsed:   parsed,
		Analyzed: analyzed,
		impl:     impl,
		provider: c.Provider,
		analysis: analysis,
	}
}

// Language returns the implementation the shapes were built for.
func (s *Shapes) Language() lang.Implementation {
	return s.impl
}

// Front returns the shape that feeds evaluation: Analyzed when the
// language has the analysis facet, Parsed otherwise.
func (s *Shapes) Front() Stage[string, Unit] {
	if s.analysis {
		return s.Analyzed
	}

	return s.Parsed
}

// Eval is Front -> Evaluate.
func (s *Shapes) Eval(ev Evaluator) Stage[string, *Evaluated] {
	return stage.Compose(s.Front(), EvaluateStage(s.provider, ev))
}

// Transform applies action to the output of Analyzed, if the action
// requires analysis, and of Parsed otherwise.
func (s *Shapes) Transform(action lang.Action) Stage[string, *Transformed] {
	front := s.Parsed
	if action.Analyzed {
		front = s.Analyzed
	}

	return stage.Compose(front, TransformStage(s.provider, action))
}
