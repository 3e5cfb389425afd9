// Released under an MIT license. See LICENSE.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/michaelmacinnis/srepl/internal/lang"
)

// Input is one user submission bound to a language and project.
type Input struct {
	Source   lang.Source
	Language lang.Implementation
}

// Unit is the output of the parse or analyze stage. A context, once
// obtained, is carried forward so later stages do not request another.
type Unit interface {
	lang.Unit
	Input() *Input
	Unit() lang.Unit
	Context() lang.Context
}

// Parsed wraps a parse unit.
type Parsed struct {
	input *Input
	unit  lang.Unit
}

// Input returns the submission that was parsed.
func (p *Parsed) Input() *Input { return p.input }

// Unit returns the toolchain's parse unit.
func (p *Parsed) Unit() lang.Unit { return p.unit }

// Context is always nil; parsing does not need one.
func (p *Parsed) Context() lang.Context { return nil }

func (p *Parsed) Valid() bool { return p.unit.Valid() }
func (p *Parsed) Messages() []lang.Message { return p.unit.Messages() }
func (p *Parsed) Tree() lang.Term { return p.unit.Tree() }

// Analyzed wraps an analyze unit and the context it was analyzed in.
type Analyzed struct {
	parsed  Unit
	unit    lang.Unit
	context lang.Context
}

// Input returns the submission that was analyzed.
func (a *Analyzed) Input() *Input { return a.parsed.Input() }

// Parsed returns the unit that was analyzed.
func (a *Analyzed) Parsed() Unit { return a.parsed }

// Unit returns the toolchain's analyze unit.
func (a *Analyzed) Unit() lang.Unit { return a.unit }

// Context returns the context the analysis ran in.
func (a *Analyzed) Context() lang.Context { return a.context }

func (a *Analyzed) Valid() bool { return a.unit.Valid() }
func (a *Analyzed) Messages() []lang.Message { return a.unit.Messages() }
func (a *Analyzed) Tree() lang.Term { return a.unit.Tree() }

// Transformed holds the units produced by one transform action.
type Transformed struct {
	source  Unit
	action  lang.Action
	units   []lang.Unit
	context lang.Context
}

// Action returns the action that was applied.
func (t *Transformed) Action() lang.Action { return t.action }

// Source returns the unit that was transformed.
func (t *Transformed) Source() Unit { return t.source }

// Units returns every unit the action produced.
func (t *Transformed) Units() []lang.Unit { return t.units }

// Context returns the context the transform ran in.
func (t *Transformed) Context() lang.Context { return t.context }

// Valid is true when every produced unit is valid.
func (t *Transformed) Valid() bool {
	return t.invalid() == nil
}

// Messages concatenates the messages of every produced unit.
func (t *Transformed) Messages() []lang.Message {
	var ms []lang.Message
	for _, u := range t.units {
		ms = append(ms, u.Messages()...)
	}

	return ms
}

// Tree returns the tree of the first produced unit, if any.
func (t *Transformed) Tree() lang.Term {
	if len(t.units) == 0 {
		return nil
	}

	return t.units[0].Tree()
}

func (t *Transformed) invalid() lang.Unit {
	for _, u := range t.units {
		if !u.Valid() {
			return u
		}
	}

	return nil
}

// Evaluated holds the term an evaluation strategy produced.
type Evaluated struct {
	source   Unit
	strategy string
	value    lang.Term
}

// Source returns the unit that was evaluated.
func (e *Evaluated) Source() Unit { return e.source }

// Strategy returns the name of the strategy that evaluated the unit.
func (e *Evaluated) Strategy() string { return e.strategy }

// Value returns the resulting term.
func (e *Evaluated) Value() lang.Term { return e.value }

func (e *Evaluated) String() string {
	if e.value == nil {
		return ""
	}

	return e.value.String()
}

// Messages returns the non-fatal messages of the evaluated unit.
func (e *Evaluated) Messages() []lang.Message { return e.source.Messages() }

// Invalid is the failure produced when a stage completes but the
// toolchain rejects the input.
type Invalid struct {
	Stage string
	Input *Input
	Unit  lang.Unit
}

func (e *Invalid) Error() string {
	errs := lang.Errors(e.Unit.Messages())
	if len(errs) == 0 {
		return e.Stage + " rejected input"
	}

	texts := make([]string, 0, len(errs))
	for _, m := range errs {
		texts = append(texts, m.Text)
	}

	return fmt.Sprintf("%s rejected input: %s", e.Stage, strings.Join(texts, "; "))
}

// Messages returns the rejected unit's messages.
func (e *Invalid) Messages() []lang.Message {
	return e.Unit.Messages()
}
