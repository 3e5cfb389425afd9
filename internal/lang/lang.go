// Released under an MIT license. See LICENSE.

// Package lang declares the contract between the REPL core and a language
// toolchain. The core never parses, analyzes or evaluates anything itself;
// it calls through these interfaces.
package lang

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingFacet is returned when a stage needs a capability that the
	// loaded language does not provide.
	ErrMissingFacet = errors.New("language lacks required facet")

	// ErrNoLanguage is returned when a stage runs before any language is loaded.
	ErrNoLanguage = errors.New("no language loaded")

	// ErrNoRule is returned by a runtime asked to invoke a rule it does not have.
	ErrNoRule = errors.New("no such rule")
)

// Severity ranks a message.
type Severity int

// Message severities, most severe first.
const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	}

	return fmt.Sprintf("severity(%d)", int(s))
}

// Message is a diagnostic attached to a unit.
type Message struct {
	Severity Severity
	Offset   int
	Text     string
}

func (m Message) String() string {
	return fmt.Sprintf("%s at %d: %s", m.Severity, m.Offset, m.Text)
}

// Term is a node of a syntax tree or an evaluated value.
type Term interface {
	Label() string
	Children() []Term
	String() string
}

// Unit is the outcome of a parse, analyze or transform operation. Each
// unit reports its own validity.
type Unit interface {
	Valid() bool
	Messages() []Message
	Tree() Term
}

// Context is opaque semantic state for a source within a project.
type Context interface{}

// Committer is implemented by contexts that record the effect of a term
// once it has been evaluated successfully.
type Committer interface {
	Commit(ctx context.Context, t Term)
}

// Env is opaque interpreter state threaded between evaluations.
type Env interface{}

// Project identifies the workspace a source belongs to.
type Project struct {
	Root string
}

// Source is the text submitted for processing.
type Source struct {
	Name    string
	Text    string
	Project Project
}

// Action is a transformation a language offers.
type Action struct {
	Name        string
	Description string
	Goal        string

	// Analyzed actions transform analysis output rather than parse output.
	Analyzed bool
}

// Facets describe which stages a language supports.
type Facets struct {
	Analysis bool
	Actions  []Action
}

// Implementation is a loaded language.
type Implementation interface {
	// ID changes whenever the implementation changes. Interpreter state is
	// never shared between two IDs.
	ID() string
	Name() string
	Description() string
	Facets() Facets
	Service() Service
}

// Service parses source text.
type Service interface {
	Parse(ctx context.Context, src Source) (Unit, error)
}

// Analyzer is implemented by services with the analysis facet.
type Analyzer interface {
	Analyze(ctx context.Context, parsed Unit, c Context) (Unit, error)
}

// Transformer is implemented by services offering transform actions.
type Transformer interface {
	Transform(ctx context.Context, u Unit, c Context, goal string) ([]Unit, error)
}

// ContextProvider hands out contexts, either reused or freshly minted.
type ContextProvider interface {
	Get(ctx context.Context, src Source, impl Implementation) (Context, error)
}

// Runtime invokes named rules with an explicit environment.
type Runtime interface {
	Invoke(ctx context.Context, rule string, t Term, env Env) (Term, Env, error)
}

// RuntimeLoader produces a runtime for an implementation.
type RuntimeLoader interface {
	Load(ctx context.Context, impl Implementation) (Runtime, error)
}

// Errors returns the error messages in ms.
func Errors(ms []Message) []Message {
	var errs []Message

	for _, m := range ms {
		if m.Severity == Error {
			errs = append(errs, m)
		}
	}

	return errs
}
