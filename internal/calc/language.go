// Released under an MIT license. See LICENSE.

// Package calc is a small integer calculator language. It implements every
// toolchain interface the REPL consumes so the binary works without an
// external toolchain.
package calc

import (
	"github.com/michaelmacinnis/srepl/internal/lang"
)

// Toolchain is the name configuration files use to select calc.
const Toolchain = "calc"

// Definition describes one calc language variant.
type Definition struct {
	Name        string
	Version     string
	Description string
	Analysis    bool
	Actions     []lang.Action
	Prelude     map[string]int64
}

// Language is a calc language variant.
type Language struct {
	def     Definition
	prelude map[string]int64
	service lang.Service
}

// New creates a language from def.
func New(def Definition) *Language {
	l := &Language{def: def, prelude: make(map[string]int64, len(def.Prelude))}

	for k, v := range def.Prelude {
		l.prelude[k] = v
	}

	if def.Analysis {
		l.service = Analyzer{}
	} else {
		l.service = Parser{}
	}

	return l
}

// Actions returns the transformations calc offers. Folding needs names
// resolved first.
func Actions() []lang.Action {
	return []lang.Action{
		{Name: "desugar", Description: "rewrite negation as subtraction", Goal: Desugar},
		{Name: "fold", Description: "fold constant subexpressions", Goal: Fold, Analyzed: true},
		{Name: "pretty", Description: "print in canonical form", Goal: Pretty},
	}
}

// ID is the name and version, so a new version never shares interpreter
// state with an old one.
func (l *Language) ID() string {
	if l.def.Version == "" {
		return l.def.Name
	}

	return l.def.Name + "@" + l.def.Version
}

func (l *Language) Name() string        { return l.def.Name }
func (l *Language) Description() string { return l.def.Description }

// Facets returns the analysis flag and actions. Actions that need analysis
// are dropped when the language does not have it.
func (l *Language) Facets() lang.Facets {
	f := lang.Facets{Analysis: l.def.Analysis}

	for _, a := range l.def.Actions {
		if a.Analyzed && !l.def.Analysis {
			continue
		}

		f.Actions = append(f.Actions, a)
	}

	return f
}

func (l *Language) Service() lang.Service { return l.service }
