// Released under an MIT license. See LICENSE.

// Package testutil provides a scriptable fake toolchain for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/michaelmacinnis/srepl/internal/lang"
)

// Term is a plain syntax tree node.
type Term struct {
	Text string
	Kids []lang.Term
}

// Leaf returns a term with no children.
func Leaf(text string) *Term {
	return &Term{Text: text}
}

func (t *Term) Label() string { return t.Text }
func (t *Term) Children() []lang.Term { return t.Kids }

func (t *Term) String() string {
	if len(t.Kids) == 0 {
		return t.Text
	}

	parts := make([]string, 0, len(t.Kids))
	for _, k := range t.Kids {
		parts = append(parts, k.String())
	}

	return t.Text + "(" + strings.Join(parts, ", ") + ")"
}

// Unit is a parse, analyze or transform unit.
type Unit struct {
	OK   bool
	Msgs []lang.Message
	Term lang.Term
}

// Valid returns a valid unit holding a leaf labelled text.
func Valid(text string) *Unit {
	return &Unit{OK: true, Term: Leaf(text)}
}

// Invalid returns an invalid unit with one error message.
func Invalid(msg string) *Unit {
	return &Unit{Msgs: []lang.Message{{Severity: lang.Error, Text: msg}}}
}

func (u *Unit) Valid() bool { return u.OK }
func (u *Unit) Messages() []lang.Message { return u.Msgs }
func (u *Unit) Tree() lang.Term { return u.Term }

// Parser is a service with only the parse operation.
type Parser struct {
	ParseFn func(src lang.Source) (lang.Unit, error)
	Parsed  []string
}

// Parse records the text and calls ParseFn, or returns a valid unit
// echoing the text.
func (p *Parser) Parse(_ context.Context, src lang.Source) (lang.Unit, error) {
	p.Parsed = append(p.Parsed, src.Text)

	if p.ParseFn != nil {
		return p.ParseFn(src)
	}

	return Valid(src.Text), nil
}

// Toolchain is a service with parse, analyze and transform operations.
type Toolchain struct {
	Parser

	AnalyzeFn   func(u lang.Unit, c lang.Context) (lang.Unit, error)
	TransformFn func(u lang.Unit, c lang.Context, goal string) ([]lang.Unit, error)

	Contexts []lang.Context
	Goals    []string
}

// Analyze records the context and calls AnalyzeFn, or passes u through.
func (t *Toolchain) Analyze(_ context.Context, u lang.Unit, c lang.Context) (lang.Unit, error) {
	t.Contexts = append(t.Contexts, c)

	if t.AnalyzeFn != nil {
		return t.AnalyzeFn(u, c)
	}

	return &Unit{OK: u.Valid(), Msgs: u.Messages(), Term: &Term{Text: "analyzed", Kids: []lang.Term{u.Tree()}}}, nil
}

// Transform records the context and goal and calls TransformFn, or wraps
// the tree in a node labelled with the goal.
func (t *Toolchain) Transform(_ context.Context, u lang.Unit, c lang.Context, goal string) ([]lang.Unit, error) {
	t.Contexts = append(t.Contexts, c)
	t.Goals = append(t.Goals, goal)

	if t.TransformFn != nil {
		return t.TransformFn(u, c, goal)
	}

	return []lang.Unit{&Unit{OK: true, Term: &Term{Text: goal, Kids: []lang.Term{u.Tree()}}}}, nil
}

// Language is a fake implementation.
type Language struct {
	Ident   string
	Title   string
	Summary string
	Facet   lang.Facets
	Svc     lang.Service
}

func (l *Language) ID() string { return l.Ident }
func (l *Language) Name() string { return l.Title }
func (l *Language) Description() string { return l.Summary }
func (l *Language) Facets() lang.Facets { return l.Facet }
func (l *Language) Service() lang.Service { return l.Svc }

// Provider mints a numbered context per call.
type Provider struct {
	Err  error
	Gets int
}

// Get returns a fresh context, or Err.
func (p *Provider) Get(_ context.Context, _ lang.Source, impl lang.Implementation) (lang.Context, error) {
	if p.Err != nil {
		return nil, p.Err
	}

	p.Gets++

	return fmt.Sprintf("%s-context-%d", impl.ID(), p.Gets), nil
}

// Invocation is one recorded call to a Runtime.
type Invocation struct {
	Rule string
	Term lang.Term
	Env  lang.Env
}

// Rule is a fake interpreter rule.
type Rule func(t lang.Term, env lang.Env) (lang.Term, lang.Env, error)

// Runtime dispatches to Rules and records every invocation.
type Runtime struct {
	Rules map[string]Rule
	Calls []Invocation
}

// Invoke records the call and runs the named rule.
func (r *Runtime) Invoke(_ context.Context, rule string, t lang.Term, env lang.Env) (lang.Term, lang.Env, error) {
	r.Calls = append(r.Calls, Invocation{Rule: rule, Term: t, Env: env})

	fn, ok := r.Rules[rule]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", lang.ErrNoRule, rule)
	}

	return fn(t, env)
}

// Envs returns the environments received by calls to rule.
func (r *Runtime) Envs(rule string) []lang.Env {
	var envs []lang.Env

	for _, c := range r.Calls {
		if c.Rule == rule {
			envs = append(envs, c.Env)
		}
	}

	return envs
}

// Loader hands out one runtime per implementation ID.
type Loader struct {
	Err      error
	New      func(impl lang.Implementation) *Runtime
	Runtimes map[string]*Runtime
	Loads    int
}

// Load returns the runtime for impl, creating it on first use.
func (l *Loader) Load(_ context.Context, impl lang.Implementation) (lang.Runtime, error) {
	l.Loads++

	if l.Err != nil {
		return nil, l.Err
	}

	if l.Runtimes == nil {
		l.Runtimes = map[string]*Runtime{}
	}

	rt, ok := l.Runtimes[impl.ID()]
	if !ok {
		rt = l.New(impl)
		l.Runtimes[impl.ID()] = rt
	}

	return rt, nil
}

// Counter returns a runtime whose "init" rule starts a counter at 0 and
// whose "eval" rule increments it and returns the term unchanged.
func Counter(lang.Implementation) *Runtime {
	return &Runtime{Rules: map[string]Rule{
		"init": func(_ lang.Term, _ lang.Env) (lang.Term, lang.Env, error) {
			return nil, 0, nil
		},
		"eval": func(t lang.Term, env lang.Env) (lang.Term, lang.Env, error) {
			n, _ := env.(int)
			return t, n + 1, nil
		},
	}}
}
