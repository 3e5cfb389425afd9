// Released under an MIT license. See LICENSE.

package calc

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/michaelmacinnis/srepl/internal/lang"
)

// Runtime rules.
const (
	Init       = "init"
	Eval       = "eval"
	EvalStrict = "eval_strict"
)

var (
	// ErrDivisionByZero is returned when dividing by zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrOverflow is returned by the strict rule when a result does not fit.
	ErrOverflow = errors.New("integer overflow")

	// ErrUnbound is returned when evaluating a name with no binding.
	ErrUnbound = errors.New("unbound name")
)

// Env maps names to values. An Env is never modified once it has been
// returned; a let produces a copy.
type Env map[string]int64

func (e Env) with(name string, v int64) Env {
	c := make(Env, len(e)+1)
	for k, x := range e {
		c[k] = x
	}

	c[name] = v

	return c
}

// Runtime evaluates calc terms.
type Runtime struct {
	prelude map[string]int64
}

// Invoke runs rule on t with env.
func (r *Runtime) Invoke(_ context.Context, rule string, t lang.Term, env lang.Env) (lang.Term, lang.Env, error) {
	switch rule {
	case Init:
		e := make(Env, len(r.prelude))
		for k, v := range r.prelude {
			e[k] = v
		}

		return nil, e, nil

	case Eval, EvalStrict:
		e, ok := env.(Env)
		if !ok {
			return nil, nil, fmt.Errorf("%s: expected a calc environment, got %T", rule, env)
		}

		ct, ok := t.(Term)
		if !ok {
			return nil, nil, fmt.Errorf("%s: %w: %T", rule, ErrForeignUnit, t)
		}

		ev := &evaluator{env: e, strict: rule == EvalStrict}

		return ev.statement(ct)
	}

	return nil, nil, fmt.Errorf("%w: %s", lang.ErrNoRule, rule)
}

type evaluator struct {
	env    Env
	strict bool
}

func (ev *evaluator) statement(t Term) (lang.Term, lang.Env, error) {
	if let, ok := t.(*Let); ok {
		v, err := ev.value(let.X)
		if err != nil {
			return nil, nil, err
		}

		return &Let{Name: let.Name, X: &Num{Value: v}}, ev.env.with(let.Name, v), nil
	}

	v, err := ev.value(t)
	if err != nil {
		return nil, nil, err
	}

	return &Num{Value: v}, ev.env, nil
}

func (ev *evaluator) value(t Term) (int64, error) {
	switch t := t.(type) {
	case *Num:
		return t.Value, nil

	case *Var:
		v, ok := ev.env[t.Name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnbound, t.Name)
		}

		return v, nil

	case *Neg:
		x, err := ev.value(t.X)
		if err != nil {
			return 0, err
		}

		return negate(x, ev.strict)

	case *Bin:
		l, err := ev.value(t.L)
		if err != nil {
			return 0, err
		}

		r, err := ev.value(t.R)
		if err != nil {
			return 0, err
		}

		return apply(t.Op, l, r, ev.strict)
	}

	return 0, fmt.Errorf("cannot evaluate %s", t)
}

func negate(x int64, strict bool) (int64, error) {
	if strict && x == math.MinInt64 {
		return 0, ErrOverflow
	}

	return -x, nil
}

func apply(op byte, l, r int64, strict bool) (int64, error) {
	switch op {
	case '+':
		v := l + r
		if strict && ((r > 0 && v < l) || (r < 0 && v > l)) {
			return 0, ErrOverflow
		}

		return v, nil

	case '-':
		v := l - r
		if strict && ((r < 0 && v < l) || (r > 0 && v > l)) {
			return 0, ErrOverflow
		}

		return v, nil

	case '*':
		v := l * r
		if strict && l != 0 && (v/l != r || (l == -1 && r == math.MinInt64)) {
			return 0, ErrOverflow
		}

		return v, nil

	case '/', '%':
		if r == 0 {
			return 0, ErrDivisionByZero
		}

		if strict && l == math.MinInt64 && r == -1 && op == '/' {
			return 0, ErrOverflow
		}

		if op == '/' {
			return l / r, nil
		}

		return l % r, nil
	}

	return 0, fmt.Errorf("unknown operator %q", op)
}

// Loader creates runtimes for calc languages.
type Loader struct{}

// Load returns a runtime seeded with the language's prelude.
func (Loader) Load(_ context.Context, impl lang.Implementation) (lang.Runtime, error) {
	l, ok := impl.(*Language)
	if !ok {
		return nil, fmt.Errorf("%s is not a calc language", impl.Name())
	}

	return &Runtime{prelude: l.prelude}, nil
}
