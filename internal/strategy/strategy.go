// Released under an MIT license. See LICENSE.

// Package strategy provides named evaluation strategies that thread
// interpreter state across successive evaluations.
//
// A strategy's State starts uninitialized. The first evaluation for a
// language implementation loads its runtime and invokes the init rule once.
// Every later evaluation for the same implementation passes the environment
// committed by the previous successful call. Evaluating for a different
// implementation discards the state and initializes again.
package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/michaelmacinnis/srepl/internal/ctxlog"
	"github.com/michaelmacinnis/srepl/internal/lang"
)

// ErrInit wraps every failure to initialize an environment.
var ErrInit = errors.New("initialization failed")

// State is the environment threaded through one strategy's evaluations.
type State struct {
	id      string
	env     lang.Env
	runtime lang.Runtime
}

// Initialized reports whether s holds an environment.
func (s *State) Initialized() bool {
	return s.runtime != nil
}

// ID returns the implementation the environment belongs to, or "".
func (s *State) ID() string {
	return s.id
}

// Env returns the current environment.
func (s *State) Env() lang.Env {
	return s.env
}

// Reset discards the environment.
func (s *State) Reset() {
	*s = State{}
}

// Rules names the runtime rules a strategy invokes.
type Rules struct {
	Init string
	Eval string
}

// T (strategy) evaluates terms by invoking runtime rules.
type T struct {
	name   string
	rules  Rules
	loader lang.RuntimeLoader
	state  *State
}

// New creates a strategy that owns state.
func New(name string, rules Rules, loader lang.RuntimeLoader, state *State) *T {
	if state == nil {
		state = &State{}
	}

	return &T{name: name, rules: rules, loader: loader, state: state}
}

// Name returns the strategy's name.
func (s *T) Name() string {
	return s.name
}

// Rules returns the rules the strategy invokes.
func (s *T) Rules() Rules {
	return s.rules
}

// State returns the strategy's state.
func (s *T) State() *State {
	return s.state
}

// Evaluate evaluates t for impl. The environment is updated only when the
// evaluation rule succeeds.
func (s *T) Evaluate(ctx context.Context, impl lang.Implementation, t lang.Term, _ lang.Context) (lang.Term, error) {
	if impl == nil {
		return nil, lang.ErrNoLanguage
	}

	logger := ctxlog.FromContext(ctx).With("strategy", s.name, "language", impl.ID())

	if s.state.Initialized() && s.state.id != impl.ID() {
		logger.Debug("Language changed, discarding environment.", "previous", s.state.id)
		s.state.Reset()
	}

	if !s.state.Initialized() {
		if err := s.initialize(ctx, impl); err != nil {
			logger.Debug("Initialization failed.", "error", err)
			return nil, err
		}

		logger.Debug("Environment initialized.")
	}

	v, env, err := s.state.runtime.Invoke(ctx, s.rules.Eval, t, s.state.env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}

	s.state.env = env

	return v, nil
}

func (s *T) initialize(ctx context.Context, impl lang.Implementation) error {
	if s.loader == nil {
		return fmt.Errorf("%s: %w: no runtime loader", s.name, ErrInit)
	}

	rt, err := s.loader.Load(ctx, impl)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", s.name, ErrInit, err)
	}
	if rt == nil {
		return fmt.Errorf("%s: %w: no runtime for %s", s.name, ErrInit, impl.ID())
	}

	_, env, err := rt.Invoke(ctx, s.rules.Init, nil, nil)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", s.name, ErrInit, err)
	}

	s.state.id = impl.ID()
	s.state.env = env
	s.state.runtime = rt

	return nil
}
