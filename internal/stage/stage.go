// Released under an MIT license. See LICENSE.

// Package stage provides fallible pipeline steps and their composition.
package stage

import (
	"context"
	"fmt"

	"github.com/michaelmacinnis/srepl/internal/ctxlog"
	"github.com/michaelmacinnis/srepl/internal/result"
)

// T (stage) is a fallible transformation from A to B.
type T[A, B, F any] func(ctx context.Context, a A) result.T[B, F]

// PanicError is the cause of an Exception produced by a panicking stage.
type PanicError struct {
	Stage string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Stage, e.Value)
}

// Unwrap exposes a panic value that was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}

// Identity returns the stage that succeeds with its input.
func Identity[A, F any]() T[A, A, F] {
	return func(_ context.Context, a A) result.T[A, F] {
		return result.Successful[A, F](a)
	}
}

// Compose returns the stage a -> f(a).chain(g).
func Compose[A, B, C, F any](f T[A, B, F], g T[B, C, F]) T[A, C, F] {
	return func(ctx context.Context, a A) result.T[C, F] {
		return result.Chain(f(ctx, a), func(b B) result.T[C, F] {
			return g(ctx, b)
		})
	}
}

// Then composes stages that share one type, left to right.
func Then[A, F any](first T[A, A, F], rest ...T[A, A, F]) T[A, A, F] {
	s := first
	for _, next := range rest {
		s = Compose(s, next)
	}

	return s
}

// Pure lifts a total function into a stage that always succeeds.
func Pure[A, B, F any](fn func(A) B) T[A, B, F] {
	return func(_ context.Context, a A) result.T[B, F] {
		return result.Successful[B, F](fn(a))
	}
}

// Lift turns an operation that may return an error, or panic, into a stage.
// Both become an Exception.
func Lift[A, B, F any](name string, op func(context.Context, A) (B, error)) T[A, B, F] {
	return func(ctx context.Context, a A) (r result.T[B, F]) {
		defer guard(ctx, name, &r)

		b, err := op(ctx, a)
		if err != nil {
			ctxlog.FromContext(ctx).Debug("Stage raised.", "stage", name, "error", err)

			return result.Excepted[B, F](err)
		}

		return result.Successful[B, F](b)
	}
}

// Validated turns an operation producing a self-validating unit into a
// stage. Errors and panics become an Exception; an invalid unit becomes a
// Failure holding wrap(unit).
func Validated[A any, U result.Validator, F any](
	name string,
	op func(context.Context, A) (U, error),
	wrap func(U) F,
) T[A, U, F] {
	return func(ctx context.Context, a A) (r result.T[U, F]) {
		defer guard(ctx, name, &r)

		u, err := op(ctx, a)
		if err != nil {
			ctxlog.FromContext(ctx).Debug("Stage raised.", "stage", name, "error", err)

			return result.Excepted[U, F](err)
		}

		r = result.FromOutcome(u, wrap)
		ctxlog.FromContext(ctx).Debug("Stage applied.", "stage", name, "outcome", r.Tag())

		return r
	}
}

func guard[B, F any](ctx context.Context, name string, r *result.T[B, F]) {
	if v := recover(); v != nil {
		ctxlog.FromContext(ctx).Warn("Stage panicked.", "stage", name, "panic", v)

		*r = result.Excepted[B, F](&PanicError{Stage: name, Value: v})
	}
}
