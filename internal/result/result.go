// Released under an MIT license. See LICENSE.

// Package result provides the three-outcome type that every processing
// stage returns.
//
// A result is exactly one of Success, Failure or Exception. Success carries
// the stage's output. Failure means the operation completed but rejected its
// input. Exception means the operation itself went wrong. Chain composes
// stages and stops at the first non-success.
package result

import (
	"errors"
	"fmt"
)

// Tag identifies the active variant of a result.
type Tag int

// The three result variants.
const (
	Success Tag = iota
	Failure
	Exception
)

// ErrNilException replaces a nil error passed to Excepted.
var ErrNilException = errors.New("exception without cause")

// String returns the name of the variant.
func (t Tag) String() string {
	switch t {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Exception:
		return "exception"
	}

	return fmt.Sprintf("tag(%d)", int(t))
}

// T (result) is an immutable Success(S), Failure(F) or Exception(error).
// The zero value is a Success holding the zero S.
type T[S, F any] struct {
	tag Tag
	s   S
	f   F
	err error
}

// Visitor receives the payload of whichever variant is active.
type Visitor[S, F any] interface {
	Success(s S)
	Failure(f F)
	Exception(err error)
}

// Successful creates a Success holding s.
func Successful[S, F any](s S) T[S, F] {
	return T[S, F]{tag: Success, s: s}
}

// Failed creates a Failure holding f.
func Failed[S, F any](f F) T[S, F] {
	return T[S, F]{tag: Failure, f: f}
}

// Excepted creates an Exception holding err.
func Excepted[S, F any](err error) T[S, F] {
	if err == nil {
		err = ErrNilException
	}

	return T[S, F]{tag: Exception, err: err}
}

// Validator is implemented by domain units that judge their own outcome.
type Validator interface {
	Valid() bool
}

// FromOutcome bridges a domain unit into a result. A valid unit is a Success;
// an invalid one is a Failure holding wrap(u).
func FromOutcome[U Validator, F any](u U, wrap func(U) F) T[U, F] {
	if u.Valid() {
		return Successful[U, F](u)
	}

	return Failed[U](wrap(u))
}

// Chain applies f to the payload of a Success and returns f's result.
// A Failure or Exception is passed through with f never invoked.
func Chain[S, S2, F any](r T[S, F], f func(S) T[S2, F]) T[S2, F] {
	switch r.tag {
	case Success:
		return f(r.s)
	case Failure:
		return Failed[S2](r.f)
	case Exception:
		return Excepted[S2, F](r.err)
	}

	panic("unreachable: " + r.tag.String())
}

// Bimap re-types a result, converting the Success payload with fs and the
// Failure payload with ff. Exceptions pass through.
func Bimap[S, F, S2, F2 any](r T[S, F], fs func(S) S2, ff func(F) F2) T[S2, F2] {
	switch r.tag {
	case Success:
		return Successful[S2, F2](fs(r.s))
	case Failure:
		return Failed[S2](ff(r.f))
	case Exception:
		return Excepted[S2, F2](r.err)
	}

	panic("unreachable: " + r.tag.String())
}

// Accept dispatches the active payload to v.
func Accept[S, F any](r T[S, F], v Visitor[S, F]) {
	Visit(r, v.Success, v.Failure, v.Exception)
}

// Visit dispatches the active payload to the matching function.
func Visit[S, F any](r T[S, F], onS func(S), onF func(F), onE func(error)) {
	switch r.tag {
	case Success:
		onS(r.s)
	case Failure:
		onF(r.f)
	case Exception:
		onE(r.err)
	default:
		panic("unreachable: " + r.tag.String())
	}
}

// Tag returns the active variant.
func (r T[S, F]) Tag() Tag {
	return r.tag
}

// Success returns the Success payload and true, if r is a Success.
func (r T[S, F]) Success() (S, bool) {
	return r.s, r.tag == Success
}

// Failure returns the Failure payload and true, if r is a Failure.
func (r T[S, F]) Failure() (F, bool) {
	return r.f, r.tag == Failure
}

// Exception returns the error and true, if r is an Exception.
func (r T[S, F]) Exception() (error, bool) {
	return r.err, r.tag == Exception
}

// String describes the result for logging.
func (r T[S, F]) String() string {
	switch r.tag {
	case Success:
		return fmt.Sprintf("success(%v)", r.s)
	case Failure:
		return fmt.Sprintf("failure(%v)", r.f)
	case Exception:
		return fmt.Sprintf("exception(%v)", r.err)
	}

	return r.tag.String()
}
