package stage

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/michaelmacinnis/srepl/internal/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome = result.T[int, string]

var errOdd = errors.New("odd")

func equal(t *testing.T, want, got outcome) {
	t.Helper()

	opts := cmp.Options{
		cmp.AllowUnexported(outcome{}),
		cmpopts.EquateErrors(),
	}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("results differ (-want +got):\n%s", diff)
	}
}

// A small family of stages with all three outcomes.
func stages() map[string]T[int, int, string] {
	return map[string]T[int, int, string]{
		"double": Pure[int, int, string](func(n int) int { return n * 2 }),
		"dec":    Pure[int, int, string](func(n int) int { return n - 1 }),
		"reject-negative": func(_ context.Context, n int) outcome {
			if n < 0 {
				return result.Failed[int]("negative " + strconv.Itoa(n))
			}
			return result.Successful[int, string](n)
		},
		"raise-odd": func(_ context.Context, n int) outcome {
			if n%2 != 0 {
				return result.Excepted[int, string](errOdd)
			}
			return result.Successful[int, string](n)
		},
	}
}

func inputs() []int {
	return []int{-3, -2, -1, 0, 1, 2, 3, 10}
}

func TestAssociativity(t *testing.T) {
	ctx := context.Background()
	all := stages()

	for fn, f := range all {
		for gn, g := range all {
			for hn, h := range all {
				left := Compose(Compose(f, g), h)
				right := Compose(f, Compose(g, h))

				for _, a := range inputs() {
					t.Run(fn+"/"+gn+"/"+hn+"/"+strconv.Itoa(a), func(t *testing.T) {
						equal(t, left(ctx, a), right(ctx, a))
					})
				}
			}
		}
	}
}

func TestIdentity(t *testing.T) {
	ctx := context.Background()
	id := Identity[int, string]()

	for _, f := range stages() {
		for _, a := range inputs() {
			want := f(ctx, a)

			equal(t, want, Compose(id, f)(ctx, a))
			equal(t, want, Compose(f, id)(ctx, a))
		}
	}
}

func TestShortCircuit(t *testing.T) {
	ctx := context.Background()
	all := stages()

	calls := 0
	spy := func(_ context.Context, n int) outcome {
		calls++
		return result.Successful[int, string](n)
	}

	r := Compose(all["reject-negative"], spy)(ctx, -5)
	equal(t, result.Failed[int]("negative -5"), r)

	r = Compose(all["raise-odd"], spy)(ctx, 3)
	equal(t, result.Excepted[int, string](errOdd), r)

	assert.Zero(t, calls)

	Compose(all["double"], spy)(ctx, 1)
	assert.Equal(t, 1, calls)
}

func TestThen(t *testing.T) {
	ctx := context.Background()
	all := stages()

	s := Then(all["double"], all["dec"], all["double"])
	equal(t, result.Successful[int, string](10), s(ctx, 3))

	single := Then(all["dec"])
	equal(t, result.Successful[int, string](2), single(ctx, 3))
}

func TestLift(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	s := Lift[string, int, string]("atoi", func(_ context.Context, in string) (int, error) {
		if in == "boom" {
			return 0, boom
		}
		return strconv.Atoi(in)
	})

	equal(t, result.Successful[int, string](12), s(ctx, "12"))
	equal(t, result.Excepted[int, string](boom), s(ctx, "boom"))

	err, ok := s(ctx, "x").Exception()
	require.True(t, ok)
	var numErr *strconv.NumError
	assert.ErrorAs(t, err, &numErr)
}

func TestLiftRecoversPanics(t *testing.T) {
	s := Lift[int, int, string]("explode", func(context.Context, int) (int, error) {
		panic("kaboom")
	})

	err, ok := s(context.Background(), 1).Exception()
	require.True(t, ok)

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "explode", pe.Stage)
	assert.Equal(t, "explode: panic: kaboom", err.Error())
	assert.Nil(t, pe.Unwrap())

	boom := errors.New("boom")
	s = Lift[int, int, string]("rethrow", func(context.Context, int) (int, error) {
		panic(boom)
	})

	err, ok = s(context.Background(), 1).Exception()
	require.True(t, ok)
	assert.ErrorIs(t, err, boom)
}

type checked struct {
	n  int
	ok bool
}

func (c checked) Valid() bool { return c.ok }

func TestValidated(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	s := Validated[int, checked, string]("check",
		func(_ context.Context, n int) (checked, error) {
			if n == 0 {
				return checked{}, boom
			}
			if n == 1 {
				panic("one")
			}
			return checked{n: n, ok: n > 0}, nil
		},
		func(c checked) string { return "rejected " + strconv.Itoa(c.n) },
	)

	v, ok := s(ctx, 5).Success()
	require.True(t, ok)
	assert.Equal(t, checked{n: 5, ok: true}, v)

	reason, ok := s(ctx, -2).Failure()
	require.True(t, ok)
	assert.Equal(t, "rejected -2", reason)

	err, ok := s(ctx, 0).Exception()
	require.True(t, ok)
	assert.ErrorIs(t, err, boom)

	err, ok = s(ctx, 1).Exception()
	require.True(t, ok)
	var pe *PanicError
	assert.ErrorAs(t, err, &pe)
}
