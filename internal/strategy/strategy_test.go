package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/michaelmacinnis/srepl/internal/lang"
	"github.com/michaelmacinnis/srepl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultRules = Rules{Init: "init", Eval: "eval"}

func language(id string) *testutil.Language {
	return &testutil.Language{Ident: id, Title: id, Svc: &testutil.Parser{}}
}

func TestEnvironmentThreading(t *testing.T) {
	ctx := context.Background()
	loader := &testutil.Loader{New: testutil.Counter}
	s := New("default", defaultRules, loader, nil)
	impl := language("calc@1")

	v, err := s.Evaluate(ctx, impl, testutil.Leaf("T1"), nil)
	require.NoError(t, err)
	assert.Equal(t, "T1", v.String())

	v, err = s.Evaluate(ctx, impl, testutil.Leaf("T2"), nil)
	require.NoError(t, err)
	assert.Equal(t, "T2", v.String())

	rt := loader.Runtimes["calc@1"]
	require.NotNil(t, rt)

	// init ran once; T2 saw the environment T1 returned.
	assert.Len(t, rt.Envs("init"), 1)
	assert.Equal(t, []lang.Env{0, 1}, rt.Envs("eval"))
	assert.Equal(t, 1, loader.Loads)
	assert.Equal(t, 2, s.State().Env())
	assert.Equal(t, "calc@1", s.State().ID())
}

func TestInitializationFailureLeavesUninitialized(t *testing.T) {
	ctx := context.Background()
	attempts := 0

	loader := &testutil.Loader{New: func(impl lang.Implementation) *testutil.Runtime {
		rt := testutil.Counter(impl)
		rt.Rules["init"] = func(lang.Term, lang.Env) (lang.Term, lang.Env, error) {
			attempts++
			if attempts == 1 {
				return nil, "partial", errors.New("init blew up")
			}
			return nil, 100, nil
		}
		return rt
	}}

	s := New("default", defaultRules, loader, nil)
	impl := language("calc@1")

	_, err := s.Evaluate(ctx, impl, testutil.Leaf("T1"), nil)
	require.ErrorIs(t, err, ErrInit)
	assert.False(t, s.State().Initialized())
	assert.Nil(t, s.State().Env())

	_, err = s.Evaluate(ctx, impl, testutil.Leaf("T2"), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	rt := loader.Runtimes["calc@1"]
	assert.Equal(t, []lang.Env{100}, rt.Envs("eval"))
}

func TestMissingInitRule(t *testing.T) {
	loader := &testutil.Loader{New: testutil.Counter}
	s := New("default", Rules{Init: "missing", Eval: "eval"}, loader, nil)

	_, err := s.Evaluate(context.Background(), language("calc@1"), testutil.Leaf("x"), nil)
	assert.ErrorIs(t, err, ErrInit)
	assert.ErrorIs(t, err, lang.ErrNoRule)
	assert.False(t, s.State().Initialized())
}

func TestLoaderFailure(t *testing.T) {
	boom := errors.New("cannot load")
	s := New("default", defaultRules, &testutil.Loader{Err: boom}, nil)

	_, err := s.Evaluate(context.Background(), language("calc@1"), testutil.Leaf("x"), nil)
	assert.ErrorIs(t, err, ErrInit)
	assert.ErrorIs(t, err, boom)

	_, err = New("x", defaultRules, nil, nil).Evaluate(context.Background(), language("calc@1"), testutil.Leaf("x"), nil)
	assert.ErrorIs(t, err, ErrInit)
}

func TestFailedEvaluationDoesNotCommit(t *testing.T) {
	ctx := context.Background()
	loader := &testutil.Loader{New: func(impl lang.Implementation) *testutil.Runtime {
		rt := testutil.Counter(impl)
		count := rt.Rules["eval"]
		rt.Rules["eval"] = func(t lang.Term, env lang.Env) (lang.Term, lang.Env, error) {
			if t.Label() == "bad" {
				return nil, 999, errors.New("no applicable rule")
			}
			return count(t, env)
		}
		return rt
	}}

	s := New("default", defaultRules, loader, nil)
	impl := language("calc@1")

	_, err := s.Evaluate(ctx, impl, testutil.Leaf("ok"), nil)
	require.NoError(t, err)

	_, err = s.Evaluate(ctx, impl, testutil.Leaf("bad"), nil)
	require.Error(t, err)
	assert.Equal(t, 1, s.State().Env())

	_, err = s.Evaluate(ctx, impl, testutil.Leaf("ok"), nil)
	require.NoError(t, err)

	assert.Equal(t, []lang.Env{0, 1, 1}, loader.Runtimes["calc@1"].Envs("eval"))
}

func TestLanguageChangeReinitializes(t *testing.T) {
	ctx := context.Background()
	loader := &testutil.Loader{New: testutil.Counter}
	s := New("default", defaultRules, loader, nil)

	for i := 0; i < 3; i++ {
		_, err := s.Evaluate(ctx, language("one@1"), testutil.Leaf("x"), nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, s.State().Env())

	_, err := s.Evaluate(ctx, language("two@1"), testutil.Leaf("x"), nil)
	require.NoError(t, err)

	assert.Equal(t, "two@1", s.State().ID())
	assert.Equal(t, 1, s.State().Env())
	assert.Equal(t, []lang.Env{0}, loader.Runtimes["two@1"].Envs("eval"))
	assert.Equal(t, 2, loader.Loads)
}

func TestNoLanguage(t *testing.T) {
	s := New("default", defaultRules, &testutil.Loader{New: testutil.Counter}, nil)

	_, err := s.Evaluate(context.Background(), nil, testutil.Leaf("x"), nil)
	assert.ErrorIs(t, err, lang.ErrNoLanguage)
}

func TestReset(t *testing.T) {
	loader := &testutil.Loader{New: testutil.Counter}
	s := New("default", defaultRules, loader, nil)
	impl := language("calc@1")

	_, err := s.Evaluate(context.Background(), impl, testutil.Leaf("x"), nil)
	require.NoError(t, err)
	require.True(t, s.State().Initialized())

	s.State().Reset()
	assert.False(t, s.State().Initialized())
	assert.Empty(t, s.State().ID())

	_, err = s.Evaluate(context.Background(), impl, testutil.Leaf("x"), nil)
	require.NoError(t, err)
	assert.Len(t, loader.Runtimes["calc@1"].Envs("init"), 2)
}

func TestRegistry(t *testing.T) {
	loader := &testutil.Loader{New: testutil.Counter}
	r := NewRegistry(loader, map[string]Rules{
		"strict":  {Init: "init", Eval: "eval_strict"},
		"default": defaultRules,
	})

	assert.Equal(t, []string{"default", "strict"}, r.Names())
	require.NotNil(t, r.Current())
	assert.Equal(t, "default", r.Current().Name())

	s, err := r.Select("strict")
	require.NoError(t, err)
	assert.Same(t, s, r.Current())
	assert.Equal(t, "eval_strict", s.Rules().Eval)

	_, err = r.Select("lazy")
	assert.ErrorIs(t, err, ErrUnknown)
	assert.Same(t, s, r.Current())

	d, ok := r.Get("default")
	require.True(t, ok)
	assert.NotSame(t, d.State(), s.State())

	_, err = d.Evaluate(context.Background(), language("calc@1"), testutil.Leaf("x"), nil)
	require.NoError(t, err)
	require.True(t, d.State().Initialized())

	r.ResetAll()
	assert.False(t, d.State().Initialized())

	assert.Nil(t, NewRegistry(loader, nil).Current())
}
